// Package dump writes graphviz renderings of the VM state for offline
// inspection.
package dump

import (
	"fmt"
	"io"
	"os"

	"github.com/bradleyjkemp/memviz"
	"github.com/mnafees/chopper/v2/internal"
)

// State writes a graphviz dot graph of the register snapshot of vm to w.
func State(w io.Writer, vm *internal.C8VM) {
	state := vm.State()
	memviz.Map(w, &state)
}

// WriteState writes the graph to the file at path, replacing it if it
// exists.
func WriteState(path string, vm *internal.C8VM) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating state dump: %w", err)
	}

	State(f, vm)

	if err := f.Close(); err != nil {
		return fmt.Errorf("writing state dump '%s': %w", path, err)
	}
	return nil
}
