//go:build !statsview
// +build !statsview

package statsview

import "github.com/retroenv/retrogolib/log"

// Address the stats server would listen on
const Address = "localhost:12600"

// Launch only warns, the binary was built without the statsview tag.
func Launch(logger *log.Logger) {
	logger.Warn("Stats server not available, rebuild with -tags statsview")
}

// Available returns false, the binary was built without the statsview tag.
func Available() bool {
	return false
}
