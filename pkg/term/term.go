// Package term implements a terminal frontend for the VM. The framebuffer
// is drawn with half block characters, keys are read from stdin in raw mode.
package term

import (
	"context"
	"errors"
	"os"
	"time"

	tm "github.com/buger/goterm"
	"github.com/mnafees/chopper/v2/internal"
	"github.com/mnafees/chopper/v2/internal/clock"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

const (
	keyCtrlC  = 0x03
	keyEscape = 0x1B

	hideCursor = "\033[?25l"
	showCursor = "\033[?25h"
	bell       = "\a"
)

// ErrNotTerminal is returned when stdin or stdout is not a terminal.
var ErrNotTerminal = errors.New("stdin and stdout must be terminals")

// IO is the terminal input/output layer for the VM
type IO struct {
	vm     *internal.C8VM
	pacer  *clock.Pacer
	logger *log.Logger
	keypad *Keypad

	in       *os.File
	oldState *term.State
	input    chan byte

	sounding bool
}

// NewIO returns a new terminal frontend for vm
func NewIO(vm *internal.C8VM, pacer *clock.Pacer, logger *log.Logger) *IO {
	return &IO{
		vm:     vm,
		pacer:  pacer,
		logger: logger,
		keypad: NewKeypad(HoldTime),
		in:     os.Stdin,
		input:  make(chan byte, 64),
	}
}

// Setup switches the terminal to raw mode and clears the screen.
func (io *IO) Setup() error {
	fd := int(io.in.Fd())
	if !term.IsTerminal(fd) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return ErrNotTerminal
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	io.oldState = state

	go io.readInput()

	tm.Clear()
	tm.Print(hideCursor)
	tm.Flush()
	return nil
}

// Destroy restores the terminal to the mode it was in before Setup.
func (io *IO) Destroy() {
	if io.oldState == nil {
		return
	}
	tm.MoveCursor(1, Rows+3)
	tm.Print(showCursor)
	tm.Flush()

	if err := term.Restore(int(io.in.Fd()), io.oldState); err != nil {
		io.logger.Error("Restoring terminal failed", log.Err(err))
	}
	io.oldState = nil
}

// readInput forwards stdin bytes to the input channel until stdin fails.
func (io *IO) readInput() {
	buf := make([]byte, 16)
	for {
		n, err := io.in.Read(buf)
		if err != nil {
			close(io.input)
			return
		}
		for _, b := range buf[:n] {
			io.input <- b
		}
	}
}

// Loop is the main application loop. It returns nil once Esc or Ctrl-C was
// pressed and the VM error when execution cannot continue.
func (io *IO) Loop(ctx context.Context) error {
	prev := time.Now()
	io.draw()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		now := time.Now()
		if !io.pollInput(now) {
			return nil
		}
		io.vm.SetKeys(io.keypad.Snapshot(now))

		cycles, ticks := io.pacer.Advance(now.Sub(prev))
		prev = now

		redraw, err := io.vm.Run(cycles, ticks)
		if err != nil {
			io.draw()
			return err
		}
		// the status line follows the timers
		if redraw || ticks > 0 {
			io.draw()
		}

		time.Sleep(io.pacer.Interval())
	}
}

// pollInput drains pending input bytes into the keypad. It returns false
// once the user asked to quit.
func (io *IO) pollInput(now time.Time) bool {
	for {
		select {
		case b, ok := <-io.input:
			if !ok {
				return false
			}
			switch b {
			case keyCtrlC, keyEscape:
				return false
			}
			io.keypad.Press(rune(b), now)

		default:
			return true
		}
	}
}

func (io *IO) draw() {
	tm.MoveCursor(1, 1)
	tm.Print(Frame(io.vm.Display()))
	tm.Print(lineEnd, Status(io.vm))

	sounding := io.vm.SoundActive()
	if sounding && !io.sounding {
		tm.Print(bell)
	}
	io.sounding = sounding

	tm.Flush()
}
