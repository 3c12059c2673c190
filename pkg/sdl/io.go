package sdl

import (
	"context"
	"fmt"
	"time"

	"github.com/mnafees/chopper/v2/internal"
	"github.com/mnafees/chopper/v2/internal/clock"
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	screenColor = 0x1A237E
	spriteColor = 0x9FA8DA
)

// IO is the input/output abstraction layer for the VM
type IO struct {
	window  *sdl.Window
	surface *sdl.Surface

	vm     *internal.C8VM
	pacer  *clock.Pacer
	logger *log.Logger

	pixelSize int32
	keys      internal.Keys
}

// NewIO returns a new I/O instance for the SDL frontend
func NewIO(vm *internal.C8VM, pacer *clock.Pacer, logger *log.Logger, pixelSize int) *IO {
	return &IO{
		vm:        vm,
		pacer:     pacer,
		logger:    logger,
		pixelSize: int32(pixelSize),
	}
}

// SetupWindow initialises and sets up the main SDL window
func (io *IO) SetupWindow(title string) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("initialising SDL: %w", err)
	}

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		internal.ScreenWidth*io.pixelSize, internal.ScreenHeight*io.pixelSize, sdl.WINDOW_SHOWN)
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	io.window = window
	io.surface, err = window.GetSurface()
	if err != nil {
		return fmt.Errorf("getting window surface: %w", err)
	}
	return io.draw()
}

// Destroy should be called before quitting the application
func (io *IO) Destroy() {
	if io.window != nil {
		io.window.Destroy()
	}
	sdl.Quit()
}

// Loop is the main application loop. It returns nil when the window is
// closed and the VM error when execution cannot continue.
func (io *IO) Loop(ctx context.Context) error {
	io.logger.Info("Starting SDL frontend", log.Int("scale", int(io.pixelSize)))

	prev := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !io.pollEvents() {
			return nil
		}
		// the whole snapshot is published before any instruction runs
		io.vm.SetKeys(io.keys)

		now := time.Now()
		cycles, ticks := io.pacer.Advance(now.Sub(prev))
		prev = now

		redraw, err := io.vm.Run(cycles, ticks)
		if err != nil {
			return err
		}
		if redraw {
			if err := io.draw(); err != nil {
				return err
			}
		}

		sdl.Delay(uint32(io.pacer.Interval() / time.Millisecond))
	}
}

// pollEvents drains the SDL event queue into the key snapshot. It returns
// false once the user asked to quit.
func (io *IO) pollEvents() bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch t := event.(type) {
		case *sdl.KeyboardEvent:
			scancode := t.Keysym.Scancode
			if scancode == sdl.SCANCODE_ESCAPE {
				return false
			}
			code := keymap(scancode)
			if code == -1 {
				continue
			}
			switch t.GetType() {
			case sdl.KEYDOWN:
				io.keys[code] = true
			case sdl.KEYUP:
				io.keys[code] = false
			}
		case *sdl.QuitEvent:
			return false
		}
	}
	return true
}

// Draws the current framebuffer on screen
func (io *IO) draw() error {
	if err := io.surface.FillRect(nil, screenColor); err != nil {
		return err
	}
	pixels := io.vm.Display()
	for w := int32(0); w < internal.ScreenWidth; w++ {
		for h := int32(0); h < internal.ScreenHeight; h++ {
			if pixels[w][h] {
				rect := &sdl.Rect{X: w * io.pixelSize, Y: h * io.pixelSize, W: io.pixelSize, H: io.pixelSize}
				if err := io.surface.FillRect(rect, spriteColor); err != nil {
					return err
				}
			}
		}
	}
	return io.window.UpdateSurface()
}

// Maps keys from a QWERTY keyboard to the keypad used by CHIP-8
// Below we have a mapping QWERTY keyboard to the CHIP-8 keypad
// +--------+--------+--------+--------+
// | 1 -> 1 | 2 -> 2 | 3 -> 3 | 4 -> C |
// +--------+--------+--------+--------+
// | Q -> 4 | W -> 5 | E -> 6 | R -> D |
// +--------+--------+--------+--------+
// | A -> 7 | S -> 8 | D -> 9 | F -> E |
// +--------+--------+--------+--------+
// | Z -> A | X -> 0 | C -> B | V -> F |
// +--------+--------+--------+--------+
func keymap(code sdl.Scancode) int8 {
	switch code {
	case sdl.SCANCODE_1:
		return 0x1
	case sdl.SCANCODE_2:
		return 0x2
	case sdl.SCANCODE_3:
		return 0x3
	case sdl.SCANCODE_4:
		return 0xC
	case sdl.SCANCODE_Q:
		return 0x4
	case sdl.SCANCODE_W:
		return 0x5
	case sdl.SCANCODE_E:
		return 0x6
	case sdl.SCANCODE_R:
		return 0xD
	case sdl.SCANCODE_A:
		return 0x7
	case sdl.SCANCODE_S:
		return 0x8
	case sdl.SCANCODE_D:
		return 0x9
	case sdl.SCANCODE_F:
		return 0xE
	case sdl.SCANCODE_Z:
		return 0xA
	case sdl.SCANCODE_X:
		return 0x0
	case sdl.SCANCODE_C:
		return 0xB
	case sdl.SCANCODE_V:
		return 0xF
	default:
		return -1
	}
}
