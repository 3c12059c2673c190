package term

import (
	"fmt"
	"strings"

	"github.com/mnafees/chopper/v2/internal"
	"github.com/mnafees/chopper/v2/internal/disasm"
)

// Rows is the number of terminal lines used for the framebuffer, every
// line shows two pixel rows.
const Rows = internal.ScreenHeight / 2

const lineEnd = "\r\n"

// Frame renders the framebuffer as Rows lines of half block characters.
// Lines end in "\r\n" since the terminal runs in raw mode.
func Frame(d internal.Display) string {
	var sb strings.Builder
	sb.Grow(Rows * (internal.ScreenWidth*3 + len(lineEnd)))

	for y := 0; y < internal.ScreenHeight; y += 2 {
		for x := 0; x < internal.ScreenWidth; x++ {
			sb.WriteRune(halfBlock(d[x][y], d[x][y+1]))
		}
		sb.WriteString(lineEnd)
	}
	return sb.String()
}

func halfBlock(upper, lower bool) rune {
	switch {
	case upper && lower:
		return '█'
	case upper:
		return '▀'
	case lower:
		return '▄'
	default:
		return ' '
	}
}

// Status renders a one line register summary with the instruction at PC.
func Status(vm *internal.C8VM) string {
	state := vm.State()
	mem := vm.Memory()

	next := "-"
	hi, errHi := mem.Read(int(state.PC))
	lo, errLo := mem.Read(int(state.PC) + 1)
	if errHi == nil && errLo == nil {
		next = disasm.Instruction(uint16(hi)<<8 | uint16(lo))
	}

	sound := ""
	if vm.SoundActive() {
		sound = " ♪"
	}
	return fmt.Sprintf("PC %03X  I %03X  DT %02X  ST %02X  %-12s %-16s%s",
		state.PC, state.I, state.DelayTimer, state.SoundTimer, state.Mode, next, sound)
}
