// Package disasm renders CHIP-8 instruction words as assembly text. The
// mnemonic comes from the retrogolib CHIP-8 opcode table; operands are
// formatted from the instruction fields.
package disasm

import (
	"fmt"
	"strings"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Lookup returns the opcode table entry matching word
func Lookup(word uint16) (chip8.Opcode, bool) {
	for _, op := range chip8.Opcodes[int(word>>12)] {
		if op.Instruction != nil && word&op.Info.Mask == op.Info.Value {
			return op, true
		}
	}
	return chip8.Opcode{}, false
}

// Mnemonic returns the upper case instruction name of word, or an empty
// string when the word does not decode.
func Mnemonic(word uint16) string {
	op, ok := Lookup(word)
	if !ok {
		return ""
	}
	return strings.ToUpper(op.Instruction.Name)
}

// Instruction returns word as an assembly line such as "DRW V1, V2, 5".
// Words that do not decode are rendered as a data word.
func Instruction(word uint16) string {
	name := Mnemonic(word)
	if name == "" {
		return fmt.Sprintf("DW 0x%04X", word)
	}
	if ops := operands(word); ops != "" {
		return name + " " + ops
	}
	return name
}

func operands(word uint16) string {
	x := (word >> 8) & 0xF
	y := (word >> 4) & 0xF
	n := word & 0xF
	kk := word & 0xFF
	nnn := word & 0xFFF

	switch word & 0xF000 {
	case 0x0000:
		if word == 0x00E0 || word == 0x00EE {
			return ""
		}
		return fmt.Sprintf("0x%03X", nnn)
	case 0x1000, 0x2000:
		return fmt.Sprintf("0x%03X", nnn)
	case 0x3000, 0x4000, 0x6000, 0x7000, 0xC000:
		return fmt.Sprintf("V%X, 0x%02X", x, kk)
	case 0x5000, 0x8000, 0x9000:
		if word&0xF00F == 0x8006 || word&0xF00F == 0x800E {
			return fmt.Sprintf("V%X {, V%X}", x, y)
		}
		return fmt.Sprintf("V%X, V%X", x, y)
	case 0xA000:
		return fmt.Sprintf("I, 0x%03X", nnn)
	case 0xB000:
		return fmt.Sprintf("V0, 0x%03X", nnn)
	case 0xD000:
		return fmt.Sprintf("V%X, V%X, %d", x, y, n)
	case 0xE000:
		return fmt.Sprintf("V%X", x)
	}

	switch kk {
	case 0x07:
		return fmt.Sprintf("V%X, DT", x)
	case 0x0A:
		return fmt.Sprintf("V%X, K", x)
	case 0x15:
		return fmt.Sprintf("DT, V%X", x)
	case 0x18:
		return fmt.Sprintf("ST, V%X", x)
	case 0x1E:
		return fmt.Sprintf("I, V%X", x)
	case 0x29:
		return fmt.Sprintf("F, V%X", x)
	case 0x33:
		return fmt.Sprintf("B, V%X", x)
	case 0x55:
		return fmt.Sprintf("[I], V%X", x)
	case 0x65:
		return fmt.Sprintf("V%X, [I]", x)
	}
	return ""
}
