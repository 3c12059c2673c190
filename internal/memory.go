package internal

import "fmt"

// Memory layout constants
const (
	totalMemory    = 0x1000
	fontStartAddr  = 0x50
	pcStartAddr    = 0x200
	maxProgramSize = totalMemory - pcStartAddr

	glyphSize = 5
)

// Memory is the flat 4 KB address space of the VM
type Memory [totalMemory]uint8

var fontset = []uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Read returns the byte stored at addr
func (m *Memory) Read(addr int) (uint8, error) {
	if addr < 0 || addr >= totalMemory {
		return 0, fmt.Errorf("%w: read at %#04x", ErrAddressOutOfRange, addr)
	}
	return m[addr], nil
}

// Write stores v at addr
func (m *Memory) Write(addr int, v uint8) error {
	if addr < 0 || addr >= totalMemory {
		return fmt.Errorf("%w: write at %#04x", ErrAddressOutOfRange, addr)
	}
	m[addr] = v
	return nil
}

func (m *Memory) loadFont() {
	copy(m[fontStartAddr:], fontset)
}
