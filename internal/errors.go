package internal

import (
	"errors"
	"fmt"

	"github.com/mnafees/chopper/v2/internal/disasm"
)

// Errors reported by the VM. Every error returned from Step wraps one of
// these inside an *ExecError.
var (
	ErrUnknownOpcode     = errors.New("unknown opcode")
	ErrIgnoredOpcode     = errors.New("ignored machine code routine")
	ErrStackUnderflow    = errors.New("stack underflow")
	ErrStackOverflow     = errors.New("stack overflow")
	ErrAddressOutOfRange = errors.New("address out of range")
	ErrInvalidKey        = errors.New("invalid key")
	ErrProgramTooLarge   = errors.New("program size exceeds the maximum size")
)

// ExecError describes a failed instruction cycle
type ExecError struct {
	PC     uint16 // address the instruction was fetched from
	Opcode uint16
	Err    error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%v at %#04x: %04X (%s)", e.Err, e.PC, e.Opcode, disasm.Instruction(e.Opcode))
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err must stop execution. Ignored opcodes are
// the only recoverable condition.
func IsFatal(err error) bool {
	return err != nil && !errors.Is(err, ErrIgnoredOpcode)
}
