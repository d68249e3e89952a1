package chip8

import (
	"errors"
	"fmt"
)

// Errors returned by the interpreter. None of them are fatal to the host,
// the caller decides whether to halt, skip the instruction or report it.
var (
	ErrUnsupportedOpcode = errors.New("unsupported opcode")
	ErrStackOverflow     = errors.New("stack overflow")
	ErrStackUnderflow    = errors.New("stack underflow")
	ErrAddressOutOfRange = errors.New("address out of range")
	ErrRomTooLarge       = errors.New("rom too large")
)

// UnsupportedOpcodeError describes an instruction word that matched no decode rule.
type UnsupportedOpcodeError struct {
	Word uint16
	PC   uint16
}

func (e *UnsupportedOpcodeError) Error() string {
	return fmt.Sprintf("unsupported opcode $%04X at $%03X", e.Word, e.PC)
}

// Is reports whether target is ErrUnsupportedOpcode.
func (e *UnsupportedOpcodeError) Is(target error) bool {
	return target == ErrUnsupportedOpcode
}

func addressError(address int) error {
	return fmt.Errorf("%w: $%04X", ErrAddressOutOfRange, address)
}
