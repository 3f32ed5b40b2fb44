package chip8

import (
	"errors"
	"fmt"
)

// Fault kinds, matched with errors.Is.
var (
	ErrUnsupportedOpcode = errors.New("unsupported opcode")
	ErrStackOverflow     = errors.New("stack overflow")
	ErrStackUnderflow    = errors.New("stack underflow")
	ErrMemoryOutOfBounds = errors.New("memory out of bounds")
	ErrRomTooLarge       = errors.New("rom too large")
)

// Fault is returned by Step when an instruction cannot execute. The machine
// is left exactly as it was before the step.
type Fault struct {
	Err    error  // one of the Err* values
	PC     uint16 // address of the faulting instruction
	Opcode uint16
	Addr   uint16 // offending memory address for ErrMemoryOutOfBounds
}

func (f *Fault) Error() string {
	if errors.Is(f.Err, ErrMemoryOutOfBounds) {
		return fmt.Sprintf("%v: address %03X (opcode %04X at %03X)", f.Err, f.Addr, f.Opcode, f.PC)
	}
	return fmt.Sprintf("%v: opcode %04X at %03X", f.Err, f.Opcode, f.PC)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// Fatal reports whether the fault leaves the program unable to continue.
// Only unsupported opcodes can be stepped over.
func (f *Fault) Fatal() bool {
	return !errors.Is(f.Err, ErrUnsupportedOpcode)
}
