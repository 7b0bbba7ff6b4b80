package interpreter

import (
	"fmt"

	"teenyjvm/pkg/opcode"
)

// Error records where in the bytecode a run failed.
type Error struct {
	Method string        // name and descriptor
	PC     int           // offset of the failing instruction
	Opcode opcode.Opcode // opcode at PC, zero when PC was out of range
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s pc=%d %s: %v", e.Method, e.PC, e.Opcode, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
