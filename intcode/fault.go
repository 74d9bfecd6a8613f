package intcode

import (
	"errors"
	"fmt"
)

// ErrHalt is returned by Exec when the instruction at PC is Halt.
var ErrHalt = errors.New("halt")

// Fault signifies the kind of condition that aborted execution.
// A Fault is an error so that callers may test for it with errors.Is.
type Fault byte

const (
	InvalidEncoding  Fault = 0x01
	UnknownOpcode    Fault = 0x02
	OutOfBounds      Fault = 0x03
	IllegalWriteMode Fault = 0x04
)

func (f Fault) String() string {
	if s, ok := map[Fault]string{
		InvalidEncoding:  "invalid encoding",
		UnknownOpcode:    "unknown opcode",
		OutOfBounds:      "address out of bounds",
		IllegalWriteMode: "immediate mode write target",
	}[f]; ok {
		return s
	}
	return fmt.Sprintf("unknown fault (%.2x)", byte(f))
}

func (f Fault) Error() string { return f.String() }

// FaultError is returned by Exec when the program cannot continue.
// Mem is a copy of memory at the time of the fault.
type FaultError struct {
	Fault
	Op   Op
	Word int // raw instruction word at PC
	PC   int
	Addr int // offending address, for OutOfBounds
	Mem  []int
}

func (e FaultError) Error() string {
	switch e.Fault {
	case OutOfBounds:
		return fmt.Sprintf("%s (%d) executing %s at %d", e.Fault, e.Addr, e.Op, e.PC)
	case InvalidEncoding, UnknownOpcode:
		return fmt.Sprintf("%s: word %d at %d", e.Fault, e.Word, e.PC)
	}
	return fmt.Sprintf("%s executing %s at %d", e.Fault, e.Op, e.PC)
}

func (e FaultError) Unwrap() error { return e.Fault }

// fault is the value panicked by the executor's memory accessors
// and recovered by Exec.
type fault struct {
	Fault
	addr int
}

// ParseError reports a token in program text that is not a decimal integer.
type ParseError struct {
	Index int // position of the token in the program
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing program: token %d %q: %v", e.Index, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
