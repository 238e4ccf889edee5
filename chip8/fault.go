package chip8

import (
	"github.com/nf/c8/internal/translate"
)

var f = translate.From

// FaultKind signifies the type of condition that halted execution.
type FaultKind byte

const (
	StackOverflow FaultKind = iota + 1
	StackUnderflow
	OutOfBoundsMemoryAccess
	UnknownOpcode
	InvalidImageSize
)

func (k FaultKind) String() string {
	switch k {
	case StackOverflow:
		return f("stack overflow")
	case StackUnderflow:
		return f("stack underflow")
	case OutOfBoundsMemoryAccess:
		return f("out of bounds memory access")
	case UnknownOpcode:
		return f("unknown opcode")
	case InvalidImageSize:
		return f("invalid image size")
	}
	return f("unknown fault (%.2x)", byte(k))
}

func (k FaultKind) Error() string { return k.String() }

// Fault is returned by Step when execution halts. It matches its Kind
// under errors.Is.
type Fault struct {
	Kind    FaultKind
	Op      Instruction
	Fetched bool   // Op was fetched; false if the fetch itself faulted
	Addr    uint16 // pc of the faulting instruction
	Ref     int    // memory address referenced, for OutOfBoundsMemoryAccess
}

func (e Fault) Error() string {
	if !e.Fetched {
		return f("%s (%.4x) fetching at %.4x", e.Kind, e.Ref, e.Addr)
	}
	if e.Kind == OutOfBoundsMemoryAccess {
		return f("%s (%.4x) executing %s at %.4x", e.Kind, e.Ref, e.Op, e.Addr)
	}
	return f("%s executing %s at %.4x", e.Kind, e.Op, e.Addr)
}

func (e Fault) Is(target error) bool {
	k, ok := target.(FaultKind)
	return ok && k == e.Kind
}

// memFault carries the offending address out of a bounds check panic.
type memFault int
