// Package chip8 provides an implementation of the CHIP-8 virtual machine,
// called Machine, that can be used to execute CHIP-8 program images.
//
// The machine executes one instruction per call to Step. Timers are
// decremented separately by TickTimers, which the host calls at 60 Hz.
// The keypad is the only state the host may touch while the machine runs;
// everything else is read through snapshots between steps.
package chip8

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// Memory layout.
const (
	MemSize      = 0x1000
	ProgramStart = 0x200
	MaxImageSize = MemSize - ProgramStart
)

// State is the execution state of a Machine.
type State byte

const (
	Running     State = iota
	AwaitingKey       // blocked in LD Vx, K until a key is pressed
	Halted            // stopped by a fault until Reset
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case AwaitingKey:
		return "awaiting key"
	case Halted:
		return "halted"
	}
	return fmt.Sprintf("State(%d)", byte(s))
}

// Quirks selects behaviours that differ between CHIP-8 interpreters.
// The zero value gives the canonical behaviour.
type Quirks struct {
	IndexOverflow     bool // ADD I, Vx sets VF when I overflows 12 bits
	ShiftUsesVY       bool // SHR and SHL shift Vy into Vx
	LogicResetsVF     bool // OR, AND and XOR clear VF
	MemoryIncrementsI bool // LD [I], Vx and LD Vx, [I] advance I past the registers
}

// Machine is an implementation of the CHIP-8 virtual machine.
type Machine struct {
	Mem   [MemSize]byte
	V     [16]byte
	I     uint16
	PC    uint16
	Stack Stack
	DT    byte // delay timer
	ST    byte // sound timer

	Keys   *Keypad
	Quirks Quirks

	// Rand returns the random bytes used by RND.
	Rand func() byte
	// Logf, if not Nopf, receives a trace line for each instruction.
	Logf func(format string, args ...any)

	display Frame
	dirty   bool
	state   State
	waitReg byte
	fault   error
}

// Nopf is a Logf that discards its input.
func Nopf(string, ...any) {}

func randByte() byte { return byte(rand.Uint32()) }

// New returns a machine in its power-on state with its own keypad.
func New() *Machine {
	m := &Machine{
		Keys: new(Keypad),
		Rand: randByte,
		Logf: Nopf,
	}
	m.Reset()
	return m
}

// Reset puts the machine in its power-on state: memory is cleared except
// for the fontset, all registers, timers, the stack and the display are
// zeroed, and PC is set to ProgramStart. A pending fault or key wait is
// abandoned. Keys, Quirks, Rand and Logf are left alone.
func (m *Machine) Reset() {
	clear(m.Mem[:])
	copy(m.Mem[FontAddr:], Fontset[:])
	clear(m.V[:])
	m.I = 0
	m.PC = ProgramStart
	m.Stack.Reset()
	m.DT, m.ST = 0, 0
	m.display = Frame{}
	m.dirty = true
	m.state = Running
	m.waitReg = 0
	m.fault = nil
}

// ImageSizeError is returned by Load for images that do not fit in memory.
type ImageSizeError int

func (e ImageSizeError) Error() string {
	return f("%s: %s bytes exceeds the %s available",
		InvalidImageSize, strconv.Itoa(int(e)), strconv.Itoa(MaxImageSize))
}

func (e ImageSizeError) Unwrap() error { return InvalidImageSize }

// Load copies image into memory at ProgramStart.
func (m *Machine) Load(image []byte) error {
	if len(image) > MaxImageSize {
		return ImageSizeError(len(image))
	}
	copy(m.Mem[ProgramStart:], image)
	return nil
}

// Step executes the instruction at PC. If the machine is awaiting a key,
// Step instead completes the wait when a key is pressed and otherwise does
// nothing. It returns a Fault if the instruction cannot be executed; the
// machine is then halted and further calls return the same fault.
func (m *Machine) Step() (err error) {
	switch m.state {
	case Halted:
		return m.fault
	case AwaitingKey:
		key, ok := m.Keys.Pressed()
		if !ok {
			return nil
		}
		m.V[m.waitReg] = key
		m.PC += 2
		m.state = Running
		return nil
	}

	var (
		pc      = m.PC
		in      Instruction
		fetched bool
	)
	defer func() {
		if e := recover(); e != nil {
			fault := Fault{Op: in, Fetched: fetched, Addr: pc}
			switch e := e.(type) {
			case FaultKind:
				fault.Kind = e
			case memFault:
				fault.Kind = OutOfBoundsMemoryAccess
				fault.Ref = int(e)
			default:
				panic(e)
			}
			m.state = Halted
			m.fault = fault
			err = fault
		}
	}()

	b := m.span(pc, 2)
	in = Decode(uint16(b[0])<<8 | uint16(b[1]))
	fetched = true
	m.Logf("%.3x: %.4x %v", pc, in.Word, in)
	m.exec(in)
	return nil
}

// span returns n bytes of memory at addr, panicking with a memFault if any
// of them lie outside memory.
func (m *Machine) span(addr uint16, n int) []byte {
	if end := int(addr) + n; end > MemSize {
		panic(memFault(end - 1))
	}
	return m.Mem[addr : int(addr)+n]
}

// TickTimers decrements the delay and sound timers if they are non-zero.
func (m *Machine) TickTimers() {
	if m.DT > 0 {
		m.DT--
	}
	if m.ST > 0 {
		m.ST--
	}
}

// Timers returns the delay and sound timer values.
func (m *Machine) Timers() (dt, st byte) { return m.DT, m.ST }

// Tone reports whether the sound timer is running.
func (m *Machine) Tone() bool { return m.ST > 0 }

// State returns the execution state.
func (m *Machine) State() State { return m.state }

// Fault returns the fault that halted the machine, or nil.
func (m *Machine) Fault() error { return m.fault }

// Dirty reports whether the display has changed since the last ClearDirty.
func (m *Machine) Dirty() bool { return m.dirty }

// ClearDirty marks the display as presented.
func (m *Machine) ClearDirty() { m.dirty = false }

// ReadDisplay returns a copy of the display.
func (m *Machine) ReadDisplay() Frame { return m.display }

// Current returns the instruction at PC, if PC is inside memory.
func (m *Machine) Current() (Instruction, bool) {
	if int(m.PC)+2 > MemSize {
		return Instruction{}, false
	}
	return Decode(uint16(m.Mem[m.PC])<<8 | uint16(m.Mem[m.PC+1])), true
}

// String returns the register state as text.
func (m *Machine) String() string {
	var b strings.Builder
	for i, v := range m.V {
		fmt.Fprintf(&b, "V%X=%.2x ", i, v)
		if i == 7 {
			b.WriteByte('\n')
		}
	}
	fmt.Fprintf(&b, "\npc=%.3x I=%.3x DT=%.2x ST=%.2x %v\nstack: %v",
		m.PC, m.I, m.DT, m.ST, m.state, m.Stack)
	return b.String()
}
