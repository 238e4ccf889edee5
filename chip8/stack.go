package chip8

import (
	"fmt"
	"strings"
)

// StackLimit is the maximum call depth.
const StackLimit = 16

// Stack holds the return addresses of active subroutine calls.
type Stack struct {
	Addrs [StackLimit]uint16
	Ptr   byte
}

// Push pushes addr, panicking with StackOverflow if the stack is full.
func (s *Stack) Push(addr uint16) {
	if s.Full() {
		panic(StackOverflow)
	}
	s.Addrs[s.Ptr] = addr
	s.Ptr++
}

// Pop pops the most recent address, panicking with StackUnderflow if the
// stack is empty.
func (s *Stack) Pop() uint16 {
	if s.Empty() {
		panic(StackUnderflow)
	}
	s.Ptr--
	addr := s.Addrs[s.Ptr]
	s.Addrs[s.Ptr] = 0
	return addr
}

// Peek returns the most recent address without removing it.
func (s *Stack) Peek() (uint16, bool) {
	if s.Empty() {
		return 0, false
	}
	return s.Addrs[s.Ptr-1], true
}

func (s *Stack) Empty() bool { return s.Ptr == 0 }
func (s *Stack) Full() bool  { return s.Ptr == StackLimit }

// Reset empties the stack.
func (s *Stack) Reset() {
	*s = Stack{}
}

func (s Stack) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, v := range s.Addrs[:s.Ptr] {
		b.WriteByte(' ')
		fmt.Fprintf(&b, "%.3x", v)
	}
	b.WriteByte(' ')
	b.WriteByte(')')
	return b.String()
}
