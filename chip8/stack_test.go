package chip8

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStack_PushPop(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	assert.True(s.Empty())
	assert.False(s.Full())

	s.Push(0x234)
	s.Push(0x456)
	assert.Equal(byte(2), s.Ptr)

	addr, ok := s.Peek()
	assert.True(ok)
	assert.Equal(uint16(0x456), addr)

	assert.Equal(uint16(0x456), s.Pop())
	assert.Equal(uint16(0x234), s.Pop())
	assert.True(s.Empty())
}

func TestStack_Peek_Empty(t *testing.T) {
	s := &Stack{}
	addr, ok := s.Peek()
	assert.False(t, ok)
	assert.Equal(t, uint16(0), addr)
}

func TestStack_Capacity(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	for i := range StackLimit {
		assert.False(s.Full())
		s.Push(uint16(i))
	}
	assert.True(s.Full())
	assert.PanicsWithValue(StackOverflow, func() { s.Push(0xfff) })
	assert.Equal(byte(StackLimit), s.Ptr)
}

func TestStack_Underflow(t *testing.T) {
	s := &Stack{}
	assert.PanicsWithValue(t, StackUnderflow, func() { s.Pop() })
}

func TestStack_Reset(t *testing.T) {
	s := &Stack{}
	s.Push(0x300)
	s.Reset()
	assert.True(t, s.Empty())
	assert.Equal(t, Stack{}, *s)
}

func TestStack_String(t *testing.T) {
	s := &Stack{}
	s.Push(0x200)
	s.Push(0x3a4)
	assert.Equal(t, "( 200 3a4 )", s.String())
}
