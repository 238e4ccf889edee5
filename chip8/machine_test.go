package chip8

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	assert := assert.New(t)

	m := New()
	assert.Equal(uint16(ProgramStart), m.PC)
	assert.Equal(Running, m.State())
	assert.NoError(m.Fault())
	assert.True(m.Stack.Empty())
	assert.Equal(Fontset[:], m.Mem[FontAddr:FontAddr+len(Fontset)])
	assert.True(m.Dirty())
}

func TestLoad(t *testing.T) {
	assert := assert.New(t)

	image := []byte{0x60, 0x05, 0x70, 0x03, 0xde, 0xad}
	m := New()
	assert.NoError(m.Load(image))

	assert.Equal(image, m.Mem[ProgramStart:ProgramStart+len(image)])
	for addr := range ProgramStart {
		want := byte(0)
		if off := addr - FontAddr; off >= 0 && off < len(Fontset) {
			want = Fontset[off]
		}
		if m.Mem[addr] != want {
			t.Fatalf("Mem[%.3x] == %.2x, want %.2x", addr, m.Mem[addr], want)
		}
	}
	for addr := ProgramStart + len(image); addr < MemSize; addr++ {
		if m.Mem[addr] != 0 {
			t.Fatalf("Mem[%.3x] == %.2x, want 0", addr, m.Mem[addr])
		}
	}
}

func TestLoadSize(t *testing.T) {
	for _, c := range []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"empty", 0, false},
		{"full", MaxImageSize, false},
		{"overflow", MaxImageSize + 1, true},
	} {
		t.Run(c.name, func(t *testing.T) {
			m := New()
			image := make([]byte, c.size)
			for i := range image {
				image[i] = 0xaa
			}
			err := m.Load(image)
			if !c.wantErr {
				assert.NoError(t, err)
				if c.size > 0 {
					assert.Equal(t, byte(0xaa), m.Mem[MemSize-1])
				}
				return
			}
			assert.ErrorIs(t, err, InvalidImageSize)
			assert.EqualError(t, err, "invalid image size: 3585 bytes exceeds the 3584 available")
			assert.Equal(t, byte(0), m.Mem[ProgramStart], "memory changed by failed load")
		})
	}
}

func TestStepProgram(t *testing.T) {
	assert := assert.New(t)

	m := New()
	require.NoError(t, m.Load([]byte{0x60, 0x05, 0x70, 0x03}))
	assert.NoError(m.Step())
	assert.NoError(m.Step())
	assert.Equal(byte(8), m.V[0])
	assert.Equal(uint16(0x204), m.PC)
}

func TestCallReturn(t *testing.T) {
	assert := assert.New(t)

	m := New()
	require.NoError(t, m.Load([]byte{0x23, 0x00}))
	m.Mem[0x300], m.Mem[0x301] = 0x00, 0xee

	assert.NoError(m.Step())
	assert.Equal(uint16(0x300), m.PC)
	assert.Equal(byte(1), m.Stack.Ptr)

	assert.NoError(m.Step())
	assert.Equal(uint16(0x202), m.PC)
	assert.True(m.Stack.Empty())
}

func TestReturnUnderflow(t *testing.T) {
	assert := assert.New(t)

	m := New()
	require.NoError(t, m.Load([]byte{0x00, 0xee}))

	err := m.Step()
	assert.ErrorIs(err, StackUnderflow)
	assert.Equal(uint16(ProgramStart), m.PC)
	assert.Equal(Halted, m.State())

	var fault Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(RET, fault.Op.Op)
	assert.True(fault.Fetched)
	assert.Equal("stack underflow executing RET at 0200", err.Error())
	assert.Equal(uint16(ProgramStart), fault.Addr)
}

func TestHalted(t *testing.T) {
	assert := assert.New(t)

	m := New()
	require.NoError(t, m.Load([]byte{0x01, 0x23, 0x60, 0x01}))

	first := m.Step()
	assert.ErrorIs(first, UnknownOpcode)
	for range 3 {
		assert.Equal(first, m.Step())
	}
	assert.Equal(uint16(ProgramStart), m.PC)
	assert.Equal(byte(0), m.V[0])

	m.Reset()
	require.NoError(t, m.Load([]byte{0x60, 0x01}))
	assert.Equal(Running, m.State())
	assert.NoError(m.Fault())
	assert.NoError(m.Step())
	assert.Equal(byte(1), m.V[0])
}

func TestFetchOutOfBounds(t *testing.T) {
	assert := assert.New(t)

	m := New()
	m.PC = 0xfff
	err := m.Step()
	assert.ErrorIs(err, OutOfBoundsMemoryAccess)

	var fault Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(MemSize, fault.Ref)
	assert.Equal(uint16(0xfff), fault.Addr)
	assert.False(fault.Fetched)
	assert.Equal("out of bounds memory access (1000) fetching at 0fff", err.Error())
	assert.NotContains(err.Error(), "executing")
}

func TestAwaitKey(t *testing.T) {
	assert := assert.New(t)

	m := New()
	require.NoError(t, m.Load([]byte{0xf3, 0x0a, 0x64, 0x01}))
	m.Keys.Set(9, true)

	assert.NoError(m.Step())
	assert.Equal(AwaitingKey, m.State())
	assert.Equal(uint16(ProgramStart), m.PC)

	m.Keys.Release()
	m.DT = 2
	for range 3 {
		assert.NoError(m.Step())
		m.TickTimers()
	}
	assert.Equal(AwaitingKey, m.State())
	assert.Equal(uint16(ProgramStart), m.PC)
	assert.Equal(byte(0), m.V[4], "instruction after the wait executed")
	assert.Equal(byte(0), m.DT, "timers run while waiting")

	m.Keys.Set(0xc, true)
	m.Keys.Set(0x7, true)
	assert.NoError(m.Step())
	assert.Equal(Running, m.State())
	assert.Equal(byte(0x7), m.V[3])
	assert.Equal(uint16(0x202), m.PC)
	assert.Equal(byte(0), m.V[4])

	assert.NoError(m.Step())
	assert.Equal(byte(1), m.V[4])
}

func TestAwaitKeyReset(t *testing.T) {
	m := New()
	require.NoError(t, m.Load([]byte{0xf0, 0x0a}))
	require.NoError(t, m.Step())
	require.Equal(t, AwaitingKey, m.State())

	m.Reset()
	assert.Equal(t, Running, m.State())
}

func TestTimers(t *testing.T) {
	assert := assert.New(t)

	m := New()
	m.DT, m.ST = 2, 1
	assert.True(m.Tone())

	m.TickTimers()
	dt, st := m.Timers()
	assert.Equal(byte(1), dt)
	assert.Equal(byte(0), st)
	assert.False(m.Tone())

	m.TickTimers()
	m.TickTimers()
	assert.Equal(byte(0), m.DT)
	assert.Equal(byte(0), m.ST)
}

func TestTimersNotSteppedByExecution(t *testing.T) {
	m := New()
	require.NoError(t, m.Load([]byte{0x60, 0x05, 0xf0, 0x15, 0xf0, 0x18, 0x70, 0x01, 0x70, 0x01}))
	for range 5 {
		require.NoError(t, m.Step())
	}
	assert.Equal(t, byte(5), m.DT)
	assert.Equal(t, byte(5), m.ST)
}

func TestDrawTwice(t *testing.T) {
	assert := assert.New(t)

	m := New()
	// LD I, $300; LD V0, $3C; LD V1, $1E; DRW V0, V1, $2; DRW V0, V1, $2
	require.NoError(t, m.Load([]byte{
		0xa3, 0x00,
		0x60, 0x3c,
		0x61, 0x1e,
		0xd0, 0x12,
		0xd0, 0x12,
	}))
	m.Mem[0x300], m.Mem[0x301] = 0xa5, 0x5a

	for range 3 {
		require.NoError(t, m.Step())
	}
	m.ClearDirty()

	require.NoError(t, m.Step())
	assert.True(m.Dirty())
	assert.Equal(byte(0), m.V[0xf])
	first := m.ReadDisplay()
	assert.False(first.Empty())
	assert.True(first.Pixel(0x3c, 0x1e))
	assert.True(first.Pixel(0x3c+1, 0x1f))
	assert.True(first.Pixel(0x3c+7, 0x1e))
	assert.True(first.Pixel(0x3c+4, 0x1f), "wraps horizontally")
	assert.False(first.Pixel(0x3c, 0x1f))

	require.NoError(t, m.Step())
	assert.Equal(byte(1), m.V[0xf])
	second := m.ReadDisplay()
	assert.True(second.Empty())
}

func TestReadDisplayIsCopy(t *testing.T) {
	m := New()
	require.NoError(t, m.Load([]byte{0xd0, 0x05}))
	m.I = FontAddr

	before := m.ReadDisplay()
	require.NoError(t, m.Step())
	assert.True(t, before.Empty())
	assert.False(t, m.ReadDisplay().Empty())
}

func TestClearScreen(t *testing.T) {
	m := New()
	require.NoError(t, m.Load([]byte{0x00, 0xe0}))
	for i := range m.display {
		m.display[i] = 0x5555_5555_5555_5555
	}
	m.ClearDirty()
	require.NoError(t, m.Step())
	assert.True(t, m.ReadDisplay().Empty())
	assert.True(t, m.Dirty())
}

func TestLogf(t *testing.T) {
	var lines []string
	m := New()
	m.Logf = func(format string, args ...any) {
		lines = append(lines, format)
	}
	require.NoError(t, m.Load([]byte{0x60, 0x05}))
	require.NoError(t, m.Step())
	assert.Len(t, lines, 1)
}

func TestCurrent(t *testing.T) {
	m := New()
	require.NoError(t, m.Load([]byte{0xa2, 0x34}))

	in, ok := m.Current()
	assert.True(t, ok)
	assert.Equal(t, "LD I, $234", in.String())

	m.PC = 0xfff
	_, ok = m.Current()
	assert.False(t, ok)
}
