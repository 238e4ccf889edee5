package host

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nf/c8/chip8"
)

func newTestTerminal(t *testing.T) (*terminal, tcell.SimulationScreen) {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	t.Cleanup(s.Fini)
	s.SetSize(chip8.Width, chip8.Height/2+1)
	return &terminal{
		screen: s,
		keys:   new(chip8.Keypad),
		held:   make(map[byte]time.Time),
	}, s
}

func TestTerminalDraw(t *testing.T) {
	term, s := newTestTerminal(t)
	term.draw(testFrame())

	cells, w, _ := s.GetContents()
	cell := func(x, y int) rune { return cells[y*w+x].Runes[0] }
	assert.Equal(t, '█', cell(0, 0))
	assert.Equal(t, '▄', cell(1, 0))
	assert.Equal(t, ' ', cell(2, 0))
	assert.Equal(t, '▄', cell(63, 15))
}

func TestTerminalKeys(t *testing.T) {
	assert := assert.New(t)

	term, _ := newTestTerminal(t)
	now := time.Now()

	assert.False(term.key(tcell.NewEventKey(tcell.KeyRune, 'w', tcell.ModNone), now))
	assert.False(term.key(tcell.NewEventKey(tcell.KeyRune, 'P', tcell.ModNone), now))
	assert.True(term.keys.Get(0x5))

	term.release(now.Add(tapDuration / 2))
	assert.True(term.keys.Get(0x5))

	// A repeat keeps the key down.
	term.key(tcell.NewEventKey(tcell.KeyRune, 'w', tcell.ModNone), now.Add(tapDuration/2))
	term.release(now.Add(tapDuration))
	assert.True(term.keys.Get(0x5))

	term.release(now.Add(2 * tapDuration))
	assert.False(term.keys.Get(0x5))
	assert.Empty(term.held)

	assert.True(term.key(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), now))
	assert.True(term.key(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModNone), now))
}

func TestTerminalRun(t *testing.T) {
	term, s := newTestTerminal(t)
	frames := make(chan Frame, 1)
	done := make(chan struct{})
	errc := make(chan error)
	go func() { errc <- term.run(frames, done) }()

	frames <- Frame{Display: testFrame()}
	s.InjectKey(tcell.KeyRune, 'z', tcell.ModNone)
	assert.Eventually(t, func() bool { return term.keys.Get(0xa) }, time.Second, time.Millisecond)

	s.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after escape")
	}
	close(done)
}
