package host

import (
	"bytes"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/nf/c8/chip8"
)

var (
	pixelStyle  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorDarkGrey)
)

func (r *Runner) runTerminal() error {
	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}

	// Log lines would corrupt the screen; hold them until it is closed.
	var logBuf bytes.Buffer
	logOut := log.Writer()
	log.SetOutput(&logBuf)
	defer func() {
		s.Fini()
		log.SetOutput(logOut)
		logOut.Write(logBuf.Bytes())
	}()

	t := &terminal{
		screen: s,
		keys:   r.keys,
		held:   make(map[byte]time.Time),
	}
	return t.run(r.frames, r.done)
}

type terminal struct {
	screen tcell.Screen
	keys   *chip8.Keypad
	held   map[byte]time.Time // keys pressed and the time of the last press
	tone   bool
}

func (t *terminal) run(frames <-chan Frame, done <-chan struct{}) error {
	events := make(chan tcell.Event)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	tick := time.NewTicker(time.Second / TickRate)
	defer tick.Stop()
	t.draw(chip8.Frame{})
	for {
		select {
		case <-done:
			return nil
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if t.key(ev, time.Now()) {
					return nil
				}
			case *tcell.EventResize:
				t.screen.Sync()
			}
		case fr := <-frames:
			t.draw(fr.Display)
			if fr.Tone && !t.tone {
				t.screen.Beep()
			}
			t.tone = fr.Tone
		case now := <-tick.C:
			t.release(now)
		}
	}
}

// key handles a key event and reports whether the user asked to quit.
func (t *terminal) key(ev *tcell.EventKey, now time.Time) (quit bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		if k, ok := KeyForRune(ev.Rune()); ok {
			t.keys.Set(k, true)
			t.held[k] = now
		}
	}
	return false
}

// release lets go of keys that have not repeated recently.
// Terminals report presses only.
func (t *terminal) release(now time.Time) {
	for k, at := range t.held {
		if now.Sub(at) >= tapDuration {
			t.keys.Set(k, false)
			delete(t.held, k)
		}
	}
}

func (t *terminal) draw(fr chip8.Frame) {
	for y := 0; y < chip8.Height; y += 2 {
		for x := range chip8.Width {
			t.screen.SetContent(x, y/2, halfBlock(fr.Pixel(x, y), fr.Pixel(x, y+1)), nil, pixelStyle)
		}
	}
	for x, r := range []rune(" c8 · esc to quit ") {
		t.screen.SetContent(x, chip8.Height/2, r, nil, statusStyle)
	}
	t.screen.Show()
}
