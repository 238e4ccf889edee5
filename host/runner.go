// Package host runs a CHIP-8 machine in real time and connects it to a
// display and keyboard.
package host

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"go.starlark.net/starlark"

	"github.com/nf/c8/chip8"
	"github.com/nf/c8/internal/translate"
)

var f = translate.From

// DefaultHz is the default instruction rate.
const DefaultHz = 700

// TickRate is the rate of the timers and of frame publication.
const TickRate = 60

// Config selects the front-end and execution parameters of a Runner.
type Config struct {
	GUI      bool // shiny window
	Terminal bool // tcell screen, used when GUI is false
	Dev      bool // faults are reported and execution waits for Swap or Reset
	Trace    bool // log each instruction
	Hz       int  // instructions per second
	Quirks   chip8.Quirks
}

// StateKind describes the reason a StateFunc is called.
type StateKind int

const (
	ClearState StateKind = iota // execution resumed
	QuietState                  // periodic refresh
	BreakState                  // stopped at a breakpoint or condition
	PauseState                  // paused by the user or after a single step
	HaltState                   // stopped by a fault
)

func (k StateKind) String() string {
	switch k {
	case ClearState:
		return "clear"
	case QuietState:
		return "quiet"
	case BreakState:
		return "break"
	case PauseState:
		return "pause"
	case HaltState:
		return "halt"
	}
	return fmt.Sprintf("StateKind(%d)", int(k))
}

// StateFunc is called on the CPU goroutine to report machine state.
// The machine must not be retained after the call returns.
type StateFunc func(m *chip8.Machine, k StateKind)

// Runner executes a program at a fixed rate on its own goroutine.
type Runner struct {
	cfg   Config
	state StateFunc
	keys  *chip8.Keypad

	frames chan Frame
	cmds   chan func(*session)
	exit   chan struct{}
	done   chan struct{}
	once   sync.Once
	err    error
}

// NewRunner returns a runner with the given configuration.
// If sf is non-nil it receives state reports for a debugger.
func NewRunner(cfg Config, sf StateFunc) *Runner {
	if cfg.Hz <= 0 {
		cfg.Hz = DefaultHz
	}
	return &Runner{
		cfg:    cfg,
		state:  sf,
		keys:   new(chip8.Keypad),
		frames: make(chan Frame, 1),
		cmds:   make(chan func(*session)),
		exit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Keys returns the keypad shared by every machine the runner starts.
func (r *Runner) Keys() *chip8.Keypad { return r.keys }

// Frames returns the channel holding the most recent frame.
func (r *Runner) Frames() <-chan Frame { return r.frames }

// Done is closed when the CPU loop has stopped.
func (r *Runner) Done() <-chan struct{} { return r.done }

// Run loads rom into a new machine and executes it until the front-end
// exits, Exit is called, or, outside developer mode, the machine faults.
// The front-end runs on the calling goroutine.
func (r *Runner) Run(rom []byte) error {
	s, err := r.newSession(rom)
	if err != nil {
		return err
	}
	go r.cpu(s)

	switch {
	case r.cfg.GUI:
		err = r.runGUI()
	case r.cfg.Terminal:
		err = r.runTerminal()
	default:
		<-r.done
	}
	r.Exit()
	<-r.done

	if err != nil {
		return err
	}
	return r.err
}

// Exit stops the CPU loop and causes Run to return.
func (r *Runner) Exit() {
	r.once.Do(func() { close(r.exit) })
}

func (r *Runner) newSession(rom []byte) (*session, error) {
	m := chip8.New()
	m.Keys = r.keys
	m.Quirks = r.cfg.Quirks
	if err := m.Load(rom); err != nil {
		return nil, err
	}
	s := newSession(m, rom, r.cfg.Hz, r.state, r.frames)
	switch {
	case r.cfg.Trace:
		m.Logf = log.Printf
	case r.cfg.Dev:
		s.trace = new(backlog)
		m.Logf = s.trace.LazyPrintf
	}
	return s, nil
}

func (r *Runner) cpu(s *session) {
	defer close(r.done)

	t := time.NewTicker(time.Second / TickRate)
	defer t.Stop()
	for {
		select {
		case <-r.exit:
			return
		case fn := <-r.cmds:
			fn(s)
		case <-t.C:
			if err := s.frame(); err != nil {
				if !r.cfg.Dev {
					r.err = err
					return
				}
				log.Printf("chip8: %v", err)
			}
		}
	}
}

// do runs fn on the CPU goroutine and waits for it to finish.
func (r *Runner) do(fn func(*session)) {
	ran := make(chan struct{})
	select {
	case r.cmds <- func(s *session) { fn(s); close(ran) }:
		<-ran
	case <-r.done:
	}
}

// Pause stops execution.
func (r *Runner) Pause() { r.do((*session).pause) }

// Continue resumes execution after a pause or break.
func (r *Runner) Continue() { r.do((*session).resume) }

// Step pauses execution and executes a single instruction.
func (r *Runner) Step() { r.do((*session).single) }

// Reset restarts the current program.
func (r *Runner) Reset() {
	r.do(func(s *session) {
		if err := s.load(s.rom); err != nil {
			log.Printf("reset: %v", err)
		}
	})
}

// Swap restarts execution with a new program.
func (r *Runner) Swap(rom []byte) error {
	var err error
	r.do(func(s *session) { err = s.load(rom) })
	return err
}

// Break sets a breakpoint at addr.
func (r *Runner) Break(addr uint16) error {
	if addr >= chip8.MemSize {
		return fmt.Errorf("%s: %v", f("break"), chip8.OutOfBoundsMemoryAccess)
	}
	r.do(func(s *session) { s.breaks[addr] = true })
	return nil
}

// ClearBreaks removes all breakpoints.
func (r *Runner) ClearBreaks() {
	r.do(func(s *session) { clear(s.breaks) })
}

// When sets a condition that pauses execution when it becomes true.
// An empty expression clears the condition.
func (r *Runner) When(expr string) error {
	var c *Cond
	if expr != "" {
		var err error
		if c, err = Compile(expr); err != nil {
			return err
		}
	}
	r.do(func(s *session) { s.setCond(c) })
	return nil
}

// Eval evaluates expr against the current machine state.
func (r *Runner) Eval(expr string) (string, error) {
	c, err := Compile(expr)
	if err != nil {
		return "", err
	}
	var v string
	err = errRunnerDone
	r.do(func(s *session) {
		var rc starlark.Value
		if rc, err = c.Eval(s.m); err == nil {
			v = rc.String()
		}
	})
	return v, err
}

var errRunnerDone = errors.New(f("runner stopped"))

// Tap presses key briefly.
func (r *Runner) Tap(key byte) error {
	if err := r.keys.Set(key, true); err != nil {
		return err
	}
	time.AfterFunc(tapDuration, func() { r.keys.Set(key, false) })
	return nil
}

// tapDuration is how long a key stays down after a press that has no
// release event.
const tapDuration = 150 * time.Millisecond

// session is the state owned by the CPU goroutine.
type session struct {
	m      *chip8.Machine
	rom    []byte
	steps  int
	state  StateFunc
	frames chan Frame

	paused  bool
	breaks  map[uint16]bool
	cond    *Cond
	condWas bool
	tone    bool
	trace   *backlog // recent instructions, logged on a fault
}

func newSession(m *chip8.Machine, rom []byte, hz int, state StateFunc, frames chan Frame) *session {
	return &session{
		m:      m,
		rom:    rom,
		steps:  max(1, hz/TickRate),
		state:  state,
		frames: frames,
		breaks: make(map[uint16]bool),
	}
}

func (s *session) report(k StateKind) {
	if s.state != nil {
		s.state(s.m, k)
	}
}

// frame executes one tick's worth of instructions, ticks the timers and
// publishes the display if it changed. It returns a fault only on the
// tick in which it occurred.
func (s *session) frame() error {
	var err error
	if !s.paused && s.m.State() != chip8.Halted {
		for range s.steps {
			if err = s.step(); err != nil || s.paused {
				break
			}
		}
		s.m.TickTimers()
		if err == nil && !s.paused {
			s.report(QuietState)
		}
	}
	s.publish(false)
	return err
}

// step executes one instruction and pauses if it reached a breakpoint
// or made the condition true.
func (s *session) step() error {
	pc := s.m.PC
	if err := s.m.Step(); err != nil {
		if s.trace != nil {
			s.trace.Emit()
			s.trace.Reset()
		}
		s.report(HaltState)
		return err
	}
	if s.m.PC != pc && s.breaks[s.m.PC] {
		s.paused = true
		s.report(BreakState)
		return nil
	}
	if s.cond != nil {
		ok, err := s.cond.True(s.m)
		if err != nil {
			log.Printf("when %s: %v", s.cond.Expr, err)
			s.cond = nil
			return nil
		}
		if ok && !s.condWas {
			s.paused = true
			s.report(BreakState)
		}
		s.condWas = ok
	}
	return nil
}

func (s *session) pause() {
	s.paused = true
	s.report(PauseState)
}

func (s *session) resume() {
	s.paused = false
	s.report(ClearState)
}

func (s *session) single() {
	s.paused = true
	if s.m.State() == chip8.Halted {
		s.report(HaltState)
		return
	}
	if err := s.step(); err != nil {
		log.Printf("chip8: %v", err)
		return
	}
	if s.paused {
		s.report(PauseState)
	}
	s.publish(false)
}

func (s *session) setCond(c *Cond) {
	s.cond = c
	s.condWas = false
	if c != nil {
		s.condWas, _ = c.True(s.m)
	}
}

// load resets the machine and loads rom. An image that does not fit is
// rejected before the reset, leaving the current program running.
func (s *session) load(rom []byte) error {
	if len(rom) > chip8.MaxImageSize {
		return chip8.ImageSizeError(len(rom))
	}
	s.m.Reset()
	if s.trace != nil {
		s.trace.Reset()
	}
	if err := s.m.Load(rom); err != nil {
		return err
	}
	s.rom = rom
	s.paused = false
	s.condWas = false
	s.report(ClearState)
	s.publish(true)
	return nil
}

// publish replaces any unread frame with the current display if it
// changed or the tone started or stopped.
func (s *session) publish(force bool) {
	tone := s.m.Tone()
	if !force && !s.m.Dirty() && tone == s.tone {
		return
	}
	s.tone = tone
	s.m.ClearDirty()
	fr := Frame{Display: s.m.ReadDisplay(), Tone: tone}
	for {
		select {
		case s.frames <- fr:
			return
		default:
		}
		select {
		case <-s.frames:
		default:
		}
	}
}
