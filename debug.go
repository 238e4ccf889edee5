package main

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/c8/chip8"
	"github.com/nf/c8/host"
)

// controller is the part of host.Runner driven by the debugger.
type controller interface {
	Pause()
	Continue()
	Step()
	Reset()
	Break(addr uint16) error
	ClearBreaks()
	When(expr string) error
	Eval(expr string) (string, error)
	Tap(key byte) error
	Exit()
}

type debugger struct {
	run controller

	log    *tview.TextView
	watch  *tview.TextView
	state  *tview.TextView
	screen *tview.TextView // nil unless the display is shown in the debugger
	input  *tview.InputField
	cols   *tview.Flex
	rows   *tview.Flex
	app    *tview.Application

	updates chan stateUpdate
	stopped chan struct{}

	mu      sync.Mutex
	breaks  []uint16
	when    string
	watches []watch
}

type watch struct {
	addr  uint16
	short bool
}

type stateUpdate struct {
	kind  host.StateKind
	watch string
	state string
}

var commands = []string{
	"b", "break", "w", "w2", "watch", "watch2", "when", "eval",
	"p", "pause", "c", "continue", "s", "step", "r", "reset", "k", "key", "exit",
}

func newDebugger(showScreen bool) *debugger {
	d := &debugger{
		log: tview.NewTextView().
			SetMaxLines(1000),
		watch: tview.NewTextView().
			SetWrap(false).
			SetTextAlign(tview.AlignRight),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField(),
		cols:  tview.NewFlex(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app: tview.NewApplication(),

		updates: make(chan stateUpdate, 1),
		stopped: make(chan struct{}),
	}
	d.log.SetChangedFunc(func() { d.app.Draw() })
	d.watch.SetBackgroundColor(tcell.ColorDarkBlue)
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.cols.
		AddItem(d.watch, 0, 1, false).
		AddItem(d.log, 0, 2, false)
	d.rows.AddItem(d.cols, 0, 1, false)
	if showScreen {
		d.screen = tview.NewTextView().
			SetWrap(false)
		d.rows.AddItem(d.screen, chip8.Height/2, 0, false)
	}
	d.rows.
		AddItem(d.state, 4, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetAutocompleteFunc(func(t string) (entries []string) {
		if t == "" || strings.Contains(t, " ") {
			return nil
		}
		for _, c := range commands {
			if strings.HasPrefix(c, t) && c != t {
				entries = append(entries, c)
			}
		}
		return
	})
	d.input.SetAutocompletedFunc(func(t string, index, src int) bool {
		if src != tview.AutocompletedNavigate {
			d.input.SetText(t + " ")
		}
		return src == tview.AutocompletedEnter || src == tview.AutocompletedClick
	})
	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		cmd := strings.TrimSpace(d.input.GetText())
		if cmd == "" {
			return
		}
		d.input.SetText("")
		if d.command(cmd) {
			d.app.Stop()
		}
	})
	return d
}

// Run runs the debugger UI until the user exits.
func (d *debugger) Run() error {
	go d.forward()
	defer close(d.stopped)
	return d.app.Run()
}

// forward passes state updates to the UI goroutine.
func (d *debugger) forward() {
	for {
		select {
		case u := <-d.updates:
			d.app.QueueUpdateDraw(func() { d.show(u) })
		case <-d.stopped:
			return
		}
	}
}

// command executes a debugger command line and reports whether the
// debugger should exit.
func (d *debugger) command(line string) (exit bool) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "exit":
		return true
	case "b", "break":
		if arg == "" {
			d.run.ClearBreaks()
			d.mu.Lock()
			d.breaks = nil
			d.mu.Unlock()
			log.Print("cleared breaks")
			return
		}
		addr, err := parseAddr(arg)
		if err == nil {
			err = d.run.Break(addr)
		}
		if err != nil {
			log.Printf("break: %v", err)
			return
		}
		d.mu.Lock()
		d.breaks = append(d.breaks, addr)
		d.mu.Unlock()
		log.Printf("set break %.3x", addr)
	case "w", "w2", "watch", "watch2":
		addr, err := parseAddr(arg)
		short := strings.HasSuffix(cmd, "2")
		if err == nil && short && addr+1 >= chip8.MemSize {
			err = fmt.Errorf("%.3x: %v", addr, chip8.OutOfBoundsMemoryAccess)
		}
		if err != nil {
			log.Printf("watch: %v", err)
			return
		}
		d.mu.Lock()
		d.watches = append(d.watches, watch{addr: addr, short: short})
		d.mu.Unlock()
		log.Printf("watching %.3x", addr)
	case "when":
		if err := d.run.When(arg); err != nil {
			log.Printf("when: %v", err)
			return
		}
		d.mu.Lock()
		d.when = arg
		d.mu.Unlock()
		if arg == "" {
			log.Print("cleared condition")
		} else {
			log.Printf("break when %s", arg)
		}
	case "eval":
		v, err := d.run.Eval(arg)
		if err != nil {
			log.Printf("eval: %v", err)
			return
		}
		log.Printf("%s = %s", arg, v)
	case "p", "pause":
		d.run.Pause()
	case "c", "continue":
		d.run.Continue()
	case "s", "step":
		d.run.Step()
	case "r", "reset":
		d.run.Reset()
		log.Print("reset")
	case "k", "key":
		k, err := strconv.ParseUint(arg, 16, 8)
		if err == nil {
			err = d.run.Tap(byte(k))
		}
		if err != nil {
			log.Printf("key: %v", err)
		}
	default:
		log.Printf("unknown command %q", cmd)
	}
	return false
}

// parseAddr parses a hexadecimal memory address, with an optional
// "$" or "0x" prefix.
func parseAddr(s string) (uint16, error) {
	t := strings.TrimPrefix(s, "$")
	if len(t) == len(s) {
		t = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	}
	v, err := strconv.ParseUint(t, 16, 16)
	if err != nil || v >= chip8.MemSize {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return uint16(v), nil
}

func (d *debugger) StateFunc(m *chip8.Machine, k host.StateKind) {
	u := stateUpdate{kind: k, watch: d.watchContent(m)}
	if k != host.QuietState {
		u.state = stateMsg(m, k)
		select {
		case d.updates <- u:
		case <-d.stopped:
		}
		return
	}
	select {
	case d.updates <- u:
	default:
	}
}

func (d *debugger) show(u stateUpdate) {
	switch u.kind {
	case host.ClearState:
		d.state.SetTextColor(tcell.ColorBlack)
		d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	case host.BreakState:
		d.state.SetTextColor(tcell.ColorYellow)
		d.state.SetBackgroundColor(tcell.ColorDarkBlue)
	case host.PauseState:
		d.state.SetTextColor(tcell.ColorWhite)
		d.state.SetBackgroundColor(tcell.ColorDarkBlue)
	case host.HaltState:
		d.state.SetTextColor(tcell.ColorWhite)
		d.state.SetBackgroundColor(tcell.ColorDarkRed)
	}
	d.watch.SetText(u.watch)
	if u.kind != host.QuietState {
		d.state.SetText(u.state)
	}
}

// showFrames renders frames into the screen pane until done is closed.
func (d *debugger) showFrames(frames <-chan host.Frame, done <-chan struct{}) {
	for {
		select {
		case fr := <-frames:
			text := host.FrameText(fr.Display)
			select {
			case <-d.stopped:
				return
			default:
			}
			d.app.QueueUpdateDraw(func() { d.screen.SetText(text) })
		case <-done:
			return
		case <-d.stopped:
			return
		}
	}
}

func stateMsg(m *chip8.Machine, k host.StateKind) string {
	op := "?"
	if in, ok := m.Current(); ok {
		op = in.String()
	}
	kind := "       "
	switch k {
	case host.BreakState:
		kind = "[break]"
	case host.PauseState:
		kind = "[pause]"
	case host.HaltState:
		kind = "[HALT!]"
	}
	var regs strings.Builder
	for i, v := range m.V {
		if i > 0 {
			regs.WriteByte(' ')
		}
		fmt.Fprintf(&regs, "%X:%.2x", i, v)
	}
	status := m.State().String()
	if err := m.Fault(); err != nil {
		status = err.Error()
	}
	return fmt.Sprintf("%.3x %-16s %s %s\n%s\nI=%.3x DT=%.2x ST=%.2x\nstack: %v\n",
		m.PC, op, kind, status, regs.String(), m.I, m.DT, m.ST, m.Stack)
}

func (d *debugger) watchContent(m *chip8.Machine) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var b strings.Builder
	for _, addr := range d.breaks {
		fmt.Fprintf(&b, "[%.3x] brk!\n", addr)
	}
	if d.when != "" {
		fmt.Fprintf(&b, "%s when?\n", d.when)
	}
	for _, w := range d.watches {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%.3x] ", w.addr)
		if w.short {
			fmt.Fprintf(&b, "%.2x%.2x", m.Mem[w.addr], m.Mem[w.addr+1])
		} else {
			fmt.Fprintf(&b, "  %.2x", m.Mem[w.addr])
		}
	}
	return b.String()
}
