package host

import (
	"fmt"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/nf/c8/chip8"
)

// Cond is a compiled starlark expression over the machine state.
// The expression sees the integers V0 to VF, I, PC, DT, ST and SP,
// and the function mem(addr), which returns the byte at addr.
type Cond struct {
	Expr string
	prog *starlark.Program
}

var condNames = func() map[string]bool {
	names := map[string]bool{
		"I": true, "PC": true, "DT": true, "ST": true, "SP": true, "mem": true,
	}
	for i := range 16 {
		names[fmt.Sprintf("V%X", i)] = true
	}
	return names
}()

// Compile parses expr. Statements are not permitted.
func Compile(expr string) (*Cond, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || strings.ContainsAny(expr, "\n;") {
		return nil, fmt.Errorf("%s %q", f("invalid expression"), expr)
	}
	_, prog, err := starlark.SourceProgramOptions(&syntax.FileOptions{},
		"cond", "rc = ("+expr+")\n", func(name string) bool { return condNames[name] })
	if err != nil {
		return nil, err
	}
	return &Cond{Expr: expr, prog: prog}, nil
}

// Eval evaluates the expression against m.
func (c *Cond) Eval(m *chip8.Machine) (starlark.Value, error) {
	thread := &starlark.Thread{Name: "cond"}
	globals, err := c.prog.Init(thread, env(m))
	if err != nil {
		return nil, err
	}
	rc, ok := globals["rc"]
	if !ok {
		return nil, fmt.Errorf("%s %q", f("invalid expression"), c.Expr)
	}
	return rc, nil
}

// True reports the truth value of the expression evaluated against m.
func (c *Cond) True(m *chip8.Machine) (bool, error) {
	v, err := c.Eval(m)
	if err != nil {
		return false, err
	}
	return bool(v.Truth()), nil
}

func env(m *chip8.Machine) starlark.StringDict {
	d := starlark.StringDict{
		"I":  starlark.MakeInt(int(m.I)),
		"PC": starlark.MakeInt(int(m.PC)),
		"DT": starlark.MakeInt(int(m.DT)),
		"ST": starlark.MakeInt(int(m.ST)),
		"SP": starlark.MakeInt(int(m.Stack.Ptr)),
		"mem": starlark.NewBuiltin("mem", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var addr int
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &addr); err != nil {
				return nil, err
			}
			if addr < 0 || addr >= chip8.MemSize {
				return nil, fmt.Errorf("%s: %v (%#x)", b.Name(), chip8.OutOfBoundsMemoryAccess, addr)
			}
			return starlark.MakeInt(int(m.Mem[addr])), nil
		}),
	}
	for i, v := range m.V {
		d[fmt.Sprintf("V%X", i)] = starlark.MakeInt(int(v))
	}
	return d
}
