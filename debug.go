package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nf/intcode/intcode"
	"github.com/nf/intcode/runner"
)

type debugger struct {
	run *runner.Runner
	log *zap.Logger

	logView *tview.TextView
	watch   *tview.TextView
	state   *tview.TextView
	input   *tview.InputField
	cols    *tview.Flex
	rows    *tview.Flex
	app     *tview.Application

	mu       sync.Mutex
	dbg, brk *symbol
	syms     symbols
	watches  []symbol
}

func (d *debugger) symbols() symbols {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.syms
}

func (d *debugger) setSymbols(s symbols) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.syms = s
}

func newDebugger(trace bool) *debugger {
	d := &debugger{
		logView: tview.NewTextView().
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
	}
	d.log = newViewLogger(d.logView, trace)
	d.logView.SetChangedFunc(func() { d.app.Draw() })
	d.watch.SetBackgroundColor(tcell.ColorDarkBlue)
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.cols.
		AddItem(d.watch, 0, 1, false).
		AddItem(d.logView, 0, 2, false)
	d.rows.
		AddItem(d.cols, 0, 1, false).
		AddItem(d.state, 3, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetAutocompleteFunc(func(t string) (entries []string) {
		if cmd, arg, ok := strings.Cut(t, " "); ok {
			switch cmd {
			case "b", "break", "d", "debug", "w", "watch":
				for _, s := range d.symbols().withLabelPrefix(arg) {
					entries = append(entries, cmd+" "+s.label)
				}
			}
		}
		return
	})
	d.input.SetAutocompletedFunc(func(t string, index, src int) bool {
		if src != tview.AutocompletedNavigate {
			d.input.SetText(t)
		}
		return src == tview.AutocompletedEnter || src == tview.AutocompletedClick
	})
	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		cmd := d.input.GetText()
		if cmd == "" {
			return
		}
		d.input.SetText("")
		d.command(cmd)
	})
	return d
}

// newViewLogger returns a logger that writes to the debugger's log pane.
func newViewLogger(v *tview.TextView, trace bool) *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	level := zapcore.InfoLevel
	if trace {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(v), level)
	return zap.New(core)
}

// command interprets a line typed into the debugger.
func (d *debugger) command(cmd string) {
	if cmd == "exit" {
		d.app.Stop()
		return
	}
	if cmd, arg, ok := strings.Cut(cmd, " "); ok {
		switch cmd {
		case "b", "break", "d", "debug":
			s, ok := d.symbols().resolve(arg)
			if !ok {
				d.log.Warn("invalid address", zap.String("arg", arg))
				return
			}
			d.run.Debug(cmd, s.addr)
			d.mu.Lock()
			switch cmd[0] {
			case 'b':
				d.brk = &s
			case 'd':
				d.dbg = &s
			}
			d.mu.Unlock()
			d.log.Info("set "+cmd, zap.Stringer("at", s))
			return
		case "w", "watch":
			s, ok := d.symbols().resolve(arg)
			if !ok {
				d.log.Warn("invalid address", zap.String("arg", arg))
				return
			}
			d.mu.Lock()
			d.watches = append(d.watches, s)
			d.mu.Unlock()
			d.log.Info("watching", zap.Stringer("at", s))
			return
		}
	}
	switch cmd {
	case "b", "break", "d", "debug":
		d.run.Debug(cmd, -1)
		d.mu.Lock()
		if cmd[0] == 'b' {
			d.brk = nil
		} else {
			d.dbg = nil
		}
		d.mu.Unlock()
		d.log.Info("cleared " + cmd)
	case "w", "watch":
		d.mu.Lock()
		d.watches = nil
		d.mu.Unlock()
		d.log.Info("cleared watches")
	default:
		d.run.Debug(cmd, 0)
	}
}

func (d *debugger) Run() error { return d.app.Run() }

func (d *debugger) StateFunc(m *intcode.Machine, k runner.StateKind) {
	var (
		watch = d.watchContent(m)
		state string
	)
	if k != runner.ClearState && k != runner.QuietState {
		state = stateMsg(d.symbols(), m, k)
	}
	switch k {
	case runner.HaltState:
		d.log.Info("halt", zap.Ints("output", m.Output))
	case runner.FaultState:
		d.log.Warn("fault", zap.Int("pc", m.PC))
	}
	d.app.QueueUpdateDraw(func() {
		switch k {
		case runner.DebugState, runner.ClearState:
			d.state.SetTextColor(tcell.ColorBlack)
			d.state.SetBackgroundColor(tcell.ColorDarkGrey)
		case runner.BreakState:
			d.state.SetTextColor(tcell.ColorYellow)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case runner.PauseState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case runner.HaltState, runner.FaultState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkRed)
		}
		d.watch.SetText(watch)
		if k != runner.QuietState {
			d.state.SetText(state)
		}
	})
}

func stateMsg(syms symbols, m *intcode.Machine, k runner.StateKind) string {
	var (
		inst  = "????"
		pcSym string
		sym   string
	)
	if m.PC >= 0 && m.PC < len(m.Mem) {
		if in, err := intcode.Decode(m.Mem[m.PC]); err == nil {
			inst = in.String()
		}
	}
	if s := syms.forAddr(m.PC); len(s) > 0 {
		pcSym = s[0].String() + " -> "
	}
	if addr, ok := m.OpAddr(m.PC); ok {
		ss := syms.forAddr(addr)
		if len(ss) == 0 {
			ss = []symbol{{addr: addr, label: "@"}}
		}
		for i, s := range ss {
			if i != 0 {
				sym += " "
			}
			sym += s.String()
		}
	}
	kind := "       "
	switch k {
	case runner.BreakState:
		kind = "[break]"
	case runner.DebugState:
		kind = "[debug]"
	case runner.PauseState:
		kind = "[pause]"
	case runner.HaltState:
		kind = "[HALT!]"
	case runner.FaultState:
		kind = "[FAULT]"
	}
	return fmt.Sprintf("%.4d %-12s %s %s%s\nout: %v\n",
		m.PC, inst, kind, pcSym, sym, m.Output)
}

func (d *debugger) watchContent(m *intcode.Machine) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var b strings.Builder
	if s := d.brk; s != nil {
		fmt.Fprintf(&b, "%s brk!\n", s)
	}
	if s := d.dbg; s != nil {
		fmt.Fprintf(&b, "%s dbg?\n", s)
	}
	for _, w := range d.watches {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s ", w)
		if w.addr < len(m.Mem) {
			fmt.Fprintf(&b, "%12d", m.Mem[w.addr])
		} else {
			b.WriteString("         ---")
		}
	}
	return b.String()
}
