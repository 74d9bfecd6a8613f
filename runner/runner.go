// Package runner drives an Intcode machine for the intcode command,
// optionally under interactive control.
package runner

import (
	"errors"

	"go.uber.org/zap"

	"github.com/nf/intcode/intcode"
)

// ErrExit is returned by Run when a dev mode session is ended by the exit
// command before the program halted.
var ErrExit = errors.New("exited before halt")

// StateKind describes why a StateFunc was called.
type StateKind int

const (
	ClearState StateKind = iota // execution (re)started or resumed
	QuietState                  // periodic update while running
	DebugState                  // PC reached the debug address
	BreakState                  // PC reached the break address; execution paused
	PauseState                  // paused by command or after a single step
	HaltState                   // program halted
	FaultState                  // program faulted
)

func (k StateKind) String() string {
	switch k {
	case ClearState:
		return "clear"
	case QuietState:
		return "quiet"
	case DebugState:
		return "debug"
	case BreakState:
		return "break"
	case PauseState:
		return "pause"
	case HaltState:
		return "halt"
	case FaultState:
		return "fault"
	}
	return "unknown"
}

// StateFunc is called by the runner from its execution goroutine. The machine
// must not be retained or modified after the call returns.
type StateFunc func(m *intcode.Machine, k StateKind)

// Result is the outcome of a run.
type Result struct {
	Output []int
	Mem    []int
	Steps  int
}

// Runner executes a single program session.
type Runner struct {
	gui   bool
	dev   bool
	state StateFunc
	log   *zap.Logger
	every int

	swap     chan intcode.Program
	swapDone chan bool
	debug    chan debugCmd
	done     chan struct{}
}

type debugCmd struct {
	cmd  string
	addr int
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used by the runner. If the logger is enabled
// at debug level every executed instruction is traced.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithUpdateEvery sets the number of instructions executed between
// QuietState reports and GUI refreshes.
func WithUpdateEvery(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.every = n
		}
	}
}

// NewRunner returns a Runner. In dev mode the runner keeps the machine
// alive after it halts or faults and accepts Swap and Debug calls until
// the exit command is given.
func NewRunner(enableGUI, devMode bool, state StateFunc, opts ...Option) *Runner {
	r := &Runner{
		gui:      enableGUI,
		dev:      devMode,
		state:    state,
		log:      zap.L(),
		every:    1 << 12,
		swap:     make(chan intcode.Program),
		swapDone: make(chan bool),
		debug:    make(chan debugCmd),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.Named("runner")
	return r
}

// Swap replaces the running program with p and restarts execution.
// It must only be called in dev mode.
func (r *Runner) Swap(p intcode.Program) {
	if !r.dev {
		panic("Swap called while not running in dev mode")
	}
	select {
	case r.swap <- p:
		<-r.swapDone
	case <-r.done:
	}
}

// Debug sends a command to the running session. It has no effect once the
// session has ended.
//
// Commands are "b" or "break" (pause when PC reaches addr; a negative addr
// clears the break), "d" or "debug" (report state when PC reaches addr),
// "p" or "pause", "c" or "cont", "s" or "step", "r" or "reset", and "exit".
func (r *Runner) Debug(cmd string, addr int) {
	select {
	case r.debug <- debugCmd{cmd, addr}:
	case <-r.done:
	}
}

// Run executes p with the given input value. In GUI mode Run drives the
// memory view window from the calling goroutine, which must be the main
// goroutine.
func (r *Runner) Run(p intcode.Program, input int) (Result, error) {
	if !r.gui {
		return r.exec(p, input, nil)
	}
	type ret struct {
		res Result
		err error
	}
	var (
		g    = NewGUI()
		done = make(chan ret, 1)
		exit = make(chan bool)
	)
	go func() {
		res, err := r.exec(p, input, g)
		done <- ret{res, err}
		close(exit)
	}()
	if err := g.Run(exit); err != nil {
		r.log.Error("gui", zap.Error(err))
	}
	// The window may be closed before the session ends.
	if r.dev {
		r.Debug("exit", 0)
	}
	d := <-done
	return d.res, d.err
}

func (r *Runner) newMachine(p intcode.Program, input int) *intcode.Machine {
	m := intcode.NewMachine(p, input)
	if r.log.Core().Enabled(zap.DebugLevel) {
		m.Tracef = r.log.Named("exec").Sugar().Debugf
	}
	return m
}

func (r *Runner) report(m *intcode.Machine, k StateKind) {
	if r.state != nil {
		r.state(m, k)
	}
}

func (r *Runner) exec(p intcode.Program, input int, g *GUI) (Result, error) {
	defer close(r.done)

	var (
		m     = r.newMachine(p, input)
		steps int
		term  error // ErrHalt or a fault once the machine has stopped

		brk, dbg  = -1, -1
		paused    bool
		stepping  bool
		skipBreak bool
	)
	result := func() (Result, error) {
		res := Result{Output: m.Output, Mem: m.Mem, Steps: steps}
		switch {
		case term == intcode.ErrHalt:
			return res, nil
		case term != nil:
			res.Output = nil
			return res, term
		default:
			return res, ErrExit
		}
	}
	restart := func() {
		m = r.newMachine(p, input)
		steps, term = 0, nil
		paused, stepping, skipBreak = false, false, false
		if g != nil {
			g.Update(m)
		}
		r.report(m, ClearState)
	}
	// handle applies a debug command and reports whether the session is over.
	handle := func(c debugCmd) bool {
		switch c.cmd {
		case "b", "break":
			brk = c.addr
		case "d", "debug":
			dbg = c.addr
		case "p", "pause":
			if term == nil && !paused {
				paused = true
				r.report(m, PauseState)
			}
		case "c", "cont":
			if term == nil && paused {
				paused, skipBreak = false, true
				r.report(m, ClearState)
			}
		case "s", "step":
			if term == nil && paused {
				paused, stepping, skipBreak = false, true, true
			}
		case "r", "reset":
			restart()
		case "exit":
			return true
		default:
			r.log.Warn("unknown debug command", zap.String("cmd", c.cmd))
		}
		return false
	}

	if g != nil {
		g.Update(m)
	}
	r.report(m, ClearState)
	for {
		if term != nil || paused {
			if !r.dev {
				return result()
			}
			select {
			case c := <-r.debug:
				if handle(c) {
					return result()
				}
			case p = <-r.swap:
				r.log.Info("swapped program", zap.Int("words", len(p)))
				restart()
				r.swapDone <- true
			}
			continue
		}

		if r.dev {
			select {
			case c := <-r.debug:
				if handle(c) {
					return result()
				}
				continue
			case p = <-r.swap:
				r.log.Info("swapped program", zap.Int("words", len(p)))
				restart()
				r.swapDone <- true
				continue
			default:
			}
		}

		if m.PC == brk && !skipBreak {
			paused = true
			r.report(m, BreakState)
			continue
		}
		skipBreak = false
		if m.PC == dbg {
			r.report(m, DebugState)
		}

		err := m.Exec()
		steps++
		if err != nil {
			term = err
			if g != nil {
				g.Update(m)
			}
			if err == intcode.ErrHalt {
				r.log.Debug("halt", zap.Int("pc", m.PC), zap.Int("steps", steps))
				r.report(m, HaltState)
			} else {
				r.log.Debug("fault", zap.Error(err), zap.Int("steps", steps))
				r.report(m, FaultState)
			}
			continue
		}
		if stepping {
			stepping, paused = false, true
			r.report(m, PauseState)
			continue
		}
		if steps%r.every == 0 {
			if g != nil {
				g.Update(m)
			}
			r.report(m, QuietState)
		}
	}
}
