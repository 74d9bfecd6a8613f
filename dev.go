package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"
	"go.uber.org/zap"

	"github.com/nf/intcode/intcode"
	"github.com/nf/intcode/runner"
)

// devMode runs progFile and runs it again each time it, or its symbol
// file, changes. With debug set it runs the program under the debugger.
func devMode(cfg *Config, debug bool, progFile string) error {
	progFile = filepath.Clean(progFile)
	symFile := progFile + ".sym"

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Watch(filepath.Dir(progFile)); err != nil {
		return err
	}

	var (
		logger = zap.L()
		state  runner.StateFunc
		d      *debugger
	)
	if debug {
		d = newDebugger(cfg.Trace)
		logger = d.log
		state = d.StateFunc
	} else {
		state = func(m *intcode.Machine, k runner.StateKind) {
			switch k {
			case runner.HaltState:
				logger.Info("halt", zap.Ints("output", m.Output))
			case runner.FaultState:
				logger.Warn("fault", zap.Int("pc", m.PC))
			}
		}
	}
	logger = logger.Named("dev")

	r := runner.NewRunner(cfg.GUI, true, state,
		runner.WithLogger(logger), runner.WithUpdateEvery(cfg.UpdateEvery))
	// quit is closed when the user asks to leave, which may happen
	// before the first successful load.
	quit := make(chan struct{})
	if d != nil {
		d.run = r
		go func() {
			if err := d.Run(); err != nil {
				logger.Error("debugger", zap.Error(err))
			}
			close(quit)
			r.Debug("exit", 0)
		}()
	} else {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		go func() {
			<-ctx.Done()
			close(quit)
			r.Debug("exit", 0)
		}()
	}

	progCh := make(chan intcode.Program)
	l := &reloader{
		progFile: progFile,
		symFile:  symFile,
		cfg:      cfg,
		log:      logger,
		events:   watcher.Event,
		errs:     watcher.Error,
		start:    progCh,
		swap:     r.Swap,
		delay:    100 * time.Millisecond,
	}
	if d != nil {
		l.syms = d.setSymbols
	}
	go l.run(quit)

	var p intcode.Program
	select {
	case p = <-progCh:
	case <-quit:
		return nil
	}
	res, err := r.Run(p, cfg.Input)
	if errors.Is(err, runner.ErrExit) {
		err = nil
	}
	logger.Info("exit", zap.Int("steps", res.Steps))
	return err
}

// reloader loads the program when started and again whenever the program or
// symbol file changes. The first program loaded is sent on start, later ones
// are passed to swap.
type reloader struct {
	progFile, symFile string
	cfg               *Config
	log               *zap.Logger

	events <-chan *fsnotify.FileEvent
	errs   <-chan error
	start  chan<- intcode.Program
	swap   func(intcode.Program)
	syms   func(symbols) // nil if symbols are not needed
	delay  time.Duration
}

// run loads and reloads programs until quit is closed.
func (l *reloader) run(quit <-chan struct{}) {
	started := false
	load := time.After(1 * time.Millisecond)
	for {
		select {
		case <-load:
			l.log.Info("load", zap.String("file", filepath.Base(l.progFile)))
			p, err := loadProgram(l.progFile, l.cfg)
			if err != nil {
				l.log.Warn("load", zap.Error(err))
				break
			}
			if l.syms != nil {
				syms, err := parseSymbols(l.symFile)
				if err != nil && !errors.Is(err, fs.ErrNotExist) {
					l.log.Warn("reading symbols", zap.Error(err))
				}
				l.syms(syms)
			}
			if !started {
				l.log.Info("start")
				select {
				case l.start <- p:
				case <-quit:
					return
				}
				started = true
			} else {
				l.log.Info("reset")
				l.swap(p)
			}
		case ev := <-l.events:
			if name := filepath.Clean(ev.Name); (name == l.progFile || name == l.symFile) && !ev.IsAttrib() {
				load = time.After(l.delay)
			}
		case err := <-l.errs:
			l.log.Warn("watcher", zap.Error(err))
		case <-quit:
			return
		}
	}
}
