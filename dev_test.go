package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/howeyc/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nf/intcode/intcode"
)

func newTestReloader(t *testing.T, progFile string) (*reloader, chan *fsnotify.FileEvent, chan intcode.Program, chan intcode.Program) {
	var (
		events = make(chan *fsnotify.FileEvent)
		start  = make(chan intcode.Program)
		swaps  = make(chan intcode.Program, 1)
	)
	return &reloader{
		progFile: progFile,
		symFile:  progFile + ".sym",
		cfg:      defaultConfig(),
		log:      zap.NewNop(),
		events:   events,
		errs:     make(chan error),
		start:    start,
		swap:     func(p intcode.Program) { swaps <- p },
		delay:    time.Millisecond,
	}, events, start, swaps
}

func TestReloaderStartAndSwap(t *testing.T) {
	prog := writeFile(t, "prog.txt", "104,1,99")
	require.NoError(t, os.WriteFile(prog+".sym", []byte("0 start\n"), 0o644))
	l, events, start, swaps := newTestReloader(t, prog)
	var syms symbols
	got := make(chan struct{}, 2)
	l.syms = func(s symbols) {
		syms = s
		got <- struct{}{}
	}

	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		l.run(quit)
		close(done)
	}()

	select {
	case p := <-start:
		assert.Equal(t, intcode.Program{104, 1, 99}, p)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for first load")
	}
	<-got
	assert.Equal(t, symbols{{0, "start"}}, syms)

	require.NoError(t, os.WriteFile(prog, []byte("104,2,99"), 0o644))
	events <- &fsnotify.FileEvent{Name: filepath.Join(filepath.Dir(prog), "other.txt")}
	events <- &fsnotify.FileEvent{Name: prog}
	select {
	case p := <-swaps:
		assert.Equal(t, intcode.Program{104, 2, 99}, p)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	close(quit)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("reloader did not stop")
	}
}

func TestReloaderQuitBeforeStart(t *testing.T) {
	prog := writeFile(t, "prog.txt", "99")
	// Nobody receives the first program.
	l, _, _, _ := newTestReloader(t, prog)

	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		l.run(quit)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	close(quit)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("reloader blocked after quit")
	}
}
