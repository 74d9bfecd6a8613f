package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nf/intcode/intcode"
	"github.com/nf/intcode/runner"
)

func TestStateMsg(t *testing.T) {
	syms := symbols{{0, "start"}, {3, "result"}}
	m := intcode.NewMachine(intcode.Program{1, 0, 0, 3, 99}, 0)

	got := stateMsg(syms, m, runner.BreakState)
	assert.Equal(t, "0000 ADD @ @ @    [break] start (0000) -> result (0003)\nout: []\n", got)

	_, err := m.Run()
	assert.NoError(t, err)
	got = stateMsg(syms, m, runner.HaltState)
	assert.Equal(t, "0004 HLT          [HALT!] \nout: []\n", got)

	m = intcode.NewMachine(intcode.Program{1105, 1, 0}, 0)
	got = stateMsg(nil, m, runner.PauseState)
	assert.Equal(t, "0000 JNZ # #      [pause] @ (0000)\nout: []\n", got)

	m.PC = 3
	got = stateMsg(nil, m, runner.FaultState)
	assert.Equal(t, "0003 ????         [FAULT] \nout: []\n", got)
}

func TestWatchContent(t *testing.T) {
	d := &debugger{
		brk:     &symbol{2, "loop"},
		watches: []symbol{{0, "acc"}, {9, "9"}},
	}
	m := intcode.NewMachine(intcode.Program{-42, 1, 99}, 0)
	assert.Equal(t, "loop (0002) brk!\n\nacc (0000)          -42\n9 (0009)          ---", d.watchContent(m))
}
