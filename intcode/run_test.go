package intcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMemory(t *testing.T) {
	for _, c := range []struct {
		prog, want Program
	}{
		{Program{1, 0, 0, 0, 99}, Program{2, 0, 0, 0, 99}},
		{Program{2, 3, 0, 3, 99}, Program{2, 3, 0, 6, 99}},
		{Program{2, 4, 4, 5, 99, 0}, Program{2, 4, 4, 5, 99, 9801}},
		{Program{1, 1, 1, 4, 99, 5, 6, 0, 99}, Program{30, 1, 1, 4, 2, 5, 6, 0, 99}},
		{Program{1002, 4, 3, 4, 33}, Program{1002, 4, 3, 4, 99}},
		{Program{1101, 100, -1, 4, 0}, Program{1101, 100, -1, 4, 99}},
	} {
		m := NewMachine(c.prog, 0)
		out, err := m.Run()
		require.NoError(t, err, "running %v", c.prog)
		assert.Empty(t, out)
		assert.Equal(t, []int(c.want), m.Mem, "memory after running %v", c.prog)
	}
}

const classify = "3,21,1008,21,8,20,1005,20,22,107,8,21,20,1006,20,31,1106,0,36,98,0,0," +
	"1002,21,125,20,4,20,1105,1,46,104,999,1105,1,46,1101,1000,1,20,4,20,1105,1,46,98,99"

func TestRunOutput(t *testing.T) {
	tests := []struct {
		name  string
		prog  string
		input int
		want  []int
	}{
		{"eq 8 position", "3,9,8,9,10,9,4,9,99,-1,8", 8, []int{1}},
		{"eq 8 position miss", "3,9,8,9,10,9,4,9,99,-1,8", 1, []int{0}},
		{"lt 8 position", "3,9,7,9,10,9,4,9,99,-1,8", 5, []int{1}},
		{"lt 8 position miss", "3,9,7,9,10,9,4,9,99,-1,8", 8, []int{0}},
		{"eq 8 immediate", "3,3,1108,-1,8,3,4,3,99", 8, []int{1}},
		{"eq 8 immediate miss", "3,3,1108,-1,8,3,4,3,99", 1, []int{0}},
		{"lt 8 immediate", "3,3,1107,-1,8,3,4,3,99", 7, []int{1}},
		{"lt 8 immediate miss", "3,3,1107,-1,8,3,4,3,99", 9, []int{0}},
		{"nonzero position", "3,12,6,12,15,1,13,14,13,4,13,99,-1,0,1,9", 0, []int{0}},
		{"nonzero position hit", "3,12,6,12,15,1,13,14,13,4,13,99,-1,0,1,9", 3, []int{1}},
		{"nonzero immediate", "3,3,1105,-1,9,1101,0,0,12,4,12,99,1", 0, []int{0}},
		{"nonzero immediate hit", "3,3,1105,-1,9,1101,0,0,12,4,12,99,1", 8, []int{1}},
		{"classify below", classify, 7, []int{999}},
		{"classify below zero", classify, 0, []int{999}},
		{"classify equal", classify, 8, []int{1000}},
		{"classify above", classify, 9, []int{1001}},
		{"echo", "3,0,4,0,99", -42, []int{-42}},
		{"multiple outputs", "104,1,104,2,3,9,4,9,99,0", 3, []int{1, 2, 3}},
		{"input twice", "3,11,3,12,1,11,12,13,4,13,99,0,0,0", 21, []int{42}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse([]byte(tt.prog))
			require.NoError(t, err)
			got, err := Run(p, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunDoesNotModifyProgram(t *testing.T) {
	p, err := Parse([]byte(classify))
	require.NoError(t, err)
	orig := p.Clone()

	first, err := Run(p, 8)
	require.NoError(t, err)
	second, err := Run(p, 8)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, orig, p)
}

func TestRunFaults(t *testing.T) {
	tests := []struct {
		name  string
		prog  Program
		fault Fault
		pc    int
	}{
		{"immediate add destination", Program{11101, 1, 1, 0, 99}, IllegalWriteMode, 0},
		{"immediate input destination", Program{1101, 0, 0, 5, 103, 0, 99}, IllegalWriteMode, 4},
		{"read past end", Program{1, 0, 5, 0, 99}, OutOfBounds, 0},
		{"write past end", Program{1101, 1, 1, 5, 99}, OutOfBounds, 0},
		{"jump past end", Program{1105, 1, 3}, OutOfBounds, 0},
		{"run off end", Program{1101, 1, 1, 0}, OutOfBounds, 4},
		{"unknown opcode", Program{1101, 1, 1, 0, 42}, UnknownOpcode, 4},
		{"bad mode digit", Program{301, 0, 0, 0, 99}, InvalidEncoding, 0},
		{"negative word", Program{1101, -5, 0, 4, 0}, InvalidEncoding, 4},
		{"self-modified into nonsense", Program{1101, 50, 0, 4, 99}, UnknownOpcode, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Run(tt.prog, 0)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, tt.fault)

			var fe FaultError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.pc, fe.PC)
			assert.NotEmpty(t, fe.Mem)
		})
	}
}
