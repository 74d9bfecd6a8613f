package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nf/intcode/intcode"
)

func TestNounVerb(t *testing.T) {
	// Stores noun*verb at address 0.
	mul := intcode.Program{1102, 0, 0, 0, 99}
	// Stores Mem[noun]+Mem[verb] at address 0.
	add := intcode.Program{1, 0, 0, 0, 99}

	tests := []struct {
		name   string
		prog   intcode.Program
		target int
		opts   Options
		want   Result
	}{
		{"product", mul, 12, Options{}, Result{1, 12}},
		{"zero", mul, 0, Options{}, Result{0, 0}},
		{"square", mul, 99 * 99, Options{}, Result{99, 99}},
		{"one worker", mul, 12, Options{Workers: 1}, Result{1, 12}},
		{"position operands", add, 198, Options{Max: 4}, Result{4, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NounVerb(context.Background(), tt.prog, tt.target, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, intcode.Program{1102, 0, 0, 0, 99}, mul, "program was modified")
}

func TestNounVerbNotFound(t *testing.T) {
	_, err := NounVerb(context.Background(), intcode.Program{1102, 0, 0, 0, 99}, -1, Options{Max: 10})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNounVerbFault(t *testing.T) {
	// Nouns and verbs above 4 are out of bounds.
	_, err := NounVerb(context.Background(), intcode.Program{1, 0, 0, 0, 99}, -1, Options{Max: 10})
	assert.ErrorIs(t, err, intcode.OutOfBounds)
}

func TestNounVerbFaultAfterMatch(t *testing.T) {
	// Noun 0 and verb 0 give 1+1 at address 0, but noun 5 faults.
	_, err := NounVerb(context.Background(), intcode.Program{1, 0, 0, 0, 99}, 2, Options{Max: 10})
	assert.ErrorIs(t, err, intcode.OutOfBounds)
}

func TestNounVerbShortProgram(t *testing.T) {
	_, err := NounVerb(context.Background(), intcode.Program{99}, 0, Options{})
	assert.ErrorIs(t, err, intcode.OutOfBounds)
}

func TestNounVerbCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NounVerb(ctx, intcode.Program{1102, 0, 0, 0, 99}, 12, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResultAnswer(t *testing.T) {
	assert.Equal(t, 1202, Result{12, 2}.Answer())
}
