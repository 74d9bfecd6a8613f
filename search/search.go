// Package search finds program inputs that produce a desired result.
package search

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nf/intcode/intcode"
)

// ErrNotFound is returned when no candidate produces the target.
var ErrNotFound = errors.New("no noun and verb produce the target")

// Addresses patched by NounVerb.
const (
	NounAddr = 1
	VerbAddr = 2
)

// Options controls a search.
type Options struct {
	Max     int // largest noun and verb tried; 99 if zero
	Workers int // concurrent runs; runtime.NumCPU() if zero
}

// Result is a successful noun and verb.
type Result struct {
	Noun, Verb int
}

// Answer returns 100*noun + verb.
func (r Result) Answer() int { return 100*r.Noun + r.Verb }

// NounVerb runs p with every noun and verb in [0, Max] written to
// NounAddr and VerbAddr and returns the pair, with the smallest Answer, for
// which the program halts with target at address 0. Each candidate runs on
// its own machine. Every candidate is tried, so a run that faults ends the
// search with its error even when another pair already matched.
func NounVerb(ctx context.Context, p intcode.Program, target int, opts Options) (Result, error) {
	if len(p) <= VerbAddr {
		return Result{}, fmt.Errorf("program of %d words has no noun and verb: %w", len(p), intcode.OutOfBounds)
	}
	if opts.Max <= 0 {
		opts.Max = 99
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	var (
		mu    sync.Mutex
		best  Result
		found bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for noun := 0; noun <= opts.Max; noun++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			for verb := 0; verb <= opts.Max; verb++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				ok, err := try(p, target, noun, verb)
				if err != nil {
					return fmt.Errorf("noun %d verb %d: %w", noun, verb, err)
				}
				if !ok {
					continue
				}
				r := Result{noun, verb}
				mu.Lock()
				if !found || r.Answer() < best.Answer() {
					best, found = r, true
				}
				mu.Unlock()
				// Later verbs for this noun have larger answers.
				return nil
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if !found {
		return Result{}, ErrNotFound
	}
	return best, nil
}

func try(p intcode.Program, target, noun, verb int) (bool, error) {
	m := intcode.NewMachine(p, 0)
	m.Mem[NounAddr], m.Mem[VerbAddr] = noun, verb
	if _, err := m.Run(); err != nil {
		return false, err
	}
	return m.Mem[0] == target, nil
}
