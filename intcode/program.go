package intcode

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Program is an Intcode program as parsed from text.
// Programs are never mutated by execution; each Machine works on a copy.
type Program []int

var errEmptyToken = errors.New("empty token")

// Parse parses comma-separated decimal integers.
// Surrounding whitespace, including a trailing newline, is ignored.
func Parse(text []byte) (Program, error) {
	fields := strings.Split(string(bytes.TrimSpace(text)), ",")
	p := make(Program, 0, len(fields))
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			return nil, &ParseError{Index: i, Token: f, Err: errEmptyToken}
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			var numErr *strconv.NumError
			if errors.As(err, &numErr) {
				err = numErr.Err
			}
			return nil, &ParseError{Index: i, Token: f, Err: err}
		}
		p = append(p, v)
	}
	return p, nil
}

// Clone returns a copy of p.
func (p Program) Clone() Program {
	return append(Program(nil), p...)
}

// Patch returns a copy of p with the word at addr replaced by value.
func (p Program) Patch(addr, value int) (Program, error) {
	if addr < 0 || addr >= len(p) {
		return nil, fmt.Errorf("patch %d=%d: %w", addr, value, OutOfBounds)
	}
	c := p.Clone()
	c[addr] = value
	return c, nil
}

func (p Program) String() string {
	var b strings.Builder
	for i, v := range p {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}
