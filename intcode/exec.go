// Package intcode provides an implementation of an Intcode computer,
// called Machine, that can be used to execute Intcode programs.
package intcode

import "fmt"

// Machine is an implementation of an Intcode computer.
//
// Mem is owned by the Machine for the duration of a run and may be
// modified by the program itself, so every instruction is decoded afresh
// from Mem when it is fetched.
type Machine struct {
	Mem    []int
	PC     int
	Input  int   // value stored by every In instruction
	Output []int // values produced by Out instructions, in order

	// Tracef, if non-nil, is called once for every instruction executed.
	Tracef func(format string, args ...any)
}

// NewMachine returns a Machine loaded with a copy of p, with PC at 0.
func NewMachine(p Program, input int) *Machine {
	return &Machine{
		Mem:   p.Clone(),
		Input: input,
	}
}

// Nopf is a Tracef that does nothing.
func Nopf(string, ...any) {}

// Run executes p with the given input value until it halts and returns the
// values it output. p is not modified.
func Run(p Program, input int) ([]int, error) {
	return NewMachine(p, input).Run()
}

// Run executes instructions until the program halts or faults.
// It returns the output produced so far; on a fault the output is nil.
func (m *Machine) Run() ([]int, error) {
	for {
		if err := m.Exec(); err == ErrHalt {
			return m.Output, nil
		} else if err != nil {
			return nil, err
		}
	}
}

// Exec executes the instruction at m.PC. It returns ErrHalt, leaving PC
// unchanged, if that instruction is Halt, and otherwise only returns a
// non-nil error, of type FaultError, if the instruction cannot be executed.
func (m *Machine) Exec() (err error) {
	var (
		pc   = m.PC
		word int
		in   Instruction
	)
	defer func() {
		if e := recover(); e != nil {
			if f, ok := e.(fault); ok {
				err = FaultError{
					Fault: f.Fault,
					Op:    in.Op,
					Word:  word,
					PC:    pc,
					Addr:  f.addr,
					Mem:   append([]int(nil), m.Mem...),
				}
			} else {
				panic(e)
			}
		}
	}()

	word = m.load(pc)
	in, err = Decode(word)
	if err != nil {
		panic(fault{Fault: InvalidEncoding})
	}
	if !in.Op.Valid() {
		panic(fault{Fault: UnknownOpcode})
	}
	if d := in.Op.Dest(); d >= 0 && in.Mode(d) != Position {
		panic(fault{Fault: IllegalWriteMode})
	}
	if m.Tracef != nil {
		m.trace(pc, in)
	}

	switch in.Op {
	case Halt:
		return ErrHalt
	case Add, Mul, Less, Equal:
		a, b := m.param(in, 0), m.param(in, 1)
		var v int
		switch in.Op {
		case Add:
			v = a + b
		case Mul:
			v = a * b
		case Less:
			v = boolInt(a < b)
		case Equal:
			v = boolInt(a == b)
		}
		m.store(m.arg(2), v)
	case In:
		m.store(m.arg(0), m.Input)
	case Out:
		m.Output = append(m.Output, m.param(in, 0))
	case JumpTrue, JumpFalse:
		cond, target := m.param(in, 0), m.param(in, 1)
		if (cond != 0) == (in.Op == JumpTrue) {
			m.jump(target)
			return nil
		}
	default:
		panic(fmt.Errorf("internal error: %v not implemented", in.Op))
	}
	m.PC = pc + 1 + in.Op.Operands()
	return nil
}

// arg returns the raw value of operand i of the instruction at PC.
func (m *Machine) arg(i int) int {
	return m.load(m.PC + 1 + i)
}

// param returns operand i of the instruction at PC, resolved according to
// its mode.
func (m *Machine) param(in Instruction, i int) int {
	v := m.arg(i)
	if in.Mode(i) == Immediate {
		return v
	}
	return m.load(v)
}

func (m *Machine) load(addr int) int {
	if addr < 0 || addr >= len(m.Mem) {
		panic(fault{Fault: OutOfBounds, addr: addr})
	}
	return m.Mem[addr]
}

func (m *Machine) store(addr, v int) {
	if addr < 0 || addr >= len(m.Mem) {
		panic(fault{Fault: OutOfBounds, addr: addr})
	}
	m.Mem[addr] = v
}

func (m *Machine) jump(addr int) {
	if addr < 0 || addr >= len(m.Mem) {
		panic(fault{Fault: OutOfBounds, addr: addr})
	}
	m.PC = addr
}

func (m *Machine) trace(pc int, in Instruction) {
	n := in.Op.Operands()
	if end := pc + 1 + n; end > len(m.Mem) {
		n -= end - len(m.Mem)
	}
	m.Tracef("%.4d %-4s %v", pc, in.Op, m.Mem[pc+1:pc+1+n])
}

// OpAddr returns the address associated with the instruction at pc: the
// write target for instructions that store to memory, or the jump target
// for jumps. It reports false if the instruction has no associated address
// or if that address cannot be determined without faulting.
func (m *Machine) OpAddr(pc int) (int, bool) {
	get := func(addr int) (int, bool) {
		if addr < 0 || addr >= len(m.Mem) {
			return 0, false
		}
		return m.Mem[addr], true
	}
	word, ok := get(pc)
	if !ok {
		return 0, false
	}
	in, err := Decode(word)
	if err != nil {
		return 0, false
	}
	switch in.Op {
	case Add, Mul, Less, Equal, In:
		return get(pc + 1 + in.Op.Dest())
	case JumpTrue, JumpFalse:
		v, ok := get(pc + 2)
		if !ok || in.Mode(1) == Immediate {
			return v, ok
		}
		return get(v)
	}
	return 0, false
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
