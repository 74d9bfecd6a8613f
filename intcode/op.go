package intcode

import "fmt"

// Op represents an Intcode opcode.
type Op int

const (
	Add       Op = 1
	Mul       Op = 2
	In        Op = 3
	Out       Op = 4
	JumpTrue  Op = 5
	JumpFalse Op = 6
	Less      Op = 7
	Equal     Op = 8
	Halt      Op = 99
)

// MaxOperands is the largest number of operands taken by any opcode.
const MaxOperands = 3

var opNames = map[Op]string{
	Add:       "ADD",
	Mul:       "MUL",
	In:        "IN",
	Out:       "OUT",
	JumpTrue:  "JNZ",
	JumpFalse: "JZ",
	Less:      "LT",
	Equal:     "EQ",
	Halt:      "HLT",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Valid reports whether o is a known opcode.
func (o Op) Valid() bool {
	_, ok := opNames[o]
	return ok
}

// Operands returns the number of operands that follow the opcode in memory.
// Unknown opcodes have no operands.
func (o Op) Operands() int {
	switch o {
	case Add, Mul, Less, Equal:
		return 3
	case JumpTrue, JumpFalse:
		return 2
	case In, Out:
		return 1
	}
	return 0
}

// Dest returns the index of the operand that names a write target,
// or -1 if the opcode does not write to memory.
func (o Op) Dest() int {
	switch o {
	case Add, Mul, Less, Equal:
		return 2
	case In:
		return 0
	}
	return -1
}

// Mode is a parameter addressing mode.
type Mode byte

const (
	// Position operands are addresses to be dereferenced.
	Position Mode = 0
	// Immediate operands are used literally.
	Immediate Mode = 1
)

func (m Mode) String() string {
	switch m {
	case Position:
		return "position"
	case Immediate:
		return "immediate"
	}
	return fmt.Sprintf("mode(%d)", byte(m))
}

// Instruction is a decoded instruction word.
type Instruction struct {
	Op    Op
	Modes [MaxOperands]Mode
}

// Mode returns the addressing mode of operand i.
// Operands without a mode digit are in Position mode.
func (in Instruction) Mode(i int) Mode {
	if i < 0 || i >= len(in.Modes) {
		return Position
	}
	return in.Modes[i]
}

func (in Instruction) String() string {
	s := in.Op.String()
	for i := 0; i < in.Op.Operands(); i++ {
		if in.Modes[i] == Immediate {
			s += " #"
		} else {
			s += " @"
		}
	}
	return s
}

// Decode splits an instruction word into its opcode and parameter modes.
// The opcode is the low two decimal digits of word; each digit above those
// gives the mode of the next operand, least significant first.
// Negative words and mode digits other than 0 or 1 are rejected with
// InvalidEncoding.
func Decode(word int) (Instruction, error) {
	var in Instruction
	if word < 0 {
		return in, InvalidEncoding
	}
	in.Op = Op(word % 100)
	for i, digits := 0, word/100; digits > 0; i, digits = i+1, digits/10 {
		var m Mode
		switch d := digits % 10; d {
		case 0:
			m = Position
		case 1:
			m = Immediate
		default:
			return in, InvalidEncoding
		}
		if i < len(in.Modes) {
			in.Modes[i] = m
		}
	}
	return in, nil
}
