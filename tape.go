package lambda

import (
	"fmt"
	"strconv"
	"strings"
)

// Opcode is the operation of one tape entry.
type Opcode uint8

const (
	OpInput Opcode = iota // Arg is the input slot
	OpConst               // Arg is the constant index
	OpAdd
	OpMul
	OpPow  // operands are base, exponent
	OpCall // Arg is the function index; one operand
	OpMin
	OpMax
)

var opnames = [...]string{
	OpInput: "input",
	OpConst: "const",
	OpAdd:   "add",
	OpMul:   "mul",
	OpPow:   "pow",
	OpCall:  "call",
	OpMin:   "min",
	OpMax:   "max",
}

func (c Opcode) String() string {
	if int(c) >= len(opnames) {
		return "Opcode(" + strconv.Itoa(int(c)) + ")"
	}
	return opnames[c]
}

// Op is one tape entry. Its result is the register at its own position.
type Op struct {
	Code Opcode
	// Arg is the input slot, constant index, or function index, depending on
	// Code.
	Arg int
	// Operands of the op are Tape.Operands[Start : Start+N]. Every operand is
	// a position strictly before this op's.
	Start, N int
}

// Tape is a dependency-ordered list of operations over the numeric type T.
// A tape is immutable once lowering finishes.
type Tape[T Number] struct {
	Ops      []Op
	Operands []int
	Consts   []T
	Funcs    []*Func
	// Inputs is the number of input values a call takes.
	Inputs int
	// Results holds the positions of the output values, one per root.
	Results []int

	// calls holds the domain implementation of each of Funcs.
	calls []func(T) T
}

// operands returns the operand positions of op.
func (t *Tape[T]) operands(op *Op) []int {
	return t.Operands[op.Start : op.Start+op.N]
}

// emit appends an op and returns its position.
func (t *Tape[T]) emit(code Opcode, arg int, operands ...int) int {
	t.Ops = append(t.Ops, Op{Code: code, Arg: arg, Start: len(t.Operands), N: len(operands)})
	t.Operands = append(t.Operands, operands...)
	return len(t.Ops) - 1
}

// String formats the tape as one line per op, e.g. "  3 = add %0 %2".
func (t *Tape[T]) String() string {
	var b strings.Builder
	for i := range t.Ops {
		op := &t.Ops[i]
		fmt.Fprintf(&b, "%3d = %s", i, op.Code)
		switch op.Code {
		case OpInput:
			fmt.Fprintf(&b, " $%d", op.Arg)
		case OpConst:
			fmt.Fprintf(&b, " %v", t.Consts[op.Arg])
		case OpCall:
			b.WriteString(" " + t.Funcs[op.Arg].Name)
		}
		for _, k := range t.operands(op) {
			fmt.Fprintf(&b, " %%%d", k)
		}
		b.WriteByte('\n')
	}
	b.WriteString("out")
	for _, k := range t.Results {
		fmt.Fprintf(&b, " %%%d", k)
	}
	b.WriteByte('\n')
	return b.String()
}
