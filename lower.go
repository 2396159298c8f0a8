package lambda

import (
	"strconv"

	"github.com/zephyrtronium/lambda/expr"
)

// bindings maps symbol names to input slots. When a name appears more than
// once in the binding table, its first slot wins.
type bindings map[string]int

func bind(symbols []*expr.Symbol) bindings {
	b := make(bindings, len(symbols))
	for i, s := range symbols {
		if _, ok := b[s.Name()]; !ok {
			b[s.Name()] = i
		}
	}
	return b
}

// named is a node with a name, i.e. a symbol or function application.
type named interface {
	Name() string
}

// foldops maps n-ary node kinds to the ops folding their operands.
var foldops = map[expr.Kind]Opcode{
	expr.KindAdd: OpAdd,
	expr.KindMul: OpMul,
	expr.KindMin: OpMin,
	expr.KindMax: OpMax,
}

// lowering is the state of compiling a DAG into a tape.
type lowering[T Number] struct {
	dom   *domain[T]
	funcs map[string]*Func
	slots bindings
	tape  *Tape[T]
	// memo maps each lowered node to the position of its value. Keys are
	// compared by identity, since every Node is a pointer.
	memo map[expr.Node]int
	// inputs maps input slots to the positions loading them.
	inputs map[int]int
	// fnidx maps functions to their index in tape.Funcs.
	fnidx map[*Func]int
}

// compile lowers roots into a single tape with one result per root. Every
// node reachable from any root is lowered exactly once.
func compile[T Number](dom *domain[T], funcs map[string]*Func, symbols []*expr.Symbol, roots []expr.Node) (*Tape[T], error) {
	lw := lowering[T]{
		dom:    dom,
		funcs:  funcs,
		slots:  bind(symbols),
		tape:   &Tape[T]{Inputs: len(symbols)},
		memo:   make(map[expr.Node]int),
		inputs: make(map[int]int),
		fnidx:  make(map[*Func]int),
	}
	for _, root := range roots {
		k, err := lw.lower(root)
		if err != nil {
			return nil, err
		}
		lw.tape.Results = append(lw.tape.Results, k)
	}
	return lw.tape, nil
}

// lower ensures n is on the tape and returns its position.
func (lw *lowering[T]) lower(n expr.Node) (int, error) {
	if n == nil {
		return 0, &NotImplementedError{What: "nil node"}
	}
	if k, ok := lw.memo[n]; ok {
		return k, nil
	}
	var k int
	switch kind := n.Kind(); kind {
	case expr.KindSymbol:
		s, ok := n.(named)
		if !ok {
			return 0, &NotImplementedError{What: "symbol without a name", Node: n}
		}
		slot, ok := lw.slots[s.Name()]
		if !ok {
			return 0, &UnboundSymbolError{Name: s.Name()}
		}
		if k, ok = lw.inputs[slot]; !ok {
			k = lw.tape.emit(OpInput, slot)
			lw.inputs[slot] = k
		}
	case expr.KindInteger, expr.KindRational, expr.KindReal, expr.KindComplex, expr.KindConstant:
		num, ok := n.(expr.Number)
		if !ok {
			return 0, &NotImplementedError{What: kind.String() + " without a value", Node: n}
		}
		v, ok := lw.dom.constant(num)
		if !ok {
			return 0, &DomainError{Node: n, Domain: lw.dom.name}
		}
		k = lw.tape.emit(OpConst, len(lw.tape.Consts))
		lw.tape.Consts = append(lw.tape.Consts, v)
	case expr.KindAdd, expr.KindMul, expr.KindMin, expr.KindMax:
		code := foldops[kind]
		if (code == OpMin || code == OpMax) && lw.dom.min == nil {
			return 0, &DomainError{Node: n, Domain: lw.dom.name}
		}
		args, err := lw.lowerArgs(n, -1)
		if err != nil {
			return 0, err
		}
		k = lw.tape.emit(code, 0, args...)
	case expr.KindPow:
		args, err := lw.lowerArgs(n, 2)
		if err != nil {
			return 0, err
		}
		k = lw.tape.emit(OpPow, 0, args...)
	case expr.KindFunc:
		s, ok := n.(named)
		if !ok {
			return 0, &NotImplementedError{What: "function without a name", Node: n}
		}
		f := lw.funcs[s.Name()]
		if f == nil {
			return 0, &NotImplementedError{What: "function " + s.Name(), Node: n}
		}
		call := lw.dom.fn(f)
		if call == nil {
			return 0, &NotImplementedError{What: "function " + s.Name() + " in " + lw.dom.name + " domain", Node: n}
		}
		args, err := lw.lowerArgs(n, 1)
		if err != nil {
			return 0, err
		}
		idx, ok := lw.fnidx[f]
		if !ok {
			idx = len(lw.tape.Funcs)
			lw.fnidx[f] = idx
			lw.tape.Funcs = append(lw.tape.Funcs, f)
			lw.tape.calls = append(lw.tape.calls, call)
		}
		k = lw.tape.emit(OpCall, idx, args...)
	default:
		return 0, &NotImplementedError{What: "node kind " + kind.String(), Node: n}
	}
	lw.memo[n] = k
	return k, nil
}

// lowerArgs lowers the operands of n, which must number want, or at least one
// if want is negative.
func (lw *lowering[T]) lowerArgs(n expr.Node, want int) ([]int, error) {
	args := n.Args()
	if want < 0 && len(args) == 0 || want >= 0 && len(args) != want {
		return nil, &NotImplementedError{
			What: n.Kind().String() + " with " + strconv.Itoa(len(args)) + " operands",
			Node: n,
		}
	}
	r := make([]int, len(args))
	for i, a := range args {
		k, err := lw.lower(a)
		if err != nil {
			return nil, err
		}
		r[i] = k
	}
	return r, nil
}
