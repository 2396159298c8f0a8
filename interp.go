package lambda

import (
	"context"
	"sync"
)

// backend executes a compiled tape.
type backend[T Number] interface {
	// call evaluates the tape on in, which has one value per input, and
	// writes one value per result to out.
	call(out, in []T) error
	// close releases resources held by the backend.
	close(ctx context.Context) error
}

// exec evaluates every op of the tape in order. regs must have one element
// per op.
func (t *Tape[T]) exec(d *domain[T], regs, in []T) {
	for i := range t.Ops {
		op := &t.Ops[i]
		args := t.operands(op)
		var r T
		switch op.Code {
		case OpInput:
			r = in[op.Arg]
		case OpConst:
			r = t.Consts[op.Arg]
		case OpAdd:
			r = regs[args[0]]
			for _, k := range args[1:] {
				r += regs[k]
			}
		case OpMul:
			r = regs[args[0]]
			for _, k := range args[1:] {
				r *= regs[k]
			}
		case OpPow:
			r = d.pow(regs[args[0]], regs[args[1]])
		case OpCall:
			r = t.calls[op.Arg](regs[args[0]])
		case OpMin:
			r = regs[args[0]]
			for _, k := range args[1:] {
				r = d.min(r, regs[k])
			}
		case OpMax:
			r = regs[args[0]]
			for _, k := range args[1:] {
				r = d.max(r, regs[k])
			}
		default:
			panic("lambda: invalid op " + op.Code.String())
		}
		regs[i] = r
	}
}

// interp is the interpreter backend. Register files are pooled so that
// concurrent calls do not share them.
type interp[T Number] struct {
	tape *Tape[T]
	dom  *domain[T]
	regs sync.Pool
}

func newInterp[T Number](tape *Tape[T], dom *domain[T]) *interp[T] {
	p := &interp[T]{tape: tape, dom: dom}
	p.regs.New = func() any {
		r := make([]T, len(tape.Ops))
		return &r
	}
	return p
}

func (p *interp[T]) call(out, in []T) error {
	rp := p.regs.Get().(*[]T)
	regs := *rp
	p.tape.exec(p.dom, regs, in)
	for j, k := range p.tape.Results {
		out[j] = regs[k]
	}
	p.regs.Put(rp)
	return nil
}

func (p *interp[T]) close(ctx context.Context) error {
	return nil
}
