package expr

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Builder constructs nodes so that structurally identical subexpressions are
// the same node. A Builder is not safe for concurrent use.
type Builder struct {
	ids   map[Node]int
	nodes map[string]Node
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		ids:   make(map[Node]int),
		nodes: make(map[string]Node),
	}
}

// intern returns the existing node for key, or records n under key.
func (b *Builder) intern(key string, n Node) Node {
	if r, ok := b.nodes[key]; ok {
		return r
	}
	b.nodes[key] = n
	b.ids[n] = len(b.ids) + 1
	return n
}

// id returns the builder's identifier for n, registering n if it was not
// created by this builder.
func (b *Builder) id(n Node) int {
	if k, ok := b.ids[n]; ok {
		return k
	}
	k := len(b.ids) + 1
	b.ids[n] = k
	return k
}

func (b *Builder) key(tag string, args []Node) string {
	var s strings.Builder
	s.WriteString(tag)
	for _, a := range args {
		s.WriteByte(' ')
		s.WriteString(strconv.Itoa(b.id(a)))
	}
	return s.String()
}

// Symbol returns the symbol with the given name.
func (b *Builder) Symbol(name string) *Symbol {
	return b.intern("sym "+name, NewSymbol(name)).(*Symbol)
}

// Int returns the integer constant v.
func (b *Builder) Int(v int64) *Integer {
	return b.intern("int "+strconv.FormatInt(v, 10), NewInteger(v)).(*Integer)
}

// BigInt returns the integer constant v.
func (b *Builder) BigInt(v *big.Int) *Integer {
	return b.intern("int "+v.String(), NewBigInt(v)).(*Integer)
}

// Rat returns the rational constant v. Integral values become integers.
func (b *Builder) Rat(v *big.Rat) Node {
	if v.IsInt() {
		return b.BigInt(v.Num())
	}
	return b.intern("rat "+v.RatString(), NewBigRat(v))
}

// Real returns the real constant v.
func (b *Builder) Real(v float64) *Real {
	return b.intern("real "+strconv.FormatUint(math.Float64bits(v), 16), NewReal(v)).(*Real)
}

// Complex returns the complex constant v.
func (b *Builder) Complex(v complex128) *Complex {
	k := "cplx " + strconv.FormatUint(math.Float64bits(real(v)), 16) + " " + strconv.FormatUint(math.Float64bits(imag(v)), 16)
	return b.intern(k, NewComplex(v)).(*Complex)
}

// Constant returns the named constant, or nil if the name is unknown.
func (b *Builder) Constant(name string) *Constant {
	c := NewConstant(name)
	if c == nil {
		return nil
	}
	return b.intern("const "+name, c).(*Constant)
}

// Add returns the sum of args.
func (b *Builder) Add(args ...Node) Node {
	return b.intern(b.key("add", args), Add(args...))
}

// Mul returns the product of args.
func (b *Builder) Mul(args ...Node) Node {
	return b.intern(b.key("mul", args), Mul(args...))
}

// Pow returns base^exp.
func (b *Builder) Pow(base, exp Node) Node {
	args := []Node{base, exp}
	return b.intern(b.key("pow", args), Pow(base, exp))
}

// Min returns the minimum of args.
func (b *Builder) Min(args ...Node) Node {
	return b.intern(b.key("min", args), Min(args...))
}

// Max returns the maximum of args.
func (b *Builder) Max(args ...Node) Node {
	return b.intern(b.key("max", args), Max(args...))
}

// Call returns the application of the function name to x.
func (b *Builder) Call(name string, x Node) *Func {
	return b.intern(b.key("call "+name, []Node{x}), Call(name, x)).(*Func)
}

// Neg returns -1 * x.
func (b *Builder) Neg(x Node) Node {
	return b.Mul(b.Int(-1), x)
}

// Sub returns x + -1 * y.
func (b *Builder) Sub(x, y Node) Node {
	return b.Add(x, b.Neg(y))
}

// Quo returns x * y^-1.
func (b *Builder) Quo(x, y Node) Node {
	return b.Mul(x, b.Pow(y, b.Int(-1)))
}
