// Package expr is a minimal immutable expression model. Nodes form a DAG in
// which shared subexpressions are the same pointer. Package lambda consumes
// expressions only through the read-only Node interface, so other models can
// be adapted by implementing it.
package expr

import (
	"math/big"
	"strconv"
	"strings"
)

// Kind identifies the shape of a node.
type Kind int8

const (
	KindNone Kind = iota

	KindSymbol   // free variable
	KindInteger  // exact integer
	KindRational // exact fraction
	KindReal     // double-precision real literal
	KindComplex  // double-precision complex literal
	KindConstant // named constant, e.g. pi

	KindAdd // sum of Args, in order
	KindMul // product of Args, in order
	KindPow // Args[0] ^ Args[1]
	KindFunc
	KindMin
	KindMax
)

var kindNames = [...]string{
	KindNone:     "None",
	KindSymbol:   "Symbol",
	KindInteger:  "Integer",
	KindRational: "Rational",
	KindReal:     "Real",
	KindComplex:  "Complex",
	KindConstant: "Constant",
	KindAdd:      "Add",
	KindMul:      "Mul",
	KindPow:      "Pow",
	KindFunc:     "Func",
	KindMin:      "Min",
	KindMax:      "Max",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Node is a read-only view of an expression node. Implementations must be
// pointer types: consumers use node identity to detect sharing.
type Node interface {
	// Kind returns the node's shape.
	Kind() Kind
	// Args returns the node's operands in a fixed order. Leaves return nil.
	// Callers must not modify the returned slice.
	Args() []Node
	String() string
}

// Number is a constant node.
type Number interface {
	Node
	// Float64 returns the value rounded to the nearest float64. ok is false if
	// the value is not real, which includes every complex literal.
	Float64() (v float64, ok bool)
	// Complex128 returns the value as a complex128.
	Complex128() complex128
}

// Symbol is a free variable. Symbols are bound by name.
type Symbol struct {
	name string
}

// NewSymbol creates a symbol.
func NewSymbol(name string) *Symbol {
	return &Symbol{name: name}
}

// Name returns the symbol's name.
func (s *Symbol) Name() string { return s.name }

func (s *Symbol) Kind() Kind     { return KindSymbol }
func (s *Symbol) Args() []Node   { return nil }
func (s *Symbol) String() string { return s.name }

// Integer is an exact integer constant.
type Integer struct {
	v *big.Int
}

// NewInteger creates an integer constant.
func NewInteger(v int64) *Integer {
	return &Integer{v: big.NewInt(v)}
}

// NewBigInt creates an integer constant with a copy of v.
func NewBigInt(v *big.Int) *Integer {
	return &Integer{v: new(big.Int).Set(v)}
}

func (n *Integer) Kind() Kind     { return KindInteger }
func (n *Integer) Args() []Node   { return nil }
func (n *Integer) String() string { return n.v.String() }

func (n *Integer) Float64() (float64, bool) {
	f, _ := new(big.Float).SetInt(n.v).Float64()
	return f, true
}

func (n *Integer) Complex128() complex128 {
	f, _ := n.Float64()
	return complex(f, 0)
}

// Rational is an exact fraction constant.
type Rational struct {
	v *big.Rat
}

// NewRational creates the constant num/den. Panics if den is zero.
func NewRational(num, den int64) *Rational {
	return &Rational{v: big.NewRat(num, den)}
}

// NewBigRat creates a rational constant with a copy of v.
func NewBigRat(v *big.Rat) *Rational {
	return &Rational{v: new(big.Rat).Set(v)}
}

func (n *Rational) Kind() Kind     { return KindRational }
func (n *Rational) Args() []Node   { return nil }
func (n *Rational) String() string { return n.v.RatString() }

func (n *Rational) Float64() (float64, bool) {
	f, _ := n.v.Float64()
	return f, true
}

func (n *Rational) Complex128() complex128 {
	f, _ := n.Float64()
	return complex(f, 0)
}

// Real is a double-precision real constant.
type Real struct {
	v float64
}

// NewReal creates a real constant.
func NewReal(v float64) *Real {
	return &Real{v: v}
}

func (n *Real) Kind() Kind               { return KindReal }
func (n *Real) Args() []Node             { return nil }
func (n *Real) String() string           { return strconv.FormatFloat(n.v, 'g', -1, 64) }
func (n *Real) Float64() (float64, bool) { return n.v, true }
func (n *Real) Complex128() complex128   { return complex(n.v, 0) }

// Complex is a double-precision complex constant. A complex literal is never
// real, even when its imaginary part is zero.
type Complex struct {
	v complex128
}

// NewComplex creates a complex constant.
func NewComplex(v complex128) *Complex {
	return &Complex{v: v}
}

func (n *Complex) Kind() Kind               { return KindComplex }
func (n *Complex) Args() []Node             { return nil }
func (n *Complex) String() string           { return strconv.FormatComplex(n.v, 'g', -1, 128) }
func (n *Complex) Float64() (float64, bool) { return 0, false }
func (n *Complex) Complex128() complex128   { return n.v }

// composite is the shared representation of every node with operands.
type composite struct {
	kind Kind
	name string
	args []Node
}

func (n *composite) Kind() Kind   { return n.kind }
func (n *composite) Args() []Node { return n.args }

func (n *composite) String() string {
	var b strings.Builder
	switch n.kind {
	case KindAdd, KindMul:
		sep := " + "
		if n.kind == KindMul {
			sep = "*"
		}
		b.WriteByte('(')
		for i, a := range n.args {
			if i > 0 {
				b.WriteString(sep)
			}
			b.WriteString(a.String())
		}
		b.WriteByte(')')
	case KindPow:
		b.WriteByte('(')
		for i, a := range n.args {
			if i > 0 {
				b.WriteByte('^')
			}
			b.WriteString(a.String())
		}
		b.WriteByte(')')
	default:
		b.WriteString(n.name)
		b.WriteByte('(')
		for i, a := range n.args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteByte(')')
	}
	return b.String()
}

// Func is an application of a named unary function such as sin or gamma.
type Func struct {
	composite
}

// Name returns the function's name.
func (f *Func) Name() string { return f.name }

func newComposite(kind Kind, name string, args []Node) *composite {
	return &composite{kind: kind, name: name, args: append([]Node(nil), args...)}
}

// Add creates the sum of args.
func Add(args ...Node) Node { return newComposite(KindAdd, "add", args) }

// Mul creates the product of args.
func Mul(args ...Node) Node { return newComposite(KindMul, "mul", args) }

// Pow creates base^exp.
func Pow(base, exp Node) Node { return newComposite(KindPow, "pow", []Node{base, exp}) }

// Min creates the minimum of args.
func Min(args ...Node) Node { return newComposite(KindMin, "min", args) }

// Max creates the maximum of args.
func Max(args ...Node) Node { return newComposite(KindMax, "max", args) }

// Call creates the application of the function name to x.
func Call(name string, x Node) *Func {
	return &Func{composite{kind: KindFunc, name: name, args: []Node{x}}}
}

// Sin, Cos, Gamma, LogGamma, and Erf are shortcuts for Call.
func Sin(x Node) *Func      { return Call("sin", x) }
func Cos(x Node) *Func      { return Call("cos", x) }
func Gamma(x Node) *Func    { return Call("gamma", x) }
func LogGamma(x Node) *Func { return Call("loggamma", x) }
func Erf(x Node) *Func      { return Call("erf", x) }

// Symbols returns the sorted names of the distinct symbols reachable from n.
func Symbols(n Node) []string {
	seen := make(map[Node]bool)
	names := make(map[string]bool)
	var walk func(Node)
	walk = func(n Node) {
		if seen[n] {
			return
		}
		seen[n] = true
		if s, ok := n.(*Symbol); ok {
			names[s.name] = true
			return
		}
		for _, a := range n.Args() {
			walk(a)
		}
	}
	walk(n)
	r := make([]string, 0, len(names))
	for k := range names {
		r = append(r, k)
	}
	sortstrs(r)
	return r
}

// sortstrs sorts a string slice without using package sort because that has
// reflection and allocation problems.
func sortstrs(names []string) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}
