package expr_test

import (
	"math"
	"math/big"
	"testing"

	"github.com/zephyrtronium/lambda/expr"
)

func TestBuilderSharing(t *testing.T) {
	b := expr.NewBuilder()
	x, y := b.Symbol("x"), b.Symbol("y")
	cases := []struct {
		name string
		a, c expr.Node
		same bool
	}{
		{"symbol", b.Symbol("x"), x, true},
		{"int", b.Int(2), b.Int(2), true},
		{"bigint", b.BigInt(big.NewInt(2)), b.Int(2), true},
		{"rat-int", b.Rat(big.NewRat(4, 2)), b.Int(2), true},
		{"rat", b.Rat(big.NewRat(1, 3)), b.Rat(big.NewRat(2, 6)), true},
		{"real", b.Real(0.5), b.Real(0.5), true},
		{"real-zero-sign", b.Real(0), b.Real(math.Copysign(0, -1)), false},
		{"real-int", b.Real(2), b.Int(2), false},
		{"complex", b.Complex(1 + 2i), b.Complex(1 + 2i), true},
		{"complex-real", b.Complex(2), b.Real(2), false},
		{"constant", b.Constant("pi"), b.Constant("pi"), true},
		{"add", b.Add(x, y), b.Add(x, y), true},
		{"add-order", b.Add(x, y), b.Add(y, x), false},
		{"add-mul", b.Add(x, y), b.Mul(x, y), false},
		{"pow", b.Pow(x, b.Int(2)), b.Pow(x, b.Int(2)), true},
		{"pow-swap", b.Pow(x, y), b.Pow(y, x), false},
		{"min", b.Min(x, y), b.Min(x, y), true},
		{"min-max", b.Min(x, y), b.Max(x, y), false},
		{"call", b.Call("sin", x), b.Call("sin", x), true},
		{"call-name", b.Call("sin", x), b.Call("cos", x), false},
		{"nested", b.Mul(b.Add(x, y), b.Call("sin", b.Add(x, y))), b.Mul(b.Add(x, y), b.Call("sin", b.Add(x, y))), true},
		{"sub", b.Sub(x, y), b.Add(x, b.Mul(b.Int(-1), y)), true},
		{"quo", b.Quo(x, y), b.Mul(x, b.Pow(y, b.Int(-1))), true},
		{"neg", b.Neg(x), b.Mul(b.Int(-1), x), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if (c.a == c.c) != c.same {
				t.Errorf("%v and %v: want same %t", c.a, c.c, c.same)
			}
		})
	}
}

func TestBuilderForeignNodes(t *testing.T) {
	b := expr.NewBuilder()
	x := expr.NewSymbol("x")
	p := b.Add(x, x)
	if q := b.Add(x, x); p != q {
		t.Error("sums of the same foreign node differ")
	}
	// A distinct symbol with the same name is a distinct node.
	if q := b.Add(x, expr.NewSymbol("x")); p == q {
		t.Error("sums of distinct foreign nodes are the same")
	}
	if c := b.Constant("tau"); c != nil {
		t.Errorf("unknown constant gave %v", c)
	}
}

func TestConstants(t *testing.T) {
	cases := []struct {
		name string
		v    float64
		tol  float64
	}{
		{"pi", math.Pi, 0},
		{"E", math.E, 0},
		{"GoldenRatio", math.Phi, 0},
		{"EulerGamma", 0.57721566490153286, 1e-16},
		{"Catalan", 0.91596559417721901, 1e-16},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if !expr.IsConstant(c.name) {
				t.Fatalf("%s is not a constant", c.name)
			}
			n := expr.NewConstant(c.name)
			v, ok := n.Float64()
			if !ok {
				t.Fatal("constant is not real")
			}
			if math.Abs(v-c.v) > c.tol {
				t.Errorf("want %.17g, got %.17g", c.v, v)
			}
			if n.Complex128() != complex(v, 0) {
				t.Errorf("complex value %v", n.Complex128())
			}
			if n.Name() != c.name || n.String() != c.name || n.Kind() != expr.KindConstant {
				t.Errorf("wrong identity %s %v", n, n.Kind())
			}
		})
	}
	if expr.IsConstant("e") {
		t.Error("e is a constant name")
	}
}

func TestNumbers(t *testing.T) {
	huge, _ := new(big.Int).SetString("1000000000000000000000000000000", 10)
	cases := []struct {
		name string
		n    expr.Number
		re   float64
		ok   bool
		c    complex128
		s    string
	}{
		{"int", expr.NewInteger(-3), -3, true, -3, "-3"},
		{"bigint", expr.NewBigInt(huge), 1e30, true, 1e30, "1000000000000000000000000000000"},
		{"rational", expr.NewRational(1, 4), 0.25, true, 0.25, "1/4"},
		{"real", expr.NewReal(1.5), 1.5, true, 1.5, "1.5"},
		{"complex", expr.NewComplex(1 - 2i), 0, false, 1 - 2i, "(1-2i)"},
		{"complex-zero-imag", expr.NewComplex(3), 0, false, 3, "(3+0i)"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			re, ok := c.n.Float64()
			if re != c.re || ok != c.ok {
				t.Errorf("Float64: want %g, %t; got %g, %t", c.re, c.ok, re, ok)
			}
			if z := c.n.Complex128(); z != c.c {
				t.Errorf("Complex128: want %v, got %v", c.c, z)
			}
			if s := c.n.String(); s != c.s {
				t.Errorf("String: want %q, got %q", c.s, s)
			}
			if c.n.Args() != nil {
				t.Errorf("leaf has args")
			}
		})
	}
}

func TestSymbols(t *testing.T) {
	b := expr.NewBuilder()
	z, y, x := b.Symbol("z"), b.Symbol("y"), b.Symbol("x")
	n := b.Add(z, b.Mul(y, b.Call("sin", z)), b.Pow(x, b.Constant("pi")), z)
	got := expr.Symbols(n)
	want := []string{"x", "y", "z"}
	if len(got) != len(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("want %v, got %v", want, got)
		}
	}
	if s := expr.Symbols(b.Int(1)); len(s) != 0 {
		t.Errorf("symbols of a constant: %v", s)
	}
}

func TestKindString(t *testing.T) {
	cases := []struct {
		k    expr.Kind
		want string
	}{
		{expr.KindNone, "None"},
		{expr.KindSymbol, "Symbol"},
		{expr.KindPow, "Pow"},
		{expr.KindMax, "Max"},
		{expr.Kind(-1), "Kind(-1)"},
		{expr.Kind(40), "Kind(40)"},
	}
	for _, c := range cases {
		if got := c.k.String(); got != c.want {
			t.Errorf("want %s, got %s", c.want, got)
		}
	}
}
