package expr

import (
	"math/big"

	"github.com/zephyrtronium/bigfloat"
)

// constprec is the working precision for named constants before they are
// rounded to float64.
const constprec = 128

// Constant is a named mathematical constant.
type Constant struct {
	name string
	v    float64
}

// constants computes the value of each known named constant at constprec.
var constants = map[string]func(out *big.Float) *big.Float{
	"pi": bigfloat.Pi,
	"E": func(out *big.Float) *big.Float {
		one := new(big.Float).SetPrec(out.Prec()).SetInt64(1)
		return bigfloat.Exp(out, one)
	},
	"GoldenRatio": func(out *big.Float) *big.Float {
		out.SetInt64(5)
		out.Sqrt(out)
		out.Add(out, big.NewFloat(1))
		return out.Quo(out, big.NewFloat(2))
	},
	"EulerGamma": decimal("0.57721566490153286060651209008240243104215933593992"),
	"Catalan":    decimal("0.91596559417721901505460351493238411077414937428167"),
}

func decimal(s string) func(out *big.Float) *big.Float {
	return func(out *big.Float) *big.Float {
		if _, ok := out.SetString(s); !ok {
			panic("expr: invalid constant " + s)
		}
		return out
	}
}

// NewConstant creates a named constant. The known names are pi, E,
// GoldenRatio, EulerGamma, and Catalan. The result is nil for any other name.
func NewConstant(name string) *Constant {
	f := constants[name]
	if f == nil {
		return nil
	}
	var out big.Float
	out.SetPrec(constprec)
	f(&out)
	v, _ := out.Float64()
	return &Constant{name: name, v: v}
}

// IsConstant returns whether name is a known named constant.
func IsConstant(name string) bool {
	return constants[name] != nil
}

// Name returns the constant's name.
func (c *Constant) Name() string { return c.name }

func (c *Constant) Kind() Kind               { return KindConstant }
func (c *Constant) Args() []Node             { return nil }
func (c *Constant) String() string           { return c.name }
func (c *Constant) Float64() (float64, bool) { return c.v, true }
func (c *Constant) Complex128() complex128   { return complex(c.v, 0) }
