package lambda

import (
	"math"
	"math/cmplx"
)

// Func is a unary function usable in compiled expressions, identified by the
// name of expr.Func nodes. Either implementation may be nil if the function
// has no meaning in that domain; compiling a call to it is then a
// NotImplementedError. Both backends call the same implementation, so they
// agree exactly on function values.
type Func struct {
	Name    string
	Real    func(float64) float64
	Complex func(complex128) complex128
}

// globalfuncs is the default function registry. Evaluators copy it, so it is
// never modified after initialization.
var globalfuncs = map[string]*Func{
	"sin":   {"sin", math.Sin, cmplx.Sin},
	"cos":   {"cos", math.Cos, cmplx.Cos},
	"tan":   {"tan", math.Tan, cmplx.Tan},
	"asin":  {"asin", math.Asin, cmplx.Asin},
	"acos":  {"acos", math.Acos, cmplx.Acos},
	"atan":  {"atan", math.Atan, cmplx.Atan},
	"sinh":  {"sinh", math.Sinh, cmplx.Sinh},
	"cosh":  {"cosh", math.Cosh, cmplx.Cosh},
	"tanh":  {"tanh", math.Tanh, cmplx.Tanh},
	"asinh": {"asinh", math.Asinh, cmplx.Asinh},
	"acosh": {"acosh", math.Acosh, cmplx.Acosh},
	"atanh": {"atanh", math.Atanh, cmplx.Atanh},
	"exp":   {"exp", math.Exp, cmplx.Exp},
	"log":   {"log", math.Log, cmplx.Log},
	"sqrt":  {"sqrt", math.Sqrt, cmplx.Sqrt},
	"abs":   {"abs", math.Abs, cabs},

	// real only
	"floor":    {Name: "floor", Real: math.Floor},
	"ceiling":  {Name: "ceiling", Real: math.Ceil},
	"gamma":    {Name: "gamma", Real: math.Gamma},
	"loggamma": {Name: "loggamma", Real: lgamma},
	"erf":      {Name: "erf", Real: math.Erf},
	"erfc":     {Name: "erfc", Real: math.Erfc},
}

func cabs(z complex128) complex128 {
	return complex(cmplx.Abs(z), 0)
}

// lgamma is the natural logarithm of |Γ(x)|.
func lgamma(x float64) float64 {
	r, _ := math.Lgamma(x)
	return r
}

// DefaultFuncs returns a copy of the default function registry.
func DefaultFuncs() map[string]*Func {
	m := make(map[string]*Func, len(globalfuncs))
	for k, v := range globalfuncs {
		m[k] = v
	}
	return m
}
