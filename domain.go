package lambda

import (
	"math"
	"math/cmplx"

	"github.com/tetratelabs/wazero/api"
	"github.com/zephyrtronium/lambda/expr"
)

// Number is the set of numeric domains an evaluator can compute in.
type Number interface {
	float64 | complex128
}

// domain is the capability set of a numeric domain. Addition and
// multiplication are the native operators of T.
type domain[T Number] struct {
	name string
	// constant converts a constant node. ok is false if the value has no
	// representation in the domain.
	constant func(expr.Number) (T, bool)
	pow      func(x, y T) T
	// min and max are nil if the domain has no ordering.
	min, max func(x, y T) T
	// fn selects the domain's implementation of f, or nil.
	fn func(f *Func) func(T) T

	// lanes is the number of f64 values representing one T in native code.
	lanes int
	// load and store convert between T and its lanes.
	load  func(s []uint64) T
	store func(s []uint64, v T)
}

var realDomain = domain[float64]{
	name: "real",
	constant: func(n expr.Number) (float64, bool) {
		return n.Float64()
	},
	pow: math.Pow,
	min: math.Min,
	max: math.Max,
	fn: func(f *Func) func(float64) float64 {
		return f.Real
	},
	lanes: 1,
	load: func(s []uint64) float64 {
		return api.DecodeF64(s[0])
	},
	store: func(s []uint64, v float64) {
		s[0] = api.EncodeF64(v)
	},
}

var complexDomain = domain[complex128]{
	name: "complex",
	constant: func(n expr.Number) (complex128, bool) {
		return n.Complex128(), true
	},
	pow: cmplx.Pow,
	fn: func(f *Func) func(complex128) complex128 {
		return f.Complex
	},
	lanes: 2,
	load: func(s []uint64) complex128 {
		return complex(api.DecodeF64(s[0]), api.DecodeF64(s[1]))
	},
	store: func(s []uint64, v complex128) {
		s[0], s[1] = api.EncodeF64(real(v)), api.EncodeF64(imag(v))
	},
}
