// Package lambda compiles symbolic expressions into fast numeric functions.
//
// An expression is a DAG of expr.Node values: symbols, numeric constants,
// sums, products, powers, min and max, and applications of named functions
// such as sin or gamma. Init lowers the DAG into a Tape, a flat list of
// operations in which every distinct subexpression appears once, and prepares
// it for execution. Call then evaluates the tape for one vector of inputs,
// bound to symbols by position.
//
// Evaluators compute over float64 (NewReal) or complex128 (NewComplex). The
// tape runs either on an interpreter or as native machine code generated
// through WebAssembly. Both backends call the same Go implementations of
// pow and the named functions, so they agree on every result.
//
//	x, y := expr.NewSymbol("x"), expr.NewSymbol("y")
//	ev := lambda.NewReal()
//	err := ev.Init([]*expr.Symbol{x, y}, expr.Add(x, expr.Pow(y, expr.NewInteger(2))))
//	r, err := ev.Call([]float64{1.5, 2})
//
package lambda
