package expr_test

import (
	"fmt"

	"github.com/zephyrtronium/lambda/expr"
)

func ExampleParseString() {
	n, err := expr.ParseString("x + y z + x^2 - max(x, 3)")
	if err != nil {
		panic(err)
	}
	fmt.Println(n)
	fmt.Println(expr.Symbols(n))
	// Output:
	// (x + (y*z) + (x^2) + (-1*max(x, 3)))
	// [x y z]
}
