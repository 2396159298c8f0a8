package lambda

import (
	"errors"
	"strconv"

	"github.com/zephyrtronium/lambda/expr"
)

// ErrNotInitialized is returned when calling an evaluator that has no
// successfully compiled expression.
var ErrNotInitialized = errors.New("lambda: evaluator not initialized")

// ErrBackendUnavailable is the cause of every BackendError.
var ErrBackendUnavailable = errors.New("native backend unavailable")

// UnboundSymbolError is an error from compiling an expression that references
// a symbol missing from the binding table.
type UnboundSymbolError struct {
	// Name is the symbol's name.
	Name string
}

func (err *UnboundSymbolError) Error() string {
	return "unbound symbol: " + strconv.Quote(err.Name)
}

// DomainError is an error from compiling a construct that has no meaning in
// the evaluator's numeric domain, such as a complex constant in a real
// evaluator or max in a complex one.
type DomainError struct {
	// Node is the offending node.
	Node expr.Node
	// Domain is "real" or "complex".
	Domain string
}

func (err *DomainError) Error() string {
	return err.Node.Kind().String() + " " + err.Node.String() + " not supported in " + err.Domain + " domain"
}

// NotImplementedError is an error from compiling an expression construct
// that has no lowering, e.g. an unknown function or a malformed node.
type NotImplementedError struct {
	// What describes the construct.
	What string
	// Node is the offending node.
	Node expr.Node
}

func (err *NotImplementedError) Error() string {
	return "not implemented: " + err.What
}

// ArityError is an error from calling an evaluator with the wrong number of
// inputs or outputs.
type ArityError struct {
	// Want is the required count.
	Want int
	// Got is the supplied count.
	Got int
	// Output indicates that the count is of outputs rather than inputs.
	Output bool
}

func (err *ArityError) Error() string {
	s := "inputs"
	if err.Output {
		s = "outputs"
	}
	return "wrong number of " + s + ": want " + strconv.Itoa(err.Want) + ", got " + strconv.Itoa(err.Got)
}

// BackendError is an error from constructing the native backend. It unwraps
// to ErrBackendUnavailable and to its cause, if any.
type BackendError struct {
	// Reason describes why the backend could not be built.
	Reason string
	// Err is the underlying error, possibly nil.
	Err error
}

func (err *BackendError) Error() string {
	if err.Err != nil {
		return "native backend unavailable: " + err.Reason + ": " + err.Err.Error()
	}
	return "native backend unavailable: " + err.Reason
}

func (err *BackendError) Unwrap() []error {
	if err.Err == nil {
		return []error{ErrBackendUnavailable}
	}
	return []error{ErrBackendUnavailable, err.Err}
}
