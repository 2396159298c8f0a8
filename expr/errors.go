package expr

import "strconv"

// InputError is an error with position information. Every error resulting
// from invalid parser input implements InputError.
type InputError interface {
	error
	// Pos returns the number of runes up to and including the start of the
	// token that caused the error.
	Pos() int
}

// LexError indicates an invalid token.
type LexError struct {
	// Text is the partial token including the invalid rune.
	Text string
	// Kind is "number" or "" if no token kind was decided yet.
	Kind string
	// Col is the number of runes scanned including the invalid one.
	Col int
}

func (err *LexError) Error() string {
	if err.Kind == "" {
		return errpos(err.Col, "invalid token "+strconv.Quote(err.Text))
	}
	return errpos(err.Col, "invalid "+err.Kind+" "+strconv.Quote(err.Text))
}

func (err *LexError) Pos() int { return err.Col }

// OperatorError is an operator token in a position where it has no meaning,
// e.g. a unary "*".
type OperatorError struct {
	Col      int
	Operator string
	Unary    bool
}

func (err *OperatorError) Error() string {
	s := "binary"
	if err.Unary {
		s = "unary"
	}
	return errpos(err.Col, "unknown "+s+" operator "+strconv.Quote(err.Operator))
}

func (err *OperatorError) Pos() int { return err.Col }

// BracketError is a missing or mismatched bracket. Left or Right is empty
// when the corresponding bracket is missing.
type BracketError struct {
	Col   int
	Left  string
	Right string
}

func (err *BracketError) Error() string {
	switch {
	case err.Left == "":
		return errpos(err.Col, "close bracket "+err.Right+" with no open bracket")
	case err.Right == "":
		return errpos(err.Col, "open bracket "+err.Left+" with no close bracket")
	}
	return errpos(err.Col, "mismatched brackets "+err.Left+" "+err.Right)
}

func (err *BracketError) Pos() int { return err.Col }

// SeparatorError is a comma outside a function argument list.
type SeparatorError struct {
	Col int
}

func (err *SeparatorError) Error() string {
	return errpos(err.Col, "comma outside argument list")
}

func (err *SeparatorError) Pos() int { return err.Col }

// CallError is a function call with an unsupported number of arguments.
type CallError struct {
	Col  int
	Func string
	Len  int
}

func (err *CallError) Error() string {
	return errpos(err.Col, "cannot call "+err.Func+" with "+strconv.Itoa(err.Len)+" arguments")
}

func (err *CallError) Pos() int { return err.Col }

// EmptyExpressionError is a missing subexpression, e.g. "()" or "1 +".
type EmptyExpressionError struct {
	Col int
	// End is the token that ended the subexpression, or "" at end of input.
	End string
}

func (err *EmptyExpressionError) Error() string {
	if err.End == "" {
		return errpos(err.Col, "no expression")
	}
	return errpos(err.Col, "no expression before "+strconv.Quote(err.End))
}

func (err *EmptyExpressionError) Pos() int { return err.Col }

func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

var (
	_ InputError = (*LexError)(nil)
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*SeparatorError)(nil)
	_ InputError = (*CallError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
)
