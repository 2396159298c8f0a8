package expr

import (
	"errors"
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

// Expr = num | name | Call | Neg | Plus | Add | Sub | Mul | Div | Pow | '(' Expr ')' | '[' Expr ']' | '{' Expr '}'
// Call = funcname Expr | funcname ArgList | funcname '^' Expr Call
// ArgList = '(' Expr { ',' Expr } ')' | '[' … ']' | '{' … '}'
// Mul = Expr '*' Expr | Expr '×' Expr | Expr Expr
// Div = Expr '/' Expr | Expr '÷' Expr
// Pow = Expr '^' Expr
//
// Sums and products chained at one level become a single n-ary node, so
// "x + y z + x^2" parses as Add(x, Mul(y, z), Pow(x, 2)). Subtraction and
// division are a + (-1)*b and a * b^-1.

// ParseOption is an option for parsing.
type ParseOption interface {
	parseOption(*parser)
}

// DefaultFuncs lists the function names the parser recognizes by default.
// min and max take any positive number of arguments; the rest take one.
var DefaultFuncs = []string{
	"sin", "cos", "tan", "asin", "acos", "atan",
	"sinh", "cosh", "tanh", "asinh", "acosh", "atanh",
	"exp", "log", "sqrt", "abs", "floor", "ceiling",
	"gamma", "loggamma", "erf", "erfc",
	"min", "max",
}

var defaultFuncs = func() map[string]bool {
	m := make(map[string]bool, len(DefaultFuncs))
	for _, name := range DefaultFuncs {
		m[name] = true
	}
	return m
}()

type parser struct {
	b     *Builder
	funcs map[string]bool
	owned bool
	imag  string
	stop  string
}

type funcsopt []string

// ParseFuncs adds function names to recognize during parsing, in addition to
// DefaultFuncs. Each added function takes one argument.
func ParseFuncs(names ...string) ParseOption {
	return funcsopt(names)
}

func (o funcsopt) parseOption(p *parser) {
	if !p.owned {
		m := make(map[string]bool, len(p.funcs)+len(o))
		for k, v := range p.funcs {
			m[k] = v
		}
		p.funcs, p.owned = m, true
	}
	for _, name := range o {
		p.funcs[name] = true
	}
}

type builderopt struct{ b *Builder }

// WithBuilder makes the parser construct nodes with b, so that expressions
// parsed separately share their common subexpressions.
func WithBuilder(b *Builder) ParseOption {
	return builderopt{b}
}

func (o builderopt) parseOption(p *parser) { p.b = o.b }

type imagopt string

// ImaginaryUnit sets the name parsed as the imaginary unit. The default is
// "I". An empty name disables complex literals.
func ImaginaryUnit(name string) ParseOption {
	return imagopt(name)
}

func (o imagopt) parseOption(p *parser) { p.imag = string(o) }

type stopopt string

// StopOn tells the parser to treat whitespace runes as ending the expression
// where an operator or term could continue it. Whitespace does not end an
// expression at its beginning or after an operator or open bracket. Panics if
// any rune is not whitespace.
func StopOn(chars ...rune) ParseOption {
	for _, r := range chars {
		if !unicode.IsSpace(r) {
			panic("expr: cannot stop on " + strconv.QuoteRune(r))
		}
	}
	return stopopt(chars)
}

func (o stopopt) parseOption(p *parser) { p.stop = string(o) }

// Parse parses an expression. Structurally identical subexpressions within
// the input are the same node.
func Parse(src io.RuneScanner, opts ...ParseOption) (Node, error) {
	p := parser{funcs: defaultFuncs, imag: "I"}
	for _, opt := range opts {
		opt.parseOption(&p)
	}
	if p.b == nil {
		p.b = NewBuilder()
	}
	scan := newLexer(src)
	n, err := p.term(scan, exprprec)
	if err != nil {
		return nil, err
	}
	if tok := scan.pushed(); tok.kind != tokenEOF {
		return nil, unexpected(tok, -1)
	}
	return n, nil
}

// ParseString is a shortcut to parse an expression from a string.
func ParseString(src string, opts ...ParseOption) (Node, error) {
	return Parse(strings.NewReader(src), opts...)
}

// term parses operands and binary operators binding more tightly than until.
// On success, the last scanned token is pushed back. The result is nil with no
// error if the term is empty and ended by a close bracket.
func (p *parser) term(scan *lexer, until operator) (Node, error) {
	n, err := p.lhs(scan, until)
	if err != nil || n == nil {
		return nil, err
	}
	var (
		chain []Node
		kind  Kind
	)
	flush := func() {
		switch {
		case chain == nil:
		case kind == KindAdd:
			n = p.b.Add(chain...)
		default:
			n = p.b.Mul(chain...)
		}
		chain = nil
	}
	extend := func(k Kind, rhs Node) {
		if chain == nil || kind != k {
			flush()
			chain, kind = []Node{n}, k
		}
		chain = append(chain, rhs)
	}
	for {
		tok, err := scan.next(p.stop)
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenNum, tokenIdent, tokenOpen:
			// Implicit multiplication.
			scan.unread(tok)
			if !termprec.moreBinding(until) {
				flush()
				return n, nil
			}
			rhs, err := p.term(scan, termprec)
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				end := scan.pushed()
				return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
			}
			extend(KindMul, rhs)
		case tokenOp:
			op := binop(tok.text)
			if op.op == opNone {
				return nil, &OperatorError{Col: tok.pos, Operator: tok.text}
			}
			if !op.moreBinding(until) {
				scan.unread(tok)
				flush()
				return n, nil
			}
			rhs, err := p.term(scan, op)
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				end := scan.pushed()
				return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
			}
			switch op.op {
			case opAdd:
				extend(KindAdd, rhs)
			case opSub:
				extend(KindAdd, p.b.Neg(rhs))
			case opMul:
				extend(KindMul, rhs)
			case opDiv:
				extend(KindMul, p.b.Pow(rhs, p.b.Int(-1)))
			case opPow:
				flush()
				n = p.b.Pow(n, rhs)
			}
		case tokenClose, tokenSep, tokenEOF:
			scan.unread(tok)
			flush()
			return n, nil
		default:
			panic("expr: unknown token " + tok.String())
		}
	}
}

// lhs parses the first operand of a term.
func (p *parser) lhs(scan *lexer, until operator) (Node, error) {
	// Stop characters never end an expression before its first operand.
	tok, err := scan.next("")
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokenNum:
		return p.number(tok)
	case tokenIdent:
		switch {
		case p.funcs[tok.text]:
			return p.call(scan, tok.text, until)
		case tok.text == p.imag:
			return p.b.Complex(1i), nil
		case tok.text == "e":
			return p.b.Constant("E"), nil
		case IsConstant(tok.text):
			return p.b.Constant(tok.text), nil
		}
		return p.b.Symbol(tok.text), nil
	case tokenOp:
		op := unop(tok.text)
		if op.op == opNone {
			return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
		}
		if !op.moreBinding(until) {
			// x^-y is x^(-y).
			op.prec, op.right = until.prec, until.right
		}
		rhs, err := p.term(scan, op)
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			end := scan.pushed()
			return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
		}
		if op.op == opNeg {
			return p.b.Neg(rhs), nil
		}
		return rhs, nil
	case tokenOpen:
		match := strings.Index(OpenBrackets, tok.text)
		rhs, err := p.term(scan, exprprec)
		if err != nil {
			return nil, err
		}
		end := scan.pushed()
		if end.kind != tokenClose || end.text != CloseBrackets[match:match+1] {
			return nil, unexpected(end, match)
		}
		if rhs == nil {
			return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
		}
		return rhs, nil
	case tokenClose:
		scan.unread(tok)
		return nil, nil
	case tokenSep:
		return nil, &SeparatorError{Col: tok.pos}
	case tokenEOF:
		return nil, &EmptyExpressionError{Col: tok.pos}
	}
	panic("expr: unknown token " + tok.String())
}

// call parses the arguments of a call to the function name.
func (p *parser) call(scan *lexer, name string, until operator) (Node, error) {
	tok, err := scan.next(p.stop)
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokenOp:
		// cos^2 x is (cos x)^2.
		if tok.text == "^" {
			up, err := p.term(scan, powprec)
			if err != nil {
				return nil, err
			}
			if up == nil {
				end := scan.pushed()
				return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
			}
			f, err := p.call(scan, name, until)
			if err != nil {
				return nil, err
			}
			return p.b.Pow(f, up), nil
		}
		fallthrough
	case tokenNum, tokenIdent:
		// Bare argument: exp x is exp(x).
		scan.unread(tok)
		if termprec.moreBinding(until) {
			until = termprec
		}
		arg, err := p.term(scan, until)
		if err != nil {
			return nil, err
		}
		if arg == nil {
			end := scan.pushed()
			return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
		}
		return p.apply(name, []Node{arg}, tok.pos)
	case tokenOpen:
		match := strings.Index(OpenBrackets, tok.text)
		args, err := p.arglist(scan, tok.text)
		if err != nil {
			return nil, err
		}
		end := scan.pushed()
		if end.text != CloseBrackets[match:match+1] {
			return nil, &BracketError{Col: end.pos, Left: tok.text, Right: end.text}
		}
		return p.apply(name, args, tok.pos)
	}
	return nil, &CallError{Col: tok.pos, Func: name}
}

func (p *parser) apply(name string, args []Node, col int) (Node, error) {
	switch name {
	case "min", "max":
		if len(args) == 0 {
			return nil, &CallError{Col: col, Func: name}
		}
		if name == "min" {
			return p.b.Min(args...), nil
		}
		return p.b.Max(args...), nil
	}
	if len(args) != 1 {
		return nil, &CallError{Col: col, Func: name, Len: len(args)}
	}
	return p.b.Call(name, args[0]), nil
}

// arglist parses a bracketed list of zero or more arguments. On success, the
// close bracket is pushed back.
func (p *parser) arglist(scan *lexer, open string) ([]Node, error) {
	var args []Node
	for {
		arg, err := p.term(scan, exprprec)
		if err != nil {
			// A missing close bracket is more helpful than an empty expression.
			var ee *EmptyExpressionError
			if errors.As(err, &ee) && ee.End == "" {
				err = &BracketError{Col: ee.Col, Left: open}
			}
			return nil, err
		}
		end := scan.pushed()
		switch end.kind {
		case tokenClose:
			scan.unread(end)
			if arg == nil {
				if len(args) != 0 {
					return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
				}
				return nil, nil
			}
			return append(args, arg), nil
		case tokenSep:
			if arg == nil {
				return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
			}
			args = append(args, arg)
		case tokenEOF:
			return nil, &BracketError{Col: end.pos, Left: open}
		default:
			panic("expr: argument ended on " + end.String())
		}
	}
}

func (p *parser) number(tok token) (Node, error) {
	if tok.text == "inf" || tok.text == "Inf" {
		return p.b.Real(math.Inf(1)), nil
	}
	if !strings.ContainsAny(tok.text, ".eE") {
		v, ok := new(big.Int).SetString(tok.text, 10)
		if !ok {
			return nil, &LexError{Text: tok.text, Kind: "number", Col: tok.pos}
		}
		return p.b.BigInt(v), nil
	}
	v, err := strconv.ParseFloat(tok.text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, &LexError{Text: tok.text, Kind: "number", Col: tok.pos}
	}
	return p.b.Real(v), nil
}

// unexpected returns an error for a token ending a subexpression where it
// should not. match is the index of the open bracket the subexpression
// should close, or -1.
func unexpected(tok token, match int) error {
	left := ""
	if match >= 0 {
		left = OpenBrackets[match : match+1]
	}
	switch tok.kind {
	case tokenEOF:
		return &BracketError{Col: tok.pos, Left: left}
	case tokenClose:
		return &BracketError{Col: tok.pos, Left: left, Right: tok.text}
	case tokenSep:
		return &SeparatorError{Col: tok.pos}
	}
	panic("expr: unexpected end token " + tok.String())
}

type opKind int8

const (
	opNone opKind = iota
	opAdd
	opSub
	opMul
	opDiv
	opPow
	opNeg
	opPlus
)

type operator struct {
	// prec is the precedence. Higher binds more tightly.
	prec  int8
	right bool
	op    opKind
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

func binop(text string) operator {
	switch text {
	case "+":
		return operator{1, false, opAdd}
	case "-":
		return operator{1, false, opSub}
	case "*", "×":
		return operator{5, false, opMul}
	case "/", "÷":
		return operator{5, false, opDiv}
	case "^":
		return operator{15, true, opPow}
	}
	return operator{}
}

func unop(text string) operator {
	switch text {
	case "+":
		return operator{10, true, opPlus}
	case "-":
		return operator{10, true, opNeg}
	}
	return operator{}
}

var (
	// termprec is the precedence of implicit multiplication.
	termprec = operator{5, true, opMul}
	powprec  = binop("^")
	// exprprec is the precedence of a whole subexpression.
	exprprec = operator{-128, true, opNone}
)
