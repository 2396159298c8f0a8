package expr

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"
)

type token struct {
	text string
	kind tokenKind
	pos  int
}

func (t token) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

type tokenKind int8

const (
	tokenNone tokenKind = iota
	tokenEOF
	tokenNum   // integer or real literal
	tokenIdent // symbol, constant, or function name
	tokenOp
	tokenOpen
	tokenClose
	tokenSep // argument separator, always ","
)

var tokenNames = [...]string{
	tokenNone:  "None",
	tokenEOF:   "EOF",
	tokenNum:   "Num",
	tokenIdent: "Ident",
	tokenOp:    "Op",
	tokenOpen:  "Open",
	tokenClose: "Close",
	tokenSep:   "Sep",
}

func (k tokenKind) String() string {
	if k < 0 || int(k) >= len(tokenNames) {
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return tokenNames[k]
}

// Operators contains the runes which are considered to be operators.
const Operators = "+-*/^×÷"

// OpenBrackets and CloseBrackets contain the runes which group expressions.
// The bracket at rune index k in OpenBrackets matches the one at rune index k
// in CloseBrackets.
const (
	OpenBrackets  = "([{"
	CloseBrackets = ")]}"
)

// lexer scans tokens from a rune stream. It reads no further than the end of
// the token it returns, so a caller can resume reading the source after an
// expression ends at a stop rune.
type lexer struct {
	src  io.RuneScanner
	buf  strings.Builder
	col  int // column of the next rune
	err  error
	back token
	done bool
}

func newLexer(src io.RuneScanner) *lexer {
	return &lexer{src: src, col: 1}
}

// unread pushes a token back so that next returns it. Panics if a token is
// already pushed.
func (l *lexer) unread(tok token) {
	if l.back.kind != tokenNone {
		panic("expr: double unread")
	}
	l.back = tok
}

// pushed returns the pushed token. Panics if there is none.
func (l *lexer) pushed() token {
	tok := l.back
	if tok.kind == tokenNone {
		panic("expr: no pushed token")
	}
	l.back = token{}
	return tok
}

// next scans a token. Whitespace runes in stop end the input. After the first
// EOF token, next returns io.EOF unless the EOF token was pushed back.
func (l *lexer) next(stop string) (token, error) {
	if l.back.kind != tokenNone {
		return l.pushed(), nil
	}
	if l.done {
		return token{}, io.EOF
	}
	defer l.buf.Reset()
	r, err := l.skipSpace(stop)
	if err != nil {
		if errors.Is(err, io.EOF) {
			l.done = true
			return token{kind: tokenEOF, pos: l.col}, nil
		}
		return token{pos: l.col}, err
	}
	tok := token{pos: l.col - 1}
	if unicode.IsSpace(r) {
		// Stop rune.
		l.done = true
		tok.kind = tokenEOF
		return tok, nil
	}
	if k := punct(r); k != tokenNone {
		tok.text, tok.kind = string(r), k
		return tok, nil
	}
	switch {
	case isDigit(r), r == '.':
		l.backup()
		if err := l.number(); err != nil {
			return tok, err
		}
		tok.text, tok.kind = l.buf.String(), tokenNum
	case isIdentStart(r):
		l.buf.WriteRune(r)
		l.acceptAll(isIdent)
		if l.err != nil {
			return tok, l.err
		}
		tok.text, tok.kind = l.buf.String(), tokenIdent
		if tok.text == "inf" || tok.text == "Inf" {
			tok.kind = tokenNum
		}
	case r == '∞':
		tok.text, tok.kind = "inf", tokenNum
	default:
		l.buf.WriteRune(r)
		return tok, l.error("")
	}
	return tok, nil
}

// skipSpace reads runes until one that is not whitespace or is in stop.
func (l *lexer) skipSpace(stop string) (rune, error) {
	for {
		r, err := l.read()
		if err != nil {
			return 0, err
		}
		if !unicode.IsSpace(r) || strings.ContainsRune(stop, r) {
			return r, nil
		}
	}
}

// number scans digits [. digits] [e [sign] digits]. There must be at least
// one digit before the exponent, and the literal must end at a delimiter.
func (l *lexer) number() error {
	mant := l.acceptAll(isDigit)
	if l.accept(is('.')) {
		mant = l.acceptAll(isDigit) || mant
	}
	if !mant {
		return l.fail("number")
	}
	if l.accept(is('e', 'E')) {
		l.accept(is('+', '-'))
		if !l.acceptAll(isDigit) {
			return l.fail("number")
		}
	}
	return l.delimited("number")
}

// delimited checks that the token being scanned ends here.
func (l *lexer) delimited(kind string) error {
	r, err := l.read()
	switch {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return err
	case unicode.IsSpace(r), punct(r) != tokenNone:
		l.backup()
		return nil
	}
	l.buf.WriteRune(r)
	return l.error(kind)
}

func (l *lexer) fail(kind string) error {
	if l.err != nil {
		return l.err
	}
	return l.error(kind)
}

// accept consumes the next rune if ok reports true for it.
func (l *lexer) accept(ok func(rune) bool) bool {
	r, err := l.read()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			l.err = err
		}
		return false
	}
	if !ok(r) {
		l.backup()
		return false
	}
	l.buf.WriteRune(r)
	return true
}

func (l *lexer) acceptAll(ok func(rune) bool) bool {
	var matched bool
	for l.accept(ok) {
		matched = true
	}
	return matched
}

func (l *lexer) read() (rune, error) {
	r, sz, err := l.src.ReadRune()
	if sz > 0 {
		l.col++
	}
	return r, err
}

// backup unreads the rune just read.
func (l *lexer) backup() {
	if err := l.src.UnreadRune(); err != nil {
		panic(err)
	}
	l.col--
}

// error returns a LexError for the rune just read.
func (l *lexer) error(kind string) error {
	return &LexError{Text: l.buf.String(), Kind: kind, Col: l.col - 1}
}

// punct returns the kind of a single-rune token, or tokenNone.
func punct(r rune) tokenKind {
	switch {
	case r == ',':
		return tokenSep
	case strings.ContainsRune(Operators, r):
		return tokenOp
	case strings.ContainsRune(OpenBrackets, r):
		return tokenOpen
	case strings.ContainsRune(CloseBrackets, r):
		return tokenClose
	}
	return tokenNone
}

func is(rs ...rune) func(rune) bool {
	return func(r rune) bool {
		for _, c := range rs {
			if r == c {
				return true
			}
		}
		return false
	}
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdent(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
