package expr

import (
	"reflect"
	"regexp"
	"strings"
	"testing"
)

func TestOpPrecsExist(t *testing.T) {
	for _, r := range Operators {
		b := binop(string(r))
		u := unop(string(r))
		if b.op == opNone && u.op == opNone {
			t.Errorf("no operator for %c", r)
		}
	}
}

func TestTermPrecMatchesMultiplication(t *testing.T) {
	if p := binop("*").prec; p != termprec.prec {
		t.Errorf("terms have prec %d but * has prec %d", termprec.prec, p)
	}
	if p := binop("×").prec; p != termprec.prec {
		t.Errorf("terms have prec %d but × has prec %d", termprec.prec, p)
	}
}

func TestParseTrees(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{"paren", "(x)", "x"},
		{"square", "[x]", "x"},
		{"curly", "{x}", "x"},
		{"implicit", "x y", "x*y"},
		{"times", "x × y", "x*y"},
		{"divide", "x ÷ y", "x/y"},
		{"plus", "+x", "x"},
		{"sub-neg", "x - y", "x + -y"},
		{"neg-pow", "-2^2", "-(2^2)"},
		{"pow-right", "2^3^4", "2^(3^4)"},
		{"pow-neg", "x^-y", "x^(-y)"},
		{"bare-call", "exp x", "exp(x)"},
		{"bare-call-sum", "sin x + 1", "sin(x) + 1"},
		{"call-pow", "cos^2 x", "(cos x)^2"},
		{"brackets-call", "log[x]", "log(x)"},
		{"spaces", "  x  +  y  ", "x+y"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := ParseString(c.a)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.a, err)
			}
			b, err := ParseString(c.b)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.b, err)
			}
			if a.String() != b.String() {
				t.Errorf("%q parsed to %v, but %q parsed to %v", c.a, a, c.b, b)
			}
		})
	}
}

func TestParseExact(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"poly", "x + y z + x^2", "(x + (y*z) + (x^2))"},
		{"sub", "x - y", "(x + (-1*y))"},
		{"div", "x/y", "(x*(y^-1))"},
		{"mul-chain", "x*y*z", "(x*y*z)"},
		{"add-chain", "x + y + z", "(x + y + z)"},
		{"mixed-chain", "x + y - z", "(x + y + (-1*z))"},
		{"max", "max(x, y z + 3)", "max(x, ((y*z) + 3))"},
		{"min", "min(x^y, 1)", "min((x^y), 1)"},
		{"max-one", "max[x]", "max(x)"},
		{"special", "gamma(x) + loggamma x", "(gamma(x) + loggamma(x))"},
		{"call-pow", "cos^2 x", "(cos(x)^2)"},
		{"imag", "3 + 4 I", "(3 + (4*(0+1i)))"},
		{"pi", "pi", "pi"},
		{"e", "e", "E"},
		{"golden", "GoldenRatio", "GoldenRatio"},
		{"real", "2.5", "2.5"},
		{"exp-real", "1e3", "1000"},
		{"inf", "inf", "+Inf"},
		{"big", "123456789012345678901234567890", "123456789012345678901234567890"},
		{"unknown-func", "f x", "(f*x)"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n, err := ParseString(c.src)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			if got := n.String(); got != c.want {
				t.Errorf("%q parsed to %s, want %s", c.src, got, c.want)
			}
		})
	}
}

func TestParseKinds(t *testing.T) {
	cases := []struct {
		src  string
		kind Kind
	}{
		{"x", KindSymbol},
		{"2", KindInteger},
		{"2.0", KindReal},
		{"I", KindComplex},
		{"pi", KindConstant},
		{"x + 1", KindAdd},
		{"2 x", KindMul},
		{"x^2", KindPow},
		{"sin x", KindFunc},
		{"min(x, 1)", KindMin},
		{"max(x, 1)", KindMax},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			n, err := ParseString(c.src)
			if err != nil {
				t.Fatal(err)
			}
			if n.Kind() != c.kind {
				t.Errorf("%q parsed to %v, want %v", c.src, n.Kind(), c.kind)
			}
		})
	}
}

func TestParseSharing(t *testing.T) {
	n, err := ParseString("sin(x)^2 + sin(x)")
	if err != nil {
		t.Fatal(err)
	}
	args := n.Args()
	if len(args) != 2 {
		t.Fatalf("wrong tree %v", n)
	}
	if args[0].Args()[0] != args[1] {
		t.Errorf("sin(x) not shared in %v", n)
	}

	b := NewBuilder()
	p, err := ParseString("x + y", WithBuilder(b))
	if err != nil {
		t.Fatal(err)
	}
	q, err := ParseString("2 (x + y)", WithBuilder(b))
	if err != nil {
		t.Fatal(err)
	}
	if q.Args()[1] != p {
		t.Errorf("x + y not shared between parses")
	}
	if p.Args()[0] != b.Symbol("x") {
		t.Errorf("x not from builder")
	}
}

func TestParseOptions(t *testing.T) {
	cases := []struct {
		name string
		src  string
		opts []ParseOption
		want string
	}{
		{"funcs", "f x", []ParseOption{ParseFuncs("f")}, "f(x)"},
		{"funcs-keeps-defaults", "sin f(x)", []ParseOption{ParseFuncs("f")}, "sin(f(x))"},
		{"imag", "2 j", []ParseOption{ImaginaryUnit("j")}, "(2*(0+1i))"},
		{"imag-replaced", "I", []ParseOption{ImaginaryUnit("j")}, "I"},
		{"imag-disabled", "I", []ParseOption{ImaginaryUnit("")}, "I"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n, err := ParseString(c.src, c.opts...)
			if err != nil {
				t.Fatal(err)
			}
			if got := n.String(); got != c.want {
				t.Errorf("%q parsed to %s, want %s", c.src, got, c.want)
			}
		})
	}
	// ParseFuncs must not modify the defaults.
	n, err := ParseString("f x")
	if err != nil {
		t.Fatal(err)
	}
	if n.Kind() != KindMul {
		t.Errorf("f became a default function")
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		err  InputError
		res  []string
	}{
		{"empty", "", new(EmptyExpressionError), []string{`^1: no expression$`}},
		{"emptyparen", "()", new(EmptyExpressionError), []string{`(?i)\bno expression\b`, `\)`}},
		{"emptyterm", "x()", new(EmptyExpressionError), []string{`(?i)\bno expression\b`, `\)`}},
		{"emptyoperand", "x*", new(EmptyExpressionError), []string{`^3: no expression$`}},
		{"emptyunary", "x*-", new(EmptyExpressionError), []string{`(?i)\bno expression\b`}},
		{"left", "(x", new(BracketError), []string{`(?i)\bbracket\b`, `\(`}},
		{"right", "x)", new(BracketError), []string{`^2: close bracket \) with no open bracket$`}},
		{"mismatch", "(x]", new(BracketError), []string{`^3: mismatched brackets \( ]$`}},
		{"mismatch-mul", "x*(y]", new(BracketError), []string{`(?i)\bbracket`, `\(`, `]`}},
		{"mismatch-terms", "x(y]", new(BracketError), []string{`(?i)\bbracket`, `\(`, `]`}},
		{"nonunary", "*x", new(OperatorError), []string{`(?i)\bunary\b`, `(?i)\bop`, `\*`}},
		{"sep", "x, y", new(SeparatorError), []string{`^2: comma`}},
		{"sepbrackets", "(x, y)", new(SeparatorError), []string{`(?i)\bcomma\b`}},
		{"call-mismatch", "sin(x]", new(BracketError), []string{`(?i)\bbracket`, `\(`, `]`}},
		{"call-0", "sin()", new(CallError), []string{`(?i)\bcall\b`, `\bsin\b`, `\b0\b`}},
		{"call-eof", "sin", new(CallError), []string{`(?i)\bcall\b`, `\bsin\b`, `\b0\b`}},
		{"call-pareneof", "sin(", new(BracketError), []string{`(?i)\bbracket\b`, `\(`}},
		{"call-2", "sin(x, y)", new(CallError), []string{`^4: cannot call sin with 2 arguments$`}},
		{"call-empty", "sin(x,)", new(EmptyExpressionError), []string{`(?i)\bno expression\b`, `\)`}},
		{"max-0", "max()", new(CallError), []string{`\bmax\b`, `\b0\b`}},
		{"max-empty", "max(a,,b)", new(SeparatorError), []string{`(?i)\bcomma\b`}},
		{"lexer", "2^exp(-$)", new(LexError), []string{`\$`}},
		{"number", "1.2.3", new(LexError), []string{`(?i)\bnumber\b`}},
		{"op-paren", "(b*)", new(EmptyExpressionError), []string{`\)`}},
		{"haskell", "(+)", new(EmptyExpressionError), []string{`\)`}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n, err := ParseString(c.src)
			if n != nil {
				t.Errorf("%q parsed non-nil to %v", c.src, n)
			}
			if reflect.TypeOf(err) != reflect.TypeOf(c.err) {
				t.Errorf("wrong error type from %q: want %T, got %T (%v)", c.src, c.err, err, err)
			}
			if err == nil {
				return
			}
			msg := err.Error()
			for _, re := range c.res {
				if !regexp.MustCompile(re).MatchString(msg) {
					t.Errorf("error message %q does not match %s", msg, re)
				}
			}
		})
	}
}

func TestStopOn(t *testing.T) {
	src := strings.NewReader("x + 1\ny +\n2\n\n  z")
	want := []string{"(x + 1)", "(y + 2)", "z"}
	for i, w := range want {
		n, err := Parse(src, StopOn('\n'))
		if err != nil {
			t.Fatalf("expression %d: %v", i, err)
		}
		if n.String() != w {
			t.Errorf("expression %d: want %s, got %v", i, w, n)
		}
	}
	defer func() {
		if recover() == nil {
			t.Error("StopOn accepted a non-space")
		}
	}()
	StopOn(';')
}

func BenchmarkParse(b *testing.B) {
	srcs := []string{
		"x + y z + x^2",
		"max(x, y z + 3) - gamma(x) loggamma(y)",
		"(sin x + y^4 z 2 + sin^2 x) (2^e + x^(e^cos x))",
	}
	for _, src := range srcs {
		b.Run(src, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				ParseString(src)
			}
		})
	}
}
