package lambda

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/zephyrtronium/lambda/expr"
)

// Backend selects how an evaluator executes compiled expressions.
type Backend int8

const (
	// Auto uses the native backend where it is available and falls back to
	// the interpreter otherwise.
	Auto Backend = iota
	// Interpreter executes the tape directly.
	Interpreter
	// Native compiles the tape to machine code. Init fails with a
	// BackendError if that is impossible, unless fallback is enabled.
	Native
)

func (b Backend) String() string {
	switch b {
	case Auto:
		return "auto"
	case Interpreter:
		return "interpreter"
	case Native:
		return "native"
	}
	return "invalid"
}

// ParseBackend parses the name of a backend as returned by Backend.String.
func ParseBackend(s string) (Backend, bool) {
	for _, b := range []Backend{Auto, Interpreter, Native} {
		if s == b.String() {
			return b, true
		}
	}
	return 0, false
}

// Option is an option used when creating an evaluator.
type Option interface {
	evalOption()
}

type (
	backendopt  Backend
	fallbackopt bool
	loggeropt   struct{ l *slog.Logger }
	funcopt     struct{ f *Func }
)

func (backendopt) evalOption()  {}
func (fallbackopt) evalOption() {}
func (loggeropt) evalOption()   {}
func (funcopt) evalOption()     {}

// WithBackend selects the execution backend. The default is Auto.
func WithBackend(b Backend) Option {
	return backendopt(b)
}

// WithFallback sets whether a failure to build the native backend falls back
// to the interpreter instead of failing Init. It defaults to true for Auto
// and false for Native.
func WithFallback(ok bool) Option {
	return fallbackopt(ok)
}

// WithLogger sets the logger for compilation events. The default is
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return loggeropt{l}
}

// WithFunc adds a function to the evaluator's registry, replacing any
// function of the same name. A nil function is ignored.
func WithFunc(f *Func) Option {
	return funcopt{f}
}

// program is an immutable compiled artifact.
type program[T Number] struct {
	tape    *Tape[T]
	exec    backend[T]
	backend Backend
}

// Evaluator compiles expressions and evaluates them over T, either float64 or
// complex128.
//
// Call and CallInto are safe for concurrent use. Init and InitMany build a
// new program completely and then publish it atomically, so concurrent calls
// observe either the old program or the new one. Init and InitMany must not
// be called concurrently with each other. A replaced program's native code is
// released once no call is using it.
type Evaluator[T Number] struct {
	dom      *domain[T]
	funcs    map[string]*Func
	backend  Backend
	fallback bool
	logger   *slog.Logger
	prog     atomic.Pointer[program[T]]
}

// NewReal creates an evaluator over real numbers.
func NewReal(opts ...Option) *Evaluator[float64] {
	return newEvaluator(&realDomain, opts)
}

// NewComplex creates an evaluator over complex numbers.
func NewComplex(opts ...Option) *Evaluator[complex128] {
	return newEvaluator(&complexDomain, opts)
}

func newEvaluator[T Number](dom *domain[T], opts []Option) *Evaluator[T] {
	e := Evaluator[T]{
		dom:    dom,
		funcs:  DefaultFuncs(),
		logger: slog.Default(),
	}
	fallback := -1
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case backendopt:
			e.backend = Backend(opt)
		case fallbackopt:
			fallback = 0
			if opt {
				fallback = 1
			}
		case loggeropt:
			if opt.l != nil {
				e.logger = opt.l
			}
		case funcopt:
			if opt.f != nil {
				e.funcs[opt.f.Name] = opt.f
			}
		default:
			panic("lambda: unknown option type")
		}
	}
	switch fallback {
	case -1:
		e.fallback = e.backend == Auto
	default:
		e.fallback = fallback == 1
	}
	return &e
}

// Init compiles root for evaluation with inputs bound to symbols in order.
// Every symbol reachable from root must be in symbols.
//
// If Init fails, the evaluator keeps its previous compiled expression, if
// any. The error is an *UnboundSymbolError, *DomainError,
// *NotImplementedError, or *BackendError.
func (e *Evaluator[T]) Init(symbols []*expr.Symbol, root expr.Node) error {
	return e.InitMany(symbols, root)
}

// InitMany is like Init, but compiles several expressions into one program
// which evaluates all of them in a single call. Subexpressions common to
// several roots are evaluated once per call.
func (e *Evaluator[T]) InitMany(symbols []*expr.Symbol, roots ...expr.Node) error {
	if len(roots) == 0 {
		return &NotImplementedError{What: "program with no outputs"}
	}
	tape, err := compile(e.dom, e.funcs, symbols, roots)
	if err != nil {
		return err
	}
	p := &program[T]{tape: tape, backend: Interpreter}
	if e.backend != Interpreter {
		n, err := compileNative(context.Background(), tape, e.dom)
		switch {
		case err == nil:
			p.exec, p.backend = n, Native
		case e.fallback:
			e.logger.Warn("native backend unavailable, using interpreter", slog.Any("err", err))
		default:
			return err
		}
	}
	if p.exec == nil {
		p.exec = newInterp(tape, e.dom)
	}
	e.logger.Debug("compiled expression",
		slog.String("domain", e.dom.name),
		slog.String("backend", p.backend.String()),
		slog.Int("ops", len(tape.Ops)),
		slog.Int("inputs", tape.Inputs),
		slog.Int("outputs", len(tape.Results)),
	)
	e.prog.Store(p)
	return nil
}

// Call evaluates the compiled expression on in, which must have one value
// per bound symbol. If the evaluator was initialized with several
// expressions, the result is the first.
func (e *Evaluator[T]) Call(in []T) (T, error) {
	var out [1]T
	p := e.prog.Load()
	if p == nil {
		return out[0], ErrNotInitialized
	}
	if len(in) != p.tape.Inputs {
		return out[0], &ArityError{Want: p.tape.Inputs, Got: len(in)}
	}
	if len(p.tape.Results) == 1 {
		err := p.exec.call(out[:], in)
		return out[0], err
	}
	all := make([]T, len(p.tape.Results))
	err := p.exec.call(all, in)
	return all[0], err
}

// CallInto evaluates every compiled expression on in and writes the results
// to out in the order they were given to InitMany.
func (e *Evaluator[T]) CallInto(out, in []T) error {
	p := e.prog.Load()
	if p == nil {
		return ErrNotInitialized
	}
	if len(in) != p.tape.Inputs {
		return &ArityError{Want: p.tape.Inputs, Got: len(in)}
	}
	if len(out) != len(p.tape.Results) {
		return &ArityError{Want: len(p.tape.Results), Got: len(out), Output: true}
	}
	return p.exec.call(out, in)
}

// Inputs returns the number of inputs the compiled program takes, or 0 if the
// evaluator is not initialized.
func (e *Evaluator[T]) Inputs() int {
	if p := e.prog.Load(); p != nil {
		return p.tape.Inputs
	}
	return 0
}

// Outputs returns the number of results the compiled program produces, or 0
// if the evaluator is not initialized.
func (e *Evaluator[T]) Outputs() int {
	if p := e.prog.Load(); p != nil {
		return len(p.tape.Results)
	}
	return 0
}

// Backend returns the backend executing the compiled program. It is never
// Auto once the evaluator is initialized.
func (e *Evaluator[T]) Backend() Backend {
	if p := e.prog.Load(); p != nil {
		return p.backend
	}
	return e.backend
}

// Tape returns the compiled program's intermediate tape, or nil if the
// evaluator is not initialized. The tape must not be modified.
func (e *Evaluator[T]) Tape() *Tape[T] {
	if p := e.prog.Load(); p != nil {
		return p.tape
	}
	return nil
}

// Close releases the compiled program immediately. The evaluator is
// uninitialized afterward. Close must not be called concurrently with calls.
func (e *Evaluator[T]) Close(ctx context.Context) error {
	if p := e.prog.Swap(nil); p != nil {
		return p.exec.close(ctx)
	}
	return nil
}
