package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/xyproto/env/v2"

	"github.com/zephyrtronium/lambda"
	"github.com/zephyrtronium/lambda/expr"
)

func main() {
	log.SetFlags(0)
	var (
		vars, backend, verb string
		at                  [][]string
		cplx, tape, verbose bool
	)
	flag.StringVar(&vars, "vars", "", "comma-separated input variables in order (default all symbols, sorted)")
	flag.Func("at", "comma-separated input values (any number of times)", func(s string) error {
		at = append(at, strings.Split(s, ","))
		return nil
	})
	flag.BoolVar(&cplx, "complex", false, "evaluate over complex numbers")
	flag.StringVar(&backend, "backend", env.Str("LAMBDA_BACKEND", "auto"), "auto, interpreter, or native")
	flag.StringVar(&verb, "fmt", env.Str("LAMBDA_FMT", "%g"), "result formatting string")
	flag.BoolVar(&tape, "tape", false, "print the compiled tape")
	flag.BoolVar(&verbose, "v", false, "log compilation details")
	flag.Parse()
	if flag.NArg() == 0 {
		log.Fatal("no expressions given")
	}

	b, ok := lambda.ParseBackend(backend)
	if !ok {
		log.Fatalf("unknown backend %q", backend)
	}
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	opts := []lambda.Option{lambda.WithBackend(b), lambda.WithLogger(logger)}

	bld := expr.NewBuilder()
	var roots []expr.Node
	for _, arg := range flag.Args() {
		n, err := expr.ParseString(arg, expr.WithBuilder(bld))
		if err != nil {
			log.Fatalf("parsing %q: %v", arg, err)
		}
		roots = append(roots, n)
	}
	var names []string
	if vars != "" {
		for _, s := range strings.Split(vars, ",") {
			names = append(names, strings.TrimSpace(s))
		}
	} else {
		seen := make(map[string]bool)
		for _, n := range roots {
			for _, s := range expr.Symbols(n) {
				if !seen[s] {
					seen[s] = true
					names = append(names, s)
				}
			}
		}
		slices.Sort(names)
	}
	symbols := make([]*expr.Symbol, len(names))
	for i, s := range names {
		symbols[i] = bld.Symbol(s)
	}
	if len(at) == 0 && len(symbols) == 0 {
		at = [][]string{nil}
	}

	var err error
	if cplx {
		err = run(lambda.NewComplex(opts...), symbols, roots, at, tape, verb, func(s string) (complex128, error) {
			return strconv.ParseComplex(s, 128)
		})
	} else {
		err = run(lambda.NewReal(opts...), symbols, roots, at, tape, verb, func(s string) (float64, error) {
			return strconv.ParseFloat(s, 64)
		})
	}
	if err != nil {
		log.Fatal(err)
	}
}

func run[T lambda.Number](ev *lambda.Evaluator[T], symbols []*expr.Symbol, roots []expr.Node, at [][]string, tape bool, verb string, parse func(string) (T, error)) error {
	if err := ev.InitMany(symbols, roots...); err != nil {
		return err
	}
	defer ev.Close(context.Background())
	if tape {
		fmt.Print(ev.Tape())
	}
	in := make([]T, len(symbols))
	out := make([]T, ev.Outputs())
	for _, vals := range at {
		if len(vals) != len(symbols) {
			return fmt.Errorf("%d values given for %d variables", len(vals), len(symbols))
		}
		for i, s := range vals {
			v, err := parse(strings.TrimSpace(s))
			if err != nil {
				return fmt.Errorf("value for %s: %w", symbols[i].Name(), err)
			}
			in[i] = v
		}
		if err := ev.CallInto(out, in); err != nil {
			return err
		}
		for i, v := range out {
			if i > 0 {
				fmt.Print(" ")
			}
			fmt.Printf(verb, v)
		}
		fmt.Println()
	}
	return nil
}
