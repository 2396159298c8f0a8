package lambda

import (
	"context"
	"math"
	"runtime"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"github.com/tetratelabs/wabin/binary"
	"github.com/tetratelabs/wabin/wasm"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"golang.org/x/sys/cpu"

	"github.com/zephyrtronium/lambda/internal/asm"
)

// hostModule is the import module name of the functions the generated code
// calls.
const hostModule = "lambda"

// nativeSupported reports whether the wazero compiler targets this platform.
// The reason is empty if so.
func nativeSupported() (ok bool, reason string) {
	switch runtime.GOOS {
	case "linux", "darwin", "freebsd", "netbsd", "dragonfly", "windows":
	default:
		return false, "no code generator for " + runtime.GOOS
	}
	switch runtime.GOARCH {
	case "arm64":
		return true, ""
	case "amd64":
		if !cpu.X86.HasSSE41 {
			return false, "CPU lacks SSE4.1"
		}
		return true, ""
	}
	return false, "no code generator for " + runtime.GOARCH
}

// native is the native backend: the tape compiled to machine code by wazero.
type native[T Number] struct {
	dom     *domain[T]
	rt      wazero.Runtime
	mod     api.Module
	inputs  int
	outputs int
	calls   sync.Pool
}

// nativeCall is an invocation handle. api.Function is not safe for
// concurrent use, so each goroutine takes its own from the pool.
type nativeCall struct {
	fn    api.Function
	stack []uint64
}

// compileNative translates the tape to a WebAssembly function and compiles it
// to machine code.
func compileNative[T Number](ctx context.Context, tape *Tape[T], dom *domain[T]) (*native[T], error) {
	if ok, reason := nativeSupported(); !ok {
		return nil, &BackendError{Reason: reason}
	}
	return instantiate(ctx, wazero.NewRuntimeConfigCompiler(), tape, dom)
}

// instantiate translates the tape and instantiates it in a new runtime with
// the given configuration.
func instantiate[T Number](ctx context.Context, cfg wazero.RuntimeConfig, tape *Tape[T], dom *domain[T]) (*native[T], error) {
	bin, imports := translate(tape, dom)

	rt := wazero.NewRuntimeWithConfig(ctx, cfg)
	host := rt.NewHostModuleBuilder(hostModule)
	for _, im := range imports {
		host = host.NewFunctionBuilder().
			WithGoFunction(im.fn, im.params, im.results).
			WithName(im.what).
			Export(im.name)
	}
	if _, err := host.Instantiate(ctx); err != nil {
		rt.Close(ctx)
		return nil, &BackendError{Reason: "host functions", Err: errors.Wrap(err, "instantiating host module")}
	}
	compiled, err := rt.CompileModule(ctx, bin)
	if err != nil {
		rt.Close(ctx)
		return nil, &BackendError{Reason: "code generation", Err: errors.Wrapf(err, "compiling %d ops", len(tape.Ops))}
	}
	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		rt.Close(ctx)
		return nil, &BackendError{Reason: "code generation", Err: errors.Wrap(err, "instantiating module")}
	}

	p := &native[T]{
		dom:     dom,
		rt:      rt,
		mod:     mod,
		inputs:  tape.Inputs,
		outputs: len(tape.Results),
	}
	// A replaced program may still be running on other goroutines, so its
	// code is released only once nothing references it.
	runtime.AddCleanup(p, func(rt wazero.Runtime) { rt.Close(context.Background()) }, rt)
	width := dom.lanes * max(p.inputs, p.outputs)
	p.calls.New = func() any {
		return &nativeCall{fn: mod.ExportedFunction("eval"), stack: make([]uint64, max(width, 1))}
	}
	return p, nil
}

func (p *native[T]) call(out, in []T) error {
	c := p.calls.Get().(*nativeCall)
	w := p.dom.lanes
	for i, v := range in {
		p.dom.store(c.stack[i*w:], v)
	}
	if err := c.fn.CallWithStack(context.Background(), c.stack); err != nil {
		// The handle may be in an unknown state, so don't return it.
		return errors.Wrap(err, "calling compiled expression")
	}
	for j := range out {
		out[j] = p.dom.load(c.stack[j*w:])
	}
	p.calls.Put(c)
	return nil
}

func (p *native[T]) close(ctx context.Context) error {
	return p.rt.Close(ctx)
}

// hostFunc is a Go function imported by the generated module.
type hostFunc struct {
	name, what      string
	fn              api.GoFunc
	params, results []api.ValueType
}

// translate lowers the tape to a module exporting one function, "eval". The
// function takes the lanes of every input as f64 parameters and returns the
// lanes of every result. Each tape position is held in locals. Pow and
// function calls go through imports bound to the same Go functions the
// interpreter uses.
func translate[T Number](tape *Tape[T], dom *domain[T]) ([]byte, []hostFunc) {
	w := dom.lanes
	f64v := func(n int) []api.ValueType {
		v := make([]api.ValueType, n)
		for i := range v {
			v[i] = api.ValueTypeF64
		}
		return v
	}

	var (
		m       wasm.Module
		imports []hostFunc
		powfn   wasm.Index
		fnidx   = make([]wasm.Index, len(tape.Funcs))
	)
	for _, op := range tape.Ops {
		if op.Code == OpPow {
			pow := dom.pow
			imports = append(imports, hostFunc{
				name: "pow",
				what: "pow",
				fn: func(_ context.Context, s []uint64) {
					dom.store(s, pow(dom.load(s), dom.load(s[w:])))
				},
				params:  f64v(2 * w),
				results: f64v(w),
			})
			powfn = asm.ImportFunc(&m, hostModule, "pow", asm.F64s(2*w), asm.F64s(w))
			break
		}
	}
	for i, f := range tape.Funcs {
		call := tape.calls[i]
		name := "f" + strconv.Itoa(i)
		imports = append(imports, hostFunc{
			name: name,
			what: f.Name,
			fn: func(_ context.Context, s []uint64) {
				dom.store(s, call(dom.load(s)))
			},
			params:  f64v(w),
			results: f64v(w),
		})
		fnidx[i] = asm.ImportFunc(&m, hostModule, name, asm.F64s(w), asm.F64s(w))
	}

	// Inputs live in the parameters. Every other position gets w fresh
	// locals, numbered after the parameters.
	nparams := wasm.Index(w * tape.Inputs)
	loc := make([]wasm.Index, len(tape.Ops))
	next := nparams
	for i, op := range tape.Ops {
		if op.Code == OpInput {
			loc[i] = wasm.Index(op.Arg * w)
			continue
		}
		loc[i] = next
		next += wasm.Index(w)
	}

	var c asm.Code
	get := func(k int) {
		for l := 0; l < w; l++ {
			c.LocalGet(loc[k] + wasm.Index(l))
		}
	}
	set := func(k int) {
		for l := w - 1; l >= 0; l-- {
			c.LocalSet(loc[k] + wasm.Index(l))
		}
	}
	// fold combines operands lane by lane with an instruction.
	fold := func(i int, args []int, ins wasm.Opcode) {
		for l := 0; l < w; l++ {
			c.LocalGet(loc[args[0]] + wasm.Index(l))
			for _, k := range args[1:] {
				c.LocalGet(loc[k] + wasm.Index(l))
				c.Op(ins)
			}
			c.LocalSet(loc[i] + wasm.Index(l))
		}
	}
	// extremum folds real operands like math.Min or math.Max: an operand
	// equal to inf decides the result even against NaN, which f64.min and
	// f64.max alone would propagate.
	extremum := func(i int, args []int, ins wasm.Opcode, inf float64) {
		r := loc[i]
		c.LocalGet(loc[args[0]])
		c.LocalSet(r)
		for _, k := range args[1:] {
			c.F64Const(inf)
			c.LocalGet(r)
			c.LocalGet(loc[k])
			c.Op(ins)
			c.LocalGet(r)
			c.F64Const(inf)
			c.Op(wasm.OpcodeF64Eq)
			c.LocalGet(loc[k])
			c.F64Const(inf)
			c.Op(wasm.OpcodeF64Eq)
			c.Op(wasm.OpcodeI32Or)
			c.Op(wasm.OpcodeSelect)
			c.LocalSet(r)
		}
	}
	for i := range tape.Ops {
		op := &tape.Ops[i]
		args := tape.operands(op)
		switch op.Code {
		case OpInput:
			// Already in place.
		case OpConst:
			var s [2]uint64
			dom.store(s[:], tape.Consts[op.Arg])
			for l := 0; l < w; l++ {
				c.F64Const(api.DecodeF64(s[l]))
				c.LocalSet(loc[i] + wasm.Index(l))
			}
		case OpAdd:
			fold(i, args, wasm.OpcodeF64Add)
		case OpMul:
			if w == 1 {
				fold(i, args, wasm.OpcodeF64Mul)
				break
			}
			// (a+bi)(c+di) = (ac - bd) + (ad + bc)i, accumulated in place.
			re, im := loc[i], loc[i]+1
			c.LocalGet(loc[args[0]])
			c.LocalSet(re)
			c.LocalGet(loc[args[0]] + 1)
			c.LocalSet(im)
			for _, k := range args[1:] {
				br, bi := loc[k], loc[k]+1
				c.LocalGet(re)
				c.LocalGet(br)
				c.Op(wasm.OpcodeF64Mul)
				c.LocalGet(im)
				c.LocalGet(bi)
				c.Op(wasm.OpcodeF64Mul)
				c.Op(wasm.OpcodeF64Sub)
				c.LocalGet(re)
				c.LocalGet(bi)
				c.Op(wasm.OpcodeF64Mul)
				c.LocalGet(im)
				c.LocalGet(br)
				c.Op(wasm.OpcodeF64Mul)
				c.Op(wasm.OpcodeF64Add)
				c.LocalSet(im)
				c.LocalSet(re)
			}
		case OpPow:
			get(args[0])
			get(args[1])
			c.Call(powfn)
			set(i)
		case OpCall:
			get(args[0])
			c.Call(fnidx[op.Arg])
			set(i)
		case OpMin:
			extremum(i, args, wasm.OpcodeF64Min, math.Inf(-1))
		case OpMax:
			extremum(i, args, wasm.OpcodeF64Max, math.Inf(1))
		default:
			panic("lambda: invalid op " + op.Code.String())
		}
	}
	for _, k := range tape.Results {
		get(k)
	}
	fn := asm.DefineFunc(&m, asm.F64s(int(nparams)), asm.F64s(w*len(tape.Results)), int(next-nparams), &c)
	asm.ExportFunc(&m, "eval", fn)
	return binary.EncodeModule(&m), imports
}
