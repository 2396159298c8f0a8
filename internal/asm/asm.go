// Package asm assembles straight-line f64 function bodies for WebAssembly
// modules built with wabin.
package asm

import (
	"encoding/binary"
	"math"

	"github.com/tetratelabs/wabin/leb128"
	"github.com/tetratelabs/wabin/wasm"
)

// Code is a function body under construction.
type Code struct {
	b []byte
}

// Op appends an instruction without immediates.
func (c *Code) Op(op wasm.Opcode) {
	c.b = append(c.b, op)
}

// LocalGet pushes local i.
func (c *Code) LocalGet(i wasm.Index) {
	c.b = append(c.b, wasm.OpcodeLocalGet)
	c.b = append(c.b, leb128.EncodeUint32(i)...)
}

// LocalSet pops into local i.
func (c *Code) LocalSet(i wasm.Index) {
	c.b = append(c.b, wasm.OpcodeLocalSet)
	c.b = append(c.b, leb128.EncodeUint32(i)...)
}

// F64Const pushes v.
func (c *Code) F64Const(v float64) {
	c.b = append(c.b, wasm.OpcodeF64Const)
	c.b = binary.LittleEndian.AppendUint64(c.b, math.Float64bits(v))
}

// Call calls function fn.
func (c *Code) Call(fn wasm.Index) {
	c.b = append(c.b, wasm.OpcodeCall)
	c.b = append(c.b, leb128.EncodeUint32(fn)...)
}

// Len returns the number of bytes of code so far.
func (c *Code) Len() int {
	return len(c.b)
}

// Body returns the finished body, terminated by end.
func (c *Code) Body() []byte {
	b := make([]byte, len(c.b), len(c.b)+1)
	copy(b, c.b)
	return append(b, wasm.OpcodeEnd)
}

// F64s returns n f64 value types.
func F64s(n int) []wasm.ValueType {
	v := make([]wasm.ValueType, n)
	for i := range v {
		v[i] = wasm.ValueTypeF64
	}
	return v
}

// TypeIndex returns the index of the function type with the given signature
// in m, adding it if needed.
func TypeIndex(m *wasm.Module, params, results []wasm.ValueType) wasm.Index {
	for i, t := range m.TypeSection {
		if t.EqualsSignature(params, results) {
			return wasm.Index(i)
		}
	}
	m.TypeSection = append(m.TypeSection, &wasm.FunctionType{Params: params, Results: results})
	return wasm.Index(len(m.TypeSection) - 1)
}

// ImportFunc adds a function import to m and returns its function index.
// Imports must be added before any function is defined, because imported
// functions take the lowest indices.
func ImportFunc(m *wasm.Module, module, name string, params, results []wasm.ValueType) wasm.Index {
	if len(m.FunctionSection) != 0 {
		panic("asm: import after function definition")
	}
	m.ImportSection = append(m.ImportSection, &wasm.Import{
		Type:     wasm.ExternTypeFunc,
		Module:   module,
		Name:     name,
		DescFunc: TypeIndex(m, params, results),
	})
	return wasm.Index(len(m.ImportSection) - 1)
}

// DefineFunc adds a function with the given number of f64 locals beyond its
// parameters to m and returns its function index.
func DefineFunc(m *wasm.Module, params, results []wasm.ValueType, locals int, c *Code) wasm.Index {
	m.FunctionSection = append(m.FunctionSection, TypeIndex(m, params, results))
	m.CodeSection = append(m.CodeSection, &wasm.Code{LocalTypes: F64s(locals), Body: c.Body()})
	return wasm.Index(len(m.ImportSection) + len(m.FunctionSection) - 1)
}

// ExportFunc exports function fn under name.
func ExportFunc(m *wasm.Module, name string, fn wasm.Index) {
	m.ExportSection = append(m.ExportSection, &wasm.Export{Type: wasm.ExternTypeFunc, Name: name, Index: fn})
}
