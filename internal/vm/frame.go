package vm

import (
	"calc/internal/bytecode"
	"calc/internal/funcstore"
	"calc/internal/value"
)

// Frame is one call's activation record: its function, program counter,
// and the parameter/local slots the calling convention in spec.md §4.7
// describes (paramcount padding with undefined values). newFrame fills
// Params; the caller allocates Locals (LocalCount slots) and sets each
// to Null before the body runs.
type Frame struct {
	Fn      *funcstore.Function
	Chunk   *bytecode.Chunk
	IP      int
	Params  []value.Value
	Locals  []value.Value
	Saved   value.Value // the `.`/oldvalue slot for this function
	SaveOn  bool
}

func newFrame(fn *funcstore.Function, args []value.Value) *Frame {
	params := make([]value.Value, fn.ParamCount)
	for i := 0; i < fn.ParamCount; i++ {
		if i < len(args) {
			params[i] = args[i]
		} else {
			params[i] = value.Null
		}
	}
	return &Frame{
		Fn:     fn,
		Chunk:  fn.Chunk,
		Params: params,
		Saved:  value.Null,
		SaveOn: true,
	}
}

// free releases every parameter and local this frame owns, implementing
// RETURN's "pops locals and parameters (freeing any owned values)".
func (f *Frame) free() {
	for _, p := range f.Params {
		p.Free()
	}
	for _, l := range f.Locals {
		l.Free()
	}
}
