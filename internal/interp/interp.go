// Package interp wires one interpreter instance together: the symbol
// table, function store, object registry, and stack machine spec.md §5
// says an embedder constructs per independent evaluator, plus the BBS
// generator and config snapshot that persist across every line a
// session evaluates. cmd/calc and anything scripting calc as a library
// both go through this package rather than touching the lower-level
// compiler/vm packages directly.
package interp

import (
	"os"

	"calc/internal/compiler"
	calcerrors "calc/internal/errors"
	"calc/internal/funcstore"
	"calc/internal/lexer"
	"calc/internal/object"
	"calc/internal/symtab"
	"calc/internal/value"
	"calc/internal/vm"
)

// Interpreter is one session: a global/static table, a function store,
// an object-type registry, and the VM executing against them.
type Interpreter struct {
	Syms    *symtab.Table
	Funcs   *funcstore.Store
	Objects *object.Registry
	VM      *vm.VM
}

// New builds a fresh interpreter; vm.New gives it the default config and
// the default BBS generator (precomputed generator 1, n = 7*11).
func New() *Interpreter {
	syms := symtab.New()
	funcs := funcstore.New()
	objects := object.NewRegistry()
	m := vm.New(syms, funcs, objects)
	return &Interpreter{Syms: syms, Funcs: funcs, Objects: objects, VM: m}
}

// recoverCalcError turns a panic raised anywhere under compile or
// execute into a returned *CalcError, the single boundary spec.md's
// panic/recover discipline expects a REPL loop or file read to provide.
func recoverCalcError(err *error_holder) {
	if r := recover(); r != nil {
		if ce, ok := r.(*calcerrors.CalcError); ok {
			err.err = ce
			return
		}
		err.err = calcerrors.NewMemoryError("internal error")
		err.panicVal = r
	}
}

type error_holder struct {
	err      *calcerrors.CalcError
	panicVal interface{}
}

// EvalExpr compiles one bare expression (interactively typed input, or
// a string handed to `eval`) and runs it, returning its value. source
// carries no trailing newline requirement; file is used only for error
// locations and is "" for typed input.
func (ip *Interpreter) EvalExpr(source, file string) (result value.Value, err *calcerrors.CalcError) {
	lex := lexer.NewLexer(file, source)
	fn, cerr := compiler.CompileTopLevelExpr(lex, ip.Syms, ip.Funcs, ip.Objects, file)
	if cerr != nil {
		ce, _ := cerr.(*calcerrors.CalcError)
		return value.Null, ce
	}
	h := &error_holder{}
	func() {
		defer recoverCalcError(h)
		result = ip.VM.Execute(fn)
	}()
	if h.panicVal != nil {
		panic(h.panicVal)
	}
	return result, h.err
}

// RunSource compiles and runs an entire file's worth of declarations:
// function definitions register in Funcs as they're seen, and every
// statement at file scope (not inside a `define`) executes in source
// order, exactly as `read` behaves. file is used for error locations
// and resource-access bookkeeping.
func (ip *Interpreter) RunSource(source, file string) (result value.Value, err *calcerrors.CalcError) {
	ip.Syms.EnterFile()
	defer ip.Syms.ExitFile()

	lex := lexer.NewLexer(file, source)
	body, cerr := compiler.CompileDeclarations(lex, ip.Syms, ip.Funcs, ip.Objects, file)
	if cerr != nil {
		return value.Null, cerr
	}
	h := &error_holder{}
	func() {
		defer recoverCalcError(h)
		result = ip.VM.Execute(body)
	}()
	if h.panicVal != nil {
		panic(h.panicVal)
	}
	return result, h.err
}

// RunFile reads path from disk and runs it via RunSource.
func (ip *Interpreter) RunFile(path string) (value.Value, *calcerrors.CalcError) {
	data, err := os.ReadFile(path)
	if err != nil {
		return value.Null, calcerrors.NewIOError(err.Error())
	}
	return ip.RunSource(string(data), path)
}
