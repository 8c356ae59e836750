// Package compiler implements the single-pass recursive-descent
// compiler spec.md §4.5 describes: tokens flow directly from
// internal/lexer into internal/bytecode opcodes with no intervening
// AST, scope resolution happens through internal/symtab as each
// identifier is seen, and forward jumps are patched through
// internal/label's chain mechanism.
package compiler

import (
	"fmt"

	"calc/internal/bytecode"
	calcerrors "calc/internal/errors"
	"calc/internal/funcstore"
	"calc/internal/label"
	"calc/internal/lexer"
	"calc/internal/object"
	"calc/internal/symtab"
)

// loopContext tracks the label set `break`/`continue` resolve against
// for the innermost enclosing loop or switch.
type loopContext struct {
	breakLabel    *label.Label
	continueLabel *label.Label
	isSwitch      bool
}

// Compiler holds the state threaded through one function's compilation:
// the token source, the chunk being emitted into, the scope table, the
// function/object registries (for resolving calls and obj/elem access),
// and the loop-context stack `break`/`continue` walk.
type Compiler struct {
	lex     *lexer.Lexer
	cur     lexer.Token
	ahead   *lexer.Token
	file    string

	chunk   *bytecode.Chunk
	syms    *symtab.Table
	funcs   *funcstore.Store
	objects *object.Registry
	labels  *label.Table
	loops   []*loopContext

	// last two emitted instruction offsets, tracked for the peephole
	// optimizer (spec.md §4.5's "collapse addr+getvalue", "fold
	// constant-constant-binop", etc).
	lastOp1, lastOp2 int
}

// New creates a compiler reading from lex, sharing syms/funcs/objects
// with the rest of the interpreter instance.
func New(lex *lexer.Lexer, syms *symtab.Table, funcs *funcstore.Store, objects *object.Registry, file string) *Compiler {
	c := &Compiler{
		lex: lex, syms: syms, funcs: funcs, objects: objects, file: file,
		lastOp1: -1, lastOp2: -1,
	}
	c.advance()
	return c
}

func (c *Compiler) advance() {
	if c.ahead != nil {
		c.cur = *c.ahead
		c.ahead = nil
		return
	}
	c.cur = c.lex.Next()
}

func (c *Compiler) peekAhead() lexer.Token {
	if c.ahead == nil {
		t := c.lex.Next()
		c.ahead = &t
	}
	return *c.ahead
}

func (c *Compiler) check(tt lexer.TokenType) bool { return c.cur.Type == tt }

func (c *Compiler) match(tt lexer.TokenType) bool {
	if c.check(tt) {
		c.advance()
		return true
	}
	return false
}

func (c *Compiler) consume(tt lexer.TokenType, context string) lexer.Token {
	if !c.check(tt) {
		panic(c.err(fmt.Sprintf("expected %s %s, got %q", tt, context, c.cur.Lexeme)))
	}
	t := c.cur
	c.advance()
	return t
}

func (c *Compiler) err(msg string) *calcerrors.CalcError {
	return calcerrors.NewParseError(msg, c.file, c.cur.Line, c.cur.Column)
}

func (c *Compiler) debug() bytecode.DebugInfo {
	return bytecode.DebugInfo{Line: c.cur.Line, Column: c.cur.Column, File: c.file}
}

// emit appends op with no operands and shifts its offset into the
// two-slot peephole window (lastOp1/lastOp2).
func (c *Compiler) emit(op bytecode.OpCode) int {
	off := c.chunk.WriteOp(op, c.debug())
	c.lastOp2 = c.lastOp1
	c.lastOp1 = off
	return off
}

// emitOperand appends a raw operand word following the most recent
// opcode.
func (c *Compiler) emitOperand(word int) int {
	return c.chunk.EmitOperand(word, c.debug())
}

// emit1 emits op followed by one operand word.
func (c *Compiler) emit1(op bytecode.OpCode, operand int) int {
	off := c.emit(op)
	c.emitOperand(operand)
	return off
}

// skipNewlines consumes any run of statement-terminator newlines,
// e.g. between a `{` and the first statement.
func (c *Compiler) skipNewlines() {
	for c.check(lexer.TokenNewline) || c.check(lexer.TokenSemicolon) {
		c.advance()
	}
}

// endOfStatement consumes the newline or `;` a statement must end with,
// tolerating EOF/`}` (the last statement of a block/file needs neither).
func (c *Compiler) endOfStatement() {
	if c.check(lexer.TokenNewline) || c.check(lexer.TokenSemicolon) {
		c.advance()
		c.skipNewlines()
		return
	}
	if c.check(lexer.TokenEOF) || c.check(lexer.TokenRBrace) {
		return
	}
	panic(c.err(fmt.Sprintf("expected end of statement, got %q", c.cur.Lexeme)))
}

// emitJumpPlaceholder emits a jump opcode with a not-yet-known target and
// returns the offset of its operand word, for patchJumpHere to fill in
// once the jump's destination is compiled. Used for the single-target
// forward jumps if/while/for/ternary/&&/|| need; label.Table's chain
// mechanism is reserved for user-named `goto` labels, which can have
// more than one forward reference before they're placed.
func (c *Compiler) emitJumpPlaceholder(op bytecode.OpCode) int {
	c.emit(op)
	return c.emitOperand(-1)
}

// patchJumpHere overwrites the operand at offset with the current
// instruction offset (the word about to be emitted next).
func (c *Compiler) patchJumpHere(offset int) {
	c.chunk.PatchOperand(offset, c.chunk.Len())
}

func (c *Compiler) currentLoop() *loopContext {
	if len(c.loops) == 0 {
		return nil
	}
	return c.loops[len(c.loops)-1]
}

// CompileTopLevelExpr compiles one interactively-typed input line into a
// fresh anonymous-eval Function: every `;`-separated unit before the
// last is compiled and discarded like an ordinary statement, and the
// final unit — if it is a bare expression rather than a statement
// keyword — has its value SAVEd for `.` and left on the stack for
// RETURN, matching spec.md §4.6's `*`-prefixed convention. A line
// ending in a statement (an assignment still counts as an expression;
// `if`/`print`/etc. do not) returns undef, same as a function falling
// off its last statement.
func CompileTopLevelExpr(lex *lexer.Lexer, syms *symtab.Table, funcs *funcstore.Store, objects *object.Registry, file string) (*funcstore.Function, error) {
	var fn *funcstore.Function
	err := func() (err *calcerrors.CalcError) {
		defer func() {
			if r := recover(); r != nil {
				if ce, ok := r.(*calcerrors.CalcError); ok {
					err = ce
					return
				}
				panic(r)
			}
		}()
		c := New(lex, syms, funcs, objects, file)
		c.chunk = bytecode.NewChunk()
		c.labels = label.NewTable()
		syms.PushFunction()
		defer syms.PopFunction()

		c.skipNewlines()
		leftValue := false
		for !c.check(lexer.TokenEOF) {
			if isStmtLeadToken(c.cur.Type) {
				c.compileStmt()
				leftValue = false
				c.skipNewlines()
				continue
			}
			c.compileExpr()
			leftValue = true
			for c.match(lexer.TokenComma) {
				c.emitStatementPop()
				c.compileExpr()
			}
			if c.check(lexer.TokenSemicolon) || c.check(lexer.TokenNewline) {
				c.advance()
				c.skipNewlines()
				if c.check(lexer.TokenEOF) {
					break
				}
				c.emitStatementPop()
				leftValue = false
				continue
			}
			break
		}
		if !leftValue {
			c.emit(bytecode.OpUndef)
		}
		c.emit(bytecode.OpSave)
		c.emit(bytecode.OpReturn)
		if undefined := c.labels.Finalize(); len(undefined) > 0 {
			panic(c.err("undefined label: " + undefined[0]))
		}
		fn = &funcstore.Function{
			Name: "*", Chunk: c.chunk,
			ParamCount: syms.ParamCount(), LocalCount: syms.LocalCount(),
			AnonymousEval: true,
		}
		return nil
	}()
	if err != nil {
		return nil, err
	}
	return fn, nil
}

// isStmtLeadToken reports whether tt can only begin a statement (never
// a bare expression), so CompileTopLevelExpr knows to compile-and-pop
// rather than compile-and-keep.
func isStmtLeadToken(tt lexer.TokenType) bool {
	switch tt {
	case lexer.TokenIf, lexer.TokenFor, lexer.TokenWhile, lexer.TokenDo,
		lexer.TokenSwitch, lexer.TokenContinue, lexer.TokenBreak,
		lexer.TokenReturn, lexer.TokenGoto, lexer.TokenPrint, lexer.TokenQuit,
		lexer.TokenShow, lexer.TokenLocal, lexer.TokenGlobal, lexer.TokenStatic,
		lexer.TokenMat, lexer.TokenObj, lexer.TokenLBrace, lexer.TokenSemicolon:
		return true
	default:
		return false
	}
}

// CompileDeclarations repeatedly compiles top-level declarations
// (function definitions, obj/global/static declarations) until EOF,
// registering each function in funcs/syms/objects as it is seen — the
// single pass spec.md §4.5 requires, no deferred linking step. Any
// statement appearing directly at file scope (not inside a `define`)
// compiles into the returned body Function, in source order, so the
// caller can run it exactly as `read` does: definitions first become
// callable, and the surrounding statements execute interleaved with
// them as the file is read top to bottom.
func CompileDeclarations(lex *lexer.Lexer, syms *symtab.Table, funcs *funcstore.Store, objects *object.Registry, file string) (body *funcstore.Function, err *calcerrors.CalcError) {
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*calcerrors.CalcError); ok {
				err = ce
				return
			}
			panic(r)
		}
	}()
	c := New(lex, syms, funcs, objects, file)
	c.chunk = bytecode.NewChunk()
	c.labels = label.NewTable()
	syms.PushFunction()
	defer syms.PopFunction()

	c.skipNewlines()
	for !c.check(lexer.TokenEOF) {
		c.compileTopLevelDecl()
		c.skipNewlines()
	}
	c.emit(bytecode.OpUndef)
	c.emit(bytecode.OpReturn)
	if undefined := c.labels.Finalize(); len(undefined) > 0 {
		panic(c.err("undefined label: " + undefined[0]))
	}
	body = &funcstore.Function{
		Name: file, Chunk: c.chunk,
		ParamCount: syms.ParamCount(), LocalCount: syms.LocalCount(),
	}
	return body, nil
}
