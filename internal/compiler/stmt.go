package compiler

import (
	"calc/internal/bytecode"
	"calc/internal/funcstore"
	"calc/internal/label"
	"calc/internal/lexer"
)

// compileTopLevelDecl compiles one top-level declaration: a `define`
// (the only construct that opens a fresh function/chunk) or, for every
// other form (obj/mat/local/global/static declarations, or a bare
// statement typed directly into a source file), falls through to the
// ordinary statement grammar compiled into the file's shared top-level
// chunk.
func (c *Compiler) compileTopLevelDecl() {
	if c.check(lexer.TokenDefine) {
		c.compileFunctionDef()
		return
	}
	c.compileStmt()
}

// compileFunctionDef compiles `define name(params) stmt`, opening a
// fresh Chunk/label table/local scope for the duration of the body and
// committing the result to the function store under name.
func (c *Compiler) compileFunctionDef() {
	c.advance() // 'define'
	name := c.consume(lexer.TokenIdent, "after define").Lexeme
	c.consume(lexer.TokenLParen, "after function name")

	outerChunk, outerLabels := c.chunk, c.labels
	outerOp1, outerOp2 := c.lastOp1, c.lastOp2
	c.chunk = bytecode.NewChunk()
	c.labels = label.NewTable()
	c.lastOp1, c.lastOp2 = -1, -1
	c.syms.PushFunction()

	var params []string
	if !c.check(lexer.TokenRParen) {
		for {
			pname := c.consume(lexer.TokenIdent, "parameter name").Lexeme
			slot := c.syms.DeclareParam(pname)
			params = append(params, pname)
			if c.match(lexer.TokenAssign) {
				// PARAMADDR i; JUMPNN skip; <expr>; ASSIGNPOP; skip:
				// the default only evaluates when the caller left this
				// parameter Null (spec.md §4.5 "Parameter defaults").
				c.emit1(bytecode.OpParamAddr, slot)
				skip := c.emitJumpPlaceholder(bytecode.OpJumpNN)
				c.compileExpr()
				c.emit(bytecode.OpAssignPop)
				c.patchJumpHere(skip)
			}
			if !c.match(lexer.TokenComma) {
				break
			}
		}
	}
	c.consume(lexer.TokenRParen, "to close parameter list")
	c.skipNewlines()
	if c.match(lexer.TokenAssign) {
		// `define name(params) = expr` is sugar for a single-statement
		// body that returns expr's value, the classic calculator
		// function-definition form alongside the brace-bodied one.
		c.compileExpr()
		c.emit(bytecode.OpReturn)
		c.endOfStatement()
	} else {
		c.compileBlockOrStmt()
	}

	if undefined := c.labels.Finalize(); len(undefined) > 0 {
		panic(c.err("undefined label: " + undefined[0]))
	}

	fn := &funcstore.Function{
		Name: name, Params: params,
		ParamCount: c.syms.ParamCount(), LocalCount: c.syms.LocalCount(),
		Chunk: c.chunk,
	}
	c.syms.PopFunction()

	idx := c.funcs.Intern(name)
	c.funcs.Commit(idx, fn)

	c.chunk, c.labels = outerChunk, outerLabels
	c.lastOp1, c.lastOp2 = outerOp1, outerOp2
}

// compileStmt compiles one statement per spec.md §4.5's grammar.
func (c *Compiler) compileStmt() {
	switch c.cur.Type {
	case lexer.TokenIf:
		c.compileIf()
	case lexer.TokenFor:
		c.compileFor()
	case lexer.TokenWhile:
		c.compileWhile()
	case lexer.TokenDo:
		c.compileDoWhile()
	case lexer.TokenSwitch:
		c.compileSwitch()
	case lexer.TokenContinue:
		c.compileContinue()
	case lexer.TokenBreak:
		c.compileBreak()
	case lexer.TokenReturn:
		c.compileReturn()
	case lexer.TokenGoto:
		c.compileGoto()
	case lexer.TokenPrint:
		c.compilePrint()
	case lexer.TokenQuit:
		c.compileQuit()
	case lexer.TokenShow:
		c.compileShow()
	case lexer.TokenLocal, lexer.TokenGlobal, lexer.TokenStatic:
		c.compileDeclStmt()
		c.endOfStatement()
	case lexer.TokenMat:
		c.compileMatDeclStmt()
		c.endOfStatement()
	case lexer.TokenObj:
		c.compileObjStmt()
		c.endOfStatement()
	case lexer.TokenLBrace:
		c.compileBlock()
	case lexer.TokenSemicolon, lexer.TokenNewline:
		c.advance() // empty statement
	case lexer.TokenIdent:
		if c.peekAhead().Type == lexer.TokenColon {
			name := c.cur.Lexeme
			c.advance() // ident
			c.advance() // ':'
			lbl := c.labels.Lookup(name)
			c.placeLabel(lbl)
			c.compileStmt()
			return
		}
		c.compileExprStmt()
	default:
		c.compileExprStmt()
	}
}

// compileBlockOrStmt compiles a `{ ... }` block if one opens here,
// otherwise a single statement — the shape every clause of if/for/while
// that takes a body statement accepts.
func (c *Compiler) compileBlockOrStmt() {
	if c.check(lexer.TokenLBrace) {
		c.compileBlock()
		return
	}
	c.compileStmt()
}

func (c *Compiler) compileBlock() {
	c.consume(lexer.TokenLBrace, "to open block")
	c.skipNewlines()
	for !c.check(lexer.TokenRBrace) && !c.check(lexer.TokenEOF) {
		c.compileStmt()
		c.skipNewlines()
	}
	c.consume(lexer.TokenRBrace, "to close block")
}

// compileExprStmt compiles `expr ';'`, the comma-operator expression
// list spec.md §4.5's grammar allows at statement level, discarding
// every value but leaving none on the stack (each intermediate value is
// popped, fusing trailing `assign; pop` into ASSIGNPOP per the
// peephole rule, and dropping a bare trailing constant with no other
// effect).
func (c *Compiler) compileExprStmt() {
	c.compileExpr()
	for c.match(lexer.TokenComma) {
		c.emitStatementPop()
		c.compileExpr()
	}
	c.emitStatementPop()
	c.endOfStatement()
}

func (c *Compiler) compileCondParen() {
	c.consume(lexer.TokenLParen, "after if/while/switch")
	c.compileExpr()
	c.consume(lexer.TokenRParen, "to close condition")
}

func (c *Compiler) compileIf() {
	c.advance() // 'if'
	c.compileCondParen()
	elseLabel := label.New("")
	c.emitJumpToLabel(bytecode.OpJumpZ, elseLabel)
	c.compileBlockOrStmt()
	if c.check(lexer.TokenElse) {
		endLabel := label.New("")
		c.emitJumpToLabel(bytecode.OpJump, endLabel)
		c.placeLabel(elseLabel)
		c.advance() // 'else'
		c.skipNewlines()
		c.compileBlockOrStmt()
		c.placeLabel(endLabel)
		return
	}
	c.placeLabel(elseLabel)
}

func (c *Compiler) compileWhile() {
	c.advance() // 'while'
	condLabel := label.New("")
	c.placeLabel(condLabel) // mark-here: nothing has referenced it yet
	c.compileCondParen()
	breakLabel := label.New("")
	c.emitJumpToLabel(bytecode.OpJumpZ, breakLabel)
	c.loops = append(c.loops, &loopContext{breakLabel: breakLabel, continueLabel: condLabel})
	c.compileBlockOrStmt()
	c.loops = c.loops[:len(c.loops)-1]
	c.emitJumpToLabel(bytecode.OpJump, condLabel)
	c.placeLabel(breakLabel)
}

func (c *Compiler) compileDoWhile() {
	c.advance() // 'do'
	bodyLabel := label.New("")
	c.placeLabel(bodyLabel)
	breakLabel := label.New("")
	continueLabel := label.New("")
	c.loops = append(c.loops, &loopContext{breakLabel: breakLabel, continueLabel: continueLabel})
	c.compileBlockOrStmt()
	c.loops = c.loops[:len(c.loops)-1]
	c.placeLabel(continueLabel)
	c.consume(lexer.TokenWhile, "after do body")
	c.compileCondParen()
	c.emitJumpToLabel(bytecode.OpJumpNZ, bodyLabel)
	c.placeLabel(breakLabel)
	if c.check(lexer.TokenSemicolon) || c.check(lexer.TokenNewline) {
		c.endOfStatement()
	}
}

// compileFor compiles the four-label loop spec.md §4.5 describes: L1
// (cond), L2 (step), L3 (body), L4 (break). Omitted clauses elide their
// emission entirely; an absent condition never emits a break test at
// the loop head (the only way out is `break`/`return`/`goto`).
func (c *Compiler) compileFor() {
	c.advance() // 'for'
	c.consume(lexer.TokenLParen, "after for")

	if !c.check(lexer.TokenSemicolon) {
		c.compileExprList()
		c.emitStatementPop()
	}
	c.consume(lexer.TokenSemicolon, "after for-init")

	condLabel := label.New("") // L1
	c.placeLabel(condLabel)
	breakLabel := label.New("") // L4
	hasCond := !c.check(lexer.TokenSemicolon)
	if hasCond {
		c.compileExpr()
		c.emitJumpToLabel(bytecode.OpJumpZ, breakLabel)
	}
	c.consume(lexer.TokenSemicolon, "after for-cond")

	bodyLabel := label.New("") // L3
	c.emitJumpToLabel(bytecode.OpJump, bodyLabel)

	stepLabel := label.New("") // L2
	c.placeLabel(stepLabel)
	if !c.check(lexer.TokenRParen) {
		c.compileExprList()
		c.emitStatementPop()
	}
	c.emitJumpToLabel(bytecode.OpJump, condLabel)
	c.consume(lexer.TokenRParen, "after for-clauses")

	c.placeLabel(bodyLabel)
	c.loops = append(c.loops, &loopContext{breakLabel: breakLabel, continueLabel: stepLabel})
	c.compileBlockOrStmt()
	c.loops = c.loops[:len(c.loops)-1]
	c.emitJumpToLabel(bytecode.OpJump, stepLabel)
	c.placeLabel(breakLabel)
}

// compileSwitch compiles `switch cond { case v: stmts ... default:
// stmts }`. The switch value stays on the stack for the statement's
// whole duration (CASEJUMP only peeks it), so `break` and the implicit
// fall-off-the-end both land on a shared epilogue that pops it exactly
// once.
func (c *Compiler) compileSwitch() {
	c.advance() // 'switch'
	c.compileCondParen()
	breakLabel := label.New("")
	c.loops = append(c.loops, &loopContext{breakLabel: breakLabel, isSwitch: true})

	c.consume(lexer.TokenLBrace, "to open switch body")
	c.skipNewlines()
	for !c.check(lexer.TokenRBrace) {
		switch c.cur.Type {
		case lexer.TokenCase:
			c.advance()
			c.compileExpr()
			nextLabel := label.New("")
			c.emitJumpToLabel(bytecode.OpCaseJump, nextLabel)
			c.consume(lexer.TokenColon, "after case value")
			c.skipNewlines()
			for !c.check(lexer.TokenCase) && !c.check(lexer.TokenDefault) && !c.check(lexer.TokenRBrace) {
				c.compileStmt()
				c.skipNewlines()
			}
			c.placeLabel(nextLabel)
		case lexer.TokenDefault:
			c.advance()
			c.consume(lexer.TokenColon, "after default")
			c.skipNewlines()
			for !c.check(lexer.TokenCase) && !c.check(lexer.TokenDefault) && !c.check(lexer.TokenRBrace) {
				c.compileStmt()
				c.skipNewlines()
			}
		default:
			panic(c.err("expected case or default in switch body"))
		}
	}
	c.consume(lexer.TokenRBrace, "to close switch body")

	c.loops = c.loops[:len(c.loops)-1]
	c.placeLabel(breakLabel)
	c.emit(bytecode.OpPop) // drop the switch value
}

func (c *Compiler) compileContinue() {
	c.advance()
	lp := c.currentLoop()
	if lp == nil || lp.continueLabel == nil {
		panic(c.err("continue outside of a loop"))
	}
	c.emitJumpToLabel(bytecode.OpJump, lp.continueLabel)
	c.endOfStatement()
}

func (c *Compiler) compileBreak() {
	c.advance()
	lp := c.currentLoop()
	if lp == nil {
		panic(c.err("break outside of a loop or switch"))
	}
	c.emitJumpToLabel(bytecode.OpJump, lp.breakLabel)
	c.endOfStatement()
}

func (c *Compiler) compileGoto() {
	c.advance()
	name := c.consume(lexer.TokenIdent, "after goto").Lexeme
	lbl := c.labels.Lookup(name)
	c.emitJumpToLabel(bytecode.OpJump, lbl)
	c.endOfStatement()
}

func (c *Compiler) compileReturn() {
	c.advance()
	if c.check(lexer.TokenSemicolon) || c.check(lexer.TokenNewline) ||
		c.check(lexer.TokenEOF) || c.check(lexer.TokenRBrace) {
		c.emit(bytecode.OpUndef)
	} else {
		c.compileExpr()
	}
	c.emit(bytecode.OpReturn)
	c.endOfStatement()
}

func (c *Compiler) compilePrint() {
	c.advance()
	if !c.check(lexer.TokenSemicolon) && !c.check(lexer.TokenNewline) && !c.check(lexer.TokenEOF) {
		first := true
		for {
			if !first {
				c.emit(bytecode.OpPrintSpace)
			}
			first = false
			c.compileExpr()
			c.emit(bytecode.OpPrint)
			if !c.match(lexer.TokenComma) {
				break
			}
		}
	}
	c.emit(bytecode.OpPrintEOL)
	c.endOfStatement()
}

func (c *Compiler) compileQuit() {
	c.advance()
	if c.check(lexer.TokenString) {
		s := c.cur.Str
		c.advance()
		idx := c.chunk.AddConstant(s)
		c.emit1(bytecode.OpPrintString, idx)
		c.emit(bytecode.OpPrintEOL)
	}
	c.emit(bytecode.OpQuit)
	c.endOfStatement()
}

// compileShow compiles `show <subject>`; the subject name (functions,
// statics, config, ...) is a diagnostic detail the opcode itself
// doesn't need — spec.md's Non-goals explicitly exclude bit-identical
// textual formatting of `show` output.
func (c *Compiler) compileShow() {
	c.advance()
	if c.check(lexer.TokenIdent) {
		c.advance()
	}
	c.emit(bytecode.OpShow)
	c.endOfStatement()
}

// compileDeclStmt compiles `('local'|'global'|'static') onedecl (','
// onedecl)*`. A bare `local x` declaration needs no runtime
// initialization opcode — the calling convention already zero-fills
// every local/parameter slot with Null before the function body runs —
// this only reserves a compiler-side slot and, for static, the
// backing global entry.
func (c *Compiler) compileDeclStmt() {
	kw := c.cur.Type
	c.advance()
	for {
		name := c.consume(lexer.TokenIdent, "in declaration").Lexeme
		switch kw {
		case lexer.TokenLocal:
			slot := c.syms.DeclareLocal(name)
			if c.match(lexer.TokenAssign) {
				c.emit1(bytecode.OpLocalAddr, slot)
				c.compileExpr()
				c.emit(bytecode.OpAssignPop)
			}
		case lexer.TokenGlobal:
			nameIdx := c.chunk.AddConstant(name)
			if c.match(lexer.TokenAssign) {
				c.emit1(bytecode.OpGlobalAddr, nameIdx)
				c.compileExpr()
				c.emit(bytecode.OpAssignPop)
			}
		case lexer.TokenStatic:
			nameIdx := c.chunk.AddConstant(name)
			c.emit1(bytecode.OpInitStatic, nameIdx)
			if c.match(lexer.TokenAssign) {
				c.emit1(bytecode.OpGlobalAddr, nameIdx)
				c.compileExpr()
				c.emit(bytecode.OpAssignPop)
			}
		}
		if !c.match(lexer.TokenComma) {
			break
		}
	}
}

// emitNewVarAddr declares name as a fresh local slot when a function
// body is being compiled, or leaves it to resolve as a global (created
// lazily by GLOBALADDR) otherwise, and emits the matching address
// opcode — the binding `mat`/`obj` declarations need without an
// explicit local/global/static prefix.
func (c *Compiler) emitNewVarAddr(name string) {
	if c.syms.InFunction() {
		slot := c.syms.DeclareLocal(name)
		c.emit1(bytecode.OpLocalAddr, slot)
		return
	}
	nameIdx := c.chunk.AddConstant(name)
	c.emit1(bytecode.OpGlobalAddr, nameIdx)
}

// compileMatDeclStmt compiles `mat name[dims] ('=' '{' fills '}')?`,
// binding name to a freshly created matrix value.
func (c *Compiler) compileMatDeclStmt() {
	c.advance() // 'mat'
	name := c.consume(lexer.TokenIdent, "after mat").Lexeme
	c.emitNewVarAddr(name)

	c.consume(lexer.TokenLBracket, "after mat name")
	dims := 0
	for {
		c.emit(bytecode.OpZero)
		c.compileExpr()
		dims++
		if !c.match(lexer.TokenComma) {
			break
		}
	}
	c.consume(lexer.TokenRBracket, "to close mat dimensions")
	c.emit1(bytecode.OpMatCreate, dims)
	if c.match(lexer.TokenAssign) {
		c.consume(lexer.TokenLBrace, "to open mat fill list")
		n := 0
		if !c.check(lexer.TokenRBrace) {
			for {
				c.compileExpr()
				n++
				if !c.match(lexer.TokenComma) {
					break
				}
			}
		}
		c.consume(lexer.TokenRBrace, "to close mat fill list")
		c.emit1(bytecode.OpInitFill, n)
	}
	c.emit(bytecode.OpAssignPop)
}

// compileObjStmt compiles `'obj' objdecl`: either a type declaration
// (`obj name { elem, ... }`, bare element names) registered into the
// object registry at compile time with no bytecode emitted, or a
// variable declaration (`obj typename var, ...`) binding each name to a
// freshly constructed instance of that type.
func (c *Compiler) compileObjStmt() {
	c.advance() // 'obj'
	name := c.consume(lexer.TokenIdent, "after obj").Lexeme

	if c.check(lexer.TokenLBrace) {
		c.advance()
		var elems []string
		if !c.check(lexer.TokenRBrace) {
			for {
				elems = append(elems, c.consume(lexer.TokenIdent, "object element name").Lexeme)
				if !c.match(lexer.TokenComma) {
					break
				}
			}
		}
		c.consume(lexer.TokenRBrace, "to close obj type declaration")
		c.objects.Declare(name, elems)
		return
	}

	typeID, ok := c.objects.Lookup(name)
	if !ok {
		panic(c.err("undefined object type " + name))
	}
	for {
		varName := c.consume(lexer.TokenIdent, "object variable name").Lexeme
		c.emitNewVarAddr(varName)
		c.emit1(bytecode.OpObjCreate, typeID)
		c.emit(bytecode.OpAssignPop)
		if !c.match(lexer.TokenComma) {
			break
		}
	}
}
