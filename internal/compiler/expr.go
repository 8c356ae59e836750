package compiler

import (
	"math/big"
	"strconv"
	"strings"

	"calc/internal/bytecode"
	"calc/internal/lexer"
	"calc/internal/symtab"
	"calc/internal/vm"
)

// compileExpr compiles one full expression (assignment, ternary, and
// every binary/unary level beneath it), leaving exactly one value on the
// stack. It never leaves a bare address behind: every path resolves
// through GETVALUE, ASSIGN, or an inc/dec opcode before returning.
func (c *Compiler) compileExpr() {
	c.compileTernary()
}

func (c *Compiler) compileTernary() {
	c.compileAssignment()
	if c.match(lexer.TokenQuestion) {
		elseJump := c.emitJumpPlaceholder(bytecode.OpJumpZ)
		c.compileExpr()
		endJump := c.emitJumpPlaceholder(bytecode.OpJump)
		c.patchJumpHere(elseJump)
		c.consume(lexer.TokenColon, "in ?: expression")
		c.compileExpr()
		c.patchJumpHere(endJump)
	}
}

// compileAssignment handles `=` and the compound assignment operators.
// The left side must reduce to a bare address-producing chain (an
// identifier, index, or element access with no operators applied); any
// other expression shape falls straight through to the binary climb.
func (c *Compiler) compileAssignment() {
	if isPrefixUnaryStart(c.cur.Type) {
		c.parseBinaryExpr(1)
		return
	}
	isAddr := c.parsePostfixChain()
	if op, compound, ok := assignOpFor(c.cur.Type); ok {
		if !isAddr {
			panic(c.err("invalid assignment target"))
		}
		c.advance()
		if compound {
			c.emit(bytecode.OpDuplicate)
			c.emitGetValue()
		}
		c.compileExpr()
		if compound {
			c.emit(op)
		}
		c.emit(bytecode.OpAssign)
		return
	}
	c.finishOperand(isAddr)
	c.climbBinary(1)
}

// finishOperand converts a just-parsed addressable chain into a plain
// value, honoring a trailing postfix ++/-- before falling back to
// GETVALUE.
func (c *Compiler) finishOperand(isAddr bool) {
	if !isAddr {
		return
	}
	switch c.cur.Type {
	case lexer.TokenPlusPlus:
		c.advance()
		c.emit(bytecode.OpPostInc)
	case lexer.TokenMinusMinus:
		c.advance()
		c.emit(bytecode.OpPostDec)
	default:
		c.emitGetValue()
	}
}

type logicalKind int

const (
	logicalNone logicalKind = iota
	logicalAnd
	logicalOr
)

// binOpInfo reports a token's binary-operator precedence (0 = not a
// binary operator), right-associativity, and whether it needs the
// short-circuit CONDANDJUMP/CONDORJUMP treatment rather than a plain
// combine-both-operands opcode.
func binOpInfo(tt lexer.TokenType) (prec int, rightAssoc bool, logical logicalKind) {
	switch tt {
	case lexer.TokenOrOr:
		return 1, false, logicalOr
	case lexer.TokenAndAnd:
		return 2, false, logicalAnd
	case lexer.TokenEq, lexer.TokenNe:
		return 3, false, logicalNone
	case lexer.TokenLt, lexer.TokenLe, lexer.TokenGt, lexer.TokenGe:
		return 4, false, logicalNone
	case lexer.TokenPlus, lexer.TokenMinus:
		return 5, false, logicalNone
	case lexer.TokenStar, lexer.TokenSlash, lexer.TokenQuo, lexer.TokenPercent:
		return 6, false, logicalNone
	case lexer.TokenPower, lexer.TokenCaret:
		return 7, true, logicalNone
	default:
		return 0, false, logicalNone
	}
}

func binOpcodeFor(tt lexer.TokenType) bytecode.OpCode {
	switch tt {
	case lexer.TokenPlus:
		return bytecode.OpAdd
	case lexer.TokenMinus:
		return bytecode.OpSub
	case lexer.TokenStar:
		return bytecode.OpMul
	case lexer.TokenSlash:
		return bytecode.OpDiv
	case lexer.TokenQuo:
		return bytecode.OpQuo
	case lexer.TokenPercent:
		return bytecode.OpMod
	case lexer.TokenPower, lexer.TokenCaret:
		return bytecode.OpPower
	case lexer.TokenEq:
		return bytecode.OpEq
	case lexer.TokenNe:
		return bytecode.OpNe
	case lexer.TokenLt:
		return bytecode.OpLt
	case lexer.TokenLe:
		return bytecode.OpLe
	case lexer.TokenGt:
		return bytecode.OpGt
	case lexer.TokenGe:
		return bytecode.OpGe
	default:
		panic("compiler: no opcode for binary token " + string(tt))
	}
}

func assignOpFor(tt lexer.TokenType) (op bytecode.OpCode, compound bool, ok bool) {
	switch tt {
	case lexer.TokenAssign:
		return 0, false, true
	case lexer.TokenPlusEq:
		return bytecode.OpAdd, true, true
	case lexer.TokenMinusEq:
		return bytecode.OpSub, true, true
	case lexer.TokenStarEq:
		return bytecode.OpMul, true, true
	case lexer.TokenSlashEq:
		return bytecode.OpDiv, true, true
	case lexer.TokenQuoEq:
		return bytecode.OpQuo, true, true
	case lexer.TokenPercentEq:
		return bytecode.OpMod, true, true
	case lexer.TokenPowerEq, lexer.TokenCaretEq:
		return bytecode.OpPower, true, true
	default:
		return 0, false, false
	}
}

func isPrefixUnaryStart(tt lexer.TokenType) bool {
	switch tt {
	case lexer.TokenMinus, lexer.TokenPlus, lexer.TokenNot, lexer.TokenTilde,
		lexer.TokenPlusPlus, lexer.TokenMinusMinus:
		return true
	default:
		return false
	}
}

// climbBinary assumes the current left operand's value is already on
// the stack and consumes every binary operator at or above minPrec,
// precedence-climbing in the usual way.
func (c *Compiler) climbBinary(minPrec int) {
	for {
		prec, rightAssoc, logical := binOpInfo(c.cur.Type)
		if prec == 0 || prec < minPrec {
			return
		}
		op := c.cur.Type
		c.advance()
		if logical != logicalNone {
			var jumpOp bytecode.OpCode
			if logical == logicalAnd {
				jumpOp = bytecode.OpCondAndJump
			} else {
				jumpOp = bytecode.OpCondOrJump
			}
			patch := c.emitJumpPlaceholder(jumpOp)
			c.parseBinaryExpr(prec + 1)
			c.patchJumpHere(patch)
			continue
		}
		next := prec + 1
		if rightAssoc {
			next = prec
		}
		c.parseBinaryExpr(next)
		c.emitBinaryOp(op)
	}
}

// parseBinaryExpr parses one unary operand and climbs every binary
// operator at or above minPrec, leaving one value on the stack. This is
// the entry point rhs operands use; compileAssignment uses
// finishOperand+climbBinary directly since it has already parsed its
// own left operand while checking for an assignment target.
func (c *Compiler) parseBinaryExpr(minPrec int) {
	c.parseUnary()
	c.climbBinary(minPrec)
}

func (c *Compiler) parseUnary() {
	switch c.cur.Type {
	case lexer.TokenMinus:
		c.advance()
		c.parseUnary()
		c.emitNegate()
	case lexer.TokenPlus:
		c.advance()
		c.parseUnary()
		c.emit(bytecode.OpPlus)
	case lexer.TokenNot:
		c.advance()
		c.parseUnary()
		c.emit(bytecode.OpNot)
	case lexer.TokenTilde:
		c.advance()
		c.parseUnary()
		c.emit(bytecode.OpComp)
	case lexer.TokenPlusPlus:
		c.advance()
		if !c.parsePostfixChain() {
			panic(c.err("++ requires an assignable operand"))
		}
		c.emit(bytecode.OpPreInc)
	case lexer.TokenMinusMinus:
		c.advance()
		if !c.parsePostfixChain() {
			panic(c.err("-- requires an assignable operand"))
		}
		c.emit(bytecode.OpPreDec)
	default:
		isAddr := c.parsePostfixChain()
		c.finishOperand(isAddr)
	}
}

// parsePostfixChain compiles one primary expression followed by any run
// of postfix accessors ([index], [[fast index]], .elem). It reports
// whether the final result is address-valued (suitable for assignment,
// ++/--, or a further postfix accessor) rather than a plain value.
func (c *Compiler) parsePostfixChain() bool {
	isAddr := c.compilePrimary()
	for {
		switch c.cur.Type {
		case lexer.TokenLBracket:
			c.advance()
			if isAddr {
				c.emitGetValue()
			}
			dims := 0
			for {
				c.compileExpr()
				dims++
				if !c.match(lexer.TokenComma) {
					break
				}
			}
			c.consume(lexer.TokenRBracket, "to close index")
			c.emit1(bytecode.OpIndexAddr, dims)
			c.emitOperand(1) // write-flag: always set, so the VM clones a shared matrix first
			isAddr = true
		case lexer.TokenDLBracket:
			c.advance()
			if isAddr {
				c.emitGetValue()
			}
			c.compileExpr()
			c.consume(lexer.TokenDRBracket, "to close fast index")
			c.emit1(bytecode.OpFastIndexAddr, 1)
			isAddr = true
		case lexer.TokenDot:
			c.advance()
			name := c.consume(lexer.TokenIdent, "after .").Lexeme
			if isAddr {
				c.emitGetValue()
			}
			nameIdx := c.chunk.AddConstant(name)
			c.emit1(bytecode.OpElemAddr, nameIdx)
			isAddr = true
		default:
			return isAddr
		}
	}
}

// compilePrimary compiles one number/string/identifier/call/paren/mat
// literal, reporting whether the result is address-valued.
func (c *Compiler) compilePrimary() bool {
	switch c.cur.Type {
	case lexer.TokenNumber:
		lexeme := c.cur.Lexeme
		c.advance()
		idx := c.chunk.AddConstant(parseNumericLiteral(c, lexeme))
		c.emitNumberLiteral(idx)
		return false
	case lexer.TokenImaginary:
		lexeme := strings.TrimSuffix(c.cur.Lexeme, "i")
		c.advance()
		idx := c.chunk.AddConstant(parseNumericLiteral(c, lexeme))
		c.emit1(bytecode.OpImaginary, idx)
		return false
	case lexer.TokenString:
		s := c.cur.Str
		c.advance()
		idx := c.chunk.AddConstant(s)
		c.emit1(bytecode.OpString, idx)
		return false
	case lexer.TokenNull:
		c.advance()
		c.emit(bytecode.OpUndef)
		return false
	case lexer.TokenDot:
		// bare `.` is the saved old-value reference, distinct from
		// `.name` element access which only ever follows a postfix chain.
		if c.peekAhead().Type != lexer.TokenIdent {
			c.advance()
			c.emit(bytecode.OpOldValue)
			return false
		}
		panic(c.err("unexpected ."))
	case lexer.TokenLParen:
		c.advance()
		c.compileExpr()
		c.consume(lexer.TokenRParen, "to close (")
		return false
	case lexer.TokenObj:
		return c.compileObjLiteral()
	case lexer.TokenMat:
		return c.compileMatLiteral()
	case lexer.TokenIdent:
		name := c.cur.Lexeme
		c.advance()
		if c.check(lexer.TokenLParen) {
			c.compileCall(name)
			return false
		}
		return c.compileIdentRef(name)
	default:
		panic(c.err("unexpected token " + string(c.cur.Type) + " in expression"))
	}
}

func (c *Compiler) compileIdentRef(name string) bool {
	kind, idx := c.syms.Resolve(name)
	switch kind {
	case symtab.ScopeParam:
		c.emit1(bytecode.OpParamAddr, idx)
	case symtab.ScopeLocal:
		c.emit1(bytecode.OpLocalAddr, idx)
	default:
		nameIdx := c.chunk.AddConstant(name)
		c.emit1(bytecode.OpGlobalAddr, nameIdx)
	}
	return true
}

// compileCall compiles `name(args...)`, resolving against user functions
// first (interning a forward reference if name is not yet defined) and
// falling back to the builtin table.
func (c *Compiler) compileCall(name string) {
	c.consume(lexer.TokenLParen, "after function name")
	argc := 0
	if !c.check(lexer.TokenRParen) {
		for {
			c.compileExpr()
			argc++
			if !c.match(lexer.TokenComma) {
				break
			}
		}
	}
	c.consume(lexer.TokenRParen, "to close call")
	if _, isUser := c.funcs.Lookup(name); !isUser {
		if idx, ok := vm.BuiltinIndex(name); ok {
			c.emit1(bytecode.OpCall, idx)
			c.emitOperand(argc)
			return
		}
	}
	idx := c.funcs.Intern(name)
	c.emit1(bytecode.OpUserCall, idx)
	c.emitOperand(argc)
}

// parseNumericLiteral turns a decimal/exponent lexeme into the constant
// pool representation internal/vm's constantValue expects: an int64 when
// it fits, else a *big.Int for whole numbers, else a [2]*big.Int
// numerator/denominator pair for anything with a fractional or negative
// exponent part. Reduction happens at load time, in NewRational.
func parseNumericLiteral(c *Compiler, lexeme string) interface{} {
	mantissa := lexeme
	exp := 0
	if i := strings.IndexAny(mantissa, "eE"); i >= 0 {
		expPart := mantissa[i+1:]
		mantissa = mantissa[:i]
		e, err := strconv.Atoi(expPart)
		if err != nil {
			panic(c.err("malformed exponent in " + lexeme))
		}
		exp = e
	}
	fracDigits := 0
	if dot := strings.IndexByte(mantissa, '.'); dot >= 0 {
		fracDigits = len(mantissa) - dot - 1
		mantissa = mantissa[:dot] + mantissa[dot+1:]
	}
	num, ok := new(big.Int).SetString(mantissa, 10)
	if !ok {
		panic(c.err("malformed number " + lexeme))
	}
	totalExp := exp - fracDigits
	den := big.NewInt(1)
	if totalExp > 0 {
		num.Mul(num, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(totalExp)), nil))
	} else if totalExp < 0 {
		den.Exp(big.NewInt(10), big.NewInt(int64(-totalExp)), nil)
	}
	if den.Cmp(big.NewInt(1)) == 0 {
		if num.IsInt64() {
			return num.Int64()
		}
		return num
	}
	return [2]*big.Int{num, den}
}

// compileObjLiteral compiles `obj typename { e1, e2, ... }`, assigning
// expressions to elements in the type's declared order. A short form
// with no brace leaves every element at its zero value.
func (c *Compiler) compileObjLiteral() bool {
	c.advance() // 'obj'
	typeName := c.consume(lexer.TokenIdent, "type name after obj").Lexeme
	typeID, ok := c.objects.Lookup(typeName)
	if !ok {
		panic(c.err("undefined object type " + typeName))
	}
	td := c.objects.Get(typeID)
	c.emit1(bytecode.OpObjCreate, typeID)
	if c.match(lexer.TokenLBrace) {
		i := 0
		if !c.check(lexer.TokenRBrace) {
			for {
				if i >= len(td.Elements) {
					panic(c.err("too many elements for obj " + typeName))
				}
				c.compileExpr()
				c.emit1(bytecode.OpElemInit, i)
				i++
				if !c.match(lexer.TokenComma) {
					break
				}
			}
		}
		c.consume(lexer.TokenRBrace, "to close obj literal")
	}
	return false
}

// compileMatLiteral compiles `mat[size, ...]` (every dimension 0-based)
// optionally followed by `={e1, e2, ...}` to fill its elements
// round-robin, matching OpInitFill's semantics.
func (c *Compiler) compileMatLiteral() bool {
	c.advance() // 'mat'
	c.consume(lexer.TokenLBracket, "after mat")
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
	return false
}
