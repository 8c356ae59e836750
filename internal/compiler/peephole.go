package compiler

import (
	"calc/internal/bytecode"
	"calc/internal/label"
	"calc/internal/lexer"
)

// emitJumpToLabel emits op with a reserved operand slot threaded onto
// lbl's patch chain (spec.md §4.4): if lbl is already placed, the target
// is known and written directly; otherwise the slot becomes the new
// chain head, to be overwritten once lbl.Place runs.
func (c *Compiler) emitJumpToLabel(op bytecode.OpCode, lbl *label.Label) {
	c.emit(op)
	if lbl.Defined() {
		c.emitOperand(lbl.Offset)
		return
	}
	off := c.emitOperand(0)
	lbl.Reserve(c.chunk, off)
}

// placeLabel defines lbl at the current emission offset, patching every
// pending forward reference in its chain, and resets the peephole
// window exactly as spec.md §4.4 requires ("It also resets the
// peephole optimizer's memory of the last one and two emitted
// opcodes").
func (c *Compiler) placeLabel(lbl *label.Label) {
	lbl.Place(c.chunk, c.chunk.Len())
	c.lastOp1, c.lastOp2 = -1, -1
}

// emitGetValue collapses a just-emitted addr opcode into its
// value-opcode counterpart (spec.md §4.5's "addr-opcode followed by
// getvalue is collapsed to the single value-opcode of that address
// kind, with the addr opcode's operand width preserved") instead of
// emitting a separate GETVALUE.
func (c *Compiler) emitGetValue() {
	if n := c.chunk.Len(); c.lastOp1 == n-2 {
		var valueOp bytecode.OpCode
		switch bytecode.OpCode(c.chunk.Code[c.lastOp1]) {
		case bytecode.OpLocalAddr:
			valueOp = bytecode.OpLocalValue
		case bytecode.OpParamAddr:
			valueOp = bytecode.OpParamValue
		case bytecode.OpGlobalAddr:
			valueOp = bytecode.OpGlobalValue
		case bytecode.OpFastIndexAddr:
			valueOp = bytecode.OpFastIndexValue
		case bytecode.OpElemAddr:
			valueOp = bytecode.OpElemValue
		default:
			c.emit(bytecode.OpGetValue)
			return
		}
		c.chunk.Code[c.lastOp1] = int(valueOp)
		return
	}
	c.emit(bytecode.OpGetValue)
}

// emitStatementPop discards a statement's (or a comma-operator clause's)
// leftover value, fusing a trailing `ASSIGN` into `ASSIGNPOP` (spec.md
// §4.5's "assign; pop fuses to assignpop") and silently dropping a bare
// literal or undef with no other effect rather than emitting a live POP
// for it ("number/string; pop deletes both").
func (c *Compiler) emitStatementPop() {
	n := c.chunk.Len()
	if c.lastOp1 == n-1 {
		switch bytecode.OpCode(c.chunk.Code[n-1]) {
		case bytecode.OpAssign:
			c.chunk.Code[n-1] = int(bytecode.OpAssignPop)
			return
		case bytecode.OpZero, bytecode.OpOne, bytecode.OpUndef, bytecode.OpOldValue:
			c.chunk.Truncate(n - 1)
			return
		}
	}
	if c.lastOp1 == n-2 {
		switch bytecode.OpCode(c.chunk.Code[n-2]) {
		case bytecode.OpNumber, bytecode.OpString, bytecode.OpImaginary:
			c.chunk.Truncate(n - 2)
			return
		}
	}
	c.emit(bytecode.OpPop)
}

// compileExprList compiles `assignment (',' assignment)*`, the
// comma-operator expression list spec.md's grammar allows at a few
// specific points (expression statements, for-loop clauses), discarding
// every value but the last.
func (c *Compiler) compileExprList() {
	c.compileExpr()
	for c.match(lexer.TokenComma) {
		c.emitStatementPop()
		c.compileExpr()
	}
}

// emitNegate folds `-(number)` at emission time (spec.md §4.5) when the
// operand just compiled was a single integer literal with nothing else
// emitted since; otherwise it falls back to a runtime NEGATE.
func (c *Compiler) emitNegate() {
	n := c.chunk.Len()
	if c.lastOp1 == n-2 && bytecode.OpCode(c.chunk.Code[n-2]) == bytecode.OpNumber {
		if lit, ok := c.chunk.Constants[c.chunk.Code[n-1]].(int64); ok {
			c.chunk.Truncate(n - 2)
			idx := c.chunk.AddConstant(-lit)
			c.emit1(bytecode.OpNumber, idx)
			return
		}
	}
	c.emit(bytecode.OpNegate)
}

// emitBinaryOp emits the opcode for a just-climbed binary operator,
// first trying spec.md §4.5's constant folding ("number; number; binop
// ... replaces the three emitted items with a single number") and, for
// POWER specifically, the `number^2`/`number^4` square rewrite.
func (c *Compiler) emitBinaryOp(tt lexer.TokenType) {
	op := binOpcodeFor(tt)
	if op == bytecode.OpPower {
		if c.tryFoldConstBinop(op) {
			return
		}
		if c.trySquareRewrite() {
			return
		}
		c.emit(op)
		return
	}
	if c.tryFoldConstBinop(op) {
		return
	}
	c.emit(op)
}

// tryFoldConstBinop detects two adjacent NUMBER loads immediately
// preceding the binop about to be emitted (guaranteeing they are this
// operator's own literal operands, since any other construct between
// them would have emitted more than the bare two words a NUMBER
// instruction occupies) and, when both fit in a machine int64 and the
// operator is one constant folding covers, replaces them with a single
// folded NUMBER constant.
func (c *Compiler) tryFoldConstBinop(op bytecode.OpCode) bool {
	n := c.chunk.Len()
	if n < 4 || c.lastOp1 != n-2 || c.lastOp2 != n-4 {
		return false
	}
	if bytecode.OpCode(c.chunk.Code[n-4]) != bytecode.OpNumber ||
		bytecode.OpCode(c.chunk.Code[n-2]) != bytecode.OpNumber {
		return false
	}
	a, ok1 := c.chunk.Constants[c.chunk.Code[n-3]].(int64)
	b, ok2 := c.chunk.Constants[c.chunk.Code[n-1]].(int64)
	if !ok1 || !ok2 {
		return false
	}
	folded, ok := foldIntConst(op, a, b)
	if !ok {
		return false
	}
	c.chunk.Truncate(n - 4)
	idx := c.chunk.AddConstant(folded)
	c.emit1(bytecode.OpNumber, idx)
	return true
}

// foldIntConst computes a op b at compile time for the operators
// invariant 6 names (+, -, *, //), plus % and an integral, non-negative
// ^, all within int64 range; it reports false (no fold) for division
// by zero, a fractional/negative exponent, or int64 overflow, leaving
// those to raise their runtime DomainError normally.
func foldIntConst(op bytecode.OpCode, a, b int64) (interface{}, bool) {
	switch op {
	case bytecode.OpAdd:
		overflow, sum := addOverflows(a, b)
		if overflow {
			return nil, false
		}
		return sum, true
	case bytecode.OpSub:
		overflow, diff := subOverflows(a, b)
		if overflow {
			return nil, false
		}
		return diff, true
	case bytecode.OpMul:
		hi, lo := mulOverflows(a, b)
		if hi {
			return nil, false
		}
		return lo, true
	case bytecode.OpQuo:
		if b == 0 {
			return nil, false
		}
		return a / b, true // rounds toward zero, matching Go's native truncation
	case bytecode.OpMod:
		if b == 0 {
			return nil, false
		}
		m := a % b
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}
		return m, true
	case bytecode.OpPower:
		if b < 0 || b > 62 {
			return nil, false
		}
		result := int64(1)
		for i := int64(0); i < b; i++ {
			overflow, next := mulOverflows(result, a)
			if overflow {
				return nil, false
			}
			result = next
		}
		return result, true
	default:
		return nil, false
	}
}

func mulOverflows(a, b int64) (bool, int64) {
	if a == 0 || b == 0 {
		return false, 0
	}
	r := a * b
	if r/b != a {
		return true, 0
	}
	return false, r
}

func addOverflows(a, b int64) (bool, int64) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return true, 0
	}
	return false, sum
}

func subOverflows(a, b int64) (bool, int64) {
	diff := a - b
	if (b < 0 && diff < a) || (b > 0 && diff > a) {
		return true, 0
	}
	return false, diff
}

// trySquareRewrite detects `x^2`/`x^4` (a literal exponent of 2 or 4
// immediately preceding POWER, whatever the base expression was) and
// replaces it with one or two SQUARE opcodes.
func (c *Compiler) trySquareRewrite() bool {
	n := c.chunk.Len()
	if c.lastOp1 != n-2 || bytecode.OpCode(c.chunk.Code[n-2]) != bytecode.OpNumber {
		return false
	}
	lit, ok := c.chunk.Constants[c.chunk.Code[n-1]].(int64)
	if !ok {
		return false
	}
	switch lit {
	case 2:
		c.chunk.Truncate(n - 2)
		c.emit(bytecode.OpSquare)
		return true
	case 4:
		c.chunk.Truncate(n - 2)
		c.emit(bytecode.OpSquare)
		c.emit(bytecode.OpSquare)
		return true
	default:
		return false
	}
}

// emitNumberLiteral emits a decoded literal constant, collapsing 0/1 to
// the dedicated ZERO/ONE opcodes (spec.md §4.5).
func (c *Compiler) emitNumberLiteral(idx int) {
	if lit, ok := c.chunk.Constants[idx].(int64); ok {
		switch lit {
		case 0:
			c.emit(bytecode.OpZero)
			return
		case 1:
			c.emit(bytecode.OpOne)
			return
		}
	}
	c.emit1(bytecode.OpNumber, idx)
}
