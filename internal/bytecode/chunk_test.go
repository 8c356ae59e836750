package bytecode

import "testing"

func TestWriteOpAndEmitOperand(t *testing.T) {
	c := NewChunk()
	off := c.WriteOp(OpAdd, DebugInfo{Line: 1})
	if off != 0 {
		t.Fatalf("expected first write at offset 0, got %d", off)
	}
	operandOff := c.EmitOperand(42, DebugInfo{Line: 1})
	if operandOff != 1 {
		t.Fatalf("expected operand at offset 1, got %d", operandOff)
	}
	if c.Len() != 2 {
		t.Fatalf("expected chunk length 2, got %d", c.Len())
	}
}

func TestPatchOperandAndReadOperand(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OpNumber, DebugInfo{})
	c.EmitOperand(-1, DebugInfo{})
	c.PatchOperand(1, 99)
	if c.ReadOperand(1) != 99 {
		t.Fatalf("expected patched operand 99, got %d", c.ReadOperand(1))
	}
}

func TestTruncateDropsTrailingWords(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OpZero, DebugInfo{})
	mark := c.Len()
	c.WriteOp(OpOne, DebugInfo{})
	c.Truncate(mark)
	if c.Len() != mark {
		t.Fatalf("expected truncate to roll back to %d, got %d", mark, c.Len())
	}
	if OpCode(c.Code[0]) != OpZero {
		t.Fatalf("truncate should not disturb earlier words")
	}
}

func TestAddConstantReturnsStableIndex(t *testing.T) {
	c := NewChunk()
	idx1 := c.AddConstant(int64(5))
	idx2 := c.AddConstant(int64(6))
	if idx1 == idx2 {
		t.Fatalf("distinct constants should get distinct indices")
	}
	if c.Constants[idx1].(int64) != 5 || c.Constants[idx2].(int64) != 6 {
		t.Fatalf("constants not stored at the indices returned")
	}
}

func TestGetDebugInfoOutOfRange(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OpAdd, DebugInfo{Line: 7, File: "f"})
	if got := c.GetDebugInfo(0); got.Line != 7 || got.File != "f" {
		t.Fatalf("expected debug info for offset 0, got %+v", got)
	}
	if got := c.GetDebugInfo(99); got != (DebugInfo{}) {
		t.Fatalf("expected zero-value DebugInfo for an out-of-range offset, got %+v", got)
	}
}
