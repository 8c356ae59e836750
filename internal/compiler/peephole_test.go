package compiler

import (
	"testing"

	"calc/internal/bytecode"
	"calc/internal/funcstore"
	"calc/internal/lexer"
	"calc/internal/object"
	"calc/internal/symtab"
)

func compileExprSrc(t *testing.T, src string) *bytecode.Chunk {
	t.Helper()
	syms := symtab.New()
	funcs := funcstore.New()
	objects := object.NewRegistry()
	lex := lexer.NewLexer("test", src)
	fn, err := CompileTopLevelExpr(lex, syms, funcs, objects, "test")
	if err != nil {
		t.Fatalf("compile %q: %v", src, err)
	}
	return fn.Chunk
}

func opsOf(chunk *bytecode.Chunk) []bytecode.OpCode {
	var ops []bytecode.OpCode
	for _, w := range chunk.Code {
		ops = append(ops, bytecode.OpCode(w))
	}
	return ops
}

// TestConstantFolding checks spec.md invariant 6: "number; number; binop
// ... replaces the three emitted items with a single number" for the
// arithmetic operators it covers.
func TestConstantFolding(t *testing.T) {
	chunk := compileExprSrc(t, "2 + 3")
	if len(chunk.Code) < 2 || bytecode.OpCode(chunk.Code[0]) != bytecode.OpNumber {
		t.Fatalf("expected a single folded NUMBER, got ops %v", opsOf(chunk))
	}
	idx := chunk.Code[1]
	if got, ok := chunk.Constants[idx].(int64); !ok || got != 5 {
		t.Fatalf("expected folded constant 5, got %v", chunk.Constants[idx])
	}
}

func TestZeroOneCollapse(t *testing.T) {
	chunk := compileExprSrc(t, "0")
	if bytecode.OpCode(chunk.Code[0]) != bytecode.OpZero {
		t.Fatalf("expected ZERO opcode for literal 0, got %v", opsOf(chunk))
	}

	chunk = compileExprSrc(t, "1")
	if bytecode.OpCode(chunk.Code[0]) != bytecode.OpOne {
		t.Fatalf("expected ONE opcode for literal 1, got %v", opsOf(chunk))
	}
}

// TestSquareRewrite checks the `x^2`/`x^4` rewrite into one or two
// SQUARE opcodes instead of a runtime POWER call.
func TestSquareRewrite(t *testing.T) {
	syms := symtab.New()
	funcs := funcstore.New()
	objects := object.NewRegistry()
	lex := lexer.NewLexer("test", "x^2")
	syms.DeclareGlobal("x", 0, 0)
	fn, err := CompileTopLevelExpr(lex, syms, funcs, objects, "test")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	ops := opsOf(fn.Chunk)
	found := false
	for _, op := range ops {
		if op == bytecode.OpSquare {
			found = true
		}
		if op == bytecode.OpPower {
			t.Fatalf("x^2 should rewrite to SQUARE, found POWER in %v", ops)
		}
	}
	if !found {
		t.Fatalf("expected a SQUARE opcode in %v", ops)
	}
}

func TestNegateConstantFold(t *testing.T) {
	chunk := compileExprSrc(t, "-5")
	for _, w := range chunk.Code {
		if bytecode.OpCode(w) == bytecode.OpNegate {
			t.Fatalf("expected -5 to fold at compile time, got NEGATE in %v", opsOf(chunk))
		}
	}
	idx := chunk.Code[1]
	if got, ok := chunk.Constants[idx].(int64); !ok || got != -5 {
		t.Fatalf("expected folded constant -5, got %v", chunk.Constants[idx])
	}
}

// TestAddrGetValueCollapse checks that LOCALADDR immediately followed
// by GETVALUE collapses to the single LOCALVALUE opcode.
func TestAddrGetValueCollapse(t *testing.T) {
	syms := symtab.New()
	funcs := funcstore.New()
	objects := object.NewRegistry()

	lex := lexer.NewLexer("deffile", "define f() { local x; return x + 1 }")
	if _, err := CompileDeclarations(lex, syms, funcs, objects, "deffile"); err != nil {
		t.Fatalf("compile: %v", err)
	}
	fn := funcs.GetByName("f")
	if fn == nil {
		t.Fatalf("function f not registered")
	}
	for _, w := range fn.Chunk.Code {
		if bytecode.OpCode(w) == bytecode.OpGetValue {
			t.Fatalf("expected LOCALADDR+GETVALUE to collapse, found raw GETVALUE")
		}
	}
}

func TestStatementPopFusion(t *testing.T) {
	syms := symtab.New()
	funcs := funcstore.New()
	objects := object.NewRegistry()
	lex := lexer.NewLexer("deffile", "define f() { local x; x = 1 }")
	if _, err := CompileDeclarations(lex, syms, funcs, objects, "deffile"); err != nil {
		t.Fatalf("compile: %v", err)
	}
	fn := funcs.GetByName("f")
	if fn == nil {
		t.Fatalf("function f not registered")
	}
	sawAssignPop := false
	sawPop := false
	for _, w := range fn.Chunk.Code {
		switch bytecode.OpCode(w) {
		case bytecode.OpAssignPop:
			sawAssignPop = true
		case bytecode.OpPop:
			sawPop = true
		}
	}
	if !sawAssignPop {
		t.Fatalf("expected ASSIGN; POP to fuse into ASSIGNPOP")
	}
	if sawPop {
		t.Fatalf("did not expect a standalone POP once ASSIGN fused")
	}
}
