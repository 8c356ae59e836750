package symtab

import (
	"testing"

	"calc/internal/value"
)

func TestResolvePriorityParamLocalGlobal(t *testing.T) {
	tbl := New()
	tbl.DeclareGlobal("x", 0, 0)
	tbl.PushFunction()
	defer tbl.PopFunction()

	if kind, _ := tbl.Resolve("x"); kind != ScopeGlobal {
		t.Fatalf("expected x to resolve as global before any shadowing decl, got %v", kind)
	}

	tbl.DeclareLocal("x")
	if kind, idx := tbl.Resolve("x"); kind != ScopeLocal || idx != 0 {
		t.Fatalf("expected local x to shadow the global, got kind=%v idx=%d", kind, idx)
	}

	tbl.DeclareParam("x")
	// params are declared before locals are even checked in resolution
	// order but the table doesn't police declaration order itself —
	// Resolve always checks params first regardless of which was
	// declared more recently.
	if kind, idx := tbl.Resolve("x"); kind != ScopeParam || idx != 0 {
		t.Fatalf("expected param x to take priority over local, got kind=%v idx=%d", kind, idx)
	}
}

func TestStaticParksOnFileExit(t *testing.T) {
	tbl := New()
	tbl.EnterFile()
	tbl.DeclareGlobal("counter", 1, 0)
	if tbl.LookupGlobal("counter") == nil {
		t.Fatalf("expected counter visible while its file scope is active")
	}
	tbl.ExitFile()
	if tbl.LookupGlobal("counter") != nil {
		t.Fatalf("expected counter to stop resolving by name after its file scope exits")
	}
	if len(tbl.Parked()) != 1 {
		t.Fatalf("expected the static to migrate to the parked list, got %d entries", len(tbl.Parked()))
	}
}

func TestHighestFileScopeWins(t *testing.T) {
	tbl := New()
	tbl.DeclareGlobal("v", 0, 0).Value = value.Int(1)
	tbl.EnterFile()
	tbl.DeclareGlobal("v", 1, 0).Value = value.Int(2)

	g := tbl.LookupGlobal("v")
	if g == nil || g.FileScope != 1 {
		t.Fatalf("expected the file-scope-1 entry to win, got %+v", g)
	}
}

func TestParamAndLocalCounts(t *testing.T) {
	tbl := New()
	tbl.PushFunction()
	tbl.DeclareParam("a")
	tbl.DeclareParam("b")
	tbl.DeclareLocal("c")
	if tbl.ParamCount() != 2 {
		t.Fatalf("expected ParamCount 2, got %d", tbl.ParamCount())
	}
	if tbl.LocalCount() != 1 {
		t.Fatalf("expected LocalCount 1, got %d", tbl.LocalCount())
	}
	tbl.PopFunction()
	if tbl.ParamCount() != 0 || tbl.LocalCount() != 0 {
		t.Fatalf("expected zero counts once the function scope pops")
	}
}

func TestInFunction(t *testing.T) {
	tbl := New()
	if tbl.InFunction() {
		t.Fatalf("expected InFunction false at top level")
	}
	tbl.PushFunction()
	if !tbl.InFunction() {
		t.Fatalf("expected InFunction true once a function scope is pushed")
	}
	tbl.PopFunction()
	if tbl.InFunction() {
		t.Fatalf("expected InFunction false again after popping")
	}
}
