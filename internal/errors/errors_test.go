package errors

import (
	"strings"
	"testing"
)

func TestErrorFormatsKindAndMessage(t *testing.T) {
	e := NewDomainError("division by zero", "foo.calc", 3, 5)
	got := e.Error()
	if !strings.Contains(got, "DomainError") || !strings.Contains(got, "division by zero") {
		t.Fatalf("expected kind and message in output, got %q", got)
	}
	if !strings.Contains(got, "foo.calc:3:5") {
		t.Fatalf("expected file:line:column location, got %q", got)
	}
}

func TestErrorWithoutFileUsesLineOnly(t *testing.T) {
	e := NewParseError("unexpected token", "", 2, 1)
	got := e.Error()
	if !strings.Contains(got, "at line 2:1") {
		t.Fatalf("expected a bare line:column location for interactive input, got %q", got)
	}
}

func TestMemoryErrorIsFatal(t *testing.T) {
	e := NewMemoryError("out of memory")
	if !e.Fatal() {
		t.Fatalf("MemoryError should be fatal")
	}
	if NewDomainError("x", "", 0, 0).Fatal() {
		t.Fatalf("DomainError should not be fatal")
	}
}

func TestAddStackFrameAppendsInOrder(t *testing.T) {
	e := NewTypeError("bad type", "f", 1, 1)
	e.AddStackFrame("g", "f", 2, 3)
	e.AddStackFrame("h", "f", 4, 5)
	if len(e.CallStack) != 2 {
		t.Fatalf("expected 2 stack frames, got %d", len(e.CallStack))
	}
	if e.CallStack[0].Function != "g" || e.CallStack[1].Function != "h" {
		t.Fatalf("expected frames in call order, got %+v", e.CallStack)
	}
	got := e.Error()
	if !strings.Contains(got, "in g") || !strings.Contains(got, "in h") {
		t.Fatalf("expected both frames rendered, got %q", got)
	}
}

func TestWithSourceUnderlinesColumn(t *testing.T) {
	e := NewParseError("bad token", "f", 1, 3).WithSource("1 + ")
	got := e.Error()
	if !strings.Contains(got, "1 + ") {
		t.Fatalf("expected the source line rendered, got %q", got)
	}
}
