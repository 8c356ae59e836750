package interp

import (
	"strings"
	"testing"
)

// These mirror spec.md's canonical end-to-end scenarios (S1-S8): one
// full interpreter instance, compiling and running real source the way
// the REPL and `read` both do.

func evalOK(t *testing.T, ip *Interpreter, src string) string {
	t.Helper()
	v, err := ip.EvalExpr(src, "")
	if err != nil {
		t.Fatalf("eval %q: %v", src, err)
	}
	return v.String()
}

func TestRationalReduction(t *testing.T) {
	ip := New()
	got := evalOK(t, ip, "3/6 + 1/2")
	if got != "1" {
		t.Fatalf("3/6 + 1/2: expected canonicalized 1, got %q", got)
	}
}

func TestBigPower(t *testing.T) {
	ip := New()
	got := evalOK(t, ip, "2^100")
	want := "1267650600228229401496703205376"
	if got != want {
		t.Fatalf("2^100: expected %s, got %s", want, got)
	}
}

func TestFunctionDefineAndCall(t *testing.T) {
	ip := New()
	if _, err := ip.RunSource("define f(x) = x*x;", "test"); err != nil {
		t.Fatalf("define: %v", err)
	}
	got := evalOK(t, ip, "f(7)")
	if got != "49" {
		t.Fatalf("f(7): expected 49, got %s", got)
	}
}

func TestMatrixFillAndIndex(t *testing.T) {
	ip := New()
	if _, err := ip.RunSource("mat A[3] = {10,20,30};", "test"); err != nil {
		t.Fatalf("mat decl: %v", err)
	}
	got := evalOK(t, ip, "A[1]")
	if got != "20" {
		t.Fatalf("A[1]: expected 20, got %s", got)
	}
}

func TestListAppendAndSize(t *testing.T) {
	ip := New()
	got := evalOK(t, ip, "L = list(); append(L, 1); append(L, 2); size(L)")
	if got != "2" {
		t.Fatalf("list append/size: expected 2, got %s", got)
	}
}

func TestObjectElementDispatch(t *testing.T) {
	ip := New()
	if _, err := ip.RunSource("obj pt { x, y };", "test"); err != nil {
		t.Fatalf("obj type decl: %v", err)
	}
	if _, err := ip.RunSource("obj pt p; p.x = 3; p.y = 4;", "test"); err != nil {
		t.Fatalf("obj var decl + assign: %v", err)
	}
	got := evalOK(t, ip, "p.x^2 + p.y^2")
	if got != "25" {
		t.Fatalf("p.x^2+p.y^2: expected 25, got %s", got)
	}
}

func TestSrandomDeterminism(t *testing.T) {
	ip := New()
	evalOK(t, ip, "srandom(0)")
	first := evalOK(t, ip, "random()")
	evalOK(t, ip, "srandom(0)")
	second := evalOK(t, ip, "random()")
	if first != second {
		t.Fatalf("srandom(0); random() should be deterministic, got %s then %s", first, second)
	}
}

func TestConfigReadWriteRoundTrip(t *testing.T) {
	ip := New()
	before := evalOK(t, ip, `config("resource")`)
	if before != "1" {
		t.Fatalf(`config("resource"): expected default 1, got %s`, before)
	}
	old := evalOK(t, ip, `config("resource", 5)`)
	if old != "1" {
		t.Fatalf("config(item, newvalue) should return the old value, got %s", old)
	}
	after := evalOK(t, ip, `config("resource")`)
	if after != "5" {
		t.Fatalf("expected config(\"resource\") to read back the new value 5, got %s", after)
	}
}

func TestDivisionByZeroIsDomainError(t *testing.T) {
	ip := New()
	_, err := ip.EvalExpr("1/0", "")
	if err == nil {
		t.Fatalf("expected a domain error for division by zero")
	}
	if !strings.Contains(string(err.Kind), "Domain") {
		t.Fatalf("expected a DomainError kind, got %s", err.Kind)
	}
}
