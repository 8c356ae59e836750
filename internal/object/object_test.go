package object

import (
	"testing"

	"calc/internal/funcstore"
	"calc/internal/value"
)

// noopCaller never has any method resolved against it in these tests —
// every type declared here has no `<type>_<op>` functions registered,
// so dispatch always exercises the fallback behaviors.
type noopCaller struct{}

func (noopCaller) CallFunction(idx int, args []value.Value) value.Value {
	panic("no method should be called in this test")
}

func newPoint(r *Registry, x, y int64) value.Value {
	typeID, _ := r.Lookup("point")
	obj := value.NewObject(typeID, 2)
	o := obj.AsObjectOperand()
	o.Elems[0] = value.Int(x)
	o.Elems[1] = value.Int(y)
	return obj
}

func TestBinaryFallbackCmp(t *testing.T) {
	r := NewRegistry()
	r.Declare("point", []string{"x", "y"})
	fs := funcstore.New()
	a := newPoint(r, 1, 2)
	b := newPoint(r, 1, 2)
	if got := r.Binary(fs, noopCaller{}, "cmp", a, b); got.Int != 0 {
		t.Fatalf("equal objects should compare equal under the cmp fallback, got %v", got)
	}
	c := newPoint(r, 3, 4)
	if got := r.Binary(fs, noopCaller{}, "cmp", a, c); got.Int == 0 {
		t.Fatalf("unequal objects should not compare equal under the cmp fallback")
	}
}

func TestUnaryFallbackPrint(t *testing.T) {
	r := NewRegistry()
	r.Declare("point", []string{"x", "y"})
	fs := funcstore.New()
	a := newPoint(r, 1, 2)
	got := r.Unary(fs, noopCaller{}, "print", a)
	if got.Kind != value.KindString {
		t.Fatalf("print fallback should produce a string, got kind %v", got.Kind)
	}
	if got.String() != "{1, 2}" {
		t.Fatalf("expected {1, 2}, got %q", got.String())
	}
}

func TestUnaryFallbackTest(t *testing.T) {
	r := NewRegistry()
	r.Declare("point", []string{"x", "y"})
	fs := funcstore.New()
	zero := newPoint(r, 0, 0)
	if r.Unary(fs, noopCaller{}, "test", zero).Int != 0 {
		t.Fatalf("an all-zero object should test false under the test fallback")
	}
	nonzero := newPoint(r, 0, 1)
	if r.Unary(fs, noopCaller{}, "test", nonzero).Int != 1 {
		t.Fatalf("an object with a nonzero element should test true")
	}
}

func TestUnknownOperatorWithNoFallbackPanics(t *testing.T) {
	r := NewRegistry()
	r.Declare("point", []string{"x", "y"})
	fs := funcstore.New()
	a := newPoint(r, 1, 2)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic for an operator with no method and no fallback")
		}
	}()
	r.Unary(fs, noopCaller{}, "nonsense", a)
}

func TestElementIndexLookup(t *testing.T) {
	r := NewRegistry()
	r.Declare("point", []string{"x", "y"})
	typeID, ok := r.Lookup("point")
	if !ok {
		t.Fatalf("expected point type to be registered")
	}
	td := r.Get(typeID)
	idx, ok := td.ElementIndex("y")
	if !ok || idx != 1 {
		t.Fatalf("expected element y at index 1, got %d, %v", idx, ok)
	}
	if _, ok := td.ElementIndex("z"); ok {
		t.Fatalf("expected no element named z")
	}
}
