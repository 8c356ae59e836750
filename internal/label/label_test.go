package label

import "testing"

// fakeChunk is a minimal Patcher over a plain slice, standing in for
// bytecode.Chunk without pulling in that package.
type fakeChunk struct {
	code []int
}

func (f *fakeChunk) ReadOperand(offset int) int        { return f.code[offset] }
func (f *fakeChunk) WriteOperand(offset int, word int) { f.code[offset] = word }

func TestForwardReferencePatchesOnPlace(t *testing.T) {
	c := &fakeChunk{code: make([]int, 4)}
	l := New("L")

	if l.Defined() {
		t.Fatalf("fresh label should not be defined")
	}

	l.Reserve(c, 1)
	l.Reserve(c, 3)

	if c.code[1] != -1 {
		t.Fatalf("first reserve should chain to -1 (empty), got %d", c.code[1])
	}
	if c.code[3] != 1 {
		t.Fatalf("second reserve should chain to the first reserve's offset, got %d", c.code[3])
	}

	l.Place(c, 10)
	if !l.Defined() || l.Offset != 10 {
		t.Fatalf("expected label placed at 10, got offset=%d defined=%v", l.Offset, l.Defined())
	}
	if c.code[1] != 10 || c.code[3] != 10 {
		t.Fatalf("expected every chained operand patched to 10, got %v", c.code)
	}
	if l.Chain != -1 {
		t.Fatalf("expected chain cleared after Place, got %d", l.Chain)
	}
}

func TestAlreadyPlacedLabelNeedsNoReserve(t *testing.T) {
	c := &fakeChunk{code: make([]int, 2)}
	l := New("back")
	l.Place(c, 5)
	if !l.Defined() {
		t.Fatalf("expected label defined immediately after Place")
	}
	if l.Offset != 5 {
		t.Fatalf("expected offset 5, got %d", l.Offset)
	}
}

func TestTableLookupCreatesUnplaced(t *testing.T) {
	tbl := NewTable()
	l1 := tbl.Lookup("x")
	l2 := tbl.Lookup("x")
	if l1 != l2 {
		t.Fatalf("expected the same *Label instance on repeated lookup")
	}
	if l1.Defined() {
		t.Fatalf("label created by Lookup should start unplaced")
	}
}

func TestFinalizeReportsUndefinedLabels(t *testing.T) {
	tbl := NewTable()
	tbl.Lookup("done")
	c := &fakeChunk{code: make([]int, 1)}
	tbl.Lookup("loop").Place(c, 0)

	undefined := tbl.Finalize()
	if len(undefined) != 1 || undefined[0] != "done" {
		t.Fatalf("expected only %q reported undefined, got %v", "done", undefined)
	}
}
