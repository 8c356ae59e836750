package vm

import (
	"testing"

	"calc/internal/funcstore"
	"calc/internal/symtab"
	"calc/internal/value"
)

func TestAddressLocalGetSet(t *testing.T) {
	f := newFrame(&funcstore.Function{ParamCount: 0}, nil)
	f.Locals = []value.Value{value.Int(1)}
	addr := &Address{Kind: AddrLocal, Frame: f, Slot: 0}
	if got := addr.Get(); got.Int != 1 {
		t.Fatalf("expected local 1, got %v", got)
	}
	addr.Set(value.Int(2))
	if f.Locals[0].Int != 2 {
		t.Fatalf("expected Set to store through the address, got %v", f.Locals[0])
	}
}

func TestAddressParamGetSet(t *testing.T) {
	f := newFrame(&funcstore.Function{ParamCount: 1}, []value.Value{value.Int(5)})
	addr := &Address{Kind: AddrParam, Frame: f, Slot: 0}
	if got := addr.Get(); got.Int != 5 {
		t.Fatalf("expected param 5, got %v", got)
	}
	addr.Set(value.Int(9))
	if f.Params[0].Int != 9 {
		t.Fatalf("expected Set to overwrite the param slot, got %v", f.Params[0])
	}
}

func TestAddressGlobalGetSet(t *testing.T) {
	g := &symtab.Global{Value: value.Int(7)}
	addr := &Address{Kind: AddrGlobal, Global: g}
	if got := addr.Get(); got.Int != 7 {
		t.Fatalf("expected global 7, got %v", got)
	}
	addr.Set(value.Int(11))
	if g.Value.Int != 11 {
		t.Fatalf("expected Set to overwrite the global, got %v", g.Value)
	}
}

func TestAddressMatrixCellGetSet(t *testing.T) {
	mv := value.NewMatrix([]int64{0}, []int64{2})
	m := mv.AsMatrixOperand()
	addr := &Address{Kind: AddrMatrixCell, Matrix: m, Offset: 1}
	addr.Set(value.Int(42))
	if got := addr.Get(); got.Int != 42 {
		t.Fatalf("expected cell 1 to read back 42, got %v", got)
	}
	if m.Elems[0].Int != 0 && m.Elems[0].Kind != value.KindNull {
		t.Fatalf("expected cell 0 to remain untouched")
	}
}

func TestAddressObjectElemGetSet(t *testing.T) {
	ov := value.NewObject(0, 2)
	o := ov.AsObjectOperand()
	addr := &Address{Kind: AddrObjectElem, Object: o, Elem: 1}
	addr.Set(value.Int(3))
	if got := addr.Get(); got.Int != 3 {
		t.Fatalf("expected elem 1 to read back 3, got %v", got)
	}
}

func TestStackValueAsValueProjectsThroughAddress(t *testing.T) {
	g := &symtab.Global{Value: value.Int(4)}
	addr := &Address{Kind: AddrGlobal, Global: g}
	sv := lvalue(addr)
	if sv.AsValue().Int != 4 {
		t.Fatalf("expected lvalue's AsValue to project through the address, got %v", sv.AsValue())
	}
	plain := rvalue(value.Int(8))
	if plain.AsValue().Int != 8 {
		t.Fatalf("expected rvalue's AsValue to return the stored value, got %v", plain.AsValue())
	}
}
