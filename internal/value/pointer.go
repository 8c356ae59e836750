package value

// PointerTarget describes what a calc pointer value (`&x`) refers to:
// a scope-frame location (global/local/param slot) with optional element
// descent, mirroring the "address" design note in spec.md §9 but scoped
// to the four user-visible pointer kinds (ValuePointer, OctetPointer,
// StringPointer, NumberPointer) rather than the VM's internal lvalue
// stack entries (see internal/vm.Address for those).
type PointerTarget struct {
	Scope     string // "global", "local", "param"
	Slot      int
	Name      string
	ElemIndex []int64 // optional matrix/object descent
}

func newPointer(kind Kind, target *PointerTarget) Value {
	return Value{Kind: kind, ptr: target}
}

func NewValuePointer(target *PointerTarget) Value  { return newPointer(KindValuePointer, target) }
func NewOctetPointer(target *PointerTarget) Value   { return newPointer(KindOctetPointer, target) }
func NewStringPointer(target *PointerTarget) Value  { return newPointer(KindStringPointer, target) }
func NewNumberPointer(target *PointerTarget) Value  { return newPointer(KindNumberPointer, target) }

// Target returns the pointer's referent descriptor.
func (v Value) Target() *PointerTarget { return v.ptr }
