package vm

import (
	"calc/internal/symtab"
	"calc/internal/value"
)

// AddressKind selects which scope-frame location an Address refers to,
// per the design note in spec.md §9: "model as a distinct variant
// holding an index or handle into a scope frame ... plus optional
// element descent".
type AddressKind int

const (
	AddrLocal AddressKind = iota
	AddrParam
	AddrGlobal
	AddrMatrixCell
	AddrObjectElem
	AddrAssocEntry
)

// Address is an lvalue descriptor living on the VM's value stack instead
// of a raw pointer into the value tree. GETVALUE projects it to an
// rvalue; assignment opcodes mutate in place through it.
type Address struct {
	Kind AddressKind

	Frame *Frame // AddrLocal / AddrParam
	Slot  int

	Global *symtab.Global // AddrGlobal

	Matrix *value.Matrix // AddrMatrixCell
	Offset int64

	Object *value.Object // AddrObjectElem
	Elem   int

	Assoc *value.Association // AddrAssocEntry
	Key   []value.Value
}

// Get projects the address to its current rvalue.
func (a *Address) Get() value.Value {
	switch a.Kind {
	case AddrLocal:
		return a.Frame.Locals[a.Slot]
	case AddrParam:
		return a.Frame.Params[a.Slot]
	case AddrGlobal:
		return a.Global.Value
	case AddrMatrixCell:
		return a.Matrix.Elems[a.Offset]
	case AddrObjectElem:
		return a.Object.Elems[a.Elem]
	case AddrAssocEntry:
		v, _ := a.Assoc.Lookup(a.Key)
		return v
	default:
		return value.Null
	}
}

// Set stores v through the address, freeing whatever value it replaces.
func (a *Address) Set(v value.Value) {
	switch a.Kind {
	case AddrLocal:
		a.Frame.Locals[a.Slot].Free()
		a.Frame.Locals[a.Slot] = v
	case AddrParam:
		a.Frame.Params[a.Slot].Free()
		a.Frame.Params[a.Slot] = v
	case AddrGlobal:
		a.Global.Value.Free()
		a.Global.Value = v
	case AddrMatrixCell:
		a.Matrix.Elems[a.Offset].Free()
		a.Matrix.Elems[a.Offset] = v
	case AddrObjectElem:
		a.Object.Elems[a.Elem].Free()
		a.Object.Elems[a.Elem] = v
	case AddrAssocEntry:
		a.Assoc.Set(a.Key, v)
	}
}

// StackValue is one slot of the VM's value stack: either a plain rvalue
// (Addr == nil) or an lvalue descriptor.
type StackValue struct {
	Addr *Address
	Val  value.Value
}

func rvalue(v value.Value) StackValue { return StackValue{Val: v} }
func lvalue(a *Address) StackValue    { return StackValue{Addr: a, Val: a.Get()} }

// AsValue projects a stack slot to its rvalue, the GETVALUE operation.
func (s StackValue) AsValue() value.Value {
	if s.Addr != nil {
		return s.Addr.Get()
	}
	return s.Val
}
