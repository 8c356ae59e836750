// Package object implements user-defined type dispatch: declaring an
// object type with a fixed ordered set of element names, lazily looking
// up and caching `<type>_<op>` method functions, and the per-operator
// fallback behaviors spec.md §4.8 defines for when no method exists.
package object

import (
	"strings"

	calcerrors "calc/internal/errors"
	"calc/internal/funcstore"
	"calc/internal/value"
)

// Caller is the minimal surface Registry needs to invoke a resolved
// user method; internal/vm implements it, avoiding an import cycle
// between object and vm (vm depends on object, not the reverse).
type Caller interface {
	CallFunction(idx int, args []value.Value) value.Value
}

// TypeDescriptor is one `obj <name> { elem, ... }` declaration.
type TypeDescriptor struct {
	Name     string
	Elements []string
	methods  map[string]int // operator name -> function index, -1 = known absent
}

func (td *TypeDescriptor) ElementIndex(name string) (int, bool) {
	for i, e := range td.Elements {
		if e == name {
			return i, true
		}
	}
	return 0, false
}

// Registry holds every declared object type.
type Registry struct {
	types  []*TypeDescriptor
	byName map[string]int
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// Declare registers a new object type, returning its type id.
func (r *Registry) Declare(name string, elements []string) int {
	td := &TypeDescriptor{Name: name, Elements: elements, methods: make(map[string]int)}
	id := len(r.types)
	r.types = append(r.types, td)
	r.byName[name] = id
	return id
}

func (r *Registry) Lookup(name string) (int, bool) {
	id, ok := r.byName[name]
	return id, ok
}

func (r *Registry) Get(id int) *TypeDescriptor { return r.types[id] }

// resolveMethod looks up (and caches) the function implementing `op` for
// typeID, e.g. "point_add" for operator "add" on type "point".
func (r *Registry) resolveMethod(typeID int, op string, fs *funcstore.Store) (int, bool) {
	td := r.types[typeID]
	if idx, cached := td.methods[op]; cached {
		return idx, idx >= 0
	}
	fname := td.Name + "_" + op
	idx, ok := fs.Lookup(fname)
	if !ok || fs.Get(idx) == nil {
		td.methods[op] = -1
		return 0, false
	}
	td.methods[op] = idx
	return idx, true
}

// Binary dispatches a two-operand operator (add, sub, mul, cmp, ...) on
// an Object operand, falling back to the declared fallback behavior
// when no `<type>_<op>` method exists.
func (r *Registry) Binary(fs *funcstore.Store, caller Caller, op string, a, b value.Value) value.Value {
	obj := a.AsObjectOperand()
	if idx, ok := r.resolveMethod(obj.TypeID, op, fs); ok {
		return caller.CallFunction(idx, []value.Value{a, b})
	}
	switch op {
	case "cmp":
		oa, ob := obj, b.AsObjectOperand()
		for i := range oa.Elems {
			if value.Compare(oa.Elems[i], ob.Elems[i]) != 0 {
				return value.Int(1)
			}
		}
		return value.Int(0)
	case "min":
		if r.Binary(fs, caller, "cmp", a, b).Truthy() {
			return a
		}
		return b
	case "max":
		if r.Binary(fs, caller, "cmp", a, b).Truthy() {
			return b
		}
		return a
	case "sum":
		return r.Binary(fs, caller, "add", a, b)
	default:
		panic(calcerrors.NewTypeError("object has no method or fallback for operator "+op, "", 0, 0))
	}
}

// Unary dispatches a one-operand operator on an Object operand.
func (r *Registry) Unary(fs *funcstore.Store, caller Caller, op string, a value.Value) value.Value {
	obj := a.AsObjectOperand()
	if idx, ok := r.resolveMethod(obj.TypeID, op, fs); ok {
		return caller.CallFunction(idx, []value.Value{a})
	}
	switch op {
	case "print":
		var sb strings.Builder
		sb.WriteString("{")
		for i, e := range obj.Elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(e.String())
		}
		sb.WriteString("}")
		return value.NewString(sb.String())
	case "one":
		return value.NewRationalInt(1)
	case "test":
		for _, e := range obj.Elems {
			if e.Truthy() {
				return value.Int(1)
			}
		}
		return value.Int(0)
	case "square":
		return r.Binary(fs, caller, "mul", a, a)
	case "inc":
		return r.Binary(fs, caller, "add", a, value.NewRationalInt(1))
	case "dec":
		return r.Binary(fs, caller, "sub", a, value.NewRationalInt(1))
	case "assign":
		return a.Copy()
	default:
		panic(calcerrors.NewTypeError("object has no method or fallback for operator "+op, "", 0, 0))
	}
}

// Pow implements the `pow(x, n)` fallback: left-to-right
// square-and-multiply using the object's square/mul/inv methods,
// integral exponent only.
func (r *Registry) Pow(fs *funcstore.Store, caller Caller, a value.Value, n int64) value.Value {
	obj := a.AsObjectOperand()
	if idx, ok := r.resolveMethod(obj.TypeID, "pow", fs); ok {
		return caller.CallFunction(idx, []value.Value{a, value.Int(n)})
	}
	if n < 0 {
		inv := r.Unary(fs, caller, "inv", a)
		return r.Pow(fs, caller, inv, -n)
	}
	if n == 0 {
		return r.Unary(fs, caller, "one", a)
	}
	top := 62
	for (n>>uint(top))&1 == 0 {
		top--
	}
	result := a
	for i := top - 1; i >= 0; i-- {
		result = r.Unary(fs, caller, "square", result)
		if (n>>uint(i))&1 == 1 {
			result = r.Binary(fs, caller, "mul", result, a)
		}
	}
	return result
}
