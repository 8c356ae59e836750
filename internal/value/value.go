// Package value implements the tagged value union every calc expression
// evaluates to: a small fixed-size Value struct that is either an
// unboxed scalar (Null, Integer, Octet, a pointer descriptor) or a
// handle to a refcounted heap object (Rational, Complex, String, Matrix,
// List, Association, Object, File, the two random-generator kinds,
// HashState, Block). Heap objects are shared, cheaply-cloneable handles;
// Copy bumps the refcount, Free decrements it and tears the structure
// down, depth-first, when it reaches zero. The value graph is a DAG by
// construction (lists and assocs never accept themselves as an element),
// so there is no cycle collector.
package value

import "fmt"

// Kind is the Value's variant tag.
type Kind int

const (
	KindNull Kind = iota
	KindInteger
	KindRational
	KindComplex
	KindString
	KindMatrix
	KindList
	KindAssociation
	KindObject
	KindFile
	KindAdditiveRand
	KindBlumRand
	KindConfigSnapshot
	KindHashState
	KindBlock
	KindOctet
	KindValuePointer
	KindOctetPointer
	KindStringPointer
	KindNumberPointer
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInteger:
		return "int"
	case KindRational:
		return "rational"
	case KindComplex:
		return "complex"
	case KindString:
		return "string"
	case KindMatrix:
		return "matrix"
	case KindList:
		return "list"
	case KindAssociation:
		return "assoc"
	case KindObject:
		return "object"
	case KindFile:
		return "file"
	case KindAdditiveRand:
		return "rand"
	case KindBlumRand:
		return "random"
	case KindConfigSnapshot:
		return "config"
	case KindHashState:
		return "hash"
	case KindBlock:
		return "block"
	case KindOctet:
		return "octet"
	case KindValuePointer:
		return "ptr(value)"
	case KindOctetPointer:
		return "ptr(octet)"
	case KindStringPointer:
		return "ptr(string)"
	case KindNumberPointer:
		return "ptr(number)"
	default:
		return "unknown"
	}
}

// Subtype is a secondary flag word orthogonal to Kind — e.g. whether a
// value currently has a name assigned to it in the symbol table. It
// never participates in arithmetic dispatch.
type Subtype uint32

const (
	SubtypeNone     Subtype = 0
	SubtypeNamed    Subtype = 1 << 0
	SubtypeConstant Subtype = 1 << 1
)

// heapRef is satisfied by every refcounted heap payload.
type heapRef interface {
	retain()
	release() bool // returns true once the count reaches zero
	free()
}

// refcount is embedded in every heap object kind.
type refcount struct {
	n int32
}

func (r *refcount) retain()     { r.n++ }
func (r *refcount) release() bool {
	r.n--
	return r.n <= 0
}

// Value is the fixed-size union passed around the compiler and VM. Only
// one of the fields below is meaningful, selected by Kind.
type Value struct {
	Kind    Kind
	Subtype Subtype

	Int   int64 // KindInteger
	Octet byte  // KindOctet

	heap heapRef // KindRational..KindBlock

	ptr *PointerTarget  // Kind*Pointer
	cfg *ConfigSnapshot // KindConfigSnapshot
}

// Null is the shared null value.
var Null = Value{Kind: KindNull}

func Int(i int64) Value { return Value{Kind: KindInteger, Int: i} }

func Oct(b byte) Value { return Value{Kind: KindOctet, Octet: b} }

// IsNull reports whether v holds the Null variant — the only defined
// behavior for ISNULL per spec: it inspects the variant tag, not
// truthiness.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Copy returns a shallow copy of v, bumping the refcount of any heap
// payload it owns.
func (v Value) Copy() Value {
	if v.heap != nil {
		v.heap.retain()
	}
	return v
}

// Free decrements any owned heap payload's refcount, tearing the
// structure down (recursively freeing children first) once it reaches
// zero.
func (v Value) Free() {
	if v.heap != nil && v.heap.release() {
		v.heap.free()
	}
}

// Truthy implements convert-to-bool(v): numeric zero, empty string,
// empty list/matrix/assoc, and Null are false; everything else is true.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNull:
		return false
	case KindInteger:
		return v.Int != 0
	case KindOctet:
		return v.Octet != 0
	case KindRational:
		return !v.asRational().IsZero()
	case KindComplex:
		c := v.asComplex()
		return !c.Re.IsZero() || !c.Im.IsZero()
	case KindString:
		return v.asString().Len() > 0
	case KindList:
		return v.asList().Size() > 0
	case KindMatrix:
		return v.asMatrix().size() > 0
	case KindAssociation:
		return v.asAssoc().Count() > 0
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindInteger:
		return fmt.Sprintf("%d", v.Int)
	case KindOctet:
		return fmt.Sprintf("%d", v.Octet)
	case KindRational:
		return v.asRational().String()
	case KindComplex:
		return v.asComplex().String()
	case KindString:
		return v.asString().Content
	case KindMatrix:
		return v.asMatrix().String()
	case KindList:
		return v.asList().String()
	case KindAssociation:
		return v.asAssoc().String()
	case KindObject:
		return v.asObject().String()
	case KindFile:
		return fmt.Sprintf("FILE %s", v.asFile().ID)
	case KindAdditiveRand:
		return "RAND"
	case KindBlumRand:
		return "RANDOM"
	case KindConfigSnapshot:
		return "CONFIG"
	case KindHashState:
		return "HASH"
	case KindBlock:
		return v.asBlock().String()
	case KindValuePointer, KindOctetPointer, KindStringPointer, KindNumberPointer:
		return fmt.Sprintf("PTR(%s)", v.Kind)
	default:
		return "?"
	}
}
