package value

import "math/big"

// ListAppend/ListPrepend/ListRemoveFront/AsListOperand are the narrow
// surface internal/vm's list builtins need, kept separate from the
// List type itself since they operate on the Value wrapper (list
// values are mutated in place: calc's lists are reference values, not
// copy-on-write like matrices).

func ListAppend(l Value, v Value) Value {
	l.asList().Append(v)
	return l
}

func ListPrepend(l Value, v Value) Value {
	l.asList().Prepend(v)
	return l
}

func ListRemoveFront(l Value) (Value, Value) {
	v, ok := l.asList().RemoveFront()
	if !ok {
		return l, Null
	}
	return l, v
}

func AsListOperand(v Value) *List { return v.heap.(*List) }

// RationalNum and RationalDen expose a Rational's numerator and
// denominator as Integer-or-Rational Values, promoting to Integer when
// the big.Int fits a machine word (the same narrowing Binary performs
// on every arithmetic result).
func RationalNum(v Value) Value { return narrowBig(v.asRational().Num) }
func RationalDen(v Value) Value { return narrowBig(v.asRational().Den) }

func narrowBig(n *big.Int) Value {
	if n.IsInt64() {
		return Int(n.Int64())
	}
	return Value{Kind: KindRational, heap: newRational(new(big.Int).Set(n), big.NewInt(1))}
}

// ComplexRe, ComplexIm, ComplexConj implement the re/im/conj builtins.
// A non-Complex numeric operand has an implicit zero imaginary part.
func ComplexRe(v Value) Value {
	if v.Kind == KindComplex {
		return narrowRational(v.asComplex().Re)
	}
	return v
}

func ComplexIm(v Value) Value {
	if v.Kind == KindComplex {
		return narrowRational(v.asComplex().Im)
	}
	return Int(0)
}

func ComplexConj(v Value) Value {
	if v.Kind == KindComplex {
		return cplxConj(v.asComplex()).Simplify()
	}
	return v
}

func narrowRational(r *Rational) Value {
	if r.IsInteger() && r.Num.IsInt64() {
		return Int(r.Num.Int64())
	}
	return Value{Kind: KindRational, heap: func() *Rational { r.retain(); return r }()}
}
