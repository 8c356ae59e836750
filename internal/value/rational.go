package value

import (
	"math/big"

	calcerrors "calc/internal/errors"
)

// Rational is a heap-allocated canonical fraction: numerator and
// denominator are coprime, denominator is always positive, and the sign
// lives on the numerator only. Reduction happens after every arithmetic
// primitive (spec.md §4.1), never lazily.
type Rational struct {
	refcount
	Num *big.Int
	Den *big.Int
}

func (r *Rational) free() {}

func newRational(num, den *big.Int) *Rational {
	r := &Rational{Num: num, Den: den}
	r.n = 1
	return r.reduce()
}

// NewRationalInt builds a Rational value from a machine integer.
func NewRationalInt(n int64) Value {
	return Value{Kind: KindRational, heap: newRational(big.NewInt(n), big.NewInt(1))}
}

// NewRational builds a Rational value from big.Int numerator/denominator,
// reducing to canonical form. Panics a *CalcError{Domain} if den == 0.
func NewRational(num, den *big.Int) Value {
	if den.Sign() == 0 {
		panic(calcerrors.NewDomainError("division by zero", "", 0, 0))
	}
	return Value{Kind: KindRational, heap: newRational(new(big.Int).Set(num), new(big.Int).Set(den))}
}

func (v Value) asRational() *Rational {
	return v.heap.(*Rational)
}

// reduce divides num/den by their gcd and normalizes the sign onto num.
func (r *Rational) reduce() *Rational {
	if r.Den.Sign() < 0 {
		r.Num.Neg(r.Num)
		r.Den.Neg(r.Den)
	}
	if r.Num.Sign() == 0 {
		r.Den.SetInt64(1)
		return r
	}
	g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(r.Num), r.Den)
	if g.Cmp(big.NewInt(1)) != 0 {
		r.Num.Quo(r.Num, g)
		r.Den.Quo(r.Den, g)
	}
	return r
}

func (r *Rational) IsZero() bool { return r.Num.Sign() == 0 }

// IsInteger reports whether the denominator reduced to 1.
func (r *Rational) IsInteger() bool { return r.Den.Cmp(big.NewInt(1)) == 0 }

func (r *Rational) String() string {
	if r.IsInteger() {
		return r.Num.String()
	}
	return r.Num.String() + "/" + r.Den.String()
}

func ratAdd(a, b *Rational) *Rational {
	num := new(big.Int).Add(bigMul(a.Num, b.Den), bigMul(b.Num, a.Den))
	den := bigMul(a.Den, b.Den)
	return newRational(num, den)
}

func ratSub(a, b *Rational) *Rational {
	num := new(big.Int).Sub(bigMul(a.Num, b.Den), bigMul(b.Num, a.Den))
	den := bigMul(a.Den, b.Den)
	return newRational(num, den)
}

func ratMul(a, b *Rational) *Rational {
	return newRational(bigMul(a.Num, b.Num), bigMul(a.Den, b.Den))
}

func ratDiv(a, b *Rational) *Rational {
	if b.Num.Sign() == 0 {
		panic(calcerrors.NewDomainError("division by zero", "", 0, 0))
	}
	return newRational(bigMul(a.Num, b.Den), bigMul(a.Den, b.Num))
}

// ratQuo implements integer division (`//`), rounding toward zero.
func ratQuo(a, b *Rational) *Rational {
	if b.Num.Sign() == 0 {
		panic(calcerrors.NewDomainError("division by zero", "", 0, 0))
	}
	num := bigMul(a.Num, b.Den)
	den := bigMul(a.Den, b.Num)
	q := new(big.Int).Quo(num, den)
	return newRational(q, big.NewInt(1))
}

// ratMod implements `a mod b` with the result's sign matching b.
func ratMod(a, b *Rational) *Rational {
	if b.Num.Sign() == 0 {
		panic(calcerrors.NewDomainError("modulus by zero", "", 0, 0))
	}
	num := bigMul(a.Num, b.Den)
	den := bigMul(a.Den, b.Num)
	m := new(big.Int).Mod(num, den)
	if m.Sign() != 0 && den.Sign() < 0 {
		m.Add(m, new(big.Int).Abs(den))
	}
	result := newRational(m, big.NewInt(1))
	if b.Num.Sign() < 0 && result.Num.Sign() > 0 {
		result = ratSub(result, &Rational{Num: new(big.Int).Set(b.Num), Den: new(big.Int).Set(b.Den)})
	}
	return result
}

func ratNeg(a *Rational) *Rational {
	return newRational(new(big.Int).Neg(a.Num), new(big.Int).Set(a.Den))
}

func ratInvert(a *Rational) *Rational {
	if a.Num.Sign() == 0 {
		panic(calcerrors.NewDomainError("inverse of zero", "", 0, 0))
	}
	return newRational(new(big.Int).Set(a.Den), new(big.Int).Set(a.Num))
}

func ratSquare(a *Rational) *Rational {
	return newRational(bigMul(a.Num, a.Num), bigMul(a.Den, a.Den))
}

// ratPower raises a to an integer exponent n (may be negative).
func ratPower(a *Rational, n int64) *Rational {
	if n == 0 {
		return newRational(big.NewInt(1), big.NewInt(1))
	}
	neg := n < 0
	if neg {
		n = -n
	}
	num := new(big.Int).Exp(a.Num, big.NewInt(n), nil)
	den := new(big.Int).Exp(a.Den, big.NewInt(n), nil)
	if neg {
		num, den = den, num
	}
	return newRational(num, den)
}

func ratCompare(a, b *Rational) int {
	lhs := bigMul(a.Num, b.Den)
	rhs := bigMul(b.Num, a.Den)
	return lhs.Cmp(rhs)
}
