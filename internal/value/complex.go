package value

// Complex is a heap-allocated pair of Rationals. Freeing a Complex
// releases both parts.
type Complex struct {
	refcount
	Re *Rational
	Im *Rational
}

func (c *Complex) free() {
	re := Value{Kind: KindRational, heap: c.Re}
	im := Value{Kind: KindRational, heap: c.Im}
	re.Free()
	im.Free()
}

func newComplex(re, im *Rational) *Complex {
	re.retain()
	im.retain()
	c := &Complex{Re: re, Im: im}
	c.n = 1
	return c
}

// NewComplex builds a Complex value; real-valued complexes (Im == 0)
// are kept as Complex, not collapsed to Rational — callers that want
// auto-collapse call Simplify.
func NewComplex(re, im Value) Value {
	return Value{Kind: KindComplex, heap: newComplex(toRational(re), toRational(im))}
}

// NewImaginary builds a purely-imaginary constant bi from a rational or
// integer magnitude, the runtime counterpart of an IMAGINARY literal.
func NewImaginary(im Value) Value {
	return NewComplex(Int(0), im)
}

func (v Value) asComplex() *Complex { return v.heap.(*Complex) }

// Simplify collapses a zero-imaginary Complex back to a Rational, as
// the arithmetic dispatcher does after every complex operation so the
// richer-of-two-types coercion in §4.1 never leaves spurious Complex
// values with Im == 0 lying around.
func (c *Complex) Simplify() Value {
	if c.Im.IsZero() {
		return Value{Kind: KindRational, heap: func() *Rational { c.Re.retain(); return c.Re }()}
	}
	return Value{Kind: KindComplex, heap: c}
}

func (c *Complex) String() string {
	if c.Im.IsZero() {
		return c.Re.String()
	}
	sign := "+"
	im := c.Im
	if im.Num.Sign() < 0 {
		sign = "-"
		im = ratNeg(im)
	}
	return c.Re.String() + sign + im.String() + "i"
}

func cplxAdd(a, b *Complex) *Complex { return newComplex(ratAdd(a.Re, b.Re), ratAdd(a.Im, b.Im)) }
func cplxSub(a, b *Complex) *Complex { return newComplex(ratSub(a.Re, b.Re), ratSub(a.Im, b.Im)) }

func cplxMul(a, b *Complex) *Complex {
	re := ratSub(ratMul(a.Re, b.Re), ratMul(a.Im, b.Im))
	im := ratAdd(ratMul(a.Re, b.Im), ratMul(a.Im, b.Re))
	return newComplex(re, im)
}

func cplxDiv(a, b *Complex) *Complex {
	denom := ratAdd(ratSquare(b.Re), ratSquare(b.Im))
	reNum := ratAdd(ratMul(a.Re, b.Re), ratMul(a.Im, b.Im))
	imNum := ratSub(ratMul(a.Im, b.Re), ratMul(a.Re, b.Im))
	return newComplex(ratDiv(reNum, denom), ratDiv(imNum, denom))
}

func cplxNeg(a *Complex) *Complex { return newComplex(ratNeg(a.Re), ratNeg(a.Im)) }

func cplxConj(a *Complex) *Complex { return newComplex(a.Re, ratNeg(a.Im)) }
