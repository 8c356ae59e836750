package value

import (
	"math"
	"math/big"
	"testing"
)

func TestRationalReducesToLowestTerms(t *testing.T) {
	v := NewRational(big.NewInt(6), big.NewInt(9))
	if got := v.String(); got != "2/3" {
		t.Fatalf("6/9 should reduce to 2/3, got %s", got)
	}
}

func TestRationalCollapsesToInteger(t *testing.T) {
	v := Binary(BinAdd, NewRationalInt(1), NewRationalInt(2))
	if v.Kind != KindRational && v.Kind != KindInteger {
		t.Fatalf("unexpected kind %v", v.Kind)
	}
	if got := v.String(); got != "3" {
		t.Fatalf("1+2 should print as 3, got %s", got)
	}
}

func TestIntegerFastPathStaysInteger(t *testing.T) {
	v := Binary(BinMul, Int(6), Int(7))
	if v.Kind != KindInteger {
		t.Fatalf("int*int should stay KindInteger, got %v", v.Kind)
	}
	if v.Int != 42 {
		t.Fatalf("6*7: expected 42, got %d", v.Int)
	}
}

func TestIntegerOverflowPromotesToRational(t *testing.T) {
	v := Binary(BinMul, Int(10000000000), Int(10000000000))
	want := "100000000000000000000"
	if got := v.String(); got != want {
		t.Fatalf("10000000000*10000000000: expected %s, got %s", want, got)
	}

	s := Unary(UnSquare, Int(math.MaxInt64))
	wantSq := new(big.Int).Mul(big.NewInt(math.MaxInt64), big.NewInt(math.MaxInt64)).String()
	if got := s.String(); got != wantSq {
		t.Fatalf("square(MaxInt64): expected %s, got %s", wantSq, got)
	}

	sum := Binary(BinAdd, Int(math.MaxInt64), Int(1))
	wantSum := new(big.Int).Add(big.NewInt(math.MaxInt64), big.NewInt(1)).String()
	if got := sum.String(); got != wantSum {
		t.Fatalf("MaxInt64+1: expected %s, got %s", wantSum, got)
	}

	diff := Binary(BinSub, Int(math.MinInt64), Int(1))
	wantDiff := new(big.Int).Sub(big.NewInt(math.MinInt64), big.NewInt(1)).String()
	if got := diff.String(); got != wantDiff {
		t.Fatalf("MinInt64-1: expected %s, got %s", wantDiff, got)
	}

	neg := Unary(UnNegate, Int(math.MinInt64))
	wantNeg := new(big.Int).Neg(big.NewInt(math.MinInt64)).String()
	if got := neg.String(); got != wantNeg {
		t.Fatalf("negate(MinInt64): expected %s, got %s", wantNeg, got)
	}
}

func TestDivisionByZeroPanicsDomainError(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected a panic for division by zero")
		}
	}()
	Binary(BinDiv, Int(1), Int(0))
}

func TestModSignFollowsDivisor(t *testing.T) {
	v := Binary(BinMod, Int(-7), Int(3))
	if v.Int != 2 {
		t.Fatalf("-7 mod 3: expected 2 (sign of divisor), got %d", v.Int)
	}
}

func TestUnarySquareAndNegate(t *testing.T) {
	sq := Unary(UnSquare, Int(5))
	if sq.Int != 25 {
		t.Fatalf("square(5): expected 25, got %d", sq.Int)
	}
	neg := Unary(UnNegate, Int(5))
	if neg.Int != -5 {
		t.Fatalf("negate(5): expected -5, got %d", neg.Int)
	}
}

func TestComplexArithmeticSimplifiesToRational(t *testing.T) {
	i := NewImaginary(Int(1))
	product := Binary(BinMul, i, i) // i*i == -1
	if product.Kind != KindInteger && product.Kind != KindRational {
		t.Fatalf("i*i should simplify to a real value, got kind %v", product.Kind)
	}
	if product.String() != "-1" {
		t.Fatalf("i*i: expected -1, got %s", product.String())
	}
}

func TestMatrixOffsetRespectsDeclaredBounds(t *testing.T) {
	m := NewMatrix([]int64{1}, []int64{3}) // indices 1..3
	mat := m.AsMatrixOperand()
	off, err := mat.Offset([]int64{2})
	if err != nil || off != 1 {
		t.Fatalf("index 2 into mat[1..3]: expected offset 1, got %d, %v", off, err)
	}
	if _, err := mat.Offset([]int64{0}); err == nil {
		t.Fatalf("index 0 is below the declared lower bound, expected an error")
	}
	if _, err := mat.Offset([]int64{4}); err == nil {
		t.Fatalf("index 4 is above the declared upper bound, expected an error")
	}
}

func TestMatrixCloneIfSharedOnlyCopiesWhenShared(t *testing.T) {
	v := NewMatrix([]int64{0}, []int64{2})
	mat := v.AsMatrixOperand()
	if mat.CloneIfShared() != mat {
		t.Fatalf("unshared matrix (refcount 1) should not be cloned")
	}
	v2 := v.Copy()
	clone := mat.CloneIfShared()
	if clone == mat {
		t.Fatalf("shared matrix (refcount 2) should be cloned before mutation")
	}
	v2.Free()
}

func TestListAppendOrderAndSize(t *testing.T) {
	v := NewList()
	l := v.asList()
	l.Append(Int(1))
	l.Append(Int(2))
	l.Prepend(Int(0))
	if l.Size() != 3 {
		t.Fatalf("expected size 3, got %d", l.Size())
	}
	got, ok := l.At(0)
	if !ok || got.Int != 0 {
		t.Fatalf("expected prepended 0 at index 0, got %v, %v", got, ok)
	}
	got, ok = l.At(2)
	if !ok || got.Int != 2 {
		t.Fatalf("expected 2 at index 2, got %v, %v", got, ok)
	}
}

func TestListRemoveFrontAndBack(t *testing.T) {
	v := NewList()
	l := v.asList()
	l.Append(Int(1))
	l.Append(Int(2))
	l.Append(Int(3))
	front, ok := l.RemoveFront()
	if !ok || front.Int != 1 {
		t.Fatalf("expected front 1, got %v", front)
	}
	back, ok := l.RemoveBack()
	if !ok || back.Int != 3 {
		t.Fatalf("expected back 3, got %v", back)
	}
	if l.Size() != 1 {
		t.Fatalf("expected size 1 after removing both ends, got %d", l.Size())
	}
}

func TestCompareCrossVariantUsesVariantTag(t *testing.T) {
	if Compare(Int(100), NewList()) >= 0 {
		t.Fatalf("an integer should order before a list under the fixed variant-tag order")
	}
}

func TestCompareSameKindNaturalOrder(t *testing.T) {
	if Compare(Int(1), Int(2)) != -1 {
		t.Fatalf("1 should compare less than 2")
	}
	if Compare(NewRationalInt(3), NewRationalInt(3)) != 0 {
		t.Fatalf("equal rationals should compare equal")
	}
}

func TestTruthy(t *testing.T) {
	if Int(0).Truthy() {
		t.Fatalf("0 should be falsy")
	}
	if !Int(1).Truthy() {
		t.Fatalf("1 should be truthy")
	}
	if Null.Truthy() {
		t.Fatalf("Null should be falsy")
	}
	if NewList().Truthy() {
		t.Fatalf("an empty list should be falsy")
	}
}
