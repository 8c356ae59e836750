package value

import (
	"math/big"

	"github.com/remyoudompheng/bigfft"
)

// bigfftThreshold is the operand bit-length above which we route
// multiplication through bigfft's Schönhage-Strassen implementation
// instead of math/big's schoolbook/Karatsuba multiply. bigfft documents
// a crossover a little above this size; below it the extra allocation
// overhead loses to big.Int.Mul.
const bigfftThreshold = 1 << 12 // bits

// bigMul multiplies a and b, routing through bigfft for large operands.
// This is the one external bignum kernel this implementation assumes is
// supplied by a library rather than hand-rolled, per spec.md's framing
// of bignum primitives as externally provided; it backs Rational
// multiplication and BlumRand's repeated-squaring step, the two hot
// paths that actually reach multi-thousand-bit operands.
func bigMul(a, b *big.Int) *big.Int {
	if a.BitLen() > bigfftThreshold && b.BitLen() > bigfftThreshold {
		return bigfft.Mul(a, b)
	}
	return new(big.Int).Mul(a, b)
}

// BigMul exposes the bigfft-accelerated multiply to other packages.
// internal/prng's repeated-squaring step goes through ModSquare instead.
func BigMul(a, b *big.Int) *big.Int { return bigMul(a, b) }

// ModSquare computes r*r mod n, used by BlumRand's per-bit state advance.
func ModSquare(r, n *big.Int) *big.Int {
	sq := bigMul(r, r)
	return new(big.Int).Mod(sq, n)
}
