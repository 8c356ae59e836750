// Package prng implements the seedable, skippable Blum-Blum-Shub
// generator spec.md §4.9/§6 describes: a Blum modulus n = p*q (p, q ≡ 3
// mod 4), a quadratic residue r, buffered low-order-bit extraction, and
// three seeding entry points.
package prng

import (
	"math/big"

	calcerrors "calc/internal/errors"
	"calc/internal/value"
)

var two32 = new(big.Int).Lsh(big.NewInt(1), 32)

// window computes ⌊log2(bitlen(n))⌋ and its mask, per spec.md §3.
func window(n *big.Int) (int, uint64) {
	bits := n.BitLen()
	w := 0
	for (1 << (w + 1)) <= bits {
		w++
	}
	if w < 1 {
		w = 1
	}
	return w, (uint64(1) << w) - 1
}

func newState(n, r *big.Int) *value.BlumRand {
	w, mask := window(n)
	return &value.BlumRand{
		Seeded: true,
		Window: w,
		Mask:   mask,
		R:      r,
		N:      n,
	}
}

// Default returns the built-in default state `seed(0)` restores.
func Default() *value.BlumRand {
	n, r := defaultGenerator()
	return newState(n, r)
}

// advanceToResidue runs r <- seed, then r <- r*r mod n repeatedly until
// the value first shrinks (wraps the modulus), per spec.md §4.9's
// `seed(s)` description for s >= 2^32. This is also the tail shared by
// the other two seeding entry points once n is established.
func advanceToResidue(seed, n *big.Int) *big.Int {
	r := new(big.Int).Set(seed)
	for {
		next := value.ModSquare(r, n)
		if next.Cmp(r) < 0 {
			return next
		}
		r = next
	}
}

// Seed implements `seed(s)`. s == 0 restores the default generator;
// s in [1, 2^32) is reserved and fails per the Open Question resolution
// (treated uniformly as Domain); s >= 2^32 re-seeds the current modulus.
func Seed(current *value.BlumRand, s *big.Int) *value.BlumRand {
	if s.Sign() == 0 {
		return Default()
	}
	if s.Sign() > 0 && s.Cmp(two32) < 0 {
		panic(calcerrors.NewDomainError("seed value in [1, 2^32) is reserved", "", 0, 0))
	}
	n := current.N
	if n == nil {
		n, _ = defaultGenerator()
	}
	r := advanceToResidue(s, n)
	return newState(n, r)
}

// SeedWithGenerator implements `seed(s, newn)`: newn in [1,20] selects a
// precomputed generator; newn >= 2^32 installs newn itself as the
// modulus after checking newn ≡ 1 mod 4 (a product of two ≡3 mod 4
// primes always is), panicking with a DomainError otherwise.
func SeedWithGenerator(s, newn *big.Int) *value.BlumRand {
	var n, r0 *big.Int
	switch {
	case newn.IsInt64() && newn.Int64() >= 1 && newn.Int64() <= 20:
		n, r0 = precomputedGenerator(int(newn.Int64()))
	case newn.Cmp(two32) >= 0:
		mod4 := new(big.Int).Mod(newn, big.NewInt(4))
		if mod4.Int64() != 1 {
			panic(calcerrors.NewDomainError("modulus must be ≡ 1 (mod 4)", "", 0, 0))
		}
		n = new(big.Int).Set(newn)
		r0 = big.NewInt(1)
	default:
		panic(calcerrors.NewDomainError("generator selector out of range", "", 0, 0))
	}
	if s.Sign() == 0 {
		return newState(n, r0)
	}
	if s.Sign() > 0 && s.Cmp(two32) < 0 {
		panic(calcerrors.NewDomainError("seed value in [1, 2^32) is reserved", "", 0, 0))
	}
	r := advanceToResidue(s, n)
	return newState(n, r)
}

// findBlumPrime searches upward from start for a prime ≡ 3 (mod 4)
// passing `trials` Miller-Rabin witnesses, using math/big's
// ProbablyPrime (Miller-Rabin plus a Baillie-PSW check) as the external
// primality kernel.
func findBlumPrime(start *big.Int, trials int) *big.Int {
	p := new(big.Int).Set(start)
	if p.Bit(0) == 0 {
		p.Add(p, big.NewInt(1))
	}
	for {
		mod4 := new(big.Int).Mod(p, big.NewInt(4))
		if mod4.Int64() == 3 && p.ProbablyPrime(trials) {
			return new(big.Int).Set(p)
		}
		p.Add(p, big.NewInt(2))
	}
}

// SeedWithPrimes implements `seed(s, ip, iq, trials)`: searches upward
// from ip and iq for primes p, q ≡ 3 mod 4 passing `trials` Miller-Rabin
// witnesses, sets n = p*q, and seeds r as in Seed.
func SeedWithPrimes(s, ip, iq *big.Int, trials int) *value.BlumRand {
	p := findBlumPrime(ip, trials)
	q := findBlumPrime(iq, trials)
	n := new(big.Int).Mul(p, q)
	if s.Sign() == 0 {
		seed := big.NewInt(2)
		r := advanceToResidue(seed, n)
		return newState(n, r)
	}
	if s.Sign() > 0 && s.Cmp(two32) < 0 {
		panic(calcerrors.NewDomainError("seed value in [1, 2^32) is reserved", "", 0, 0))
	}
	r := advanceToResidue(s, n)
	return newState(n, r)
}

// step advances the generator one squaring and appends the low `Window`
// bits of the new residue to the bit buffer, so that Bits can serve
// arbitrary-width chunks (spec.md §4.9).
func step(st *value.BlumRand) {
	st.R = value.ModSquare(st.R, st.N)
	bits := st.R.Uint64() & st.Mask
	st.Buffer |= bits << st.BufferBits
	st.BufferBits += st.Window
}

// Bits returns n freshly-generated bits (n <= 64), buffering across
// multiple BBS steps as needed.
func Bits(st *value.BlumRand, n int) uint64 {
	for st.BufferBits < n {
		step(st)
	}
	mask := uint64(1)<<uint(n) - 1
	result := st.Buffer & mask
	st.Buffer >>= uint(n)
	st.BufferBits -= n
	return result
}

// Skip discards k output bits without producing them.
func Skip(st *value.BlumRand, k int) {
	for k > 0 {
		take := k
		if take > 64 {
			take = 64
		}
		Bits(st, take)
		k -= take
	}
}

// Random draws a uniform integer in [lo, hi) by sampling
// ⌈log2(hi-lo)⌉-bit values and rejecting those >= hi-lo, avoiding modulo
// bias (spec.md §4.9).
func Random(st *value.BlumRand, lo, hi int64) int64 {
	span := hi - lo
	if span <= 0 {
		panic(calcerrors.NewDomainError("random range must be non-empty", "", 0, 0))
	}
	bits := 0
	for (int64(1) << uint(bits)) < span {
		bits++
	}
	for {
		v := int64(Bits(st, bits))
		if v < span {
			return lo + v
		}
	}
}
