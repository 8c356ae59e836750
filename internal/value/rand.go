package value

import "math/big"

// AdditiveRand is a heap-allocated simple additive PRNG state (the
// non-cryptographic `a_seed()`/`a_random()` family calc exposes
// alongside BBS). It is a small linear feedback state, not a struct the
// core spec otherwise examines; internal/prng owns the algorithm.
type AdditiveRand struct {
	refcount
	State uint64
}

func (a *AdditiveRand) free() {}

func NewAdditiveRand(seed uint64) Value {
	a := &AdditiveRand{State: seed}
	a.n = 1
	return Value{Kind: KindAdditiveRand, heap: a}
}

func (v Value) AsAdditiveRand() *AdditiveRand { return v.heap.(*AdditiveRand) }

// DefaultAdditiveRand constructs the implementation-defined starting
// state `a_seed()` restores to when given no explicit seed.
func DefaultAdditiveRand() *AdditiveRand {
	a := &AdditiveRand{State: 1}
	a.n = 1
	return a
}

// BlumRand is a heap-allocated Blum-Blum-Shub generator state, exactly
// the fields spec.md §3 names: a seeded flag, the partially-consumed bit
// buffer and its count, the window size/mask derived from bitlen(n),
// the quadratic residue r, and the modulus n = p*q.
type BlumRand struct {
	refcount
	Seeded     bool
	Buffer     uint64
	BufferBits int
	Window     int
	Mask       uint64
	R          *big.Int
	N          *big.Int
}

func (b *BlumRand) free() {}

// NewBlumRand wraps a BlumRand state (constructed by internal/prng) in a
// heap-refcounted Value.
func NewBlumRand(state *BlumRand) Value {
	state.n = 1
	return Value{Kind: KindBlumRand, heap: state}
}

func (v Value) AsBlumRand() *BlumRand { return v.heap.(*BlumRand) }

// CloneBlumRand deep-copies a BlumRand state, used by `restore(state)`ing
// a previously saved generator without aliasing its bit buffer.
func CloneBlumRand(b *BlumRand) *BlumRand {
	return &BlumRand{
		Seeded:     b.Seeded,
		Buffer:     b.Buffer,
		BufferBits: b.BufferBits,
		Window:     b.Window,
		Mask:       b.Mask,
		R:          new(big.Int).Set(b.R),
		N:          new(big.Int).Set(b.N),
	}
}
