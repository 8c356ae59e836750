package value

import (
	"fmt"
	"strings"
)

// chainTarget is the average bucket chain length above which the
// association resizes, per spec.md §4.1.
const chainTarget = 4
const growthReserve = 8

type assocEntry struct {
	key []Value
	val Value
}

// Association is a heap-allocated hash table keyed by a tuple of Values,
// compared by value identity across every dimension (spec.md §3).
type Association struct {
	refcount
	buckets [][]assocEntry
	count   int
}

func (a *Association) free() {
	for _, bucket := range a.buckets {
		for _, e := range bucket {
			for _, k := range e.key {
				k.Free()
			}
			e.val.Free()
		}
	}
}

// NewAssociation builds an empty association value.
func NewAssociation() Value {
	a := &Association{buckets: make([][]assocEntry, 17)}
	a.n = 1
	return Value{Kind: KindAssociation, heap: a}
}

func (v Value) asAssoc() *Association { return v.heap.(*Association) }

// AsAssocOperand exposes the underlying Association payload to
// internal/vm's ELEMADDR/index opcodes and builtins.
func (v Value) AsAssocOperand() *Association { return v.heap.(*Association) }

func (a *Association) Count() int { return a.count }

// Keys returns every stored key tuple, in unspecified bucket order, for
// the `indices()` builtin.
func (a *Association) Keys() [][]Value {
	keys := make([][]Value, 0, a.count)
	for _, bucket := range a.buckets {
		for _, e := range bucket {
			keys = append(keys, e.key)
		}
	}
	return keys
}

func tupleHash(key []Value) uint64 {
	var h uint64 = 1469598103934665603
	for _, k := range key {
		h ^= Hash(k)
		h *= 1099511628211
	}
	return h
}

func tupleEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if Compare(a[i], b[i]) != 0 {
			return false
		}
	}
	return true
}

// Lookup returns the value stored for key and true, or Null/false if the
// key has never been written (spec.md §8 invariant 7).
func (a *Association) Lookup(key []Value) (Value, bool) {
	idx := tupleHash(key) % uint64(len(a.buckets))
	for _, e := range a.buckets[idx] {
		if tupleEqual(e.key, key) {
			return e.val, true
		}
	}
	return Null, false
}

// Set inserts or overwrites the entry for key, growing the bucket table
// when the average chain length exceeds chainTarget.
func (a *Association) Set(key []Value, val Value) {
	idx := tupleHash(key) % uint64(len(a.buckets))
	for i, e := range a.buckets[idx] {
		if tupleEqual(e.key, key) {
			a.buckets[idx][i].val.Free()
			a.buckets[idx][i].val = val
			return
		}
	}
	owned := make([]Value, len(key))
	for i, k := range key {
		owned[i] = k.Copy()
	}
	a.buckets[idx] = append(a.buckets[idx], assocEntry{key: owned, val: val})
	a.count++
	if a.count > len(a.buckets)*chainTarget {
		a.grow()
	}
}

func (a *Association) grow() {
	newSize := nextPrime(a.count/chainTarget + growthReserve)
	newBuckets := make([][]assocEntry, newSize)
	for _, bucket := range a.buckets {
		for _, e := range bucket {
			idx := tupleHash(e.key) % uint64(newSize)
			newBuckets[idx] = append(newBuckets[idx], e)
		}
	}
	a.buckets = newBuckets
}

func nextPrime(n int) int {
	if n < 2 {
		return 2
	}
	for {
		if isPrime(n) {
			return n
		}
		n++
	}
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	for i := 2; i*i <= n; i++ {
		if n%i == 0 {
			return false
		}
	}
	return true
}

func (a *Association) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("assoc(%d)", a.count))
	return sb.String()
}
