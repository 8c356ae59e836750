package value

import "hash"

// HashState is a heap-allocated incremental hash accumulator (backing
// the `hash()`/`blocks of a hash` builtins). It wraps whatever
// stdlib/crypto hash.Hash the caller chose at construction time.
type HashState struct {
	refcount
	H    hash.Hash
	Name string
}

func (h *HashState) free() {}

func NewHashState(h hash.Hash, name string) Value {
	hs := &HashState{H: h, Name: name}
	hs.n = 1
	return Value{Kind: KindHashState, heap: hs}
}

func (v Value) AsHashState() *HashState { return v.heap.(*HashState) }
