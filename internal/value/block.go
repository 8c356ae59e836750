package value

import "fmt"

// Block is a heap-allocated mutable byte buffer with a read/write
// cursor, backing calc's `blk` byte-buffer builtin.
type Block struct {
	refcount
	Data   []byte
	Cursor int
}

func (b *Block) free() {}

func NewBlock(size int) Value {
	b := &Block{Data: make([]byte, size)}
	b.n = 1
	return Value{Kind: KindBlock, heap: b}
}

func (v Value) asBlock() *Block { return v.heap.(*Block) }

func (v Value) AsBlock() *Block { return v.heap.(*Block) }

func (b *Block) String() string {
	return fmt.Sprintf("block(%d)", len(b.Data))
}
