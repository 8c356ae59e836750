package value

import "sync"

// String is a heap-allocated, length-carrying byte string. Strings are
// interned by content (spec.md §3: "identical literals share storage"),
// so the intern table is process-wide, not per-interpreter, matching the
// spec's explicit carve-out for the literal and numeric constant tables.
type String struct {
	refcount
	Content string
}

func (s *String) free() {}

var (
	internMu    sync.Mutex
	internTable = map[string]*String{}
)

// NewString interns s, returning a Value sharing the one heap String
// for any previously-seen identical content.
func NewString(s string) Value {
	internMu.Lock()
	defer internMu.Unlock()
	if existing, ok := internTable[s]; ok {
		existing.retain()
		return Value{Kind: KindString, heap: existing}
	}
	str := &String{Content: s}
	str.n = 1
	internTable[s] = str
	return Value{Kind: KindString, heap: str}
}

func (v Value) asString() *String { return v.heap.(*String) }

func (s *String) Len() int { return len(s.Content) }
