package value

import (
	"bufio"
	"os"

	"github.com/google/uuid"
)

// File is a heap-allocated opaque I/O handle. It carries a uuid so two
// File values can never collide across a long-running interpreter
// session, even after the underlying os.File is closed and a new one
// reuses the same OS-level descriptor number.
type File struct {
	refcount
	ID     uuid.UUID
	Handle *os.File
	Mode   string
	Reader *bufio.Reader // lazily attached by fgetline
}

func (f *File) free() {
	if f.Handle != nil {
		f.Handle.Close()
	}
}

// NewFile wraps an already-opened os.File.
func NewFile(h *os.File, mode string) Value {
	f := &File{ID: uuid.New(), Handle: h, Mode: mode}
	f.n = 1
	return Value{Kind: KindFile, heap: f}
}

func (v Value) asFile() *File { return v.heap.(*File) }

// AsFileOperand exposes the underlying File payload to internal/vm's
// file builtins.
func (v Value) AsFileOperand() *File { return v.heap.(*File) }
