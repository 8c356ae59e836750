package funcstore

import (
	"testing"

	"calc/internal/bytecode"
)

func TestInternIsStableAndReusable(t *testing.T) {
	s := New()
	a := s.Intern("f")
	b := s.Intern("f")
	if a != b {
		t.Fatalf("interning the same name twice should return the same index, got %d and %d", a, b)
	}
	if s.Get(a) != nil {
		t.Fatalf("an interned-but-uncommitted slot should be nil")
	}
}

func TestLookupFailsBeforeIntern(t *testing.T) {
	s := New()
	if _, ok := s.Lookup("g"); ok {
		t.Fatalf("lookup of an unseen name should fail")
	}
}

func TestCommitDeepCopiesChunk(t *testing.T) {
	s := New()
	idx := s.Intern("f")
	chunk := bytecode.NewChunk()
	chunk.WriteOp(bytecode.OpZero, bytecode.DebugInfo{})
	fn := &Function{Name: "f", Chunk: chunk}
	s.Commit(idx, fn)

	chunk.WriteOp(bytecode.OpOne, bytecode.DebugInfo{})
	committed := s.Get(idx)
	if len(committed.Chunk.Code) != 1 {
		t.Fatalf("mutating the original chunk after Commit should not affect the committed function, got %d words", len(committed.Chunk.Code))
	}
}

func TestCommitReplacesPreviousDefinition(t *testing.T) {
	s := New()
	idx := s.Intern("f")
	s.Commit(idx, &Function{Name: "f", Chunk: bytecode.NewChunk()})
	first := s.Get(idx)
	s.Commit(idx, &Function{Name: "f", Chunk: bytecode.NewChunk(), ParamCount: 2})
	second := s.Get(idx)
	if first == second {
		t.Fatalf("a second Commit should replace, not alias, the previous definition")
	}
	if second.ParamCount != 2 {
		t.Fatalf("expected the redefinition's param count to take effect, got %d", second.ParamCount)
	}
}

func TestNamesSkipsAnonymousEval(t *testing.T) {
	s := New()
	idx1 := s.Intern("f")
	s.Commit(idx1, &Function{Name: "f", Chunk: bytecode.NewChunk()})
	idx2 := s.Intern("*")
	s.Commit(idx2, &Function{Name: "*", Chunk: bytecode.NewChunk(), AnonymousEval: true})

	names := s.Names()
	if len(names) != 1 || names[0] != "f" {
		t.Fatalf("expected Names() to list only f, got %v", names)
	}
}

func TestGetByNameConvenience(t *testing.T) {
	s := New()
	idx := s.Intern("f")
	s.Commit(idx, &Function{Name: "f", Chunk: bytecode.NewChunk()})
	if s.GetByName("f") == nil {
		t.Fatalf("expected GetByName to find the committed function")
	}
	if s.GetByName("missing") != nil {
		t.Fatalf("expected GetByName to return nil for an unseen name")
	}
}
