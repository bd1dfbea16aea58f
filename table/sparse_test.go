package table

import (
	"testing"

	"github.com/sarchlab/caolo/ids"
)

func TestSparseFlagSetContainsDelete(t *testing.T) {
	s := NewSparseFlag()
	s.Set(ids.EntityId(1))
	s.Set(ids.EntityId(2))

	if !s.Contains(ids.EntityId(1)) {
		t.Fatalf("expected 1 present")
	}
	if s.Contains(ids.EntityId(3)) {
		t.Fatalf("expected 3 absent")
	}
	if s.Len() != 2 {
		t.Fatalf("expected len 2, got %d", s.Len())
	}
	if !s.Delete(ids.EntityId(1)) {
		t.Fatalf("expected delete to succeed")
	}
	if s.Delete(ids.EntityId(1)) {
		t.Fatalf("expected second delete to report false")
	}
}

func TestSparseFlagIterate(t *testing.T) {
	s := NewSparseFlag()
	want := map[ids.EntityId]bool{1: true, 2: true, 3: true}
	for id := range want {
		s.Set(id)
	}
	got := map[ids.EntityId]bool{}
	s.Iterate(func(id ids.EntityId) { got[id] = true })
	if len(got) != len(want) {
		t.Fatalf("expected %d members, got %d", len(want), len(got))
	}
}
