package morton

import (
	"math/rand"
	"testing"

	"github.com/sarchlab/caolo/hexgrid"
)

func TestTableInsertOutOfBounds(t *testing.T) {
	tbl := NewTable[int]()
	if err := tbl.Insert(hexgrid.New(-1, 0), 1); err != ErrOutOfBounds {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if err := tbl.Insert(hexgrid.New(1<<15, 0), 1); err != ErrOutOfBounds {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestTableKeysStaySorted(t *testing.T) {
	tbl := NewTable[int]()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		p := hexgrid.New(int32(rng.Intn(200)), int32(rng.Intn(200)))
		if err := tbl.Insert(p, i); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}
	var prev Key
	for i, k := range tbl.keys {
		if i > 0 && prev > k {
			t.Fatalf("keys not sorted at index %d", i)
		}
		prev = k
	}
}

func TestTableGetContains(t *testing.T) {
	tbl := NewTable[string]()
	p := hexgrid.New(5, 5)
	if tbl.Contains(p) {
		t.Fatalf("empty table should not contain p")
	}
	if err := tbl.Insert(p, "hello"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, ok := tbl.Get(p)
	if !ok || got != "hello" {
		t.Fatalf("expected hello, got %q ok=%v", got, ok)
	}
	if !tbl.Contains(p) {
		t.Fatalf("table should contain p after insert")
	}
}

func TestTableQueryRangeCorrectness(t *testing.T) {
	tbl := NewTable[int]()
	rng := rand.New(rand.NewSource(99))
	inserted := map[hexgrid.Axial]bool{}
	for i := 0; i < 256; i++ {
		p := hexgrid.New(int32(rng.Intn(128)), int32(rng.Intn(128)))
		for inserted[p] {
			p = hexgrid.New(int32(rng.Intn(128)), int32(rng.Intn(128)))
		}
		inserted[p] = true
		if err := tbl.Insert(p, i); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	center := hexgrid.New(64, 64)
	got := map[hexgrid.Axial]bool{}
	tbl.QueryRange(center, 65, func(p hexgrid.Axial, _ int) {
		if got[p] {
			t.Fatalf("point %v visited twice", p)
		}
		got[p] = true
	})

	want := map[hexgrid.Axial]bool{}
	for p := range inserted {
		if center.Distance(p) <= 65 {
			want[p] = true
		}
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(got))
	}
	for p := range want {
		if !got[p] {
			t.Fatalf("missing point %v from range query", p)
		}
	}
}

func TestTableDedupeAfterExtend(t *testing.T) {
	tbl := NewTable[int]()
	items := []struct {
		Pos hexgrid.Axial
		Row int
	}{
		{hexgrid.New(1, 1), 1},
		{hexgrid.New(1, 1), 2},
		{hexgrid.New(2, 2), 3},
	}
	if err := tbl.Extend(items); err != nil {
		t.Fatalf("extend: %v", err)
	}
	if tbl.Len() != 3 {
		t.Fatalf("expected 3 entries before dedupe, got %d", tbl.Len())
	}
	tbl.Dedupe()
	if tbl.Len() != 2 {
		t.Fatalf("expected 2 entries after dedupe, got %d", tbl.Len())
	}
	if !tbl.Contains(hexgrid.New(1, 1)) || !tbl.Contains(hexgrid.New(2, 2)) {
		t.Fatalf("dedupe dropped a distinct key")
	}
}

func TestTableFindClosestByFilter(t *testing.T) {
	tbl := NewTable[string]()
	_ = tbl.Insert(hexgrid.New(0, 0), "origin")
	_ = tbl.Insert(hexgrid.New(10, 0), "far")
	_ = tbl.Insert(hexgrid.New(2, 0), "near")

	pos, row, ok := tbl.FindClosestByFilter(hexgrid.New(0, 0), func(_ hexgrid.Axial, row string) bool {
		return row != "origin"
	})
	if !ok || row != "near" || pos != hexgrid.New(2, 0) {
		t.Fatalf("expected near at (2,0), got %v %q ok=%v", pos, row, ok)
	}
}

func TestTableDelete(t *testing.T) {
	tbl := NewTable[int]()
	p := hexgrid.New(3, 4)
	_ = tbl.Insert(p, 7)
	row, ok := tbl.Delete(p)
	if !ok || row != 7 {
		t.Fatalf("expected delete to return 7, got %d ok=%v", row, ok)
	}
	if tbl.Contains(p) {
		t.Fatalf("table should not contain p after delete")
	}
}
