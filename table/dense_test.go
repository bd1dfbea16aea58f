package table

import (
	"testing"

	"github.com/sarchlab/caolo/ids"
)

func TestDenseInsertGetDelete(t *testing.T) {
	d := NewDense[string]()
	d.Insert(ids.EntityId(10), "ten")
	d.Insert(ids.EntityId(12), "twelve")

	if v, ok := d.Get(ids.EntityId(10)); !ok || v != "ten" {
		t.Fatalf("expected ten, got %q ok=%v", v, ok)
	}
	if v, ok := d.Get(ids.EntityId(11)); ok {
		t.Fatalf("expected absent at 11, got %q", v)
	}
	if d.Len() != 2 {
		t.Fatalf("expected len 2, got %d", d.Len())
	}
	if !d.Delete(ids.EntityId(10)) {
		t.Fatalf("expected delete to succeed")
	}
	if d.Contains(ids.EntityId(10)) {
		t.Fatalf("expected 10 absent after delete")
	}
	if d.Len() != 1 {
		t.Fatalf("expected len 1 after delete, got %d", d.Len())
	}
}

func TestDenseInsertBelowOffsetShifts(t *testing.T) {
	d := NewDense[int]()
	d.Insert(ids.EntityId(10), 100)
	d.Insert(ids.EntityId(5), 50)

	if v, ok := d.Get(ids.EntityId(5)); !ok || v != 50 {
		t.Fatalf("expected 50 at 5, got %d ok=%v", v, ok)
	}
	if v, ok := d.Get(ids.EntityId(10)); !ok || v != 100 {
		t.Fatalf("expected 100 at 10 after shift, got %d ok=%v", v, ok)
	}
}

func TestDenseOverwrite(t *testing.T) {
	d := NewDense[int]()
	d.Insert(ids.EntityId(1), 1)
	d.Insert(ids.EntityId(1), 2)
	if d.Len() != 1 {
		t.Fatalf("overwrite should not grow count, got %d", d.Len())
	}
	if v, _ := d.Get(ids.EntityId(1)); v != 2 {
		t.Fatalf("expected overwritten value 2, got %d", v)
	}
}

func TestDenseIterateSkipsGaps(t *testing.T) {
	d := NewDense[int]()
	d.Insert(ids.EntityId(1), 1)
	d.Insert(ids.EntityId(2), 2)
	d.Insert(ids.EntityId(3), 3)
	d.Delete(ids.EntityId(2))

	var got []ids.EntityId
	d.Iterate(func(id ids.EntityId, _ int) { got = append(got, id) })
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("expected [1 3], got %v", got)
	}
}

func TestDenseGetMutMutates(t *testing.T) {
	d := NewDense[int]()
	d.Insert(ids.EntityId(1), 1)
	p, ok := d.GetMut(ids.EntityId(1))
	if !ok {
		t.Fatalf("expected present")
	}
	*p = 42
	if v, _ := d.Get(ids.EntityId(1)); v != 42 {
		t.Fatalf("expected mutation to stick, got %d", v)
	}
}
