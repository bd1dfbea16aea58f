package table

import (
	"sync"
	"testing"

	"github.com/sarchlab/caolo/ids"
)

func TestArchetypeFlushPurgesRegisteredTables(t *testing.T) {
	arch := NewArchetype()
	positions := NewDense[int]()
	names := NewBTree[string](32)
	arch.Register(positions)
	arch.Register(names)

	positions.Insert(ids.EntityId(1), 100)
	names.Insert(ids.EntityId(1), "bot")

	arch.QueueDelete(ids.EntityId(1))
	if arch.PendingLen() != 1 {
		t.Fatalf("expected 1 pending delete, got %d", arch.PendingLen())
	}

	flushed := arch.Flush()
	if len(flushed) != 1 || flushed[0] != ids.EntityId(1) {
		t.Fatalf("expected flush to report id 1, got %v", flushed)
	}
	if positions.Contains(ids.EntityId(1)) {
		t.Fatalf("expected positions purged")
	}
	if names.Contains(ids.EntityId(1)) {
		t.Fatalf("expected names purged")
	}
	if arch.PendingLen() != 0 {
		t.Fatalf("expected queue drained after flush")
	}
}

func TestArchetypeQueueDeleteConcurrentSafe(t *testing.T) {
	arch := NewArchetype()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			arch.QueueDelete(ids.EntityId(i))
		}(i)
	}
	wg.Wait()
	if arch.PendingLen() != 100 {
		t.Fatalf("expected 100 queued deletes, got %d", arch.PendingLen())
	}
}
