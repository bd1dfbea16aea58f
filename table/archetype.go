package table

import (
	"sync"

	"github.com/sarchlab/caolo/ids"
)

// Deletable is implemented by any table kind an Archetype can purge an id
// from at post_process.
type Deletable interface {
	Delete(id ids.EntityId) bool
}

// Archetype groups every component table keyed by ids.EntityId, plus the
// deferred-delete queue that script execution appends to. Deletes are
// queued during a tick (possibly from multiple worker goroutines) and
// drained single-threaded at post_process.
type Archetype struct {
	tablesMu sync.RWMutex
	tables   []Deletable

	queueMu sync.Mutex
	queue   []ids.EntityId
}

// NewArchetype builds an empty Archetype.
func NewArchetype() *Archetype {
	return &Archetype{}
}

// Register adds a table to the set purged on deferred delete. Call during
// setup, before any tick begins appending deletes concurrently.
func (a *Archetype) Register(t Deletable) {
	a.tablesMu.Lock()
	defer a.tablesMu.Unlock()
	a.tables = append(a.tables, t)
}

// QueueDelete appends id to the deferred-delete queue. Safe to call from
// any number of concurrent script-execution workers during a tick.
func (a *Archetype) QueueDelete(id ids.EntityId) {
	a.queueMu.Lock()
	defer a.queueMu.Unlock()
	a.queue = append(a.queue, id)
}

// Flush removes every queued id from every registered table and returns
// the list of ids that were flushed, clearing the queue. Intended to run
// single-threaded during post_process.
func (a *Archetype) Flush() []ids.EntityId {
	a.queueMu.Lock()
	flushed := a.queue
	a.queue = nil
	a.queueMu.Unlock()

	a.tablesMu.RLock()
	defer a.tablesMu.RUnlock()
	for _, id := range flushed {
		for _, t := range a.tables {
			t.Delete(id)
		}
	}
	return flushed
}

// PendingLen reports how many deletes are currently queued, for
// diagnostics.
func (a *Archetype) PendingLen() int {
	a.queueMu.Lock()
	defer a.queueMu.Unlock()
	return len(a.queue)
}
