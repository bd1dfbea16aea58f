// Package ids defines the opaque identifiers used as table keys throughout
// the simulation: entities, users, and scripts.
package ids

import (
	"sync"

	"github.com/google/uuid"
)

// EntityId is a 32-bit opaque serial integer, monotonically allocated by an
// Allocator and recycled via its free list on deferred delete.
type EntityId uint32

// UserId is a 128-bit opaque identifier for a registered player/account.
type UserId uuid.UUID

// NewUserId generates a fresh random UserId.
func NewUserId() UserId { return UserId(uuid.New()) }

func (u UserId) String() string { return uuid.UUID(u).String() }

// ScriptId is a 128-bit opaque identifier for a compiled script.
type ScriptId uuid.UUID

// NewScriptId generates a fresh random ScriptId.
func NewScriptId() ScriptId { return ScriptId(uuid.New()) }

func (s ScriptId) String() string { return uuid.UUID(s).String() }

// Allocator hands out monotonically increasing EntityIds, recycling ids
// released via Free. It is safe for concurrent use: the tick driver's
// deferred-delete queue is appended from multiple worker goroutines during
// script execution and drained single-threaded at post_process.
type Allocator struct {
	mu       sync.Mutex
	next     EntityId
	freeList []EntityId
}

// NewAllocator builds an empty Allocator.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Allocate returns a free-listed id if one is available, otherwise the next
// unused serial id.
func (a *Allocator) Allocate() EntityId {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n := len(a.freeList); n > 0 {
		id := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		return id
	}
	id := a.next
	a.next++
	return id
}

// Free returns id to the free list; it may be reallocated by a later
// Allocate call.
func (a *Allocator) Free(id EntityId) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.freeList = append(a.freeList, id)
}

// FreeListLen reports how many ids are currently recycled, for diagnostics.
func (a *Allocator) FreeListLen() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.freeList)
}
