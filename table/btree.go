package table

import (
	"github.com/google/btree"
	"github.com/sarchlab/caolo/ids"
)

// BTree is an ordered component table, for component kinds that are sparse
// relative to the entity id space or that need stable ascending-id
// iteration for serialization (e.g. snapshot diffing).
type BTree[V any] struct {
	tree *btree.BTreeG[btreeItem[V]]
}

type btreeItem[V any] struct {
	id    ids.EntityId
	value V
}

func btreeLess[V any](a, b btreeItem[V]) bool { return a.id < b.id }

// NewBTree builds an empty BTree table with the given node degree.
func NewBTree[V any](degree int) *BTree[V] {
	return &BTree[V]{tree: btree.NewG(degree, btreeLess[V])}
}

// Insert places value at id, overwriting any existing value.
func (b *BTree[V]) Insert(id ids.EntityId, value V) {
	b.tree.ReplaceOrInsert(btreeItem[V]{id: id, value: value})
}

// Get returns the value at id, if present.
func (b *BTree[V]) Get(id ids.EntityId) (V, bool) {
	var zero V
	item, ok := b.tree.Get(btreeItem[V]{id: id})
	if !ok {
		return zero, false
	}
	return item.value, true
}

// Contains reports whether id has a value.
func (b *BTree[V]) Contains(id ids.EntityId) bool {
	_, ok := b.tree.Get(btreeItem[V]{id: id})
	return ok
}

// Delete removes the value at id, if present, and reports whether one was
// removed.
func (b *BTree[V]) Delete(id ids.EntityId) bool {
	_, ok := b.tree.Delete(btreeItem[V]{id: id})
	return ok
}

// Len returns the number of present values.
func (b *BTree[V]) Len() int { return b.tree.Len() }

// Iterate calls visit for every (id, value) pair in ascending id order.
// Iteration stops early if visit returns false.
func (b *BTree[V]) Iterate(visit func(ids.EntityId, V) bool) {
	b.tree.Ascend(func(item btreeItem[V]) bool {
		return visit(item.id, item.value)
	})
}
