// Package table implements the component table backends (dense, BTree,
// unique, sparse-flag) and the Archetype composition with deferred
// deletion that the ECS-style world store is built from.
package table

import (
	"errors"

	"github.com/sarchlab/caolo/ids"
)

// ErrDuplicateEntry reports that the same id appears twice. No function in
// this package returns it.
var ErrDuplicateEntry = errors.New("table: duplicate entry")

// ErrUnsortedValues reports that ids are not ascending. No function in this
// package returns it.
var ErrUnsortedValues = errors.New("table: values not sorted by id")

// Dense is an offset + parallel-slot table keyed by ids.EntityId: O(1)
// lookup/insert, gaps tolerated, primary iteration skips absent slots.
type Dense[V any] struct {
	offset int
	ids    []ids.EntityId
	has    []bool
	data   []V
	count  int
}

// NewDense builds an empty Dense table.
func NewDense[V any]() *Dense[V] {
	return &Dense[V]{}
}

func (d *Dense[V]) slot(id ids.EntityId) (int, bool) {
	i := int(id) - d.offset
	if i < 0 || i >= len(d.ids) {
		return 0, false
	}
	return i, true
}

func (d *Dense[V]) growTo(i int) {
	if i < len(d.ids) {
		return
	}
	newLen := i + 1

	newIds := make([]ids.EntityId, newLen)
	copy(newIds, d.ids)
	d.ids = newIds

	newHas := make([]bool, newLen)
	copy(newHas, d.has)
	d.has = newHas

	newData := make([]V, newLen)
	copy(newData, d.data)
	d.data = newData
}

// Insert places value at id, extending the backing slices and, if id lands
// before the current offset, shifting the offset down. Overwrites any
// existing value at id.
func (d *Dense[V]) Insert(id ids.EntityId, value V) {
	if len(d.ids) == 0 {
		d.offset = int(id)
	} else if int(id) < d.offset {
		shift := d.offset - int(id)
		newIds := make([]ids.EntityId, len(d.ids)+shift)
		newHas := make([]bool, len(d.has)+shift)
		newData := make([]V, len(d.data)+shift)
		copy(newIds[shift:], d.ids)
		copy(newHas[shift:], d.has)
		copy(newData[shift:], d.data)
		d.ids, d.has, d.data = newIds, newHas, newData
		d.offset = int(id)
	}

	d.growTo(int(id) - d.offset)
	i, _ := d.slot(id)
	if !d.has[i] {
		d.count++
	}
	d.ids[i], d.has[i], d.data[i] = id, true, value
}

// Get returns the value at id, if present.
func (d *Dense[V]) Get(id ids.EntityId) (V, bool) {
	var zero V
	i, ok := d.slot(id)
	if !ok || !d.has[i] {
		return zero, false
	}
	return d.data[i], true
}

// GetMut returns a pointer to the value at id for in-place mutation, if
// present.
func (d *Dense[V]) GetMut(id ids.EntityId) (*V, bool) {
	i, ok := d.slot(id)
	if !ok || !d.has[i] {
		return nil, false
	}
	return &d.data[i], true
}

// Contains reports whether id has a value.
func (d *Dense[V]) Contains(id ids.EntityId) bool {
	i, ok := d.slot(id)
	return ok && d.has[i]
}

// Delete removes the value at id, if present, and reports whether one was
// removed. The slot is left absent (a gap) rather than shifting the table.
func (d *Dense[V]) Delete(id ids.EntityId) bool {
	i, ok := d.slot(id)
	if !ok || !d.has[i] {
		return false
	}
	var zero V
	d.has[i] = false
	d.data[i] = zero
	d.count--
	return true
}

// Len returns the number of present values.
func (d *Dense[V]) Len() int { return d.count }

// Iterate calls visit for every present (id, value) pair, in ascending id
// order (the natural order of the backing slice).
func (d *Dense[V]) Iterate(visit func(ids.EntityId, V)) {
	for i, present := range d.has {
		if present {
			visit(d.ids[i], d.data[i])
		}
	}
}
