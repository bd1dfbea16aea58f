package morton

import (
	"errors"
	"sort"

	"github.com/sarchlab/caolo/hexgrid"
)

// skipLen is the fixed size of the table's skiplist: one entry per bucket's
// last key.
const skipLen = 8

// maxBruteIters bounds the slice length query_range will scan linearly
// before switching to the litmax/bigmin recursive split.
const maxBruteIters = 16

// ErrOutOfBounds is returned when a position fails the 15-bit non-negative
// spatial-key check.
var ErrOutOfBounds = errors.New("morton: position out of bounds")

type entry[Row any] struct {
	pos hexgrid.Axial
	row Row
}

// Table is a per-room Morton-ordered spatial table: keys in ascending
// order, an 8-entry skiplist partitioning the key array into buckets for
// two-level search, and values held in lockstep with keys.
type Table[Row any] struct {
	keys       []Key
	values     []entry[Row]
	skiplist   [skipLen]Key
	bucketSize int
}

// NewTable builds an empty Table.
func NewTable[Row any]() *Table[Row] {
	return &Table[Row]{}
}

// IsValidPos reports whether pos satisfies the 15-bit non-negative bound
// required of a Morton-indexable position.
func IsValidPos(pos hexgrid.Axial) bool {
	return pos.IsValidSpatialKey()
}

// Len returns the number of entries in the table.
func (t *Table[Row]) Len() int { return len(t.keys) }

// IsEmpty reports whether the table holds no entries.
func (t *Table[Row]) IsEmpty() bool { return len(t.keys) == 0 }

// Clear removes every entry.
func (t *Table[Row]) Clear() {
	t.keys = t.keys[:0]
	t.values = t.values[:0]
	t.rebuildSkiplist()
}

func keyOf(pos hexgrid.Axial) Key {
	return NewKey(uint16(pos.Q), uint16(pos.R))
}

// Insert places row at pos, keeping keys ascending. Fails with
// ErrOutOfBounds if pos fails the 15-bit check.
func (t *Table[Row]) Insert(pos hexgrid.Axial, row Row) error {
	if !IsValidPos(pos) {
		return ErrOutOfBounds
	}
	key := keyOf(pos)
	ind := sort.Search(len(t.keys), func(i int) bool { return t.keys[i] >= key })
	t.insertAt(ind, key, pos, row)
	t.rebuildSkiplist()
	return nil
}

func (t *Table[Row]) insertAt(ind int, key Key, pos hexgrid.Axial, row Row) {
	t.keys = append(t.keys, 0)
	copy(t.keys[ind+1:], t.keys[ind:])
	t.keys[ind] = key

	t.values = append(t.values, entry[Row]{})
	copy(t.values[ind+1:], t.values[ind:])
	t.values[ind] = entry[Row]{pos: pos, row: row}
}

// InsertOrUpdate overwrites the first entry at pos if present, otherwise
// inserts a new one.
func (t *Table[Row]) InsertOrUpdate(pos hexgrid.Axial, row Row) error {
	if !IsValidPos(pos) {
		return ErrOutOfBounds
	}
	if ind, ok := t.findKey(keyOf(pos)); ok {
		t.values[ind].row = row
		return nil
	}
	key := keyOf(pos)
	ind := sort.Search(len(t.keys), func(i int) bool { return t.keys[i] >= key })
	t.insertAt(ind, key, pos, row)
	t.rebuildSkiplist()
	return nil
}

// Update overwrites the first entry at pos, if any, and reports whether one
// existed.
func (t *Table[Row]) Update(pos hexgrid.Axial, row Row) bool {
	ind, ok := t.findKey(keyOf(pos))
	if !ok {
		return false
	}
	t.values[ind].row = row
	return true
}

// Get returns the first row at pos, if any.
func (t *Table[Row]) Get(pos hexgrid.Axial) (Row, bool) {
	var zero Row
	ind, ok := t.findKey(keyOf(pos))
	if !ok {
		return zero, false
	}
	return t.values[ind].row, true
}

// GetMut returns a pointer to the first row's value at pos for in-place
// mutation, if any.
func (t *Table[Row]) GetMut(pos hexgrid.Axial) (*Row, bool) {
	ind, ok := t.findKey(keyOf(pos))
	if !ok {
		return nil, false
	}
	return &t.values[ind].row, true
}

// Contains reports whether any entry exists at pos.
func (t *Table[Row]) Contains(pos hexgrid.Axial) bool {
	_, ok := t.findKey(keyOf(pos))
	return ok
}

// Delete removes every entry at pos, returning the first row removed, if
// any.
func (t *Table[Row]) Delete(pos hexgrid.Axial) (Row, bool) {
	var zero Row
	key := keyOf(pos)
	ind, ok := t.findKey(key)
	if !ok {
		return zero, false
	}
	first := t.values[ind].row
	t.removeAt(ind)
	for {
		i, ok := t.findKey(key)
		if !ok {
			break
		}
		t.removeAt(i)
	}
	t.rebuildSkiplist()
	return first, true
}

func (t *Table[Row]) removeAt(ind int) {
	t.keys = append(t.keys[:ind], t.keys[ind+1:]...)
	t.values = append(t.values[:ind], t.values[ind+1:]...)
}

// findKey finds the index of the first occurrence of key, if present.
func (t *Table[Row]) findKey(key Key) (int, bool) {
	ind, exact := t.findKeyPos(key)
	if !exact {
		return 0, false
	}
	for ind > 0 && t.keys[ind-1] == key {
		ind--
	}
	return ind, true
}

// findKeyPos returns the index of key if present (exact=true), otherwise
// the insertion point that keeps keys ascending.
func (t *Table[Row]) findKeyPos(key Key) (ind int, exact bool) {
	step := t.bucketSize
	if step <= 1 {
		return binarySearch(t.keys, key)
	}

	bucket := t.skiplistBucket(key)
	begin, end := bucket*step, len(t.keys)
	if bucket*step+step+1 < len(t.keys) {
		end = bucket*step + step + 1
	}
	if begin > len(t.keys) {
		begin = len(t.keys)
	}

	localInd, exact := binarySearch(t.keys[begin:end], key)
	return begin + localInd, exact
}

// skiplistBucket returns the bucket index key would fall into, by scanning
// the 8-entry skiplist of bucket-last-keys.
func (t *Table[Row]) skiplistBucket(key Key) int {
	for i := 0; i < skipLen; i++ {
		if key <= t.skiplist[i] {
			return i
		}
	}
	return skipLen - 1
}

func binarySearch(keys []Key, key Key) (ind int, exact bool) {
	ind = sort.Search(len(keys), func(i int) bool { return keys[i] >= key })
	if ind < len(keys) && keys[ind] == key {
		return ind, true
	}
	return ind, false
}

func (t *Table[Row]) rebuildSkiplist() {
	n := len(t.keys)
	step := n/skipLen + 1
	t.bucketSize = step
	t.skiplist = [skipLen]Key{}

	i, bucket := step, 0
	for i < n && bucket < skipLen {
		t.skiplist[bucket] = t.keys[i]
		bucket++
		i += step
	}
	for ; bucket < skipLen; bucket++ {
		if n > 0 {
			t.skiplist[bucket] = t.keys[n-1]
		}
	}
}

// Extend bulk-inserts every (pos, row) pair, then sorts and rebuilds the
// skiplist once. Fails with ErrOutOfBounds if any position is invalid;
// entries appended before the failing one remain in the table, sorted and
// indexed.
func (t *Table[Row]) Extend(items []struct {
	Pos hexgrid.Axial
	Row Row
}) error {
	for _, it := range items {
		if !IsValidPos(it.Pos) {
			t.sortInPlace()
			t.rebuildSkiplist()
			return ErrOutOfBounds
		}
		t.keys = append(t.keys, keyOf(it.Pos))
		t.values = append(t.values, entry[Row]{pos: it.Pos, row: it.Row})
	}
	t.sortInPlace()
	t.rebuildSkiplist()
	return nil
}

func (t *Table[Row]) sortInPlace() {
	idx := make([]int, len(t.keys))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return t.keys[idx[i]] < t.keys[idx[j]] })

	keys := make([]Key, len(t.keys))
	values := make([]entry[Row], len(t.values))
	for i, j := range idx {
		keys[i] = t.keys[j]
		values[i] = t.values[j]
	}
	t.keys, t.values = keys, values
}

// Dedupe keeps exactly one entry per distinct key, discarding the rest.
func (t *Table[Row]) Dedupe() {
	for i := len(t.keys) - 1; i > 0; i-- {
		if t.keys[i] == t.keys[i-1] {
			t.removeAt(i)
		}
	}
	t.rebuildSkiplist()
}

// QueryRange calls op for every entry within radius of center (by true hex
// distance), exactly once. Candidate slices of length <= maxBruteIters are
// scanned linearly; larger slices are split via litmax/bigmin recursion.
func (t *Table[Row]) QueryRange(center hexgrid.Axial, radius uint32, op func(hexgrid.Axial, Row)) {
	r := int32(radius)
	minX, minY := clamp0(center.Q-r), clamp0(center.R-r)
	maxX, maxY := clampMax(center.Q+r), clampMax(center.R+r)

	min := NewKey(uint16(minX), uint16(minY))
	max := NewKey(uint16(maxX), uint16(maxY))

	t.queryRangeImpl(center, radius, min, max, op)
}

func clamp0(v int32) int32 {
	if v < 0 {
		return 0
	}
	return v
}

func clampMax(v int32) int32 {
	if v > MaxCoord {
		return MaxCoord
	}
	return v
}

func (t *Table[Row]) queryRangeImpl(center hexgrid.Axial, radius uint32, min, max Key, op func(hexgrid.Axial, Row)) {
	imin, _ := t.findKeyPos(min)
	for imin > 0 && t.keys[imin-1] == min {
		imin--
	}
	imax, exact := t.findKeyPos(max)
	if exact {
		for imax < len(t.keys) && t.keys[imax] == max {
			imax++
		}
	}
	if imin > imax {
		imin = imax
	}

	if imax-imin > maxBruteIters && min != max {
		litmax, bigmin := litmaxBigmin(min, max)
		t.queryRangeImpl(center, radius, min, litmax, op)
		t.queryRangeImpl(center, radius, bigmin, max, op)
		return
	}

	for _, e := range t.values[imin:imax] {
		if center.Distance(e.pos) <= radius {
			op(e.pos, e.row)
		}
	}
}

// FindClosestByFilter returns the row passing pred with minimum hex
// distance to center, with ties broken by first encountered.
func (t *Table[Row]) FindClosestByFilter(center hexgrid.Axial, pred func(hexgrid.Axial, Row) bool) (hexgrid.Axial, Row, bool) {
	var (
		best     Row
		bestPos  hexgrid.Axial
		bestDist uint32
		found    bool
	)
	for _, e := range t.values {
		if !pred(e.pos, e.row) {
			continue
		}
		d := center.Distance(e.pos)
		if !found || d < bestDist {
			best, bestPos, bestDist, found = e.row, e.pos, d, true
		}
	}
	return bestPos, best, found
}

// Iterate calls visit for every entry in ascending key order.
func (t *Table[Row]) Iterate(visit func(hexgrid.Axial, Row)) {
	for _, e := range t.values {
		visit(e.pos, e.row)
	}
}
