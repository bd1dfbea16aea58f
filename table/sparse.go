package table

import "github.com/sarchlab/caolo/ids"

// SparseFlag is a membership set over entity ids: components that carry no
// data of their own, only presence (e.g. "is tagged dead this tick").
type SparseFlag struct {
	members map[ids.EntityId]struct{}
}

// NewSparseFlag builds an empty SparseFlag set.
func NewSparseFlag() *SparseFlag {
	return &SparseFlag{members: make(map[ids.EntityId]struct{})}
}

// Set marks id as a member.
func (s *SparseFlag) Set(id ids.EntityId) {
	s.members[id] = struct{}{}
}

// Contains reports whether id is a member.
func (s *SparseFlag) Contains(id ids.EntityId) bool {
	_, ok := s.members[id]
	return ok
}

// Delete removes id from the set, if present, and reports whether it was
// removed.
func (s *SparseFlag) Delete(id ids.EntityId) bool {
	if _, ok := s.members[id]; !ok {
		return false
	}
	delete(s.members, id)
	return true
}

// Len returns the number of members.
func (s *SparseFlag) Len() int { return len(s.members) }

// Iterate calls visit for every member. Iteration order is unspecified.
func (s *SparseFlag) Iterate(visit func(ids.EntityId)) {
	for id := range s.members {
		visit(id)
	}
}
