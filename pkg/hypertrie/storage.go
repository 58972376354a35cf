package hypertrie

import (
	"fmt"
)

// NodeStorage keeps nodes of a single depth. It's a pure storage, all
// reference counting decisions are made by the diff/apply engine.
type NodeStorage[V Value] struct {
	depth  int
	full   map[Identifier]*FullNode[V]
	single map[Identifier]*SingleEntryNode[V]
}

func newNodeStorage[V Value](depth int) *NodeStorage[V] {
	return &NodeStorage[V]{
		depth:  depth,
		full:   make(map[Identifier]*FullNode[V]),
		single: make(map[Identifier]*SingleEntryNode[V]),
	}
}

// Depth returns depth of nodes kept in s.
func (s *NodeStorage[V]) Depth() int { return s.depth }

// LookupFull returns a stored full node if any.
func (s *NodeStorage[V]) LookupFull(id Identifier) (*FullNode[V], bool) {
	n, ok := s.full[id]
	return n, ok
}

// LookupSingle returns a stored single-entry node if any.
func (s *NodeStorage[V]) LookupSingle(id Identifier) (*SingleEntryNode[V], bool) {
	n, ok := s.single[id]
	return n, ok
}

// Contains checks whether there is a node for id. In-place identifiers are
// always considered to be present.
func (s *NodeStorage[V]) Contains(id Identifier) bool {
	switch {
	case id.IsEmpty():
		return false
	case id.IsInPlace():
		return true
	case id.IsSingleEntry():
		_, ok := s.single[id]
		return ok
	default:
		_, ok := s.full[id]
		return ok
	}
}

// Len returns the number of stored nodes of the given kind.
func (s *NodeStorage[V]) Len(kind NodeKind) int {
	if kind == FullKind {
		return len(s.full)
	}
	return len(s.single)
}

// mustFull returns a stored full node or panics.
func (s *NodeStorage[V]) mustFull(id Identifier) *FullNode[V] {
	n, ok := s.full[id]
	if !ok {
		panic(fmt.Sprintf("bug: missing full node %s at depth %d", id, s.depth))
	}
	return n
}

// mustSingle returns a stored single-entry node or panics.
func (s *NodeStorage[V]) mustSingle(id Identifier) *SingleEntryNode[V] {
	n, ok := s.single[id]
	if !ok {
		panic(fmt.Sprintf("bug: missing single-entry node %s at depth %d", id, s.depth))
	}
	return n
}

func (s *NodeStorage[V]) putFull(id Identifier, n *FullNode[V]) {
	if _, ok := s.full[id]; ok {
		panic(fmt.Sprintf("bug: full node %s already exists at depth %d", id, s.depth))
	}
	s.full[id] = n
	nodesGauge.WithLabelValues(depthLabel(s.depth), FullKind.String()).Inc()
}

func (s *NodeStorage[V]) putSingle(id Identifier, n *SingleEntryNode[V]) {
	if _, ok := s.single[id]; ok {
		panic(fmt.Sprintf("bug: single-entry node %s already exists at depth %d", id, s.depth))
	}
	s.single[id] = n
	nodesGauge.WithLabelValues(depthLabel(s.depth), SingleEntryKind.String()).Inc()
}

// takeFull moves a full node out of storage, the caller becomes its only
// owner.
func (s *NodeStorage[V]) takeFull(id Identifier) *FullNode[V] {
	n := s.mustFull(id)
	delete(s.full, id)
	nodesGauge.WithLabelValues(depthLabel(s.depth), FullKind.String()).Dec()
	return n
}

func (s *NodeStorage[V]) deleteFull(id Identifier) *FullNode[V] {
	return s.takeFull(id)
}

func (s *NodeStorage[V]) deleteSingle(id Identifier) {
	s.mustSingle(id)
	delete(s.single, id)
	nodesGauge.WithLabelValues(depthLabel(s.depth), SingleEntryKind.String()).Dec()
}
