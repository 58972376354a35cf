package hypertrie

import (
	"maps"
)

// NodeKind distinguishes node representations.
type NodeKind byte

// Node kinds.
const (
	FullKind NodeKind = iota
	SingleEntryKind
)

// String implements fmt.Stringer.
func (k NodeKind) String() string {
	switch k {
	case FullKind:
		return "full"
	case SingleEntryKind:
		return "single"
	default:
		return "unknown"
	}
}

// FullNode is a node with at least two entries. It keeps an edge container
// for every position of its depth. Intermediate (depth > 1) containers map
// key parts to child identifiers of depth-1, terminal (depth 1) node maps key
// parts to values (boolean nodes use it as a set).
type FullNode[V Value] struct {
	depth  int
	edges  []map[KeyPart]Identifier
	leaves map[KeyPart]V
	size   int
	ref    int
}

func newFullNode[V Value](depth int) *FullNode[V] {
	n := &FullNode[V]{depth: depth}
	if depth == 1 {
		n.leaves = make(map[KeyPart]V)
	} else {
		n.edges = make([]map[KeyPart]Identifier, depth)
		for i := range n.edges {
			n.edges[i] = make(map[KeyPart]Identifier)
		}
	}
	return n
}

// Depth returns node depth.
func (n *FullNode[V]) Depth() int { return n.depth }

// Size returns the number of entries reachable from n.
func (n *FullNode[V]) Size() int { return n.size }

// Ref returns reference count of n.
func (n *FullNode[V]) Ref() int { return n.ref }

// Edges returns edge container for the given position of an intermediate
// node. Returned map must not be modified.
func (n *FullNode[V]) Edges(pos int) map[KeyPart]Identifier {
	if n.depth == 1 {
		panic("bug: edges requested for a depth-1 node")
	}
	return n.edges[pos]
}

// Leaves returns key part to value container of a depth-1 node. Returned map
// must not be modified.
func (n *FullNode[V]) Leaves() map[KeyPart]V {
	if n.depth != 1 {
		panic("bug: leaves requested for an intermediate node")
	}
	return n.leaves
}

// Card returns the number of distinct key parts at pos.
func (n *FullNode[V]) Card(pos int) int {
	if n.depth == 1 {
		return len(n.leaves)
	}
	return len(n.edges[pos])
}

// child returns child identifier for kp at pos.
func (n *FullNode[V]) child(pos int, kp KeyPart) (Identifier, bool) {
	id, ok := n.edges[pos][kp]
	return id, ok
}

// leaf returns the value stored for kp in a depth-1 node.
func (n *FullNode[V]) leaf(kp KeyPart) (V, bool) {
	v, ok := n.leaves[kp]
	return v, ok
}

// MinCardPos returns index (in positions) of the position with the smallest
// edge container.
func (n *FullNode[V]) MinCardPos(positions []int) int {
	best := 0
	for i := 1; i < len(positions); i++ {
		if n.Card(positions[i]) < n.Card(positions[best]) {
			best = i
		}
	}
	return best
}

// clone returns a deep copy of n with zero reference count.
func (n *FullNode[V]) clone() *FullNode[V] {
	res := &FullNode[V]{depth: n.depth, size: n.size}
	if n.depth == 1 {
		res.leaves = maps.Clone(n.leaves)
		return res
	}
	res.edges = make([]map[KeyPart]Identifier, n.depth)
	for i := range n.edges {
		res.edges[i] = maps.Clone(n.edges[i])
	}
	return res
}

// Equal compares contents of two full nodes. Sizes and per-position
// cardinalities are compared first, then the smallest container is compared
// deeply. Child identifiers are content hashes, so equal containers at one
// position imply equal nodes.
func (n *FullNode[V]) Equal(other *FullNode[V]) bool {
	if n.depth != other.depth || n.size != other.size {
		return false
	}
	if n.depth == 1 {
		return maps.Equal(n.leaves, other.leaves)
	}
	best := 0
	for i := range n.edges {
		if len(n.edges[i]) != len(other.edges[i]) {
			return false
		}
		if len(n.edges[i]) < len(n.edges[best]) {
			best = i
		}
	}
	return maps.Equal(n.edges[best], other.edges[best])
}

// SingleEntryNode is a node containing exactly one entry. It replaces a
// chain of single-child full nodes.
type SingleEntryNode[V Value] struct {
	key   Key
	value V
	ref   int
}

func newSingleEntryNode[V Value](key Key, v V) *SingleEntryNode[V] {
	return &SingleEntryNode[V]{key: key, value: v}
}

// Key returns the key of the entry. It must not be modified.
func (n *SingleEntryNode[V]) Key() Key { return n.key }

// Value returns the value of the entry.
func (n *SingleEntryNode[V]) Value() V { return n.value }

// Ref returns reference count of n.
func (n *SingleEntryNode[V]) Ref() int { return n.ref }

// Depth returns node depth.
func (n *SingleEntryNode[V]) Depth() int { return len(n.key) }
