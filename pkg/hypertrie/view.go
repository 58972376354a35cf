package hypertrie

import (
	"fmt"
)

// View is a read-only reference to a hypertrie node. It doesn't hold a
// reference to the node, so it's only valid until the context is modified.
// Views are produced by slicing, diagonals and Hypertrie handles.
type View[V Value] struct {
	ctx  *Context[V]
	node container[V]
}

// SliceResult is a result of slicing, it's a scalar value if all positions
// were fixed and a View otherwise. Zero SliceResult denotes an absent
// result (used by left joins).
type SliceResult[V Value] struct {
	View   *View[V]
	Value  V
	Scalar bool
}

// Absent checks whether r holds neither a view nor a scalar.
func (r SliceResult[V]) Absent() bool {
	return r.View == nil && !r.Scalar
}

func (c *Context[V]) wrapResult(r sliceResult[V]) SliceResult[V] {
	if r.scalar {
		return SliceResult[V]{Value: r.value, Scalar: true}
	}
	return SliceResult[V]{View: &View[V]{ctx: c, node: r.node}}
}

// Context returns the context v belongs to.
func (v *View[V]) Context() *Context[V] {
	return v.ctx
}

// Depth returns the depth (arity) of v.
func (v *View[V]) Depth() int {
	return v.node.depth
}

// Identifier returns content identifier of v.
func (v *View[V]) Identifier() Identifier {
	return v.node.id
}

// Managed reports whether v refers to a node stored in the context (as
// opposed to single-entry nodes fabricated by slicing).
func (v *View[V]) Managed() bool {
	return v.node.managed(v.ctx)
}

// Size returns the number of entries.
func (v *View[V]) Size() int {
	return v.node.size()
}

// Empty checks whether v has no entries.
func (v *View[V]) Empty() bool {
	return v.node.isEmpty()
}

// Get returns the value stored for key or the zero value if there is no such
// entry.
func (v *View[V]) Get(key Key) V {
	v.checkKey(len(key))
	return v.ctx.get(v.node, key)
}

// Contains checks whether there is an entry for key.
func (v *View[V]) Contains(key Key) bool {
	return !isZero(v.Get(key))
}

// Slice fixes some positions of v. It returns a scalar if all positions are
// fixed and a View of depth equal to the number of wildcards otherwise.
func (v *View[V]) Slice(sk SliceKey) SliceResult[V] {
	v.checkKey(len(sk))
	return v.ctx.wrapResult(v.ctx.slice(v.node, sk))
}

// Cards returns the number of distinct key parts for each of the given
// positions.
func (v *View[V]) Cards(positions []int) []int {
	return v.node.cards(positions)
}

// Iterator returns an iterator over all entries in ascending key order.
func (v *View[V]) Iterator() *RawIterator[V] {
	return v.ctx.newRawIterator(v.node)
}

// Entries returns all entries in ascending key order.
func (v *View[V]) Entries() []Entry[V] {
	res := make([]Entry[V], 0, v.Size())
	it := v.Iterator()
	for it.Next() {
		res = append(res, it.Entry())
	}
	return res
}

// Diagonal returns the diagonal of v over the given distinct positions.
func (v *View[V]) Diagonal(positions []int) *RawHashDiagonal[V] {
	if len(positions) == 0 || len(positions) > v.node.depth {
		panic(fmt.Sprintf("bug: invalid diagonal positions %v for depth %d", positions, v.node.depth))
	}
	seen := make(map[int]bool, len(positions))
	for _, p := range positions {
		if p < 0 || p >= v.node.depth || seen[p] {
			panic(fmt.Sprintf("bug: invalid diagonal positions %v for depth %d", positions, v.node.depth))
		}
		seen[p] = true
	}
	return v.ctx.newRawHashDiagonal(v.node, positions)
}

// String implements fmt.Stringer.
func (v *View[V]) String() string {
	return fmt.Sprintf("hypertrie<%d>(%s, size %d)", v.node.depth, v.node.id, v.Size())
}

func (v *View[V]) checkKey(l int) {
	if l != v.node.depth {
		panic(fmt.Sprintf("bug: key of length %d used with hypertrie of depth %d", l, v.node.depth))
	}
}
