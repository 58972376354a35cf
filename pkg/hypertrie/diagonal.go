package hypertrie

import (
	"maps"
	"slices"
)

// RawHashDiagonal is an equality projection of a node over a fixed set of
// positions. It allows to probe key parts with Find and to iterate over all
// key parts k such that there is an entry having k at every position of the
// set. Iteration follows the position with the smallest edge container.
type RawHashDiagonal[V Value] struct {
	ctx       *Context[V]
	node      container[V]
	positions []int

	candidates []KeyPart
	idx        int
	kp         KeyPart
	res        SliceResult[V]
}

func (c *Context[V]) newRawHashDiagonal(n container[V], positions []int) *RawHashDiagonal[V] {
	d := &RawHashDiagonal[V]{
		ctx:       c,
		node:      n,
		positions: slices.Clone(positions),
		idx:       -1,
	}
	switch {
	case n.isEmpty():
	case n.isSingle():
		key := n.singleKey()
		kp := key[positions[0]]
		for _, p := range positions[1:] {
			if key[p] != kp {
				return d
			}
		}
		d.candidates = []KeyPart{kp}
	case n.depth == 1:
		d.candidates = slices.Collect(maps.Keys(n.full.leaves))
	default:
		pos := positions[n.full.MinCardPos(positions)]
		d.candidates = slices.Collect(maps.Keys(n.full.edges[pos]))
	}
	slices.Sort(d.candidates)
	return d
}

// Size returns an upper bound of the number of distinct key parts on the
// diagonal. It's the cardinality of the smallest position in the set.
func (d *RawHashDiagonal[V]) Size() int {
	return len(d.candidates)
}

// Find returns the part of the node where all diagonal positions are equal
// to kp with these positions removed.
func (d *RawHashDiagonal[V]) Find(kp KeyPart) (SliceResult[V], bool) {
	r, ok := d.ctx.diagonalSlice(d.node, d.positions, kp)
	if !ok {
		return SliceResult[V]{}, false
	}
	return d.ctx.wrapResult(r), true
}

// Next advances to the next key part on the diagonal in ascending order.
func (d *RawHashDiagonal[V]) Next() bool {
	for d.idx+1 < len(d.candidates) {
		d.idx++
		kp := d.candidates[d.idx]
		if r, ok := d.Find(kp); ok {
			d.kp = kp
			d.res = r
			return true
		}
	}
	return false
}

// KeyPart returns the current key part.
func (d *RawHashDiagonal[V]) KeyPart() KeyPart {
	return d.kp
}

// Result returns the slice of the current key part.
func (d *RawHashDiagonal[V]) Result() SliceResult[V] {
	return d.res
}

// Slice returns the view of the current key part, it's nil if the diagonal
// covers all positions of the node.
func (d *RawHashDiagonal[V]) Slice() *View[V] {
	return d.res.View
}

// Value returns the value of the current key part if the diagonal covers all
// positions of the node and the zero value otherwise.
func (d *RawHashDiagonal[V]) Value() V {
	return d.res.Value
}
