package hypertrie

import (
	"maps"
	"slices"
)

// RawIterator traverses all entries of a node depth-first in ascending key
// order. It keeps one cursor per level, exhausted cursor advances its parent
// and the levels below are reinitialized. The iterator is valid until the
// context is modified.
type RawIterator[V Value] struct {
	ctx   *Context[V]
	depth int

	// levels are cursors over the first position of full nodes on the path.
	levels []iterLevel[V]
	prefix Key

	// single is set for single-entry roots, it's consumed by the first Next.
	single *Entry[V]
	entry  Entry[V]
}

type iterLevel[V Value] struct {
	node *FullNode[V]
	keys []KeyPart
	idx  int
}

func newIterLevel[V Value](n *FullNode[V]) iterLevel[V] {
	var keys []KeyPart
	if n.depth == 1 {
		keys = slices.Collect(maps.Keys(n.leaves))
	} else {
		keys = slices.Collect(maps.Keys(n.edges[0]))
	}
	slices.Sort(keys)
	return iterLevel[V]{node: n, keys: keys, idx: -1}
}

func (c *Context[V]) newRawIterator(n container[V]) *RawIterator[V] {
	it := &RawIterator[V]{ctx: c, depth: n.depth}
	switch {
	case n.isEmpty():
	case n.isSingle():
		it.single = &Entry[V]{Key: slices.Clone(n.singleKey()), Value: n.singleValue()}
	default:
		it.levels = append(it.levels, newIterLevel(n.full))
	}
	return it
}

// Next advances the iterator, it returns false when there are no more
// entries.
func (it *RawIterator[V]) Next() bool {
	if it.single != nil {
		it.entry = *it.single
		it.single = nil
		return true
	}
	for len(it.levels) > 0 {
		top := &it.levels[len(it.levels)-1]
		top.idx++
		if top.idx >= len(top.keys) {
			it.levels = it.levels[:len(it.levels)-1]
			continue
		}
		kp := top.keys[top.idx]
		it.prefix = append(it.prefix[:len(it.levels)-1], kp)
		if top.node.depth == 1 {
			it.entry = Entry[V]{Key: slices.Clone(it.prefix), Value: top.node.leaves[kp]}
			return true
		}
		child := it.ctx.load(top.node.depth-1, top.node.edges[0][kp])
		if child.isSingle() {
			key := make(Key, 0, it.depth)
			key = append(key, it.prefix...)
			key = append(key, child.singleKey()...)
			it.entry = Entry[V]{Key: key, Value: child.singleValue()}
			return true
		}
		it.levels = append(it.levels, newIterLevel(child.full))
	}
	return false
}

// Entry returns the current entry. Returned key is owned by the caller.
func (it *RawIterator[V]) Entry() Entry[V] {
	return it.entry
}

// ForEach calls fn for every remaining entry until fn returns true.
func (it *RawIterator[V]) ForEach(fn func(Entry[V]) bool) {
	for it.Next() {
		if fn(it.entry) {
			return
		}
	}
}
