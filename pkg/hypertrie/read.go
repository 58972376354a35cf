package hypertrie

import (
	"fmt"
	"slices"
)

// sliceResult is either a scalar (all positions were fixed) or a node
// container of the remaining depth.
type sliceResult[V Value] struct {
	node   container[V]
	value  V
	scalar bool
}

// get returns the value stored for key or the default value.
func (c *Context[V]) get(n container[V], key Key) V {
	var zero V
	if len(key) != n.depth {
		panic(fmt.Sprintf("bug: key %s doesn't match depth %d", key, n.depth))
	}
	for {
		switch {
		case n.isEmpty():
			return zero
		case n.isSingle():
			if n.singleKey().Equals(key) {
				return n.singleValue()
			}
			return zero
		case n.depth == 1:
			v, _ := n.full.leaf(key[0])
			return v
		}
		pos := 0
		for p := 1; p < n.depth; p++ {
			if n.full.Card(p) < n.full.Card(pos) {
				pos = p
			}
		}
		child, ok := n.full.child(pos, key[pos])
		if !ok {
			return zero
		}
		key = key.without(pos)
		n = c.load(n.depth-1, child)
	}
}

// slice resolves fixed positions of sk one by one preferring the smallest
// edge container. If the result has the only entry left after reaching a
// single-entry node, an unmanaged single-entry node is fabricated.
func (c *Context[V]) slice(n container[V], sk SliceKey) sliceResult[V] {
	if len(sk) != n.depth {
		panic(fmt.Sprintf("bug: slice key %s doesn't match depth %d", sk, n.depth))
	}
	fixed := sk.fixedCount()
	switch fixed {
	case n.depth:
		return sliceResult[V]{value: c.get(n, sk.fullKey()), scalar: true}
	case 0:
		return sliceResult[V]{node: n}
	}
	resDepth := n.depth - fixed

	var cacheKey sliceCacheKey
	if c.sliceCache != nil && n.full != nil {
		cacheKey = sliceCacheKey{depth: n.depth, id: n.id, key: sk.cacheKey()}
		if v, ok := c.sliceCache.Get(cacheKey); ok {
			id := v.(Identifier)
			if id.IsEmpty() || c.storages[resDepth].Contains(id) {
				return sliceResult[V]{node: c.load(resDepth, id)}
			}
			c.sliceCache.Remove(cacheKey)
		}
	}

	for fixed > 0 {
		switch {
		case n.isEmpty():
			return sliceResult[V]{node: emptyContainer[V](resDepth)}
		case n.isSingle():
			key := n.singleKey()
			sub := make(Key, 0, resDepth)
			for i, p := range sk {
				if p.Wildcard {
					sub = append(sub, key[i])
				} else if p.KeyPart != key[i] {
					return sliceResult[V]{node: emptyContainer[V](resDepth)}
				}
			}
			return sliceResult[V]{node: singleContainer(sub, n.singleValue())}
		}
		// Depth-1 nodes have no wildcards left here, so n is intermediate.
		best := -1
		for p := range sk {
			if sk[p].Wildcard {
				continue
			}
			if best < 0 || n.full.Card(p) < n.full.Card(best) {
				best = p
			}
		}
		child, ok := n.full.child(best, sk[best].KeyPart)
		if !ok {
			n = emptyContainer[V](n.depth - 1)
		} else {
			n = c.load(n.depth-1, child)
		}
		sk = sk.without(best)
		fixed--
	}
	if cacheKey.key != "" {
		c.sliceCache.Add(cacheKey, n.id)
	}
	return sliceResult[V]{node: n}
}

// diagonalSlice returns the part of n where all positions share kp, with
// these positions removed. positions must be distinct. If all positions of n
// are constrained, the result is a scalar. ok is false if there is no such
// entry.
func (c *Context[V]) diagonalSlice(n container[V], positions []int, kp KeyPart) (sliceResult[V], bool) {
	positions = slices.Clone(positions)
	slices.Sort(positions)
	if len(positions) == 0 || len(positions) > n.depth || positions[0] < 0 || positions[len(positions)-1] >= n.depth {
		panic(fmt.Sprintf("bug: invalid diagonal positions %v for depth %d", positions, n.depth))
	}
	for i := 1; i < len(positions); i++ {
		if positions[i] == positions[i-1] {
			panic(fmt.Sprintf("bug: duplicate diagonal position %d", positions[i]))
		}
	}
	resDepth := n.depth - len(positions)
	for len(positions) > 0 {
		switch {
		case n.isEmpty():
			return sliceResult[V]{}, false
		case n.isSingle():
			key := n.singleKey()
			for _, p := range positions {
				if key[p] != kp {
					return sliceResult[V]{}, false
				}
			}
			if resDepth == 0 {
				return sliceResult[V]{value: n.singleValue(), scalar: true}, true
			}
			sub := make(Key, 0, resDepth)
			var j int
			for i := range key {
				if j < len(positions) && positions[j] == i {
					j++
					continue
				}
				sub = append(sub, key[i])
			}
			return sliceResult[V]{node: singleContainer(sub, n.singleValue())}, true
		case n.depth == 1:
			v, ok := n.full.leaf(kp)
			if !ok {
				return sliceResult[V]{}, false
			}
			return sliceResult[V]{value: v, scalar: true}, true
		}
		i := n.full.MinCardPos(positions)
		pos := positions[i]
		child, ok := n.full.child(pos, kp)
		if !ok {
			return sliceResult[V]{}, false
		}
		positions = slices.Delete(positions, i, i+1)
		for j := range positions {
			if positions[j] > pos {
				positions[j]--
			}
		}
		n = c.load(n.depth-1, child)
	}
	return sliceResult[V]{node: n}, !n.isEmpty()
}
