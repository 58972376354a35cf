package hypertrie

import (
	"slices"
)

// Hypertrie is a mutable handle to a relation of fixed depth. It holds a
// reference to its root node, so equal hypertries within one context share
// all of their nodes. Hypertrie must be closed when it's no longer needed.
type Hypertrie[V Value] struct {
	View[V]
	closed bool
}

// NewHypertrie creates an empty hypertrie of the given depth in ctx.
func NewHypertrie[V Value](ctx *Context[V], depth int) (*Hypertrie[V], error) {
	if err := ctx.validateDepth(depth); err != nil {
		return nil, err
	}
	return &Hypertrie[V]{View: View[V]{ctx: ctx, node: emptyContainer[V](depth)}}, nil
}

// Set sets the value of key and returns the previous one. Setting the zero
// value removes the entry.
func (h *Hypertrie[V]) Set(key Key, value V) V {
	h.checkOpen()
	old := h.Get(key)
	if old == value {
		return old
	}
	key = slices.Clone(key)
	switch {
	case isZero(value):
		h.apply(opRemove, []change[V]{{key: key, value: old}})
	case isZero(old):
		h.apply(opInsert, []change[V]{{key: key, value: value}})
	default:
		h.apply(opUpdate, []change[V]{{key: key, value: value, old: old}})
	}
	return old
}

// InsertBatch inserts all given entries in a single diff/apply pass. Entries
// with zero values, duplicate keys (the first one is used) and keys already
// present in h are skipped. It returns the number of inserted entries.
func (h *Hypertrie[V]) InsertBatch(entries []Entry[V]) int {
	h.checkOpen()
	seen := make(map[string]struct{}, len(entries))
	changes := make([]change[V], 0, len(entries))
	for _, e := range entries {
		h.checkKey(len(e.Key))
		if isZero(e.Value) {
			continue
		}
		ks := keyString(e.Key)
		if _, ok := seen[ks]; ok {
			continue
		}
		seen[ks] = struct{}{}
		if h.Contains(e.Key) {
			continue
		}
		changes = append(changes, change[V]{key: slices.Clone(e.Key), value: e.Value})
	}
	h.apply(opInsert, changes)
	return len(changes)
}

// RemoveBatch removes entries for all given keys in a single diff/apply pass.
// Missing and duplicate keys are skipped. It returns the number of removed
// entries.
func (h *Hypertrie[V]) RemoveBatch(keys []Key) int {
	h.checkOpen()
	seen := make(map[string]struct{}, len(keys))
	changes := make([]change[V], 0, len(keys))
	for _, k := range keys {
		h.checkKey(len(k))
		ks := keyString(k)
		if _, ok := seen[ks]; ok {
			continue
		}
		seen[ks] = struct{}{}
		v := h.Get(k)
		if isZero(v) {
			continue
		}
		changes = append(changes, change[V]{key: slices.Clone(k), value: v})
	}
	h.apply(opRemove, changes)
	return len(changes)
}

func (h *Hypertrie[V]) apply(op changeOp, changes []change[V]) {
	if len(changes) == 0 {
		return
	}
	after := h.ctx.applyChanges(op, h.node.depth, h.node.id, changes)
	h.node = h.ctx.load(h.node.depth, after)
}

// Clone returns a new handle sharing the root node with h.
func (h *Hypertrie[V]) Clone() *Hypertrie[V] {
	h.checkOpen()
	h.ctx.addRef(h.node.depth, h.node.id, 1)
	return &Hypertrie[V]{View: h.View}
}

// AsView returns a read-only view of the current state of h. It's
// invalidated by subsequent modifications of the context.
func (h *Hypertrie[V]) AsView() *View[V] {
	v := h.View
	return &v
}

// Close releases the reference to the root node, nodes not referenced by
// anything else are deleted. Close is idempotent.
func (h *Hypertrie[V]) Close() {
	if h.closed {
		return
	}
	h.closed = true
	h.ctx.addRef(h.node.depth, h.node.id, -1)
	h.node = emptyContainer[V](h.node.depth)
}

func (h *Hypertrie[V]) checkOpen() {
	if h.closed {
		panic("bug: hypertrie is closed")
	}
}
