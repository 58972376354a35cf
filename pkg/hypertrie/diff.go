package hypertrie

import (
	"encoding/binary"
	"fmt"

	"go.uber.org/zap"
)

// changeOp is a kind of change batch.
type changeOp byte

const (
	opInsert changeOp = iota
	opRemove
	opUpdate
)

// String implements fmt.Stringer.
func (op changeOp) String() string {
	switch op {
	case opInsert:
		return "insert"
	case opRemove:
		return "remove"
	case opUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// change is a single entry change. value is the inserted/removed value or
// the new one for updates, old is only used by updates.
type change[V Value] struct {
	key   Key
	value V
	old   V
}

// recipe describes how a node is created: by applying changes to before.
type recipe[V Value] struct {
	before  Identifier
	changes []change[V]
}

// levelPlan accumulates changes for a single depth.
type levelPlan[V Value] struct {
	refDelta map[Identifier]int
	recipes  map[Identifier]recipe[V]
	// order keeps recipe insertion order to make apply deterministic.
	order []Identifier
}

func newLevelPlan[V Value]() *levelPlan[V] {
	return &levelPlan[V]{
		refDelta: make(map[Identifier]int),
		recipes:  make(map[Identifier]recipe[V]),
	}
}

func (l *levelPlan[V]) addRef(id Identifier, delta int) {
	if id.IsEmpty() || id.IsInPlace() {
		return
	}
	l.refDelta[id] += delta
}

// addRecipe registers a way to create after. The first recipe wins, all of
// them produce the same content.
func (l *levelPlan[V]) addRecipe(after, before Identifier, changes []change[V]) {
	if after.IsEmpty() || after.IsInPlace() {
		return
	}
	if _, ok := l.recipes[after]; ok {
		return
	}
	l.recipes[after] = recipe[V]{before: before, changes: changes}
	l.order = append(l.order, after)
}

// plan is a multi-level change set processed from the top depth down.
type plan[V Value] struct {
	op     changeOp
	levels []*levelPlan[V]

	created int
	reused  int
	deleted int
}

func newPlan[V Value](op changeOp, depth int) *plan[V] {
	p := &plan[V]{op: op, levels: make([]*levelPlan[V], depth+1)}
	for d := 1; d <= depth; d++ {
		p.levels[d] = newLevelPlan[V]()
	}
	return p
}

// applyChanges applies a batch of changes of a single kind to the root node
// of the given depth, root reference is moved to the resulting node which
// identifier is returned. Changes must be valid for root: inserted keys must
// be absent, removed and updated ones present, all keys distinct.
func (c *Context[V]) applyChanges(op changeOp, depth int, root Identifier, changes []change[V]) Identifier {
	if len(changes) == 0 {
		return root
	}
	c.checkChanges(op, depth, root, changes)
	after := c.transition(op, depth, root, changes)
	p := newPlan[V](op, depth)
	top := p.levels[depth]
	top.addRef(root, -1)
	top.addRef(after, 1)
	if !c.storages[depth].Contains(after) {
		top.addRecipe(after, root, changes)
	}
	c.execute(p, depth)
	updateAppliedEntriesMetric(op, len(changes))
	c.log.Debug("changes applied",
		zap.Stringer("op", op),
		zap.Int("depth", depth),
		zap.Int("entries", len(changes)),
		zap.Stringer("before", root),
		zap.Stringer("after", after),
		zap.Int("created", p.created),
		zap.Int("reused", p.reused),
		zap.Int("deleted", p.deleted))
	return after
}

// checkChanges panics if changes can't be applied to root. Nothing is
// modified before it returns.
func (c *Context[V]) checkChanges(op changeOp, depth int, root Identifier, changes []change[V]) {
	n := c.load(depth, root)
	seen := make(map[string]struct{}, len(changes))
	for _, ch := range changes {
		ks := keyString(ch.key)
		if _, ok := seen[ks]; ok {
			panic(fmt.Sprintf("bug: duplicate %s of %s", op, ch.key))
		}
		seen[ks] = struct{}{}
		cur := c.get(n, ch.key)
		switch op {
		case opInsert:
			if !isZero(cur) {
				panic(fmt.Sprintf("bug: entry %s already exists", ch.key))
			}
			if isZero(ch.value) {
				panic(fmt.Sprintf("bug: inserting zero value for %s", ch.key))
			}
		case opRemove:
			if isZero(cur) || cur != ch.value {
				panic(fmt.Sprintf("bug: entry %s is missing", ch.key))
			}
		case opUpdate:
			if isZero(cur) || cur != ch.old || isZero(ch.value) {
				panic(fmt.Sprintf("bug: invalid update of %s", ch.key))
			}
		}
	}
}

// addRef changes reference count of a stored node and collects garbage.
func (c *Context[V]) addRef(depth int, id Identifier, delta int) {
	if id.IsEmpty() || id.IsInPlace() {
		return
	}
	p := newPlan[V](opInsert, depth)
	p.levels[depth].addRef(id, delta)
	c.execute(p, depth)
}

func (c *Context[V]) execute(p *plan[V], depth int) {
	for d := depth; d >= 1; d-- {
		c.applyLevel(p, d)
	}
}

// transition computes the identifier of the node obtained by applying changes
// to the node before (of the given depth).
func (c *Context[V]) transition(op changeOp, depth int, before Identifier, changes []change[V]) Identifier {
	n := c.load(depth, before)
	if op == opInsert && n.isSingle() {
		// Promotion of a single-entry node to a full one.
		added := make([]Entry[V], len(changes))
		for i, ch := range changes {
			added[i] = Entry[V]{Key: ch.key, Value: ch.value}
		}
		return Combine[V](before, EntrySetIdentifier(added))
	}
	size := n.size()
	raw := RawHash[V](before)
	switch op {
	case opInsert:
		for _, ch := range changes {
			raw = AddEntry(raw, ch.key, ch.value)
		}
		size += len(changes)
	case opRemove:
		for _, ch := range changes {
			raw = RemoveEntry(raw, ch.key, ch.value)
		}
		size -= len(changes)
	case opUpdate:
		for _, ch := range changes {
			raw = ChangeValue(raw, ch.key, ch.old, ch.value)
		}
	}
	if size < 0 {
		panic(fmt.Sprintf("bug: removing %d entries from %s of size %d", len(changes), before, n.size()))
	}
	var sole *Entry[V]
	if size == 1 && depth == 1 && isBool[V]() {
		e := c.soleEntry(op, n, changes)
		sole = &e
	}
	return tagIdentifier(raw, size, sole)
}

// soleEntry returns the only entry left after applying changes to n.
func (c *Context[V]) soleEntry(op changeOp, n container[V], changes []change[V]) Entry[V] {
	switch op {
	case opInsert:
		if !n.isEmpty() || len(changes) != 1 {
			panic("bug: insert can't produce a single entry here")
		}
		return Entry[V]{Key: changes[0].key, Value: changes[0].value}
	case opUpdate:
		if !n.isSingle() || len(changes) != 1 {
			panic("bug: update can't produce a single entry here")
		}
		return Entry[V]{Key: n.singleKey(), Value: changes[0].value}
	default:
		removed := make(map[string]struct{}, len(changes))
		for _, ch := range changes {
			removed[keyString(ch.key)] = struct{}{}
		}
		it := c.newRawIterator(n)
		for it.Next() {
			e := it.Entry()
			if _, ok := removed[keyString(e.Key)]; !ok {
				return e
			}
		}
		panic(fmt.Sprintf("bug: no entry left in %s after removal", n.id))
	}
}

// applyLevel creates, reuses and deletes nodes of depth d according to the
// plan and propagates changes of child references to depth d-1.
func (c *Context[V]) applyLevel(p *plan[V], d int) {
	var (
		lvl   = p.levels[d]
		st    = c.storages[d]
		child *levelPlan[V]
	)
	if d > 1 {
		child = p.levels[d-1]
	}

	// Pick full nodes that are going to lose all references and reuse each
	// one for (at most) one of the nodes created from it.
	reuseFor := make(map[Identifier]Identifier) // after -> before
	reused := make(map[Identifier]bool)
	for _, after := range lvl.order {
		r := lvl.recipes[after]
		if !after.IsFull() || !r.before.IsFull() || reused[r.before] {
			continue
		}
		bn := st.mustFull(r.before)
		if bn.ref+lvl.refDelta[r.before] == 0 {
			reuseFor[after] = r.before
			reused[r.before] = true
		}
	}

	// Copies go first, reused nodes are still in place at this moment.
	for _, after := range lvl.order {
		if _, ok := reuseFor[after]; ok {
			continue
		}
		r := lvl.recipes[after]
		if after.IsSingleEntry() {
			e := c.resultingSoleEntry(p.op, d, r)
			st.putSingle(after, newSingleEntryNode(e.Key, e.Value))
			p.created++
			continue
		}
		before := c.load(d, r.before)
		var n *FullNode[V]
		if before.full != nil {
			n = before.full.clone()
			c.mutateFull(p, n, r.changes, child, false)
		} else {
			entries := make([]Entry[V], 0, len(r.changes)+1)
			if before.isSingle() {
				entries = append(entries, Entry[V]{Key: before.singleKey(), Value: before.singleValue()})
			}
			for _, ch := range r.changes {
				entries = append(entries, Entry[V]{Key: ch.key, Value: ch.value})
			}
			n = c.buildFull(d, entries, child)
		}
		st.putFull(after, n)
		p.created++
	}
	for _, after := range lvl.order {
		before, ok := reuseFor[after]
		if !ok {
			continue
		}
		n := st.takeFull(before)
		n.ref = 0
		c.mutateFull(p, n, lvl.recipes[after].changes, child, true)
		st.putFull(after, n)
		p.reused++
		reusedNodes.Inc()
	}

	for id, delta := range lvl.refDelta {
		if delta == 0 || reused[id] {
			continue
		}
		if id.IsSingleEntry() {
			n := st.mustSingle(id)
			n.ref += delta
			if n.ref < 0 {
				panic(fmt.Sprintf("bug: negative reference count for %s at depth %d", id, d))
			}
			if n.ref == 0 {
				st.deleteSingle(id)
				p.deleted++
			}
			continue
		}
		n := st.mustFull(id)
		n.ref += delta
		if n.ref < 0 {
			panic(fmt.Sprintf("bug: negative reference count for %s at depth %d", id, d))
		}
		if n.ref == 0 {
			st.deleteFull(id)
			p.deleted++
			if child != nil {
				for pos := range n.edges {
					for _, ch := range n.edges[pos] {
						child.addRef(ch, -1)
					}
				}
			}
		}
	}
}

// resultingSoleEntry returns the entry of a single-entry node created by r.
func (c *Context[V]) resultingSoleEntry(op changeOp, d int, r recipe[V]) Entry[V] {
	return c.soleEntry(op, c.load(d, r.before), r.changes)
}

// mutateFull applies changes to n. If n is reused in place, only changed
// children references are adjusted, otherwise n is a fresh copy referencing
// all of its children anew.
func (c *Context[V]) mutateFull(p *plan[V], n *FullNode[V], changes []change[V], child *levelPlan[V], inPlace bool) {
	switch p.op {
	case opInsert:
		n.size += len(changes)
	case opRemove:
		n.size -= len(changes)
	}
	if n.depth == 1 {
		for _, ch := range changes {
			kp := ch.key[0]
			_, ok := n.leaves[kp]
			switch p.op {
			case opInsert:
				if ok {
					panic(fmt.Sprintf("bug: entry %s already exists", ch.key))
				}
				n.leaves[kp] = ch.value
			case opRemove:
				if !ok {
					panic(fmt.Sprintf("bug: entry %s is missing", ch.key))
				}
				delete(n.leaves, kp)
			case opUpdate:
				if !ok {
					panic(fmt.Sprintf("bug: entry %s is missing", ch.key))
				}
				n.leaves[kp] = ch.value
			}
		}
		return
	}
	childStorage := c.storages[n.depth-1]
	for pos := range n.edges {
		for kp, sub := range groupChanges(changes, pos) {
			oldChild, ok := n.edges[pos][kp]
			if !ok && p.op != opInsert {
				panic(fmt.Sprintf("bug: missing edge %d at position %d", kp, pos))
			}
			newChild := c.transition(p.op, n.depth-1, oldChild, sub)
			if !childStorage.Contains(newChild) {
				child.addRecipe(newChild, oldChild, sub)
			}
			if newChild.IsEmpty() {
				delete(n.edges[pos], kp)
			} else {
				n.edges[pos][kp] = newChild
			}
			if inPlace {
				child.addRef(oldChild, -1)
				child.addRef(newChild, 1)
			}
		}
	}
	if !inPlace {
		for pos := range n.edges {
			for _, ch := range n.edges[pos] {
				child.addRef(ch, 1)
			}
		}
	}
}

// buildFull creates a new full node of depth d from distinct entries.
func (c *Context[V]) buildFull(d int, entries []Entry[V], child *levelPlan[V]) *FullNode[V] {
	n := newFullNode[V](d)
	n.size = len(entries)
	if d == 1 {
		for _, e := range entries {
			n.leaves[e.Key[0]] = e.Value
		}
		return n
	}
	childStorage := c.storages[d-1]
	changes := make([]change[V], len(entries))
	for i, e := range entries {
		changes[i] = change[V]{key: e.Key, value: e.Value}
	}
	for pos := range n.edges {
		for kp, sub := range groupChanges(changes, pos) {
			subEntries := make([]Entry[V], len(sub))
			for i, ch := range sub {
				subEntries[i] = Entry[V]{Key: ch.key, Value: ch.value}
			}
			id := EntrySetIdentifier(subEntries)
			n.edges[pos][kp] = id
			child.addRef(id, 1)
			if !childStorage.Contains(id) {
				child.addRecipe(id, EmptyIdentifier, sub)
			}
		}
	}
	return n
}

// groupChanges groups changes by the key part at pos, keys of the grouped
// changes have pos removed.
func groupChanges[V Value](changes []change[V], pos int) map[KeyPart][]change[V] {
	res := make(map[KeyPart][]change[V])
	for _, ch := range changes {
		kp := ch.key[pos]
		res[kp] = append(res[kp], change[V]{key: ch.key.without(pos), value: ch.value, old: ch.old})
	}
	return res
}

// keyString returns compact binary representation of k usable as a map key.
func keyString(k Key) string {
	buf := make([]byte, 0, 8*len(k))
	for _, kp := range k {
		buf = binary.BigEndian.AppendUint64(buf, kp)
	}
	return string(buf)
}
