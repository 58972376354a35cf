/*
Package hypertrie implements content-addressed depth-bounded tries storing
sparse relations of fixed arity. Nodes are deduplicated by content hash within
a Context and reclaimed by reference counting.
*/
package hypertrie

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/nspcc-dev/hypertrie/pkg/config"
	"go.uber.org/zap"
)

// ErrInvalidDepth is returned when a hypertrie depth is not supported by the
// context.
var ErrInvalidDepth = errors.New("invalid hypertrie depth")

// Context owns node storages of all depths. Hypertries sharing a context
// share equal subtries. Context is not safe for concurrent modification, but
// can be read concurrently while no writer is active.
type Context[V Value] struct {
	log      *zap.Logger
	maxDepth int
	storages []*NodeStorage[V]

	// sliceCache maps sliceCacheKey to the resulting Identifier.
	sliceCache *lru.Cache
}

type sliceCacheKey struct {
	depth int
	id    Identifier
	key   string
}

// New creates a new context for hypertries of depths up to cfg.MaxDepth.
func New[V Value](cfg config.Hypertrie, log *zap.Logger) (*Context[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	c := &Context[V]{
		log:      log,
		maxDepth: cfg.MaxDepth,
		storages: make([]*NodeStorage[V], cfg.MaxDepth+1),
	}
	for d := 1; d <= cfg.MaxDepth; d++ {
		c.storages[d] = newNodeStorage[V](d)
	}
	if cfg.SliceCacheSize > 0 {
		c.sliceCache, _ = lru.New(cfg.SliceCacheSize) // Never errors for positive size.
	}
	return c, nil
}

// MaxDepth returns the maximum depth supported by c.
func (c *Context[V]) MaxDepth() int {
	return c.maxDepth
}

// Storage returns node storage of the given depth.
func (c *Context[V]) Storage(depth int) *NodeStorage[V] {
	c.checkDepth(depth)
	return c.storages[depth]
}

// NodeCount returns the total number of stored nodes.
func (c *Context[V]) NodeCount() int {
	var n int
	for d := 1; d <= c.maxDepth; d++ {
		n += c.storages[d].Len(FullKind) + c.storages[d].Len(SingleEntryKind)
	}
	return n
}

func (c *Context[V]) validateDepth(depth int) error {
	if depth < 1 || depth > c.maxDepth {
		return fmt.Errorf("%w: %d is out of [1, %d] range", ErrInvalidDepth, depth, c.maxDepth)
	}
	return nil
}

func (c *Context[V]) checkDepth(depth int) {
	if err := c.validateDepth(depth); err != nil {
		panic(err)
	}
}

// container is a resolved node reference. Exactly one of full and single is
// set for non-empty non-in-place identifiers. single may point to an
// unmanaged node that is not registered in storage.
type container[V Value] struct {
	depth  int
	id     Identifier
	full   *FullNode[V]
	single *SingleEntryNode[V]
}

func emptyContainer[V Value](depth int) container[V] {
	return container[V]{depth: depth}
}

// load resolves id of the given depth into a container. Stale identifiers
// are contract violations.
func (c *Context[V]) load(depth int, id Identifier) container[V] {
	res := container[V]{depth: depth, id: id}
	switch {
	case id.IsEmpty(), id.IsInPlace():
	case id.IsSingleEntry():
		res.single = c.storages[depth].mustSingle(id)
	default:
		res.full = c.storages[depth].mustFull(id)
	}
	return res
}

// singleContainer returns a container for the only entry (key, v), it's
// either in-place or an unmanaged single-entry node.
func singleContainer[V Value](key Key, v V) container[V] {
	id := SingleEntryIdentifier(key, v)
	res := container[V]{depth: len(key), id: id}
	if !id.IsInPlace() {
		res.single = newSingleEntryNode(key, v)
	}
	return res
}

func (n container[V]) isEmpty() bool {
	return n.id.IsEmpty()
}

func (n container[V]) isSingle() bool {
	return n.id.IsSingleEntry()
}

// managed reports whether n refers to a stored node (or needs no storage).
func (n container[V]) managed(c *Context[V]) bool {
	if n.id.IsEmpty() || n.id.IsInPlace() {
		return true
	}
	if n.full != nil {
		return true
	}
	stored, ok := c.storages[n.depth].LookupSingle(n.id)
	return ok && stored == n.single
}

func (n container[V]) size() int {
	switch {
	case n.isEmpty():
		return 0
	case n.isSingle():
		return 1
	default:
		return n.full.size
	}
}

// singleKey returns the key of a single-entry container.
func (n container[V]) singleKey() Key {
	if n.id.IsInPlace() {
		return Key{n.id.InPlaceKeyPart()}
	}
	return n.single.key
}

// singleValue returns the value of a single-entry container.
func (n container[V]) singleValue() V {
	if n.id.IsInPlace() {
		return trueValue[V]()
	}
	return n.single.value
}

func (n container[V]) cards(positions []int) []int {
	res := make([]int, len(positions))
	for i, p := range positions {
		if p < 0 || p >= n.depth {
			panic(fmt.Sprintf("bug: position %d is out of depth %d", p, n.depth))
		}
		switch {
		case n.isEmpty():
		case n.isSingle():
			res[i] = 1
		default:
			res[i] = n.full.Card(p)
		}
	}
	return res
}
