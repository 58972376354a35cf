package hypertrie

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/nspcc-dev/hypertrie/internal/random"
	"github.com/nspcc-dev/hypertrie/pkg/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestContext[V Value](t *testing.T, maxDepth int) *Context[V] {
	ctx, err := New[V](config.Hypertrie{MaxDepth: maxDepth, SliceCacheSize: 64}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return ctx
}

func newTestTrie[V Value](t *testing.T, ctx *Context[V], depth int) *Hypertrie[V] {
	h, err := NewHypertrie(ctx, depth)
	require.NoError(t, err)
	return h
}

func boolEntries(keys [][]uint64) []Entry[bool] {
	res := make([]Entry[bool], len(keys))
	for i, k := range keys {
		res[i] = Entry[bool]{Key: Key(k), Value: true}
	}
	return res
}

func randomBoolEntries(r *rand.Rand, n, depth int, maxPart uint64) []Entry[bool] {
	return boolEntries(random.Keys(r, n, depth, maxPart))
}

func sortEntries[V Value](es []Entry[V]) []Entry[V] {
	res := slices.Clone(es)
	slices.SortFunc(res, func(a, b Entry[V]) int { return a.Key.Compare(b.Key) })
	return res
}

// requireEntries checks that v contains exactly the expected entries.
func requireEntries[V Value](t *testing.T, expected []Entry[V], v *View[V]) {
	expected = sortEntries(expected)
	if len(expected) == 0 {
		expected = []Entry[V]{}
	}
	require.Equal(t, expected, v.Entries())
	require.Equal(t, len(expected), v.Size())
}

// checkConsistency verifies reference counts of all stored nodes against
// the number of parent edges and handles pointing to them. It also checks
// that every stored node is addressed by the hash of its entries.
func checkConsistency[V Value](t *testing.T, ctx *Context[V], handles ...*Hypertrie[V]) {
	expected := make([]map[Identifier]int, ctx.maxDepth+1)
	for d := range expected {
		expected[d] = make(map[Identifier]int)
	}
	for _, h := range handles {
		if h.closed || h.node.id.IsEmpty() || h.node.id.IsInPlace() {
			continue
		}
		expected[h.node.depth][h.node.id]++
	}
	for d := 2; d <= ctx.maxDepth; d++ {
		for _, n := range ctx.storages[d].full {
			for pos := range n.edges {
				for _, child := range n.edges[pos] {
					if !child.IsInPlace() {
						expected[d-1][child]++
					}
				}
			}
		}
	}
	for d := 1; d <= ctx.maxDepth; d++ {
		st := ctx.storages[d]
		require.Equal(t, len(expected[d]), st.Len(FullKind)+st.Len(SingleEntryKind), "depth %d", d)
		for id, n := range st.full {
			require.Equal(t, expected[d][id], n.ref, "full node %s at depth %d", id, d)
			require.True(t, id.IsFull())
			entries := (&View[V]{ctx: ctx, node: ctx.load(d, id)}).Entries()
			require.Equal(t, n.size, len(entries))
			require.Equal(t, id, EntrySetIdentifier(entries), "full node %s at depth %d", id, d)
			if d > 1 {
				for pos := range n.edges {
					var sum int
					for _, child := range n.edges[pos] {
						sum += ctx.load(d-1, child).size()
					}
					require.Equal(t, n.size, sum, "position %d of %s", pos, id)
				}
			}
		}
		for id, n := range st.single {
			require.Equal(t, expected[d][id], n.ref, "single-entry node %s at depth %d", id, d)
			require.False(t, id.IsInPlace())
			require.Equal(t, id, SingleEntryIdentifier(n.key, n.value))
		}
	}
}

// project returns key parts of k at positions not in fixed.
func project(k Key, fixed map[int]bool) Key {
	res := Key{}
	for i, kp := range k {
		if !fixed[i] {
			res = append(res, kp)
		}
	}
	return res
}
