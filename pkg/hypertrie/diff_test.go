package hypertrie

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestHypertrie_InPlaceReuse(t *testing.T) {
	ctx := newTestContext[bool](t, 2)
	h := newTestTrie(t, ctx, 2)
	h.InsertBatch(boolEntries([][]uint64{{1, 1}, {1, 2}, {2, 1}}))

	t.Run("sole owner", func(t *testing.T) {
		root := h.node.full
		reused := testutil.ToFloat64(reusedNodes)
		before := h.Identifier()

		h.Set(Key{3, 3}, true)
		require.NotEqual(t, before, h.Identifier())
		require.Same(t, root, h.node.full)
		require.Greater(t, testutil.ToFloat64(reusedNodes), reused)
		_, ok := ctx.Storage(2).LookupFull(before)
		require.False(t, ok)
		checkConsistency(t, ctx, h)
	})
	t.Run("shared root", func(t *testing.T) {
		c := h.Clone()
		t.Cleanup(c.Close)
		root := h.node.full

		h.Set(Key{4, 4}, true)
		require.NotSame(t, root, h.node.full)
		require.Same(t, root, c.node.full)
		require.False(t, c.Contains(Key{4, 4}))
		require.True(t, h.Contains(Key{4, 4}))
		checkConsistency(t, ctx, h, c)
	})
}

func TestContext_InvalidChanges(t *testing.T) {
	ctx := newTestContext[bool](t, 2)
	h := newTestTrie(t, ctx, 2)
	h.InsertBatch(boolEntries([][]uint64{{1, 1}, {1, 2}, {2, 1}}))
	id, nodes := h.Identifier(), ctx.NodeCount()

	for name, tc := range map[string]struct {
		op      changeOp
		changes []change[bool]
	}{
		"insert present": {opInsert, []change[bool]{{key: Key{5, 5}, value: true}, {key: Key{1, 2}, value: true}}},
		"insert zero":    {opInsert, []change[bool]{{key: Key{5, 5}}}},
		"insert twice":   {opInsert, []change[bool]{{key: Key{5, 5}, value: true}, {key: Key{5, 5}, value: true}}},
		"remove missing": {opRemove, []change[bool]{{key: Key{1, 1}, value: true}, {key: Key{7, 7}, value: true}}},
		"remove twice":   {opRemove, []change[bool]{{key: Key{1, 1}, value: true}, {key: Key{1, 1}, value: true}}},
	} {
		t.Run(name, func(t *testing.T) {
			require.Panics(t, func() { ctx.applyChanges(tc.op, 2, h.Identifier(), tc.changes) })
			require.Equal(t, id, h.Identifier())
			require.Equal(t, nodes, ctx.NodeCount())
			checkConsistency(t, ctx, h)
		})
	}

	t.Run("update", func(t *testing.T) {
		sctx := newTestContext[int64](t, 1)
		s := newTestTrie(t, sctx, 1)
		s.Set(Key{1}, 5)
		s.Set(Key{2}, 6)
		sid := s.Identifier()
		require.Panics(t, func() {
			sctx.applyChanges(opUpdate, 1, sid, []change[int64]{{key: Key{1}, value: 7, old: 4}})
		})
		require.Panics(t, func() {
			sctx.applyChanges(opUpdate, 1, sid, []change[int64]{{key: Key{3}, value: 7, old: 1}})
		})
		require.Equal(t, sid, s.Identifier())
		require.EqualValues(t, 5, s.Get(Key{1}))
		checkConsistency(t, sctx, s)
	})
}

func TestTransition_Promotion(t *testing.T) {
	ctx := newTestContext[bool](t, 2)
	h := newTestTrie(t, ctx, 2)
	h.Set(Key{1, 2}, true)
	single := h.Identifier()
	require.True(t, single.IsSingleEntry())

	h.InsertBatch(boolEntries([][]uint64{{3, 4}, {5, 6}}))
	require.Equal(t, Combine[bool](single, EntrySetIdentifier(boolEntries([][]uint64{{3, 4}, {5, 6}}))), h.Identifier())
	require.Equal(t, EntrySetIdentifier(boolEntries([][]uint64{{1, 2}, {3, 4}, {5, 6}})), h.Identifier())
	checkConsistency(t, ctx, h)
}

func TestFullNode_MinCardPos(t *testing.T) {
	ctx := newTestContext[bool](t, 3)
	h := newTestTrie(t, ctx, 3)
	h.InsertBatch(boolEntries([][]uint64{{1, 1, 1}, {1, 2, 1}, {1, 3, 2}}))
	n := h.node.full
	require.Equal(t, []int{1, 3, 2}, h.Cards([]int{0, 1, 2}))
	require.Equal(t, 1, n.MinCardPos([]int{1, 0, 2}))
	require.Equal(t, 1, n.MinCardPos([]int{1, 2}))
	require.Equal(t, 0, n.MinCardPos([]int{1}))
}
