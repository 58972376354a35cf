package bulkload

import (
	"context"
	"sync"
	"testing"

	"github.com/nspcc-dev/hypertrie/internal/random"
	"github.com/nspcc-dev/hypertrie/pkg/config"
	"github.com/nspcc-dev/hypertrie/pkg/hypertrie"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTrie(t *testing.T, depth int) *hypertrie.Hypertrie[bool] {
	ctx, err := hypertrie.New[bool](config.Hypertrie{MaxDepth: depth}, zaptest.NewLogger(t))
	require.NoError(t, err)
	h, err := hypertrie.NewHypertrie(ctx, depth)
	require.NoError(t, err)
	return h
}

func TestNew(t *testing.T) {
	h := newTrie(t, 2)
	_, err := New(h, config.BulkLoad{BatchSize: 0}, nil, nil)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
	_, err = New[bool](nil, config.BulkLoad{BatchSize: 1}, nil, nil)
	require.Error(t, err)
}

func TestLoader(t *testing.T) {
	r := random.New(5)
	keys := random.Keys(r, 1000, 3, 20)
	h := newTrie(t, 3)

	var (
		lock    sync.Mutex
		applied []BatchStats
	)
	l, err := New(h, config.BulkLoad{BatchSize: 64, QueueSize: 16}, zaptest.NewLogger(t), func(bs BatchStats) {
		lock.Lock()
		applied = append(applied, bs)
		lock.Unlock()
	})
	require.NoError(t, err)

	// Every key is added twice by different producers.
	var wg sync.WaitGroup
	for p := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := p % 2; i < len(keys); i += 2 {
				if err := l.Add(context.Background(), hypertrie.Entry[bool]{Key: keys[i], Value: true}); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
	stats := l.Close()

	require.Equal(t, 2*len(keys), stats.Received)
	require.Equal(t, len(keys), stats.Inserted)
	require.Equal(t, (2*len(keys)+63)/64, stats.Batches)
	require.Equal(t, len(keys), h.Size())
	for _, k := range keys {
		require.True(t, h.Get(k))
	}
	require.Len(t, applied, stats.Batches)
	var inserted int
	for i, bs := range applied {
		require.Equal(t, i+1, bs.Number)
		require.LessOrEqual(t, bs.Received, 64)
		require.LessOrEqual(t, bs.Inserted, bs.Received)
		inserted += bs.Inserted
		require.Equal(t, inserted, bs.Size)
	}

	require.ErrorIs(t, l.Add(context.Background(), hypertrie.Entry[bool]{Key: keys[0], Value: true}), ErrClosed)
	require.Equal(t, stats, l.Close())
}

func TestLoader_Order(t *testing.T) {
	ctx, err := hypertrie.New[int64](config.Hypertrie{MaxDepth: 1}, nil)
	require.NoError(t, err)
	h, err := hypertrie.NewHypertrie(ctx, 1)
	require.NoError(t, err)

	l, err := New(h, config.BulkLoad{BatchSize: 3, QueueSize: 0}, nil, nil)
	require.NoError(t, err)
	for i := range 10 {
		require.NoError(t, l.Add(context.Background(), hypertrie.Entry[int64]{Key: hypertrie.Key{uint64(i % 4)}, Value: int64(i + 1)}))
	}
	stats := l.Close()
	require.Equal(t, 4, stats.Batches)
	require.Equal(t, 4, stats.Inserted)
	// The first entry for every key wins.
	for i := range 4 {
		require.EqualValues(t, i+1, h.Get(hypertrie.Key{uint64(i)}))
	}
}

func TestLoader_AddCanceled(t *testing.T) {
	h := newTrie(t, 1)
	block := make(chan struct{})
	l, err := New(h, config.BulkLoad{BatchSize: 1, QueueSize: 1}, nil, func(BatchStats) { <-block })
	require.NoError(t, err)

	require.NoError(t, l.Add(context.Background(), hypertrie.Entry[bool]{Key: hypertrie.Key{1}, Value: true}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var canceled bool
	// The worker is blocked in the callback, the queue fills up.
	for i := uint64(2); i < 10 && !canceled; i++ {
		err := l.Add(ctx, hypertrie.Entry[bool]{Key: hypertrie.Key{i}, Value: true})
		if err != nil {
			require.ErrorIs(t, err, context.Canceled)
			canceled = true
		}
	}
	require.True(t, canceled)
	close(block)
	stats := l.Close()
	require.Equal(t, stats.Inserted, h.Size())
}

func TestLoader_ReusedKeyBuffer(t *testing.T) {
	h := newTrie(t, 2)
	l, err := New(h, config.BulkLoad{BatchSize: 100, QueueSize: 100}, nil, nil)
	require.NoError(t, err)

	key := make(hypertrie.Key, 2)
	for i := range uint64(10) {
		key[0], key[1] = i+1, i+2
		require.NoError(t, l.Add(context.Background(), hypertrie.Entry[bool]{Key: key, Value: true}))
	}
	stats := l.Close()
	require.Equal(t, 10, stats.Inserted)
	for i := range uint64(10) {
		require.True(t, h.Get(hypertrie.Key{i + 1, i + 2}))
	}
}
