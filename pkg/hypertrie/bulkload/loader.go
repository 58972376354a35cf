/*
Package bulkload provides a bulk loader for hypertries. It accepts entries
from any number of producers and inserts them into a single hypertrie in
batches using one worker goroutine.
*/
package bulkload

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/nspcc-dev/hypertrie/pkg/config"
	"github.com/nspcc-dev/hypertrie/pkg/hypertrie"
	"go.uber.org/zap"
)

// ErrClosed is returned by Add after the loader is closed.
var ErrClosed = errors.New("bulk loader is closed")

// BatchStats describes a single applied batch.
type BatchStats struct {
	// Number is the sequence number of the batch starting from 1.
	Number int
	// Received is the number of entries in the batch.
	Received int
	// Inserted is the number of entries actually inserted, duplicates,
	// zero values and entries already present are skipped.
	Inserted int
	// Size is the hypertrie size after the batch.
	Size     int
	Duration time.Duration
}

// Stats is a summary of all batches applied by the loader.
type Stats struct {
	Batches  int
	Received int
	Inserted int
	Duration time.Duration
}

// Callback is called by the worker after every applied batch.
type Callback func(BatchStats)

// Loader is a bounded producer/consumer queue around Hypertrie.InsertBatch.
// The hypertrie must not be used by anything else until the loader is
// closed.
type Loader[V hypertrie.Value] struct {
	trie      *hypertrie.Hypertrie[V]
	log       *zap.Logger
	batchSize int
	callback  Callback

	// lock protects closed and queue sends against concurrent Close.
	lock   sync.RWMutex
	closed bool
	queue  chan hypertrie.Entry[V]

	done  chan struct{}
	stats Stats
}

// New creates a loader for trie and starts its worker. callback can be nil.
func New[V hypertrie.Value](trie *hypertrie.Hypertrie[V], cfg config.BulkLoad, log *zap.Logger, callback Callback) (*Loader[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if trie == nil {
		return nil, errors.New("nil hypertrie")
	}
	if log == nil {
		log = zap.NewNop()
	}
	l := &Loader[V]{
		trie:      trie,
		log:       log.With(zap.String("service", "bulkload")),
		batchSize: cfg.BatchSize,
		callback:  callback,
		queue:     make(chan hypertrie.Entry[V], cfg.QueueSize),
		done:      make(chan struct{}),
	}
	go l.run()
	l.log.Info("bulk loader started",
		zap.Int("batch", cfg.BatchSize),
		zap.Int("queue", cfg.QueueSize))
	return l, nil
}

// Add queues an entry for insertion. It blocks while the queue is full and
// returns ctx error if ctx is done before the entry is queued. The key is
// copied, so the caller can reuse it.
func (l *Loader[V]) Add(ctx context.Context, e hypertrie.Entry[V]) error {
	e.Key = slices.Clone(e.Key)
	l.lock.RLock()
	defer l.lock.RUnlock()
	if l.closed {
		return ErrClosed
	}
	select {
	case l.queue <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes all queued entries, waits for the worker to finish and
// returns the summary. It's safe to call Close multiple times.
func (l *Loader[V]) Close() Stats {
	l.lock.Lock()
	if !l.closed {
		l.closed = true
		close(l.queue)
	}
	l.lock.Unlock()
	<-l.done
	return l.stats
}

func (l *Loader[V]) run() {
	defer close(l.done)
	start := time.Now()
	batch := make([]hypertrie.Entry[V], 0, l.batchSize)
	for e := range l.queue {
		batch = append(batch, e)
		if len(batch) == l.batchSize {
			l.flush(batch)
			batch = batch[:0]
		}
	}
	if len(batch) != 0 {
		l.flush(batch)
	}
	l.stats.Duration = time.Since(start)
	l.log.Info("bulk loader stopped",
		zap.Int("batches", l.stats.Batches),
		zap.Int("received", l.stats.Received),
		zap.Int("inserted", l.stats.Inserted),
		zap.Int("size", l.trie.Size()),
		zap.Duration("took", l.stats.Duration))
}

func (l *Loader[V]) flush(batch []hypertrie.Entry[V]) {
	start := time.Now()
	inserted := l.trie.InsertBatch(batch)
	l.stats.Batches++
	l.stats.Received += len(batch)
	l.stats.Inserted += inserted
	bs := BatchStats{
		Number:   l.stats.Batches,
		Received: len(batch),
		Inserted: inserted,
		Size:     l.trie.Size(),
		Duration: time.Since(start),
	}
	updateBatchMetrics(bs)
	l.log.Debug("batch applied",
		zap.Int("number", bs.Number),
		zap.Int("received", bs.Received),
		zap.Int("inserted", bs.Inserted),
		zap.Int("size", bs.Size),
		zap.Duration("took", bs.Duration))
	if l.callback != nil {
		l.callback(bs)
	}
}
