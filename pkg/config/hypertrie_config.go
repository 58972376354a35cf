package config

import "fmt"

// Hypertrie contains hypertrie context settings.
type Hypertrie struct {
	// MaxDepth is the maximum depth of hypertries managed by a context.
	MaxDepth int `yaml:"MaxDepth"`
	// SliceCacheSize is the number of slice results cached by a context,
	// zero disables the cache.
	SliceCacheSize int `yaml:"SliceCacheSize"`
}

// Validate checks Hypertrie settings for consistency.
func (h Hypertrie) Validate() error {
	if h.MaxDepth < 1 || h.MaxDepth > MaxSupportedDepth {
		return fmt.Errorf("%w: MaxDepth %d is out of [1, %d] range", ErrInvalidConfig, h.MaxDepth, MaxSupportedDepth)
	}
	if h.SliceCacheSize < 0 {
		return fmt.Errorf("%w: negative SliceCacheSize", ErrInvalidConfig)
	}
	return nil
}

// BulkLoad contains bulk loader settings.
type BulkLoad struct {
	// BatchSize is the number of entries collected before they're inserted.
	BatchSize int `yaml:"BatchSize"`
	// QueueSize is the capacity of the producer queue, producers block
	// when it's full.
	QueueSize int `yaml:"QueueSize"`
}

// Validate checks BulkLoad settings for consistency.
func (b BulkLoad) Validate() error {
	if b.BatchSize <= 0 {
		return fmt.Errorf("%w: BatchSize must be positive", ErrInvalidConfig)
	}
	if b.QueueSize < 0 {
		return fmt.Errorf("%w: negative QueueSize", ErrInvalidConfig)
	}
	return nil
}
