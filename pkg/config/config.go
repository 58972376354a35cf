package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultMaxDepth is the default maximum depth of hypertries created
	// within a single context.
	DefaultMaxDepth = 5
	// MaxSupportedDepth is the largest supported hypertrie depth.
	MaxSupportedDepth = 8
	// DefaultBatchSize is the default number of entries inserted by a bulk
	// loader at once.
	DefaultBatchSize = 100_000
	// DefaultQueueSize is the default bulk loader queue capacity.
	DefaultQueueSize = 2 * DefaultBatchSize
	// DefaultSliceCacheSize is the default number of cached slice results.
	DefaultSliceCacheSize = 1024
)

// Version is the version of the hypertrie tool, set at build time.
var Version string

// ErrInvalidConfig is returned for configurations failing validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is a top-level configuration structure.
type Config struct {
	Hypertrie  Hypertrie    `yaml:"Hypertrie"`
	BulkLoad   BulkLoad     `yaml:"BulkLoad"`
	Logger     Logger       `yaml:"Logger"`
	Prometheus BasicService `yaml:"Prometheus"`
	Pprof      BasicService `yaml:"Pprof"`
}

// Default returns configuration with all defaults set.
func Default() Config {
	return Config{
		Hypertrie: Hypertrie{
			MaxDepth:       DefaultMaxDepth,
			SliceCacheSize: DefaultSliceCacheSize,
		},
		BulkLoad: BulkLoad{
			BatchSize: DefaultBatchSize,
			QueueSize: DefaultQueueSize,
		},
		Logger: Logger{
			LogLevel:    "info",
			LogEncoding: "console",
		},
	}
}

// LoadFile loads configuration from the given YAML file, fields missing from
// the file keep their default values.
func LoadFile(configPath string) (Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config '%s' doesn't exist", configPath)
	}
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}
	cfg, err := Unmarshal(configData)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load config '%s': %w", configPath, err)
	}
	return cfg, nil
}

// Unmarshal decodes YAML configuration over the defaults and validates it.
// Unknown fields are treated as errors.
func Unmarshal(data []byte) (Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if err := c.Hypertrie.Validate(); err != nil {
		return err
	}
	if err := c.BulkLoad.Validate(); err != nil {
		return err
	}
	if err := c.Prometheus.Validate("Prometheus"); err != nil {
		return err
	}
	if err := c.Pprof.Validate("Pprof"); err != nil {
		return err
	}
	return c.Logger.Validate()
}
