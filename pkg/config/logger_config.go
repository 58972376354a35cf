package config

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// Logger contains logger configuration.
type Logger struct {
	LogEncoding string `yaml:"LogEncoding"`
	LogLevel    string `yaml:"LogLevel"`
	LogPath     string `yaml:"LogPath"`
}

// Validate returns an error if Logger configuration is not valid.
func (l Logger) Validate() error {
	if len(l.LogEncoding) > 0 && l.LogEncoding != "json" && l.LogEncoding != "console" {
		return fmt.Errorf("%w: invalid LogEncoding: %s", ErrInvalidConfig, l.LogEncoding)
	}
	if len(l.LogLevel) > 0 {
		if _, err := zapcore.ParseLevel(l.LogLevel); err != nil {
			return fmt.Errorf("%w: invalid LogLevel: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}
