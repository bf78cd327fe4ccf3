// Package logging builds the service's zap logger
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the logger flavour and level
type Config struct {
	// Level is one of debug, info, warn, error. Empty keeps the flavour's default.
	Level string `mapstructure:"level"`

	// Development switches to the console encoder with stack traces on warnings
	Development bool `mapstructure:"development"`
}

// ParseLevel parses a level name
func ParseLevel(name string) (zapcore.Level, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(name)))); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// Build returns the logger described by cfg
func Build(cfg Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}

	if cfg.Level != "" {
		level, err := ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}

	return zc.Build()
}

// New is Build with a no-op fallback, for callers that must not fail on
// logging setup
func New(cfg Config) *zap.Logger {
	logger, err := Build(cfg)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
