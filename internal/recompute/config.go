// Package recompute coalesces change notifications into badge recomputations.
package recompute

import (
	"fmt"
	"time"
)

// Config defines the coordinator configuration.
type Config struct {
	// Coalesce is how long the coordinator waits for further requests
	// before computing. Zero computes on the first request.
	Coalesce time.Duration `yaml:"coalesce"`
}

// DefaultConfig returns the default coordinator configuration.
func DefaultConfig() *Config {
	return &Config{
		Coalesce: 50 * time.Millisecond,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Coalesce < 0 {
		return fmt.Errorf("coalesce must not be negative")
	}
	return nil
}
