package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

// LogConfig defines settings for the application logger.
type LogConfig struct {
	// Level is one of zerolog's level names: debug, info, warn, error.
	Level string `json:"level"`
	// Format is "json" or "console". APP_ENV=dev forces console output.
	Format string `json:"format"`
}

// SetDefaults applies sane defaults.
func (c *LogConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
}

// Validate checks mandatory fields.
func (c LogConfig) Validate() error {
	if _, err := zerolog.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("invalid level %q: %w", c.Level, err)
	}
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("unknown format %s", c.Format)
	}
	return nil
}
