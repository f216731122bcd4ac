package config

import "fmt"

// OutputConfig controls the files written by a run.
type OutputConfig struct {
	// Dir receives the per-day .dat files and the run exports.
	Dir string `json:"dir"`
	// DisableDAT skips the per-day .dat files.
	DisableDAT bool `json:"disable_dat"`
	CSV        bool `json:"csv"`
	JSON       bool `json:"json"`
	Chart      bool `json:"chart"`
}

// SetDefaults writes into the working directory.
func (c *OutputConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "."
	}
}

// Validate checks mandatory fields.
func (c OutputConfig) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("dir is required")
	}
	return nil
}
