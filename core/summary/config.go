package summary

import (
	"context"
	"fmt"
)

// Backend names accepted in Config.Backend.
const (
	BackendNone     = "none"
	BackendMemory   = "memory"
	BackendJSONL    = "jsonl"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config selects and configures the summary store.
type Config struct {
	Backend string `json:"backend"`
	// Path is the file used by the jsonl and sqlite backends.
	Path string `json:"path"`
	// DSN is the PostgreSQL connection string.
	DSN        string `json:"dsn"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = BackendNone
	}
	if c.Path == "" {
		switch c.Backend {
		case BackendJSONL:
			c.Path = "summaries.jsonl"
		case BackendSQLite:
			c.Path = "summaries.db"
		}
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 5
	}
	if c.MaxAgeDays == 0 {
		c.MaxAgeDays = 30
	}
}

// Validate checks the backend and its required fields.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendNone, BackendMemory:
	case BackendJSONL, BackendSQLite:
		if c.Path == "" {
			return fmt.Errorf("summary: %s backend requires a path", c.Backend)
		}
	case BackendPostgres:
		if c.DSN == "" {
			return fmt.Errorf("summary: postgres backend requires a dsn")
		}
	default:
		return fmt.Errorf("summary: unknown backend %q", c.Backend)
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("summary: rotation settings must be non-negative")
	}
	return nil
}

// Open creates the store selected by cfg. The none backend yields a
// MemoryStore so callers never deal with a nil store.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendNone, BackendMemory:
		return NewMemoryStore(), nil
	case BackendJSONL:
		return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	case BackendSQLite:
		return NewSQLiteStore(cfg.Path)
	case BackendPostgres:
		return NewPostgresStore(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("summary: unknown backend %q", cfg.Backend)
	}
}
