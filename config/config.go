package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/couriersim/core/dispatch"
	"github.com/kilianp07/couriersim/core/metrics"
	"github.com/kilianp07/couriersim/core/summary"
	"github.com/kilianp07/couriersim/infra/mqtt"
)

// EnvPrefix marks environment variables that override file settings.
// K_DISPATCH__PRICING__STANDARD=2.5 sets dispatch.pricing.standard.
const EnvPrefix = "K_"

type Config struct {
	Fleet    FleetConfig     `json:"fleet"`
	Dispatch dispatch.Config `json:"dispatch"`
	Metrics  metrics.Config  `json:"metrics"`
	Summary  summary.Config  `json:"summary"`
	Output   OutputConfig    `json:"output"`
	API      APIConfig       `json:"api"`
	MQTT     mqtt.Config     `json:"mqtt"`
	Sentry   SentryConfig    `json:"sentry"`
	Log      LogConfig       `json:"log"`
}

// Load reads the YAML or JSON file at path, applies K_ environment overrides,
// fills defaults and validates the result. An empty path loads defaults and
// environment overrides only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Fleet.SetDefaults()
	c.Dispatch.SetDefaults()
	c.Summary.SetDefaults()
	c.Output.SetDefaults()
	c.API.SetDefaults()
	c.MQTT.SetDefaults()
	c.Sentry.SetDefaults()
	c.Log.SetDefaults()
}

// Validate checks every section and reports the first failure.
func (c Config) Validate() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"fleet", c.Fleet.Validate},
		{"dispatch", c.Dispatch.Validate},
		{"summary", c.Summary.Validate},
		{"output", c.Output.Validate},
		{"api", c.API.Validate},
		{"mqtt", c.MQTT.Validate},
		{"sentry", c.Sentry.Validate},
		{"log", c.Log.Validate},
	}
	for _, ch := range checks {
		if err := ch.fn(); err != nil {
			return fmt.Errorf("config %s: %w", ch.name, err)
		}
	}
	return nil
}
