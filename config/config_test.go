package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/couriersim/core/model"
)

//nolint:gocyclo
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `fleet:
  couriers:
    - name: "Anne"
      vehicle: "Moped"
      speed: 32
    - name: "Sue"
      vehicle: "Bicycle"
      speed: 4
      max_distance: 23
dispatch:
  pricing:
    standard: 2.5
    priority: 4
metrics:
  sinks:
    - type: "nop"
  listen_addr: ":9100"
summary:
  backend: "sqlite"
  path: "out/summaries.db"
output:
  dir: "out"
  csv: true
mqtt:
  enabled: true
  broker: "tcp://broker:1883"
  client_id: "cli"
  qos: 1
log:
  level: "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"couriers", len(cfg.Fleet.Couriers), 2},
		{"bicycle cap", cfg.Fleet.Couriers[1].MaxDistance, 23.0},
		{"standard", cfg.Dispatch.Pricing.Standard, 2.5},
		{"priority", cfg.Dispatch.Pricing.Priority, 4.0},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"listen_addr", cfg.Metrics.ListenAddr, ":9100"},
		{"summary.backend", cfg.Summary.Backend, "sqlite"},
		{"summary.max_backups", cfg.Summary.MaxBackups, 5},
		{"output.dir", cfg.Output.Dir, "out"},
		{"output.csv", cfg.Output.CSV, true},
		{"broker", cfg.MQTT.Broker, "tcp://broker:1883"},
		{"qos", cfg.MQTT.QoS, byte(1)},
		{"topic_prefix", cfg.MQTT.TopicPrefix, "couriersim"},
		{"log.level", cfg.Log.Level, "debug"},
		{"log.format", cfg.Log.Format, "json"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadJSONWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"dispatch":{"pricing":{"standard":1,"priority":2}},"output":{"dir":"x"}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	t.Setenv("K_DISPATCH__PRICING__PRIORITY", "5")
	t.Setenv("K_LOG__LEVEL", "warn")
	t.Setenv("K_API__TOKEN", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.Dispatch.Pricing.Standard)
	assert.Equal(t, 5.0, cfg.Dispatch.Pricing.Priority)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "x", cfg.Output.Dir)
	assert.Equal(t, "secret", cfg.API.Token)
	assert.Equal(t, ":8080", cfg.API.ListenAddr)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Len(t, cfg.Fleet.Couriers, 8)
	assert.Equal(t, 2.0, cfg.Dispatch.Pricing.Standard)
	assert.Equal(t, 3.0, cfg.Dispatch.Pricing.Priority)
	assert.Equal(t, "none", cfg.Summary.Backend)
	assert.Equal(t, ".", cfg.Output.Dir)
	assert.False(t, cfg.MQTT.Enabled)
	assert.Equal(t, cfg, Default())
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]string{
		"bad.toml":      "",
		"vehicle.yaml":  "fleet:\n  couriers:\n    - {name: A, vehicle: Truck, speed: 10}\n",
		"speed.yaml":    "fleet:\n  couriers:\n    - {name: A, vehicle: Moped, speed: 0}\n",
		"dup.yaml":      "fleet:\n  couriers:\n    - {name: A, vehicle: Moped, speed: 1}\n    - {name: A, vehicle: Moped, speed: 2}\n",
		"backend.yaml":  "summary:\n  backend: redis\n",
		"level.yaml":    "log:\n  level: loud\n",
		"pricing.yaml":  "dispatch:\n  pricing:\n    standard: -1\n    priority: 3\n",
		"sentry.yaml":   "sentry:\n  traces_sample_rate: 2\n",
		"postgres.yaml": "summary:\n  backend: postgres\n",
	}
	dir := t.TempDir()
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestFleetBuild(t *testing.T) {
	f := FleetConfig{Couriers: DefaultFleet()}
	pool, err := f.Build()
	require.NoError(t, err)
	require.Len(t, pool, 8)
	assert.Equal(t, "Anne", pool[0].Name)
	assert.False(t, pool[0].Cap.IsBounded())
	assert.Equal(t, model.VehicleBicycle, pool[7].Vehicle)
	assert.Equal(t, 21.0, pool[7].Cap.Limit())
}
