// Package infra holds the adapters that connect the dispatch core to the
// outside world: MQTT publishing, Prometheus and InfluxDB sinks, Sentry and
// zerolog. Sub-packages depend only on interfaces defined under core.
package infra
