package config

import "time"

// DBCfg configures the resident-set byte budget and telemetry cadence.
// SizeBytes is the hard cap on resident footprint (the spec's max_bytes);
// zero disables the cache entirely.
type DBCfg struct {
	SizeBytes              int64         `yaml:"size"`
	IsTelemetryLogsEnabled bool          `yaml:"stat_logs_enabled"`
	TelemetryLogsInterval  time.Duration `yaml:"telemetry_interval"`
}
