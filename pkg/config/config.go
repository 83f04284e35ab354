package config

import (
	"time"

	"sentinel-hq/callisto/pkg/evidence"
	"sentinel-hq/callisto/pkg/gate"
	"sentinel-hq/callisto/pkg/providers"
)

// Config is the root configuration for the Callisto runtime.
type Config struct {
	// Server configures the HTTP evaluation surface.
	Server ServerConfig `yaml:"server"`

	// Pipeline configures the decision pipeline: governor thresholds,
	// vector geometry, the default mask, and the action-gate posture.
	Pipeline PipelineConfig `yaml:"pipeline"`

	// Provider selects and configures the answer provider.
	Provider ProviderConfig `yaml:"provider"`

	// Audit configures the run audit trail.
	Audit AuditConfig `yaml:"audit"`

	// Limits configures per-caller rate limiting.
	Limits LimitsConfig `yaml:"limits"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// ListenAddress is "host:port".
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout bounds reading the entire request.
	// Default: 15s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds writing the response.
	// Default: 60s (the provider call happens inside the handler)
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// PipelineConfig mirrors pipeline.Config plus the governor thresholds.
type PipelineConfig struct {
	// VectorDim is the carrier/key/value dimensionality.
	// Default: 5
	VectorDim int `yaml:"vector_dim"`

	// KeyCount is the number of attention key/value pairs.
	// Default: 6
	KeyCount int `yaml:"key_count"`

	// DefaultMask is applied when a request supplies none. Must have
	// VectorDim elements.
	// Default: [0.7, 0.4, 0.2, 0.0, 0.2]
	DefaultMask []float64 `yaml:"default_mask"`

	// DampenThreshold is the rho above which generation is damped.
	// Default: 0.30
	DampenThreshold float64 `yaml:"dampen_threshold"`

	// ProjectThreshold is the rho above which generation is suppressed.
	// Default: 0.70
	ProjectThreshold float64 `yaml:"project_threshold"`

	// EvidenceWeights overrides the evidence subscore blend; nil keeps the
	// standard blend. The four weights must be non-negative and sum to 1.
	EvidenceWeights *evidence.Weights `yaml:"evidence_weights"`

	// Gate is the action-gate policy posture. Defaults deny everything.
	Gate gate.PolicyConfig `yaml:"gate"`
}

// ProviderConfig selects the answer provider.
type ProviderConfig struct {
	// Type is "echo" or "openai".
	// Default: "echo"
	Type string `yaml:"type"`

	// OpenAI configures the openai provider when selected.
	OpenAI providers.OpenAIConfig `yaml:"openai"`
}

// AuditConfig configures the run audit trail.
type AuditConfig struct {
	// Enabled turns audit recording on.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Backend is "sqlite" or "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// Path is the SQLite database file.
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// RetentionDays is how long records are kept; zero disables pruning
	// by age.
	// Default: 30
	RetentionDays int `yaml:"retention_days"`

	// MaxRecords caps the number of stored records; zero disables the
	// cap.
	// Default: 0
	MaxRecords int `yaml:"max_records"`

	// PruneSchedule is a cron expression for retention pruning; empty
	// disables the scheduler.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// LimitsConfig configures per-caller rate limiting.
type LimitsConfig struct {
	// Enabled turns rate limiting on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// RequestsPerSecond is the sustained refill rate per caller.
	// Default: 5
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Burst is the bucket capacity per caller.
	// Default: 10
	Burst int `yaml:"burst"`

	// Path is the SQLite file persisting bucket state across restarts;
	// empty keeps buckets in memory only.
	Path string `yaml:"path"`
}

// TelemetryConfig configures observability.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is "debug", "info", "warn", or "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is "json", "text", or "console".
	// Default: "text"
	Format string `yaml:"format"`

	// RedactSecrets strips credential-shaped values from log output.
	// Default: true
	RedactSecrets *bool `yaml:"redact_secrets"`
}

// MetricsConfig configures the prometheus collector.
type MetricsConfig struct {
	// Enabled turns the /metrics endpoint on.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Namespace prefixes every metric name.
	// Default: "callisto"
	Namespace string `yaml:"namespace"`
}
