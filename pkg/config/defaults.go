package config

import "time"

// Default returns a fully populated default configuration.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every unset field of cfg with its default value.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = "127.0.0.1:8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Pipeline.VectorDim <= 0 {
		cfg.Pipeline.VectorDim = 5
	}
	if cfg.Pipeline.KeyCount <= 0 {
		cfg.Pipeline.KeyCount = 6
	}
	if len(cfg.Pipeline.DefaultMask) == 0 {
		cfg.Pipeline.DefaultMask = []float64{0.7, 0.4, 0.2, 0.0, 0.2}
	}
	if cfg.Pipeline.DampenThreshold <= 0 {
		cfg.Pipeline.DampenThreshold = 0.30
	}
	if cfg.Pipeline.ProjectThreshold <= 0 {
		cfg.Pipeline.ProjectThreshold = 0.70
	}
	if cfg.Pipeline.Gate.MaxActions <= 0 {
		cfg.Pipeline.Gate.MaxActions = 3
	}

	if cfg.Provider.Type == "" {
		cfg.Provider.Type = "echo"
	}

	if cfg.Audit.Enabled == nil {
		enabled := true
		cfg.Audit.Enabled = &enabled
	}
	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = "sqlite"
	}
	if cfg.Audit.Path == "" {
		cfg.Audit.Path = "data/audit.db"
	}
	if cfg.Audit.RetentionDays == 0 {
		cfg.Audit.RetentionDays = 30
	}
	if cfg.Audit.PruneSchedule == "" {
		cfg.Audit.PruneSchedule = "0 3 * * *"
	}

	if cfg.Limits.RequestsPerSecond <= 0 {
		cfg.Limits.RequestsPerSecond = 5
	}
	if cfg.Limits.Burst <= 0 {
		cfg.Limits.Burst = 10
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "text"
	}
	if cfg.Telemetry.Logging.RedactSecrets == nil {
		redact := true
		cfg.Telemetry.Logging.RedactSecrets = &redact
	}
	if cfg.Telemetry.Metrics.Enabled == nil {
		enabled := true
		cfg.Telemetry.Metrics.Enabled = &enabled
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = "callisto"
	}
}
