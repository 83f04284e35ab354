package config

import (
	"fmt"
	"math"
	"net"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for contradictions. It assumes defaults
// have already been applied.
func Validate(cfg *Config) error {
	if _, _, err := net.SplitHostPort(cfg.Server.ListenAddress); err != nil {
		return fmt.Errorf("server.listen_address %q: %w", cfg.Server.ListenAddress, err)
	}

	p := cfg.Pipeline
	if p.VectorDim <= 0 {
		return fmt.Errorf("pipeline.vector_dim must be positive, got %d", p.VectorDim)
	}
	if p.KeyCount <= 0 {
		return fmt.Errorf("pipeline.key_count must be positive, got %d", p.KeyCount)
	}
	if len(p.DefaultMask) != p.VectorDim {
		return fmt.Errorf("pipeline.default_mask has %d elements, want vector_dim=%d",
			len(p.DefaultMask), p.VectorDim)
	}
	for i, v := range p.DefaultMask {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("pipeline.default_mask[%d] is not finite", i)
		}
	}
	if p.DampenThreshold <= 0 || p.DampenThreshold >= 1 {
		return fmt.Errorf("pipeline.dampen_threshold must be in (0,1), got %v", p.DampenThreshold)
	}
	if p.ProjectThreshold <= 0 || p.ProjectThreshold > 1 {
		return fmt.Errorf("pipeline.project_threshold must be in (0,1], got %v", p.ProjectThreshold)
	}
	if p.DampenThreshold >= p.ProjectThreshold {
		return fmt.Errorf("pipeline.dampen_threshold %v must be below project_threshold %v",
			p.DampenThreshold, p.ProjectThreshold)
	}
	if w := p.EvidenceWeights; w != nil {
		if w.Relevance < 0 || w.Concreteness < 0 || w.Quantity < 0 || w.Length < 0 {
			return fmt.Errorf("pipeline.evidence_weights must not be negative")
		}
		sum := w.Relevance + w.Concreteness + w.Quantity + w.Length
		if math.Abs(sum-1.0) > 1e-9 {
			return fmt.Errorf("pipeline.evidence_weights must sum to 1.0, got %v", sum)
		}
	}

	switch cfg.Provider.Type {
	case "echo", "openai":
	default:
		return fmt.Errorf("provider.type %q is not one of echo, openai", cfg.Provider.Type)
	}

	switch cfg.Audit.Backend {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("audit.backend %q is not one of sqlite, memory", cfg.Audit.Backend)
	}
	if cfg.Audit.RetentionDays < 0 {
		return fmt.Errorf("audit.retention_days must not be negative, got %d", cfg.Audit.RetentionDays)
	}
	if cfg.Audit.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Audit.PruneSchedule); err != nil {
			return fmt.Errorf("audit.prune_schedule %q: %w", cfg.Audit.PruneSchedule, err)
		}
	}

	if cfg.Limits.RequestsPerSecond < 0 {
		return fmt.Errorf("limits.requests_per_second must not be negative, got %v", cfg.Limits.RequestsPerSecond)
	}
	if cfg.Limits.Burst < 0 {
		return fmt.Errorf("limits.burst must not be negative, got %d", cfg.Limits.Burst)
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("telemetry.logging.level %q is not one of debug, info, warn, error", cfg.Telemetry.Logging.Level)
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text", "console":
	default:
		return fmt.Errorf("telemetry.logging.format %q is not one of json, text, console", cfg.Telemetry.Logging.Format)
	}

	return nil
}
