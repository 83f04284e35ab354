package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a YAML file, applies defaults and CALLISTO_*
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read configuration file %q: %w", path, err)
	}
	return Parse(data)
}

// Parse builds configuration from raw YAML bytes, applying defaults,
// environment overrides, and validation.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// applyEnvOverrides applies CALLISTO_SECTION_FIELD environment variables on
// top of the file configuration. Environment always wins.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CALLISTO_SERVER_LISTEN_ADDRESS"); v != "" {
		cfg.Server.ListenAddress = v
	}
	if v := os.Getenv("CALLISTO_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("CALLISTO_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	if v := os.Getenv("CALLISTO_PIPELINE_DAMPEN_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Pipeline.DampenThreshold = f
		}
	}
	if v := os.Getenv("CALLISTO_PIPELINE_PROJECT_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Pipeline.ProjectThreshold = f
		}
	}
	if v := os.Getenv("CALLISTO_GATE_ALLOW_WRITES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Pipeline.Gate.AllowWrites = b
		}
	}
	if v := os.Getenv("CALLISTO_GATE_ALLOW_EXTERNAL_SEND"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Pipeline.Gate.AllowExternalSend = b
		}
	}

	if v := os.Getenv("CALLISTO_PROVIDER_TYPE"); v != "" {
		cfg.Provider.Type = v
	}
	if v := os.Getenv("CALLISTO_AUDIT_PATH"); v != "" {
		cfg.Audit.Path = v
	}
	if v := os.Getenv("CALLISTO_LOGGING_LEVEL"); v != "" {
		cfg.Telemetry.Logging.Level = v
	}
	if v := os.Getenv("CALLISTO_LOGGING_FORMAT"); v != "" {
		cfg.Telemetry.Logging.Format = v
	}
}
