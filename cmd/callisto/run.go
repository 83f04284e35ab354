package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sentinel-hq/callisto/pkg/audit"
	"sentinel-hq/callisto/pkg/config"
	"sentinel-hq/callisto/pkg/limits"
	"sentinel-hq/callisto/pkg/pipeline"
	"sentinel-hq/callisto/pkg/providers"
	"sentinel-hq/callisto/pkg/server"
	"sentinel-hq/callisto/pkg/telemetry/logging"
	"sentinel-hq/callisto/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	noWatch       bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Callisto gateway",
	Long: `Start the Callisto gateway with the specified configuration.

The server listens on the configured address and evaluates requests
through the evidence gate, the risk governor, and the action gate.
Configuration changes are picked up without a restart unless --no-watch
is given.

Examples:
  # Start with default config
  callisto run

  # Start with custom config
  callisto run --config /etc/callisto/config.yaml

  # Override listen address
  callisto run --listen 0.0.0.0:8080`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.noWatch, "no-watch", false, "disable configuration hot reload")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:         cfg.Telemetry.Logging.Level,
		Format:        cfg.Telemetry.Logging.Format,
		RedactSecrets: cfg.Telemetry.Logging.RedactSecrets == nil || *cfg.Telemetry.Logging.RedactSecrets,
	})
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Answer provider.
	answerer, err := buildProvider(cfg)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Provider initialized (%s)\n", answerer.Name())

	p, err := buildPipeline(cfg, answerer, logger)
	if err != nil {
		return err
	}

	// Metrics.
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled == nil || *cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Telemetry.Metrics.Namespace)
	}

	// Audit trail.
	var recorder *audit.Recorder
	if cfg.Audit.Enabled == nil || *cfg.Audit.Enabled {
		storage, err := buildAuditStorage(cfg, logger)
		if err != nil {
			return err
		}
		defer storage.Close()
		recorder = audit.NewRecorder(storage, logger)

		pruner := audit.NewPruner(storage, &audit.RetentionConfig{
			RetentionDays: cfg.Audit.RetentionDays,
			MaxRecords:    int64(cfg.Audit.MaxRecords),
			PruneSchedule: cfg.Audit.PruneSchedule,
		}, logger)
		if err := pruner.Start(ctx); err != nil {
			slog.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer pruner.Stop()
		}
		fmt.Printf("✓ Audit trail initialized (%s)\n", cfg.Audit.Backend)
	}

	// Rate limits.
	var limiter *limits.Limiter
	if cfg.Limits.Enabled {
		var store limits.Store
		if cfg.Limits.Path != "" {
			store, err = limits.NewSQLiteStore(cfg.Limits.Path)
			if err != nil {
				return fmt.Errorf("failed to open limits store: %w", err)
			}
		}
		limiter, err = limits.NewLimiter(int64(cfg.Limits.Burst), cfg.Limits.RequestsPerSecond, store, logger)
		if err != nil {
			return fmt.Errorf("failed to build rate limiter: %w", err)
		}
		defer limiter.Close()
		fmt.Printf("✓ Rate limiting enabled (%.1f req/s, burst %d)\n",
			cfg.Limits.RequestsPerSecond, cfg.Limits.Burst)
	}

	srv, err := server.New(&cfg.Server, p, logger, server.Options{
		Limiter:   limiter,
		Recorder:  recorder,
		Collector: collector,
	})
	if err != nil {
		return err
	}

	// Hot reload: rebuild the pipeline on config change. Server, audit,
	// and limits settings require a restart.
	if !runFlags.noWatch && configFileExists() {
		watcher, err := config.NewWatcher(cfgFile, logger)
		if err != nil {
			slog.Warn("config watcher unavailable", "error", err)
		} else {
			go func() {
				err := watcher.Watch(ctx, func(next *config.Config) {
					answerer, err := buildProvider(next)
					if err != nil {
						slog.Error("reload rejected: provider", "error", err)
						return
					}
					p, err := buildPipeline(next, answerer, logger)
					if err != nil {
						slog.Error("reload rejected: pipeline", "error", err)
						return
					}
					srv.UpdatePipeline(p)
				})
				if err != nil && !errors.Is(err, context.Canceled) {
					slog.Warn("config watcher stopped", "error", err)
				}
			}()
		}
	}

	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Evaluate endpoint: http://%s/v1/evaluate\n", cfg.Server.ListenAddress)
	if collector != nil {
		fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", cfg.Server.ListenAddress)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	return srv.Start(ctx)
}

// loadConfig loads the configured file, falling back to defaults when the
// default file path does not exist. An explicitly given file must exist.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err == nil {
		fmt.Printf("✓ Configuration loaded from %s\n", cfgFile)
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) && cfgFile == "config.yaml" {
		fmt.Println("✓ No config file found, using defaults")
		return config.Default(), nil
	}
	return nil, err
}

func configFileExists() bool {
	_, err := os.Stat(cfgFile)
	return err == nil
}

func buildProvider(cfg *config.Config) (providers.Answerer, error) {
	switch cfg.Provider.Type {
	case "echo", "":
		return providers.NewEcho(), nil
	case "openai":
		return providers.NewOpenAI(cfg.Provider.OpenAI), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", cfg.Provider.Type)
	}
}

func buildPipeline(cfg *config.Config, answerer providers.Answerer, logger *slog.Logger) (*pipeline.Pipeline, error) {
	return pipeline.New(pipeline.Config{
		VectorDim:        cfg.Pipeline.VectorDim,
		KeyCount:         cfg.Pipeline.KeyCount,
		DefaultMask:      cfg.Pipeline.DefaultMask,
		DampenThreshold:  cfg.Pipeline.DampenThreshold,
		ProjectThreshold: cfg.Pipeline.ProjectThreshold,
		EvidenceWeights:  cfg.Pipeline.EvidenceWeights,
		Gate:             cfg.Pipeline.Gate,
	}, answerer, logger)
}

func buildAuditStorage(cfg *config.Config, logger *slog.Logger) (audit.Storage, error) {
	switch cfg.Audit.Backend {
	case "sqlite":
		if dir := filepath.Dir(cfg.Audit.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create audit directory: %w", err)
			}
		}
		sqliteCfg := audit.DefaultSQLiteConfig()
		sqliteCfg.Path = cfg.Audit.Path
		return audit.NewSQLiteStorage(sqliteCfg, logger)
	case "memory":
		return audit.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported audit backend: %s", cfg.Audit.Backend)
	}
}
