package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"sentinel-hq/callisto/pkg/audit"
	"sentinel-hq/callisto/pkg/config"
	"sentinel-hq/callisto/pkg/limits"
	"sentinel-hq/callisto/pkg/pipeline"
	"sentinel-hq/callisto/pkg/telemetry/metrics"
)

// Server is the HTTP evaluation surface around a pipeline.
type Server struct {
	config   *config.ServerConfig
	pipeline *pipeline.Pipeline
	logger   *slog.Logger

	// Optional collaborators; nil disables the concern.
	limiter   *limits.Limiter
	recorder  *audit.Recorder
	collector *metrics.Collector

	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Options carries the optional collaborators for New.
type Options struct {
	Limiter   *limits.Limiter
	Recorder  *audit.Recorder
	Collector *metrics.Collector
}

// New creates a server. The pipeline is required.
func New(cfg *config.ServerConfig, p *pipeline.Pipeline, logger *slog.Logger, opts Options) (*Server, error) {
	if p == nil {
		return nil, fmt.Errorf("server: pipeline is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:    cfg,
		pipeline:  p,
		logger:    logger.With("component", "server"),
		limiter:   opts.Limiter,
		recorder:  opts.Recorder,
		collector: opts.Collector,
	}, nil
}

// Start starts the HTTP server and blocks until the context is canceled, a
// shutdown signal arrives, or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully drains and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// UpdatePipeline swaps the pipeline used by subsequent requests. Requests
// already in flight keep the pipeline they started with.
func (s *Server) UpdatePipeline(p *pipeline.Pipeline) {
	if p == nil {
		return
	}
	s.mu.Lock()
	s.pipeline = p
	s.mu.Unlock()
}

// currentPipeline returns the pipeline for a new request.
func (s *Server) currentPipeline() *pipeline.Pipeline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pipeline
}

// IsRunning reports whether the server is accepting requests.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the routed and middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/evaluate", s.handleEvaluate)
	mux.HandleFunc("/healthz", s.handleHealthz)
	if s.collector != nil {
		mux.Handle("/metrics", s.collector.Handler())
	}

	var handler http.Handler = mux
	handler = loggingMiddleware(s.logger, handler)
	handler = requestIDMiddleware(handler)
	handler = recoveryMiddleware(s.logger, handler)
	return handler
}
