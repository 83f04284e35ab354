package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config configures the logger.
type Config struct {
	// Level is the minimum level: "debug", "info", "warn", "error".
	Level string

	// Format is the handler format: "json", "text", or "console".
	// Console is text without timestamps, for interactive use.
	Format string

	// RedactSecrets wraps the handler with secret redaction.
	RedactSecrets bool

	// Writer is the output destination. Defaults to os.Stderr.
	Writer io.Writer
}

// New builds a *slog.Logger from the configuration.
func New(cfg Config) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text", "":
		handler = slog.NewTextHandler(w, opts)
	case "console":
		consoleOpts := &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey && len(groups) == 0 {
					return slog.Attr{}
				}
				return a
			},
		}
		handler = slog.NewTextHandler(w, consoleOpts)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	if cfg.RedactSecrets {
		handler = newRedactingHandler(handler, defaultRedactor())
	}

	return slog.New(handler), nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
