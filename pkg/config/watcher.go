package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the configuration file on change and hands the validated
// result to a callback. Reloads are debounced so editor write storms trigger
// a single reload, and a file that fails to parse or validate keeps the
// previous configuration in effect.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	mu      sync.Mutex
	running bool
}

// NewWatcher creates a Watcher for the given configuration file.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     path,
		watcher:  w,
		logger:   logger.With("component", "config.watcher"),
		debounce: 100 * time.Millisecond,
	}, nil
}

// Watch blocks until the context is cancelled, invoking onReload with each
// successfully reloaded configuration. Watching the parent directory rather
// than the file itself survives the rename-and-replace pattern editors and
// configuration management tools use.
func (w *Watcher) Watch(ctx context.Context, onReload func(*Config)) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %q: %w", dir, err)
	}
	w.logger.Info("watching configuration", "path", w.path)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
		w.watcher.Close()
	}()

	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-reload:
			cfg, err := Load(w.path)
			if err != nil {
				w.logger.Error("configuration reload rejected, keeping previous", "error", err)
				continue
			}
			w.logger.Info("configuration reloaded", "path", w.path)
			onReload(cfg)
		}
	}
}
