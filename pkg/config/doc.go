// Package config defines the YAML configuration for the Callisto runtime.
//
// Configuration is loaded in three layers: file values, defaults for
// anything unset, then CALLISTO_* environment variable overrides. The final
// result is validated before use.
//
//	cfg, err := config.Load("config.yaml")
//
// A fsnotify-based Watcher can hot-reload the file and hand the re-validated
// configuration to a callback, so governor thresholds and gate allowances
// can be tuned without a restart.
package config
