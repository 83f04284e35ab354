// Package logging provides the structured logger for the Callisto runtime.
//
// It wraps log/slog with level and format parsing (json, text, console) and
// optional secret redaction. Redaction matters here more than usual: the
// action planner exists to detect credential vocabulary in requests, so the
// runtime's own logs must not echo credential-shaped values back out.
package logging
