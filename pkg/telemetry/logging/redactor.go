package logging

import (
	"context"
	"log/slog"
	"regexp"
)

// Redactor strips credential-shaped substrings from log values.
type Redactor struct {
	patterns []*regexp.Regexp
}

// defaultRedactor covers the credential shapes this runtime is likely to see
// in request text and provider configuration: API keys, bearer tokens, and
// key=value style secrets.
func defaultRedactor() *Redactor {
	return &Redactor{
		patterns: []*regexp.Regexp{
			// OpenAI-style keys.
			regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{8,}\b`),
			// Bearer tokens in headers or pasted curl commands.
			regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/-]{8,}=*`),
			// key=value / key: value secret assignments.
			regexp.MustCompile(`(?i)\b(api[_-]?key|secret|token|password|credential)\b\s*[:=]\s*\S+`),
		},
	}
}

// Redact replaces every secret-shaped match in s with a placeholder.
func (r *Redactor) Redact(s string) string {
	for _, p := range r.patterns {
		s = p.ReplaceAllString(s, "[REDACTED]")
	}
	return s
}

// redactingHandler applies a Redactor to every string attribute and message
// before delegating to the wrapped handler.
type redactingHandler struct {
	inner    slog.Handler
	redactor *Redactor
}

func newRedactingHandler(inner slog.Handler, r *Redactor) slog.Handler {
	return &redactingHandler{inner: inner, redactor: r}
}

func (h *redactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *redactingHandler) Handle(ctx context.Context, rec slog.Record) error {
	out := slog.NewRecord(rec.Time, rec.Level, h.redactor.Redact(rec.Message), rec.PC)
	rec.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redactAttr(a))
		return true
	})
	return h.inner.Handle(ctx, out)
}

func (h *redactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redactAttr(a)
	}
	return &redactingHandler{inner: h.inner.WithAttrs(redacted), redactor: h.redactor}
}

func (h *redactingHandler) WithGroup(name string) slog.Handler {
	return &redactingHandler{inner: h.inner.WithGroup(name), redactor: h.redactor}
}

func (h *redactingHandler) redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, h.redactor.Redact(a.Value.String()))
	}
	return a
}
