package providers

import (
	"context"
	"fmt"
	"strings"
)

// Echo is a deterministic offline provider that restates the request and
// the supplied evidence. It generates nothing beyond its template, which
// makes it suitable for demos, tests, and air-gapped deployments.
type Echo struct{}

// NewEcho creates an Echo provider.
func NewEcho() *Echo {
	return &Echo{}
}

// Name implements Answerer.
func (e *Echo) Name() string { return "echo" }

// Answer implements Answerer. The output is a pure function of its inputs.
func (e *Echo) Answer(_ context.Context, userText string, evidence []string, damping float64) (*Answer, error) {
	mode := "FREE"
	if damping != 0 {
		mode = fmt.Sprintf("DAMPEN(damping=%.3f)", damping)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "- Governance mode: %s\n", mode)
	fmt.Fprintf(&b, "- User request: %s\n", userText)

	b.WriteString("- Evidence summary:\n")
	if len(evidence) > 0 {
		for i, item := range evidence {
			fmt.Fprintf(&b, "  [%d] %s\n", i+1, item)
		}
	} else {
		b.WriteString("  (none)\n")
	}

	b.WriteString("- Response:\n")
	if len(evidence) > 0 {
		b.WriteString("  Evidence is sufficient; returning a fuller response bounded by the evidence above.")
	} else {
		b.WriteString("  Evidence is missing; cannot answer beyond stating what is missing.")
	}

	return &Answer{
		Text:      b.String(),
		Citations: append([]string{}, evidence...),
	}, nil
}
