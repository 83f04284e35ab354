package providers

import "context"

// Answer is the provider's response to a governed generation request.
type Answer struct {
	// Text is the generated answer.
	Text string `json:"text"`

	// Citations lists the evidence items the answer is grounded on, in
	// the order cited.
	Citations []string `json:"citations"`

	// Meta carries optional provider-specific details (model, finish
	// reason, token counts).
	Meta map[string]string `json:"meta,omitempty"`
}

// Answerer is the external answer-producing capability. Implementations may
// be network-backed generators or deterministic offline stubs; the pipeline
// treats them interchangeably.
//
// Answer receives the user text, the evidence items, and the damping
// coefficient the governor selected (zero under FREE, the risk energy under
// DAMPEN). Implementations must respect context cancellation.
type Answerer interface {
	// Answer produces text plus citations for the request. It is never
	// called when the governance mode is PROJECT.
	Answer(ctx context.Context, userText string, evidence []string, damping float64) (*Answer, error)

	// Name identifies the implementation (e.g. "echo", "openai") for
	// output tagging and telemetry.
	Name() string
}
