package pipeline

import (
	"sentinel-hq/callisto/pkg/attention"
	"sentinel-hq/callisto/pkg/evidence"
	"sentinel-hq/callisto/pkg/gate"
	"sentinel-hq/callisto/pkg/governor"
)

// OutputState tags the terminal state of a run.
type OutputState string

const (
	// StateAnswered (K) means generation ran and produced output.
	StateAnswered OutputState = "K"

	// StateClarify (Q) means the governor projected an ambiguous request.
	StateClarify OutputState = "Q"

	// StateUnsupported (U) means the governor projected for lack of
	// evidence.
	StateUnsupported OutputState = "U"

	// StateBlocked means the action gate denied or faulted.
	StateBlocked OutputState = "BLOCKED"
)

// Request is a single pipeline invocation.
type Request struct {
	// UserText is the raw request text.
	UserText string `json:"user_text"`

	// Evidence is the ordered evidence items backing the request.
	Evidence []string `json:"evidence"`

	// Mask is the damping mask applied to the carrier vector. It must
	// match the configured vector dimension; nil selects the default
	// mask.
	Mask []float64 `json:"mask,omitempty"`

	// Seed drives the invocation-scoped random source. Identical
	// requests with identical seeds yield identical results.
	Seed int64 `json:"seed"`
}

// Decision summarizes the governance outcome of a run.
type Decision struct {
	Mode         governor.Mode         `json:"mode"`
	Damping      float64               `json:"damping"`
	ProjectState governor.ProjectState `json:"project_state,omitempty"`
}

// Metrics carries all intermediate telemetry of a run.
type Metrics struct {
	RhoEnergy float64 `json:"rho_energy"`
	RhoText   float64 `json:"rho_text"`
	RhoMask   float64 `json:"rho_mask"`

	Mask []float64 `json:"mask"`

	EvidenceScore evidence.Assessment `json:"evidence_score"`

	// Attention and Interference are nil when the mode is PROJECT.
	Attention    *attention.Result       `json:"attention,omitempty"`
	Interference *attention.Interference `json:"interference,omitempty"`

	ActionPlan      *gate.ActionPlan     `json:"action_plan,omitempty"`
	BehaviorMonitor *gate.MonitorResult  `json:"behavior_monitor,omitempty"`
	Policy          *gate.PolicyDecision `json:"policy,omitempty"`

	// GateFault records the kind and message of a gate failure that
	// forced a fail-closed block.
	GateFault string `json:"gate_fault,omitempty"`
}

// Output is the user-facing payload of a run. PROJECT and BLOCKED states
// always carry non-empty templated text and an explicit missing/reasons
// list; the pipeline never returns a silent failure.
type Output struct {
	State OutputState `json:"state"`
	Text  string      `json:"text"`

	// Citations is set for answered (K) runs.
	Citations []string `json:"citations,omitempty"`

	// Missing is set for PROJECT (Q/U) runs.
	Missing []string `json:"missing,omitempty"`

	// Policy is attached when the run was blocked by the action gate.
	Policy *gate.PolicyDecision `json:"policy,omitempty"`

	// Damping and Provider tag answered runs with the governance damping
	// and the identity of the answering provider.
	Damping  float64 `json:"damping,omitempty"`
	Provider string  `json:"provider,omitempty"`
}

// RunResult is the terminal artifact of one pipeline invocation. It is
// created once per run and never mutated afterwards.
type RunResult struct {
	Decision Decision `json:"decision"`
	Metrics  Metrics  `json:"metrics"`
	Output   Output   `json:"output"`
}
