package gate

// ActionType classifies a planned action.
type ActionType string

const (
	ActionRespond ActionType = "respond"
	ActionTool    ActionType = "tool"
	ActionRead    ActionType = "read"
	ActionWrite   ActionType = "write"
)

// PlannedAction is a single step in an action plan.
type PlannedAction struct {
	Type ActionType        `json:"type"`
	Name string            `json:"name"`
	Args map[string]string `json:"args,omitempty"`
}

// ActionPlan is the structured reading of what the user text asks to be
// done. Every plan contains at least one action: the planner always seeds a
// single "respond" action carrying the original text. Multi-step tool plans
// are not produced today; the action list exists to be extensible.
type ActionPlan struct {
	Intent  string          `json:"intent"`
	Actions []PlannedAction `json:"actions"`

	// TouchesSensitiveData is set when credential vocabulary appears.
	TouchesSensitiveData bool `json:"touches_sensitive_data"`

	// RequiresExternalSend is set when a send verb co-occurs with an
	// external target cue or a literal URL.
	RequiresExternalSend bool `json:"requires_external_send"`

	// WritesState is set when a write verb co-occurs with a state target.
	WritesState bool `json:"writes_state"`
}

// Risk flags derived from an action plan.
const (
	FlagExternalSend   = "external_send"
	FlagSensitiveData  = "sensitive_data"
	FlagWritesState    = "writes_state"
	FlagWriteAction    = "write_action"
	FlagTooManyActions = "too_many_actions"
)

// MonitorResult is the set of risk flags derived from a plan. Derivation is
// deterministic and carries no hidden state.
type MonitorResult struct {
	RiskFlags []string `json:"risk_flags"`
}

// Has reports whether the given flag is present.
func (m *MonitorResult) Has(flag string) bool {
	for _, f := range m.RiskFlags {
		if f == flag {
			return true
		}
	}
	return false
}

// PolicyDecision is the allow/block outcome with every applicable reason.
// Allow is true exactly when Reasons is empty.
type PolicyDecision struct {
	Allow   bool     `json:"allow"`
	Reasons []string `json:"reasons"`
}

// VerdictState is the outcome class of a full gate evaluation.
type VerdictState string

const (
	// VerdictAllowed means the chain ran cleanly and policy allowed.
	VerdictAllowed VerdictState = "allowed"

	// VerdictBlocked means the chain ran cleanly and policy denied.
	VerdictBlocked VerdictState = "blocked"

	// VerdictFaulted means a stage failed; callers must treat this as a
	// denial.
	VerdictFaulted VerdictState = "faulted"
)

// Verdict is the result of running the full planner/monitor/policy chain.
// Plan, Monitor, and Decision carry whatever telemetry was produced before
// the outcome was reached; on a fault they may be partially nil.
type Verdict struct {
	State    VerdictState    `json:"state"`
	Plan     *ActionPlan     `json:"plan,omitempty"`
	Monitor  *MonitorResult  `json:"monitor,omitempty"`
	Decision *PolicyDecision `json:"decision,omitempty"`

	// FaultKind and FaultMessage describe the failure when State is
	// VerdictFaulted.
	FaultKind    string `json:"fault_kind,omitempty"`
	FaultMessage string `json:"fault_message,omitempty"`
}
