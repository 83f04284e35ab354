package gate

import "fmt"

// PolicyConfig controls which risk classes are explicitly permitted.
// The zero value is the default-deny posture: nothing is allowed.
type PolicyConfig struct {
	// AllowWrites permits plans that write or mutate state.
	AllowWrites bool `yaml:"allow_writes"`

	// AllowExternalSend permits plans that send data to external targets.
	AllowExternalSend bool `yaml:"allow_external_send"`

	// MaxActions is the plan size limit handed to the monitor.
	// Default: 3
	MaxActions int `yaml:"max_actions"`
}

// EvaluatePolicy converts risk flags into an allow/block decision. Every
// applicable reason is collected; nothing short-circuits, so the decision
// carries the complete set of grounds for a denial.
//
// sensitive_data blocks outright: this system has no human-in-the-loop
// channel, so a needs-review verdict would have nowhere to go.
func EvaluatePolicy(m *MonitorResult, cfg PolicyConfig) PolicyDecision {
	var reasons []string

	if m.Has(FlagExternalSend) && !cfg.AllowExternalSend {
		reasons = append(reasons, "External send is not allowed")
	}
	if (m.Has(FlagWritesState) || m.Has(FlagWriteAction)) && !cfg.AllowWrites {
		reasons = append(reasons, "Write/state changes are not allowed")
	}
	if m.Has(FlagTooManyActions) {
		reasons = append(reasons, "Too many actions without approval")
	}
	if m.Has(FlagSensitiveData) {
		reasons = append(reasons, "Sensitive data access requires human approval; no review channel is configured")
	}

	return PolicyDecision{
		Allow:   len(reasons) == 0,
		Reasons: reasons,
	}
}

// Evaluate runs the full planner/monitor/policy chain over the user text and
// returns a three-state verdict. Any panic in the chain is recovered and
// reported as a Faulted verdict carrying whatever telemetry was produced
// before the failure; the caller must treat Faulted as a denial.
func Evaluate(userText string, cfg PolicyConfig) (v Verdict) {
	defer func() {
		if r := recover(); r != nil {
			v.State = VerdictFaulted
			v.FaultKind = "panic"
			v.FaultMessage = fmt.Sprint(r)
		}
	}()

	v.Plan = PlanFromText(userText)
	v.Monitor = Monitor(v.Plan, cfg.MaxActions)

	decision := EvaluatePolicy(v.Monitor, cfg)
	v.Decision = &decision

	if decision.Allow {
		v.State = VerdictAllowed
	} else {
		v.State = VerdictBlocked
	}
	return v
}
