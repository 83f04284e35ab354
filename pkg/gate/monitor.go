package gate

// DefaultMaxActions is the plan size above which the monitor raises
// too_many_actions.
const DefaultMaxActions = 3

// Monitor derives risk flags from an action plan. The three plan booleans
// map one-to-one onto flags; "too_many_actions" fires when the plan exceeds
// maxActions steps (DefaultMaxActions when maxActions <= 0), and
// "write_action" fires when any planned action has type write.
func Monitor(plan *ActionPlan, maxActions int) *MonitorResult {
	if maxActions <= 0 {
		maxActions = DefaultMaxActions
	}

	var flags []string

	if plan.RequiresExternalSend {
		flags = append(flags, FlagExternalSend)
	}
	if plan.TouchesSensitiveData {
		flags = append(flags, FlagSensitiveData)
	}
	if plan.WritesState {
		flags = append(flags, FlagWritesState)
	}
	if len(plan.Actions) > maxActions {
		flags = append(flags, FlagTooManyActions)
	}
	for _, a := range plan.Actions {
		if a.Type == ActionWrite {
			flags = append(flags, FlagWriteAction)
			break
		}
	}

	return &MonitorResult{RiskFlags: flags}
}
