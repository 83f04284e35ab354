// Package gate evaluates the risk of the requested action, independent of
// how confidently the request could be answered.
//
// Three stages run in sequence:
//
//	planner -> monitor -> policy
//
// The planner extracts a structured action plan from the user text with
// pattern rules (sensitive-data vocabulary, send verbs paired with external
// targets, write verbs paired with state targets). The monitor derives risk
// flags from the plan. The policy engine converts flags into an allow/block
// decision, collecting every applicable denial reason rather than stopping
// at the first.
//
// The chain fails closed: Evaluate converts any fault in the three stages
// into a Faulted verdict instead of letting it escape, and the caller treats
// Faulted exactly like Blocked. The three-state Verdict type makes that
// contract explicit rather than relying on blanket error interception.
package gate
