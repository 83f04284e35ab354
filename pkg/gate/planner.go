package gate

import (
	"regexp"
	"strings"
)

// Pattern rules for the planner. Intent extraction is intentionally shallow:
// a verb alone is not risky, only a verb paired with the matching target cue.
var (
	sensitiveRE = regexp.MustCompile(`(?i)\b(password|api\s*key|secret|token|credential)\b`)

	sendVerbRE = regexp.MustCompile(`(?i)\b(send|email|post|upload|publish|forward|share|exfiltrate|leak|webhook|http|https|request|call)\b`)

	externalTargetRE = regexp.MustCompile(`(?i)\b(external|server|endpoint|url|domain|third[-\s]*party|outside|remote)\b|https?://`)

	writeVerbRE = regexp.MustCompile(`(?i)\b(write|update|delete|modify|commit|save|insert|overwrite)\b`)

	writeTargetRE = regexp.MustCompile(`(?i)\b(database|db|table|record|row|file|disk|profile|repo|repository|git)\b`)
)

// PlanFromText extracts an action plan from the user text. The plan always
// contains exactly one "respond" action carrying the original text; the risk
// booleans are pure pattern matches over the request.
func PlanFromText(userText string) *ActionPlan {
	t := strings.TrimSpace(userText)

	return &ActionPlan{
		Intent: "respond",
		Actions: []PlannedAction{
			{
				Type: ActionRespond,
				Name: "respond_to_user",
				Args: map[string]string{"text": t},
			},
		},
		TouchesSensitiveData: sensitiveRE.MatchString(t),
		RequiresExternalSend: sendVerbRE.MatchString(t) && externalTargetRE.MatchString(t),
		WritesState:          writeVerbRE.MatchString(t) && writeTargetRE.MatchString(t),
	}
}
