package governor

import (
	"regexp"
	"strings"
)

// Mode is the governance operating mode for a single invocation.
type Mode string

const (
	// ModeFree permits unrestricted generation.
	ModeFree Mode = "FREE"

	// ModeDampen permits generation with attention damping applied.
	ModeDampen Mode = "DAMPEN"

	// ModeProject suppresses generation entirely and returns a fixed
	// templated response.
	ModeProject Mode = "PROJECT"
)

// ProjectState is the PROJECT sub-state.
type ProjectState string

const (
	// StateClarify (Q) means the request is too ambiguous to act on.
	StateClarify ProjectState = "Q"

	// StateUnsupported (U) means the request lacks sufficient evidence.
	StateUnsupported ProjectState = "U"
)

// Default governance thresholds.
const (
	DefaultDampenThreshold  = 0.30
	DefaultProjectThreshold = 0.70
)

// Fixed templated messages for PROJECT mode. No model call produces these.
const (
	clarifyMessage = "Clarification is needed before this can proceed. " +
		"What exactly is meant, and in what context? Provide one or two specifics or a source."
	unsupportedMessage = "There is not enough information or evidence to answer confidently. " +
		"Provide a source, data, or a short quote the answer can be grounded on."
)

// vagueWords is the vocabulary that marks a short request as ambiguous.
var vagueWords = map[string]struct{}{
	"it": {}, "this": {}, "that": {}, "they": {}, "stuff": {},
}

var alphaRE = regexp.MustCompile(`[a-z]+`)

// Decision is the outcome of governing a single invocation. Damping is zero
// unless the mode is DAMPEN, in which case it equals rho. State and Message
// are set only for PROJECT.
type Decision struct {
	Mode    Mode         `json:"mode"`
	Damping float64      `json:"damping"`
	State   ProjectState `json:"state,omitempty"`
	Message string       `json:"message,omitempty"`
	Missing []string     `json:"missing,omitempty"`
}

// Governor holds the mode thresholds. The zero value is not usable; build
// one with New.
type Governor struct {
	dampenThreshold  float64
	projectThreshold float64
}

// New creates a Governor. Non-positive thresholds fall back to the defaults.
func New(dampenThreshold, projectThreshold float64) *Governor {
	if dampenThreshold <= 0 {
		dampenThreshold = DefaultDampenThreshold
	}
	if projectThreshold <= 0 {
		projectThreshold = DefaultProjectThreshold
	}
	return &Governor{
		dampenThreshold:  dampenThreshold,
		projectThreshold: projectThreshold,
	}
}

// Mode maps a risk energy to the governance mode.
func (g *Governor) Mode(rho float64) Mode {
	switch {
	case rho >= g.projectThreshold:
		return ModeProject
	case rho >= g.dampenThreshold:
		return ModeDampen
	default:
		return ModeFree
	}
}

// Decide maps user text and risk energy to a governance decision. It is
// deterministic and terminal per invocation: no retries happen inside the
// governor, and PROJECT ends the generation path.
func (g *Governor) Decide(userText string, rho float64) Decision {
	switch g.Mode(rho) {
	case ModeFree:
		return Decision{Mode: ModeFree, Damping: 0.0, Missing: []string{}}

	case ModeDampen:
		return Decision{Mode: ModeDampen, Damping: rho, Missing: []string{}}
	}

	// PROJECT: fail closed with a controlled, non-generative response.
	if IsAmbiguous(userText) {
		return Decision{
			Mode:    ModeProject,
			Damping: 0.0,
			State:   StateClarify,
			Message: clarifyMessage,
			Missing: []string{"clarification", "context"},
		}
	}
	return Decision{
		Mode:    ModeProject,
		Damping: 0.0,
		State:   StateUnsupported,
		Message: unsupportedMessage,
		Missing: []string{"evidence/source", "quote or tool output"},
	}
}

// IsAmbiguous reports whether the request is too vague to project a useful
// insufficient-evidence response: fewer than eight alphabetic words with at
// least one drawn from the vague-reference vocabulary, or no words at all.
func IsAmbiguous(text string) bool {
	words := alphaRE.FindAllString(strings.ToLower(strings.TrimSpace(text)), -1)

	if len(words) == 0 {
		return true
	}
	if len(words) >= 8 {
		return false
	}
	for _, w := range words {
		if _, ok := vagueWords[w]; ok {
			return true
		}
	}
	return false
}
