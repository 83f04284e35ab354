package evidence

import (
	"fmt"
	"strings"
	"testing"
)

func TestScore_EmptyEvidence(t *testing.T) {
	s := NewScorer(DefaultWeights())

	a := s.Score("Tell me the capital of France.", nil)
	if a.Score != 0.0 {
		t.Errorf("empty evidence score = %v, want 0.0", a.Score)
	}
	if len(a.Reasons) != 1 || a.Reasons[0] != ReasonNoEvidence {
		t.Errorf("empty evidence reasons = %v, want [%s]", a.Reasons, ReasonNoEvidence)
	}
	if a.Signals.Subscores != (Subscores{}) {
		t.Errorf("empty evidence subscores = %+v, want zeroed", a.Signals.Subscores)
	}
}

func TestScore_Bounds(t *testing.T) {
	s := NewScorer(DefaultWeights())

	cases := []struct {
		name     string
		userText string
		evidence []string
	}{
		{"single short item", "summarize this text", []string{"Some text to summarize."}},
		{"many cited items", "what is the speed of light", []string{
			"Source: NIST, c = 299792458 m/s (2019).",
			"https://physics.nist.gov/cgi-bin/cuu/Value?c",
			"DOI: 10.1103/RevModPhys.93.025010",
		}},
		{"irrelevant noise", "who is the president of brazil", []string{
			"lorem ipsum dolor sit amet", "consectetur adipiscing elit",
		}},
		{"very long item", "explain photosynthesis", []string{strings.Repeat("chloroplast ", 200)}},
		{"feedback with notes", "Write a rejection note with actionable feedback.", []string{
			"Role requires strong SQL and stakeholder communication.",
			"Interview notes: candidate solved SQL tasks but struggled explaining tradeoffs.",
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := s.Score(tc.userText, tc.evidence)
			if a.Score < 0.0 || a.Score > 1.0 {
				t.Errorf("score = %v, want in [0,1]", a.Score)
			}
			sub := a.Signals.Subscores
			for name, v := range map[string]float64{
				"quantity":     sub.Quantity,
				"length":       sub.Length,
				"relevance":    sub.Relevance,
				"concreteness": sub.Concreteness,
				"strong_id":    sub.StrongID,
				"medium_id":    sub.MediumID,
				"diversity":    sub.Diversity,
			} {
				if v < 0.0 || v > 1.0 {
					t.Errorf("subscore %s = %v, want in [0,1]", name, v)
				}
			}
		})
	}
}

func TestScore_Deterministic(t *testing.T) {
	s := NewScorer(DefaultWeights())
	userText := "Tell me the capital of France."
	evidence := []string{"Source: Britannica: The capital of France is Paris."}

	first := s.Score(userText, evidence)
	for i := 0; i < 10; i++ {
		got := s.Score(userText, evidence)
		if got.Score != first.Score {
			t.Fatalf("run %d: score = %v, want %v", i, got.Score, first.Score)
		}
		if fmt.Sprint(got.Reasons) != fmt.Sprint(first.Reasons) {
			t.Fatalf("run %d: reasons = %v, want %v", i, got.Reasons, first.Reasons)
		}
	}
}

// Adding a DOI-bearing item must never decrease concreteness.
func TestScore_DOIMonotonicity(t *testing.T) {
	s := NewScorer(DefaultWeights())
	userText := "what is the efficacy of the vaccine"

	bases := [][]string{
		nil,
		{"The vaccine showed 95% efficacy in trials."},
		{"Source: NEJM (2020).", "PMID: 33301246"},
		{"https://example.com/report", "lorem ipsum"},
	}

	for i, base := range bases {
		var before float64
		if len(base) > 0 {
			before = s.Score(userText, base).Signals.Subscores.Concreteness
		}
		with := append(append([]string{}, base...), "DOI: 10.1056/NEJMoa2034577")
		after := s.Score(userText, with).Signals.Subscores.Concreteness
		if after < before {
			t.Errorf("case %d: concreteness dropped from %v to %v after adding DOI item", i, before, after)
		}
	}
}

func TestScore_NoSourceMarkerCeiling(t *testing.T) {
	s := NewScorer(DefaultWeights())

	// Plenty of volume, zero provenance.
	evidence := []string{
		strings.Repeat("the quick brown fox jumps over the lazy dog ", 10),
		strings.Repeat("pack my box with five dozen liquor jugs ", 10),
		strings.Repeat("sphinx of black quartz judge my vow ", 10),
	}
	a := s.Score("summarize the quick brown fox story", evidence)

	if a.Score > 0.60 {
		t.Errorf("score = %v, want <= 0.60 without source markers", a.Score)
	}
	if !containsReason(a.Reasons, ReasonNoSourceMarkers) {
		t.Errorf("reasons = %v, want %s present", a.Reasons, ReasonNoSourceMarkers)
	}
}

func TestScore_FeedbackFloor(t *testing.T) {
	s := NewScorer(DefaultWeights())

	a := s.Score("Write a rejection note with actionable feedback.", []string{
		"Role requires strong SQL and stakeholder communication.",
		"Interview notes: candidate solved SQL tasks but struggled explaining tradeoffs; limited product sense discussion.",
	})
	if a.Score < 0.50 {
		t.Errorf("feedback request with 2 internal items: score = %v, want >= 0.50", a.Score)
	}
	if a.Signals.Subscores.Relevance != 0.90 {
		t.Errorf("relevance = %v, want 0.90 for internal-artifact evidence under feedback intent", a.Signals.Subscores.Relevance)
	}
}

func TestScore_FactoidWithCitations(t *testing.T) {
	s := NewScorer(DefaultWeights())

	a := s.Score("Tell me the capital of France.", []string{
		"Source: Britannica: The capital of France is Paris.",
		"Paris is the political and administrative capital of France.",
	})
	// Enough to pull rho below the PROJECT threshold (1 - score < 0.70
	// before mask blending).
	if a.Score < 0.35 {
		t.Errorf("cited factoid evidence: score = %v, want >= 0.35", a.Score)
	}
	if containsReason(a.Reasons, ReasonNoSourceMarkers) {
		t.Errorf("reasons = %v, unexpected %s with a Source: prefix present", a.Reasons, ReasonNoSourceMarkers)
	}
}

func TestScore_LowRelevanceReason(t *testing.T) {
	s := NewScorer(DefaultWeights())

	a := s.Score("who is the president of brazil", []string{
		"Source: unrelated cookbook, banana bread recipe (2018).",
	})
	if !containsReason(a.Reasons, ReasonLowRelevance) {
		t.Errorf("reasons = %v, want %s present", a.Reasons, ReasonLowRelevance)
	}
}

func TestDetectSourceSignals(t *testing.T) {
	cases := []struct {
		name string
		text string
		want func(sourceSignals) bool
	}{
		{"url", "see https://example.com/a/b", func(s sourceSignals) bool { return s.url }},
		{"www url", "see www.example.com", func(s sourceSignals) bool { return s.url }},
		{"doi", "DOI: 10.1056/NEJMoa2034577", func(s sourceSignals) bool { return s.doi }},
		{"pmid colon", "PMID: 33301246", func(s sourceSignals) bool { return s.pmid }},
		{"pmid space", "PMID 33301246", func(s sourceSignals) bool { return s.pmid }},
		{"arxiv", "arXiv: 2106.04554", func(s sourceSignals) bool { return s.arxiv }},
		{"isbn", "ISBN: 978-0-13-468599-1", func(s sourceSignals) bool { return s.isbn }},
		{"year", "published in 1998", func(s sourceSignals) bool { return s.year }},
		{"source prefix", "Source: internal wiki", func(s sourceSignals) bool { return s.sourcePrefix }},
		{"bracket citation", "as shown in [12]", func(s sourceSignals) bool { return s.bracketCit }},
		{"paren year", "Smith et al. (2019)", func(s sourceSignals) bool { return s.parenYear }},
		{"authority", "according to the WHO guidance", func(s sourceSignals) bool { return s.authority }},
		{"internal artifact", "Interview notes: strong communicator", func(s sourceSignals) bool { return s.internal }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := detectSourceSignals(tc.text); !tc.want(got) {
				t.Errorf("signal not detected in %q (got %+v)", tc.text, got)
			}
		})
	}
}

func TestCountUniqueSources(t *testing.T) {
	cases := []struct {
		name     string
		evidence []string
		want     int
	}{
		{"none", []string{"plain text"}, 0},
		{"same domain twice", []string{"https://a.com/x", "https://a.com/y"}, 1},
		{"two domains", []string{"https://a.com/x", "https://b.com/y"}, 2},
		{"doi and pmid", []string{"DOI: 10.1000/xyz123 PMID: 123"}, 2},
		{"internal artifact", []string{"interview notes: fine", "rubric attached"}, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := countUniqueSources(tc.evidence); got != tc.want {
				t.Errorf("countUniqueSources(%v) = %d, want %d", tc.evidence, got, tc.want)
			}
		})
	}
}

func containsReason(reasons []string, want string) bool {
	for _, r := range reasons {
		if r == want {
			return true
		}
	}
	return false
}
