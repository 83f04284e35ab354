package evidence

import (
	"math"
	"strings"
)

// Scorer computes evidence sufficiency assessments. It holds only the blend
// weights; scoring itself is stateless and safe for concurrent use.
type Scorer struct {
	weights Weights
}

// NewScorer creates a Scorer with the given blend weights. Zero-valued
// weights are replaced by the defaults.
func NewScorer(w Weights) *Scorer {
	if w == (Weights{}) {
		w = DefaultWeights()
	}
	return &Scorer{weights: w}
}

// Score assesses how sufficient the evidence set is for answering userText.
//
// An empty evidence set is a hard floor: score 0.0 with reason "no_evidence",
// regardless of the request. Otherwise the four subscores are computed,
// blended, and bounded by the feedback floor and the no-source-marker
// ceiling. See the package documentation for the full rubric.
func (s *Scorer) Score(userText string, evidence []string) Assessment {
	if len(evidence) == 0 {
		return Assessment{
			Score:   0.0,
			Reasons: []string{ReasonNoEvidence},
		}
	}

	var reasons []string

	qty := quantityScore(evidence)
	length := lengthScore(evidence)
	rel := relevanceScore(userText, evidence)
	concrete, signals := concretenessScore(userText, evidence)

	if concrete < 0.25 {
		reasons = append(reasons, ReasonLowConcreteness)
	}
	if rel < 0.35 {
		reasons = append(reasons, ReasonLowRelevance)
	}

	score := clamp01(
		s.weights.Relevance*rel +
			s.weights.Concreteness*concrete +
			s.weights.Quantity*qty +
			s.weights.Length*length)

	// Feedback floor: a review-style request backed by two or more items
	// must land in DAMPEN territory, not PROJECT.
	if intentFeedbackRE.MatchString(strings.ToLower(userText)) && len(evidence) >= 2 {
		score = math.Max(score, 0.50)
	}

	// Provenance ceiling: evidence with no discoverable source marker is
	// never treated as fully sufficient, no matter its volume.
	if !signals.Counts.anyProvenance() {
		reasons = append(reasons, ReasonNoSourceMarkers)
		score = math.Min(score, 0.60)
	}

	signals.Subscores.Quantity = qty
	signals.Subscores.Length = length
	signals.Subscores.Relevance = rel
	signals.Subscores.Concreteness = concrete

	return Assessment{
		Score:   score,
		Reasons: reasons,
		Signals: signals,
	}
}

func quantityScore(evidence []string) float64 {
	return clamp01(float64(len(evidence)) / 3.0)
}

func lengthScore(evidence []string) float64 {
	total := 0
	for _, e := range evidence {
		total += len(strings.TrimSpace(e))
	}
	return clamp01(float64(total) / 240.0)
}

// relevanceScore measures how related the evidence is to the request.
//
// Feedback-style requests accept internal workflow artifacts without token
// overlap: such evidence rarely shares vocabulary with the request that asks
// to act on it. Factoid-style requests and everything else fall back to
// token overlap passed through a logistic curve that rewards partial overlap
// early (steepness 10, midpoint 0.15).
func relevanceScore(userText string, evidence []string) float64 {
	uLow := strings.ToLower(userText)
	joined := strings.ToLower(strings.Join(evidence, " "))

	if intentFeedbackRE.MatchString(uLow) {
		if internalSourceRE.MatchString(joined) {
			return 0.90
		}
		if len(evidence) >= 2 {
			return 0.70
		}
	}

	u := tokenSet(userText)
	if len(u) == 0 {
		return 0.0
	}
	e := make(map[string]struct{})
	for _, item := range evidence {
		for t := range tokenSet(item) {
			e[t] = struct{}{}
		}
	}
	overlap := 0
	for t := range u {
		if _, ok := e[t]; ok {
			overlap++
		}
	}
	frac := float64(overlap) / float64(len(u))
	return clamp01(logistic(frac, 10.0, 0.15))
}

// concretenessScore aggregates per-item provenance markers into a weighted
// blend of strong identifiers (65%), medium identifiers (25%), and source
// diversity (10%).
func concretenessScore(userText string, evidence []string) (float64, Signals) {
	var counts MarkerCounts

	for _, e := range evidence {
		sig := detectSourceSignals(e)
		counts.URL += b2i(sig.url)
		counts.DOI += b2i(sig.doi)
		counts.PMID += b2i(sig.pmid)
		counts.Arxiv += b2i(sig.arxiv)
		counts.ISBN += b2i(sig.isbn)
		counts.Year += b2i(sig.year)
		counts.SourcePrefix += b2i(sig.sourcePrefix)
		counts.BracketCitation += b2i(sig.bracketCit)
		counts.ParenYear += b2i(sig.parenYear)
		counts.Authority += b2i(sig.authority)
		counts.Internal += b2i(sig.internal)
	}

	uniqueSources := countUniqueSources(evidence)

	strong := 0.35*present(counts.DOI) +
		0.30*present(counts.PMID) +
		0.20*present(counts.URL) +
		0.10*present(counts.Arxiv) +
		0.05*present(counts.ISBN)

	// Internal workflow artifacts count as strong-ish provenance when the
	// request itself is feedback-styled.
	if intentFeedbackRE.MatchString(strings.ToLower(userText)) && counts.Internal > 0 {
		strong = math.Max(strong, 0.65)
	}

	medium := 0.20*present(counts.SourcePrefix) +
		0.15*present(counts.Year) +
		0.10*present(counts.BracketCitation) +
		0.10*present(counts.ParenYear) +
		0.20*present(counts.Authority) +
		0.25*present(counts.Internal)

	diversity := clamp01(float64(uniqueSources) / 3.0)

	concrete := clamp01(0.65*strong + 0.25*medium + 0.10*diversity)

	return concrete, Signals{
		Subscores: Subscores{
			StrongID:  clamp01(strong),
			MediumID:  clamp01(medium),
			Diversity: diversity,
		},
		UniqueSources: uniqueSources,
		Counts:        counts,
	}
}

func clamp01(x float64) float64 {
	if x < 0.0 {
		return 0.0
	}
	if x > 1.0 {
		return 1.0
	}
	return x
}

func logistic(x, k, x0 float64) float64 {
	return 1.0 / (1.0 + math.Exp(-k*(x-x0)))
}

func present(n int) float64 {
	if n > 0 {
		return 1.0
	}
	return 0.0
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
