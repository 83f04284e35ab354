package evidence

// Reason codes appended to an Assessment. They are stable identifiers meant
// for telemetry and tests, not user-facing copy.
const (
	// ReasonNoEvidence is emitted when no evidence items were supplied.
	ReasonNoEvidence = "no_evidence"

	// ReasonLowRelevance is emitted when the relevance subscore falls
	// below 0.35.
	ReasonLowRelevance = "low_relevance"

	// ReasonLowConcreteness is emitted when the concreteness subscore
	// falls below 0.25.
	ReasonLowConcreteness = "low_concreteness"

	// ReasonNoSourceMarkers is emitted when no provenance marker fired in
	// any evidence item; the final score is capped at 0.60 in that case.
	ReasonNoSourceMarkers = "no_source_markers"
)

// Assessment is the result of scoring a set of evidence items against a user
// request. It is immutable once produced.
type Assessment struct {
	// Score is the blended sufficiency score in [0, 1].
	Score float64 `json:"score"`

	// Reasons lists reason codes explaining score penalties, in the order
	// they were detected.
	Reasons []string `json:"reasons"`

	// Signals carries the subscores and marker counts behind the score.
	Signals Signals `json:"signals"`
}

// Signals exposes the intermediate signals of an assessment for telemetry.
type Signals struct {
	// Subscores are the four blended subscores plus the concreteness
	// internals, each in [0, 1].
	Subscores Subscores `json:"subscores"`

	// UniqueSources counts distinct provenance sources found across all
	// evidence items (unique domains, DOIs, PMIDs, arXiv IDs, ISBNs,
	// authority tokens, and the internal-artifact flag).
	UniqueSources int `json:"unique_sources"`

	// Counts tallies, per marker kind, how many evidence items contained
	// that marker.
	Counts MarkerCounts `json:"counts"`
}

// Subscores holds the individual component scores of an assessment.
type Subscores struct {
	Quantity     float64 `json:"quantity"`
	Length       float64 `json:"length"`
	Relevance    float64 `json:"relevance"`
	Concreteness float64 `json:"concreteness"`

	// StrongID, MediumID and Diversity decompose the concreteness blend.
	StrongID  float64 `json:"strong_id"`
	MediumID  float64 `json:"medium_id"`
	Diversity float64 `json:"diversity"`
}

// MarkerCounts tallies provenance markers across evidence items. Each field
// counts the number of items in which the marker appeared at least once.
type MarkerCounts struct {
	URL             int `json:"url"`
	DOI             int `json:"doi"`
	PMID            int `json:"pmid"`
	Arxiv           int `json:"arxiv"`
	ISBN            int `json:"isbn"`
	Year            int `json:"year"`
	SourcePrefix    int `json:"source_prefix"`
	BracketCitation int `json:"bracket_citation"`
	ParenYear       int `json:"paren_year"`
	Authority       int `json:"authority"`
	Internal        int `json:"internal"`
}

// anyProvenance reports whether any marker that counts as a provenance
// signal fired at all. Bare years and bracket/paren citations alone do not
// count; they are corroborating, not identifying.
func (c MarkerCounts) anyProvenance() bool {
	return c.URL > 0 || c.DOI > 0 || c.PMID > 0 || c.Arxiv > 0 ||
		c.ISBN > 0 || c.SourcePrefix > 0 || c.Authority > 0 || c.Internal > 0
}

// Weights configures the blend of subscores into the final score. All four
// weights should sum to 1.0; the scorer does not normalize them.
type Weights struct {
	// Relevance is the weight of the relevance subscore.
	// Default: 0.40
	Relevance float64 `yaml:"relevance"`

	// Concreteness is the weight of the concreteness subscore.
	// Default: 0.35
	Concreteness float64 `yaml:"concreteness"`

	// Quantity is the weight of the quantity subscore.
	// Default: 0.15
	Quantity float64 `yaml:"quantity"`

	// Length is the weight of the length subscore.
	// Default: 0.10
	Length float64 `yaml:"length"`
}

// DefaultWeights returns the standard subscore blend.
func DefaultWeights() Weights {
	return Weights{
		Relevance:    0.40,
		Concreteness: 0.35,
		Quantity:     0.15,
		Length:       0.10,
	}
}
