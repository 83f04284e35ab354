// Package evidence scores the sufficiency of supplied evidence for answering
// a request.
//
// # Overview
//
// The scorer is a pure function over the user text and the evidence items; it
// never calls out to any verification authority. Four subscores are blended
// into a single sufficiency score in [0, 1]:
//
//   - quantity: how many evidence items were supplied
//   - length: total trimmed character volume
//   - relevance: intent-aware token overlap between request and evidence
//   - concreteness: presence of provenance markers (DOI, PMID, URL, arXiv,
//     ISBN, authority vocabulary, internal workflow artifacts)
//
// Two guard rails bound the blend: evidence carrying no discoverable
// provenance marker is capped at 0.60, and a feedback-style request backed by
// at least two evidence items is floored at 0.50 so legitimate internal
// review material is not mistaken for "no evidence".
//
// # Usage
//
//	scorer := evidence.NewScorer(evidence.DefaultWeights())
//	a := scorer.Score("Tell me the capital of France.", []string{
//	    "Source: Britannica: The capital of France is Paris.",
//	})
//	fmt.Println(a.Score, a.Reasons)
//
// Scoring is deterministic: identical inputs always produce an identical
// Assessment.
package evidence
