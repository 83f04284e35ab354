package attention

import (
	"math/rand"
)

// Result carries the attention output and its concentration telemetry.
type Result struct {
	// Output is the attention-weighted sum of the value vectors.
	Output []float64 `json:"-"`

	// Weights is the softmax weight distribution over the keys.
	Weights []float64 `json:"weights"`

	// Entropy is the Shannon entropy of Weights.
	Entropy float64 `json:"entropy"`

	// MaxWeight is the largest weight in the distribution.
	MaxWeight float64 `json:"max_weight"`
}

// Interference reports how far the attention computation drifts when the
// query is re-framed in two independently sampled orthonormal bases.
type Interference struct {
	// OutputDistance is the L2 distance between the two basis outputs.
	OutputDistance float64 `json:"i_out"`

	// WeightDistance is the L2 distance between the two weight vectors.
	WeightDistance float64 `json:"i_w"`
}

// Attend computes damped attention of the query over the key/value pairs:
// scores_i = <q, k_i> / (1 + damping), weights = softmax(scores), output is
// the weighted sum of values.
func Attend(query []float64, keys, values [][]float64, damping float64) Result {
	scores := make([]float64, len(keys))
	for i, k := range keys {
		scores[i] = Dot(query, k) / (1.0 + damping)
	}
	weights := Softmax(scores)

	dim := len(query)
	output := make([]float64, dim)
	for i, v := range values {
		for j := 0; j < dim; j++ {
			output[j] += weights[i] * v[j]
		}
	}

	return Result{
		Output:    output,
		Weights:   weights,
		Entropy:   Entropy(weights),
		MaxWeight: MaxWeight(weights),
	}
}

// MeasureInterference projects the query into two orthonormal bases drawn
// from rng, runs the same attention computation in each, and reports the
// distance between the two outputs and between the two weight vectors.
//
// The result is a reproducibility diagnostic only; it never influences the
// governance decision. Draw order on rng is fixed (basis one, then basis
// two) so a seeded source reproduces the measurement exactly.
func MeasureInterference(rng *rand.Rand, query []float64, keys, values [][]float64, damping float64) Interference {
	dim := len(query)

	q1 := Orthonormalize(RandomMatrix(rng, dim, dim))
	q2 := Orthonormalize(RandomMatrix(rng, dim, dim))

	r1 := Attend(MatVec(q1, query), keys, values, damping)
	r2 := Attend(MatVec(q2, query), keys, values, damping)

	return Interference{
		OutputDistance: L2Distance(r1.Output, r2.Output),
		WeightDistance: L2Distance(r1.Weights, r2.Weights),
	}
}
