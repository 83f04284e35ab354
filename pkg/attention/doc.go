// Package attention implements the damped attention measurement used for
// telemetry when generation is allowed.
//
// This is deliberately not a transformer implementation: it is an
// illustrative weighting function over small random vectors whose outputs
// (weight entropy, max weight, cross-basis interference) are observability
// signals only. Nothing here feeds back into the governance decision.
//
// Scores divide the query/key dot products by (1 + damping), so a higher
// damping flattens the weight distribution. The interference diagnostic
// re-frames the query in two independently sampled orthonormal bases and
// reports how far the attention outputs drift apart, a reproducibility probe
// for sensitivity to arbitrary orthogonal re-framing.
//
// All randomness is drawn from a caller-supplied source so results are
// reproducible for a given seed.
package attention
