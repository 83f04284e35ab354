// Package metrics exposes prometheus metrics for the decision pipeline.
//
// The collector records one observation set per pipeline run: mode and
// output state, risk energy and evidence score distributions, policy block
// reasons, gate faults, and provider latency. All metrics live in a private
// registry served by Handler, so embedding the runtime never pollutes the
// default prometheus registry.
package metrics
