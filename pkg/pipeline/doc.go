// Package pipeline composes the evidence gate and the action gate into one
// risk-governed decision ahead of any text generation.
//
// # Sequence
//
// Per invocation, in order:
//
//  1. Evidence scoring and the risk-energy governor run unconditionally.
//  2. The attention measurement and its interference diagnostic run only
//     when the governance mode permits generation (mode != PROJECT).
//  3. The planner/monitor/policy gate runs unconditionally, regardless of
//     governance mode: what is being asked to be done and how confidently
//     it can be answered are orthogonal concerns.
//  4. A policy denial returns immediately with output state BLOCKED; denial
//     has priority over governance mode and the provider is never called.
//  5. A fault inside the gate is also a hard block: any failure in the
//     gating path fails closed, never open.
//  6. Otherwise PROJECT returns the governor's canned response, and
//     FREE/DAMPEN invoke the answer provider. A provider failure is the one
//     fail-soft boundary: the error is surfaced as controlled text in the
//     output rather than as a pipeline fault.
//
// # Determinism
//
// A run is a pure function of (user text, evidence, mask, seed): the seed
// feeds a locally scoped random source that generates the carrier, key, and
// value vectors plus the interference bases. Identical inputs produce
// byte-identical results, and concurrent runs share no state.
package pipeline
