// Package governor maps risk energy to a generation governance decision.
//
// Risk energy (rho) blends two independent signals: the complement of the
// evidence sufficiency score (rho_text) and the fraction of signal energy a
// damping mask would remove from a carrier vector (rho_mask). Once evidence
// is judged adequate (score >= 0.50) the mask signal is down-weighted to
// one-tenth influence; under weak evidence it retains one-quarter.
//
// A small state machine maps rho to one of three modes:
//
//	rho <  t_dampen             -> FREE     (damping 0)
//	t_dampen <= rho < t_project -> DAMPEN   (damping = rho)
//	rho >= t_project            -> PROJECT  (no generation)
//
// PROJECT splits on an ambiguity check of the user text: short vague
// requests yield sub-state Q (clarification needed), everything else yields
// sub-state U (insufficient evidence). Both carry a fixed templated message;
// no model call ever happens in PROJECT mode.
package governor
