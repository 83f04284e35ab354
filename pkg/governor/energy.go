package governor

import (
	"fmt"
	"math"
)

// epsilon guards the rho_mask denominator against a zero-norm carrier.
const epsilon = 1e-8

// Mask-influence weights for the risk energy blend. The evidence score
// decides which applies: adequate evidence demotes the mask signal to a
// tie-breaker.
const (
	// AdequateEvidenceScore is the evidence score at or above which the
	// mask signal is down-weighted.
	AdequateEvidenceScore = 0.50

	// MaskWeightAdequate is the mask influence under adequate evidence.
	MaskWeightAdequate = 0.10

	// MaskWeightWeak is the mask influence under weak evidence.
	MaskWeightWeak = 0.25
)

// MaskEnergy returns the normalized norm loss between a carrier vector and
// its masked copy: (||c|| - ||mask . c||) / (||c|| + eps). It is a proxy for
// how much signal energy the damping mask would absorb.
//
// The mask must have the same dimensionality as the carrier and contain only
// finite values; anything else is an input error.
func MaskEnergy(carrier, mask []float64) (float64, error) {
	if len(mask) != len(carrier) {
		return 0, fmt.Errorf("mask dimension %d does not match carrier dimension %d", len(mask), len(carrier))
	}
	for i, v := range mask {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("mask element %d is not finite", i)
		}
	}

	var full, absorbed float64
	for i, c := range carrier {
		full += c * c
		m := mask[i] * c
		absorbed += m * m
	}
	full = math.Sqrt(full)
	absorbed = math.Sqrt(absorbed)

	return (full - absorbed) / (full + epsilon), nil
}

// RiskEnergy combines evidence insufficiency with the mask energy into the
// scalar rho in [0, 1]. It returns rho and the intermediate rho_text.
func RiskEnergy(evidenceScore, rhoMask float64) (rho, rhoText float64) {
	rhoText = 1.0 - evidenceScore

	w := MaskWeightWeak
	if evidenceScore >= AdequateEvidenceScore {
		w = MaskWeightAdequate
	}

	rho = math.Min(1.0, (1.0-w)*rhoText+w*rhoMask)
	return rho, rhoText
}
