package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"sentinel-hq/callisto/pkg/attention"
	"sentinel-hq/callisto/pkg/evidence"
	"sentinel-hq/callisto/pkg/gate"
	"sentinel-hq/callisto/pkg/governor"
	"sentinel-hq/callisto/pkg/providers"
)

// Config tunes the pipeline. The zero value selects all defaults.
type Config struct {
	// VectorDim is the dimensionality of the carrier/key/value vectors.
	// Default: 5
	VectorDim int `yaml:"vector_dim"`

	// KeyCount is the number of key/value pairs for the attention
	// measurement.
	// Default: 6
	KeyCount int `yaml:"key_count"`

	// DefaultMask is applied when a request carries no mask. Must match
	// VectorDim.
	// Default: [0.7, 0.4, 0.2, 0.0, 0.2]
	DefaultMask []float64 `yaml:"default_mask"`

	// DampenThreshold and ProjectThreshold are the governor thresholds.
	// Defaults: 0.30 and 0.70
	DampenThreshold  float64 `yaml:"dampen_threshold"`
	ProjectThreshold float64 `yaml:"project_threshold"`

	// EvidenceWeights overrides the evidence subscore blend. Nil selects
	// the standard blend.
	EvidenceWeights *evidence.Weights `yaml:"evidence_weights"`

	// Gate is the action-gate policy posture. The zero value denies all
	// risk classes.
	Gate gate.PolicyConfig `yaml:"gate"`
}

func (c *Config) applyDefaults() {
	if c.VectorDim <= 0 {
		c.VectorDim = 5
	}
	if c.KeyCount <= 0 {
		c.KeyCount = 6
	}
	if len(c.DefaultMask) == 0 {
		c.DefaultMask = []float64{0.7, 0.4, 0.2, 0.0, 0.2}
	}
}

// Pipeline sequences the evidence gate, the governance state machine, the
// attention measurement, and the action gate around a pluggable answer
// provider. A Pipeline is immutable after construction and safe for
// concurrent use; each Run draws from its own seeded random source.
type Pipeline struct {
	config   Config
	scorer   *evidence.Scorer
	governor *governor.Governor
	answerer providers.Answerer
	logger   *slog.Logger
}

// New builds a Pipeline. The answerer is required; a nil logger falls back
// to slog.Default.
func New(cfg Config, answerer providers.Answerer, logger *slog.Logger) (*Pipeline, error) {
	cfg.applyDefaults()

	if answerer == nil {
		return nil, fmt.Errorf("pipeline: answerer is required")
	}
	if len(cfg.DefaultMask) != cfg.VectorDim {
		return nil, fmt.Errorf("pipeline: default mask dimension %d does not match vector dimension %d",
			len(cfg.DefaultMask), cfg.VectorDim)
	}
	if logger == nil {
		logger = slog.Default()
	}

	weights := evidence.DefaultWeights()
	if cfg.EvidenceWeights != nil {
		weights = *cfg.EvidenceWeights
	}

	return &Pipeline{
		config:   cfg,
		scorer:   evidence.NewScorer(weights),
		governor: governor.New(cfg.DampenThreshold, cfg.ProjectThreshold),
		answerer: answerer,
		logger:   logger.With("component", "pipeline"),
	}, nil
}

// Run executes one pipeline invocation. It returns an error only for input
// errors (a malformed mask), in which case no telemetry is produced; every
// other failure mode is captured inside the RunResult.
func (p *Pipeline) Run(ctx context.Context, req Request) (*RunResult, error) {
	mask := req.Mask
	if mask == nil {
		mask = p.config.DefaultMask
	}
	if err := p.validateMask(mask); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(req.Seed))
	carrier := attention.RandomVector(rng, p.config.VectorDim)

	// Evidence gate: sufficiency score, risk energy, governance mode.
	assessment := p.scorer.Score(req.UserText, req.Evidence)

	rhoMask, err := governor.MaskEnergy(carrier, mask)
	if err != nil {
		// Dimensions were validated above; this is unreachable.
		return nil, err
	}
	rho, rhoText := governor.RiskEnergy(assessment.Score, rhoMask)

	decision := p.governor.Decide(req.UserText, rho)

	result := &RunResult{
		Decision: Decision{
			Mode:         decision.Mode,
			Damping:      decision.Damping,
			ProjectState: decision.State,
		},
		Metrics: Metrics{
			RhoEnergy:     rho,
			RhoText:       rhoText,
			RhoMask:       rhoMask,
			Mask:          append([]float64{}, mask...),
			EvidenceScore: assessment,
		},
	}

	// Attention telemetry only when generation is permitted.
	if decision.Mode != governor.ModeProject {
		keys := attention.RandomMatrix(rng, p.config.KeyCount, p.config.VectorDim)
		values := attention.RandomMatrix(rng, p.config.KeyCount, p.config.VectorDim)

		att := attention.Attend(carrier, keys, values, decision.Damping)
		result.Metrics.Attention = &att

		inter := attention.MeasureInterference(rng, carrier, keys, values, decision.Damping)
		result.Metrics.Interference = &inter
	}

	// Action gate: always evaluated, even for PROJECT, because the
	// action-risk and evidence-risk gates address orthogonal concerns.
	verdict := gate.Evaluate(req.UserText, p.config.Gate)
	result.Metrics.ActionPlan = verdict.Plan
	result.Metrics.BehaviorMonitor = verdict.Monitor
	result.Metrics.Policy = verdict.Decision

	switch verdict.State {
	case gate.VerdictFaulted:
		// Fail closed: a broken gate is a hard block.
		fault := fmt.Sprintf("%s: %s", verdict.FaultKind, verdict.FaultMessage)
		result.Metrics.GateFault = fault
		result.Output = Output{
			State: StateBlocked,
			Text:  "Policy gate error: " + fault,
		}
		p.logger.Error("action gate faulted, failing closed", "fault", fault)
		return result, nil

	case gate.VerdictBlocked:
		result.Output = Output{
			State:  StateBlocked,
			Text:   "Blocked by policy engine.",
			Policy: verdict.Decision,
		}
		p.logger.Info("request blocked by policy",
			"mode", decision.Mode,
			"reasons", verdict.Decision.Reasons,
		)
		return result, nil
	}

	if decision.Mode == governor.ModeProject {
		result.Output = Output{
			State:   OutputState(decision.State),
			Text:    decision.Message,
			Missing: decision.Missing,
		}
		p.logger.Info("request projected",
			"state", decision.State,
			"rho", rho,
		)
		return result, nil
	}

	// Generation path. A provider failure is fail-soft: the fault is
	// placed into the output text so callers can distinguish "nothing
	// generated" from "a fault message was generated".
	answer, err := p.answerer.Answer(ctx, req.UserText, req.Evidence, decision.Damping)
	if err != nil {
		p.logger.Warn("answer provider failed", "provider", p.answerer.Name(), "error", err)
		result.Output = Output{
			State:    StateAnswered,
			Text:     fmt.Sprintf("Answer generation failed: %v", err),
			Damping:  decision.Damping,
			Provider: p.answerer.Name(),
		}
		return result, nil
	}

	result.Output = Output{
		State:     StateAnswered,
		Text:      answer.Text,
		Citations: answer.Citations,
		Damping:   decision.Damping,
		Provider:  p.answerer.Name(),
	}
	return result, nil
}

func (p *Pipeline) validateMask(mask []float64) error {
	if len(mask) != p.config.VectorDim {
		return fmt.Errorf("pipeline: mask dimension %d does not match vector dimension %d",
			len(mask), p.config.VectorDim)
	}
	for i, v := range mask {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("pipeline: mask element %d is not finite", i)
		}
	}
	return nil
}
