package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"sentinel-hq/callisto/pkg/pipeline"
)

// Recorder turns pipeline run results into audit records and stores them.
// Record assignment of IDs and timestamps happens here so that identical
// pipeline runs stay byte-identical while their audit trails do not.
type Recorder struct {
	storage Storage
	logger  *slog.Logger
}

// NewRecorder creates a recorder on the given storage backend.
func NewRecorder(storage Storage, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		storage: storage,
		logger:  logger.With("component", "audit.recorder"),
	}
}

// RunInfo carries the request-side context a RunResult does not.
type RunInfo struct {
	Caller          string
	UserText        string
	EvidenceCount   int
	Seed            int64
	Provider        string
	ProviderLatency time.Duration
}

// Record builds and stores one audit record for a completed run. Storage
// failures are logged and returned but must not fail the request path;
// callers decide whether to surface them.
func (r *Recorder) Record(ctx context.Context, info RunInfo, res *pipeline.RunResult) (*Record, error) {
	record := &Record{
		ID:            uuid.NewString(),
		RecordedAt:    time.Now().UTC(),
		Caller:        info.Caller,
		UserTextHash:  hashText(info.UserText),
		EvidenceCount: info.EvidenceCount,
		Seed:          info.Seed,

		Mode:          string(res.Decision.Mode),
		State:         string(res.Output.State),
		Damping:       res.Decision.Damping,
		RhoEnergy:     res.Metrics.RhoEnergy,
		RhoText:       res.Metrics.RhoText,
		RhoMask:       res.Metrics.RhoMask,
		EvidenceScore: res.Metrics.EvidenceScore.Score,

		EvidenceReasons: res.Metrics.EvidenceScore.Reasons,
		GateFault:       res.Metrics.GateFault,

		Provider:        info.Provider,
		ProviderLatency: info.ProviderLatency,
		OutputChars:     len(res.Output.Text),
	}
	if res.Metrics.Policy != nil {
		record.PolicyAllow = res.Metrics.Policy.Allow
		record.PolicyReasons = res.Metrics.Policy.Reasons
	} else {
		record.PolicyAllow = true
	}

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store audit record",
			"record_id", record.ID,
			"error", err,
		)
		return nil, err
	}

	r.logger.Debug("audit record stored",
		"record_id", record.ID,
		"mode", record.Mode,
		"state", record.State,
	)
	return record, nil
}

// hashText returns the hex SHA-256 of the text, or "" for empty text.
func hashText(text string) string {
	if text == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}
