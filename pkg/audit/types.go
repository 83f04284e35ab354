package audit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var errClosed = errors.New("storage closed")

// Record is one persisted pipeline run. The user text is stored only as a
// SHA-256 hash; evidence items are not stored at all.
type Record struct {
	// ID is a UUID assigned at record time, not by the pipeline.
	ID string `json:"id"`

	// RecordedAt is when the record was created.
	RecordedAt time.Time `json:"recorded_at"`

	// Caller identifies the requesting principal, when known.
	Caller string `json:"caller,omitempty"`

	// UserTextHash is the hex SHA-256 of the request text.
	UserTextHash string `json:"user_text_hash"`

	// EvidenceCount is the number of evidence items supplied.
	EvidenceCount int `json:"evidence_count"`

	// Seed is the request's random seed.
	Seed int64 `json:"seed"`

	// Decision telemetry.
	Mode          string  `json:"mode"`
	State         string  `json:"state"`
	Damping       float64 `json:"damping"`
	RhoEnergy     float64 `json:"rho_energy"`
	RhoText       float64 `json:"rho_text"`
	RhoMask       float64 `json:"rho_mask"`
	EvidenceScore float64 `json:"evidence_score"`

	// EvidenceReasons mirrors the evidence assessment's reason list.
	EvidenceReasons []string `json:"evidence_reasons,omitempty"`

	// PolicyAllow and PolicyReasons mirror the action-gate outcome.
	PolicyAllow   bool     `json:"policy_allow"`
	PolicyReasons []string `json:"policy_reasons,omitempty"`

	// GateFault is non-empty when the gate faulted and the run was
	// fail-closed.
	GateFault string `json:"gate_fault,omitempty"`

	// Provider telemetry for answered runs.
	Provider        string        `json:"provider,omitempty"`
	ProviderLatency time.Duration `json:"provider_latency,omitempty"`

	// OutputChars is the length of the returned text.
	OutputChars int `json:"output_chars"`
}

// Query filters stored records. Zero-valued fields are not applied.
type Query struct {
	// StartTime and EndTime bound RecordedAt inclusively.
	StartTime *time.Time
	EndTime   *time.Time

	// Mode, State, and Caller are exact-match filters.
	Mode   string
	State  string
	Caller string

	// Limit caps the result set; zero means the backend default.
	Limit int

	// Offset skips leading results.
	Offset int
}

// Storage persists audit records. Implementations must be safe for
// concurrent use.
type Storage interface {
	// Store persists a record.
	Store(ctx context.Context, record *Record) error

	// Query returns records matching the filters, newest first.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of matching records.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes matching records and reports how many.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases backend resources.
	Close() error
}

// StorageError wraps a backend failure with the backend name and
// operation.
type StorageError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("audit storage %s: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func newStorageError(backend, op string, err error) *StorageError {
	return &StorageError{Backend: backend, Op: op, Err: err}
}
