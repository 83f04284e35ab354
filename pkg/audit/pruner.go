package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RetentionConfig controls how long audit records are kept.
type RetentionConfig struct {
	// RetentionDays is the number of days to retain records.
	// 0 means keep records forever.
	RetentionDays int

	// MaxRecords caps the total number of stored records; the oldest are
	// deleted first. 0 means unlimited.
	MaxRecords int64

	// PruneSchedule is a cron expression for automatic pruning, for
	// example "0 3 * * *". Empty disables the scheduler; Prune can still
	// be called directly.
	PruneSchedule string
}

// DefaultRetentionConfig returns the default retention configuration.
func DefaultRetentionConfig() *RetentionConfig {
	return &RetentionConfig{
		RetentionDays: 30,
		MaxRecords:    0,
		PruneSchedule: "0 3 * * *",
	}
}

// Pruner enforces retention on audit records, optionally on a cron
// schedule.
type Pruner struct {
	storage Storage
	config  *RetentionConfig
	logger  *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewPruner creates a retention pruner.
func NewPruner(storage Storage, config *RetentionConfig, logger *slog.Logger) *Pruner {
	if config == nil {
		config = DefaultRetentionConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{
		storage: storage,
		config:  config,
		logger:  logger.With("component", "audit.retention"),
		cron:    cron.New(),
	}
}

// Prune deletes records older than the retention period, then records
// beyond the count cap, oldest first. Returns the total deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var total int64

	if p.config.RetentionDays > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return total, fmt.Errorf("prune by age failed: %w", err)
		}
		total += deleted
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return total, fmt.Errorf("prune by count failed: %w", err)
		}
		total += deleted
	}

	if total > 0 {
		p.logger.Info("audit pruning completed",
			"deleted", total,
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	}
	return total, nil
}

func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)
	return p.storage.Delete(ctx, &Query{EndTime: &cutoff})
}

func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, &Query{})
	if err != nil {
		return 0, err
	}
	if count <= p.config.MaxRecords {
		return 0, nil
	}

	// Query returns newest first, so the records past MaxRecords are the
	// oldest. Delete everything at or before the newest of those.
	excess := count - p.config.MaxRecords
	oldest, err := p.storage.Query(ctx, &Query{
		Limit:  int(excess),
		Offset: int(p.config.MaxRecords),
	})
	if err != nil {
		return 0, err
	}
	if len(oldest) == 0 {
		return 0, nil
	}

	cutoff := oldest[0].RecordedAt
	return p.storage.Delete(ctx, &Query{EndTime: &cutoff})
}

// Start schedules automatic pruning. It is a no-op when PruneSchedule is
// empty. The scheduler stops when the context is canceled.
func (p *Pruner) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.config.PruneSchedule == "" {
		p.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(p.config.PruneSchedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", p.config.PruneSchedule, err)
	}

	_, err := p.cron.AddFunc(p.config.PruneSchedule, func() {
		if _, err := p.Prune(ctx); err != nil {
			p.logger.Error("scheduled pruning failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	p.cron.Start()
	p.running = true
	p.logger.Info("retention scheduler started",
		"schedule", p.config.PruneSchedule,
		"retention_days", p.config.RetentionDays,
	)

	go func() {
		<-ctx.Done()
		p.Stop()
	}()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (p *Pruner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		<-p.cron.Stop().Done()
		p.running = false
		p.logger.Info("retention scheduler stopped")
	}
}

// NextPruning returns the next scheduled pruning time, or nil when the
// scheduler is not running.
func (p *Pruner) NextPruning() *time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	entries := p.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
