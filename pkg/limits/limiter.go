package limits

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Store persists per-caller bucket snapshots across restarts.
type Store interface {
	// Save upserts one caller's bucket state.
	Save(ctx context.Context, caller string, tokens int64, lastRefill time.Time) error

	// Load returns all persisted bucket states keyed by caller.
	Load(ctx context.Context) (map[string]BucketState, error)

	// Close releases store resources.
	Close() error
}

// BucketState is a persisted bucket snapshot.
type BucketState struct {
	Tokens     int64
	LastRefill time.Time
}

// Limiter rate-limits requests per caller. Unknown callers get a fresh
// full bucket on first sight.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*TokenBucket

	burst int64
	rate  float64

	store  Store
	logger *slog.Logger
}

// NewLimiter creates a limiter with the given per-caller burst capacity
// and sustained rate in requests per second. store may be nil for
// memory-only operation; when set, previously persisted bucket states are
// restored.
func NewLimiter(burst int64, rate float64, store Store, logger *slog.Logger) (*Limiter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Limiter{
		buckets: make(map[string]*TokenBucket),
		burst:   burst,
		rate:    rate,
		store:   store,
		logger:  logger.With("component", "limits"),
	}

	if store != nil {
		states, err := store.Load(context.Background())
		if err != nil {
			return nil, err
		}
		for caller, state := range states {
			bucket := NewTokenBucket(burst, rate)
			bucket.Restore(state.Tokens, state.LastRefill)
			l.buckets[caller] = bucket
		}
		if len(states) > 0 {
			l.logger.Info("restored rate limit state", "callers", len(states))
		}
	}
	return l, nil
}

// Allow consumes one token for the caller and reports whether the request
// may proceed.
func (l *Limiter) Allow(caller string) bool {
	return l.bucket(caller).Take(1)
}

// RetryAfter reports how long the caller must wait for the next token.
func (l *Limiter) RetryAfter(caller string) time.Duration {
	return l.bucket(caller).RetryAfter(1)
}

// Remaining reports the caller's available tokens.
func (l *Limiter) Remaining(caller string) int64 {
	return l.bucket(caller).Remaining()
}

// Persist writes every bucket's snapshot to the store. It is a no-op
// without a store.
func (l *Limiter) Persist(ctx context.Context) error {
	if l.store == nil {
		return nil
	}

	l.mu.Lock()
	snapshot := make(map[string]*TokenBucket, len(l.buckets))
	for caller, bucket := range l.buckets {
		snapshot[caller] = bucket
	}
	l.mu.Unlock()

	for caller, bucket := range snapshot {
		tokens, lastRefill := bucket.Snapshot()
		if err := l.store.Save(ctx, caller, tokens, lastRefill); err != nil {
			return err
		}
	}
	return nil
}

// Close persists bucket state and closes the store.
func (l *Limiter) Close() error {
	if l.store == nil {
		return nil
	}
	if err := l.Persist(context.Background()); err != nil {
		l.logger.Error("failed to persist rate limit state", "error", err)
	}
	return l.store.Close()
}

func (l *Limiter) bucket(caller string) *TokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, ok := l.buckets[caller]
	if !ok {
		bucket = NewTokenBucket(l.burst, l.rate)
		l.buckets[caller] = bucket
	}
	return bucket
}
