package limits

import (
	"sync"
	"time"
)

// TokenBucket is a thread-safe token bucket. Tokens refill at a constant
// rate up to the capacity; each permitted request consumes one or more
// tokens.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   int64
	tokens     int64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// NewTokenBucket creates a full bucket with the given burst capacity and
// sustained refill rate in tokens per second.
func NewTokenBucket(capacity int64, refillRate float64) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Take attempts to consume n tokens, refilling first. It reports whether
// the tokens were available.
func (tb *TokenBucket) Take(n int64) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked()
	if tb.tokens >= n {
		tb.tokens -= n
		return true
	}
	return false
}

// Remaining refills and returns the currently available tokens.
func (tb *TokenBucket) Remaining() int64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked()
	return tb.tokens
}

// RetryAfter returns how long until n tokens will be available, zero if
// they already are.
func (tb *TokenBucket) RetryAfter(n int64) time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked()
	if tb.tokens >= n {
		return 0
	}
	needed := float64(n-tb.tokens) / tb.refillRate
	return time.Duration(needed * float64(time.Second))
}

// Snapshot returns the current token count and refill timestamp for
// persistence.
func (tb *TokenBucket) Snapshot() (tokens int64, lastRefill time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked()
	return tb.tokens, tb.lastRefill
}

// Restore overwrites the bucket state from a persisted snapshot. Token
// counts are clamped to the capacity.
func (tb *TokenBucket) Restore(tokens int64, lastRefill time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tokens > tb.capacity {
		tokens = tb.capacity
	}
	if tokens < 0 {
		tokens = 0
	}
	tb.tokens = tokens
	tb.lastRefill = lastRefill
}

func (tb *TokenBucket) refillLocked() {
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)

	tokensToAdd := int64(elapsed.Seconds() * tb.refillRate)
	if tokensToAdd > 0 {
		tb.tokens += tokensToAdd
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastRefill = now
	}
}
