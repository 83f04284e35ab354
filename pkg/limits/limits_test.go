package limits

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestTokenBucketBurstThenDeny(t *testing.T) {
	bucket := NewTokenBucket(3, 1)

	for i := 0; i < 3; i++ {
		if !bucket.Take(1) {
			t.Fatalf("Take %d denied within burst capacity", i+1)
		}
	}
	if bucket.Take(1) {
		t.Fatal("Take allowed beyond burst capacity")
	}
	if bucket.RetryAfter(1) <= 0 {
		t.Fatal("RetryAfter = 0 for an empty bucket")
	}
}

func TestTokenBucketRefills(t *testing.T) {
	// 100 tokens/sec so the test does not need long sleeps.
	bucket := NewTokenBucket(1, 100)

	if !bucket.Take(1) {
		t.Fatal("initial Take denied")
	}
	if bucket.Take(1) {
		t.Fatal("Take allowed on empty bucket")
	}

	time.Sleep(50 * time.Millisecond)
	if !bucket.Take(1) {
		t.Fatal("Take denied after refill window")
	}
}

func TestTokenBucketRestoreClamps(t *testing.T) {
	bucket := NewTokenBucket(5, 1)
	bucket.Restore(100, time.Now())
	if got := bucket.Remaining(); got != 5 {
		t.Fatalf("Remaining after over-capacity restore = %d, want 5", got)
	}

	bucket.Restore(-3, time.Now())
	if got := bucket.Remaining(); got != 0 {
		t.Fatalf("Remaining after negative restore = %d, want 0", got)
	}
}

func TestLimiterIsolatesCallers(t *testing.T) {
	limiter, err := NewLimiter(1, 0.001, nil, nil)
	if err != nil {
		t.Fatalf("NewLimiter: %v", err)
	}

	if !limiter.Allow("alice") {
		t.Fatal("alice denied on first request")
	}
	if limiter.Allow("alice") {
		t.Fatal("alice allowed past her burst")
	}
	// Exhausting alice must not affect bob.
	if !limiter.Allow("bob") {
		t.Fatal("bob denied on first request")
	}
}

func TestLimiterPersistsAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limits.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	limiter, err := NewLimiter(2, 0.001, store, nil)
	if err != nil {
		t.Fatalf("NewLimiter: %v", err)
	}

	if !limiter.Allow("alice") || !limiter.Allow("alice") {
		t.Fatal("alice denied within burst")
	}
	if err := limiter.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopen: alice's empty bucket must survive the restart.
	store, err = NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore (reopen): %v", err)
	}
	defer store.Close()

	states, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	state, ok := states["alice"]
	if !ok {
		t.Fatal("alice's bucket state not persisted")
	}
	if state.Tokens != 0 {
		t.Fatalf("persisted tokens = %d, want 0", state.Tokens)
	}

	limiter, err = NewLimiter(2, 0.001, store, nil)
	if err != nil {
		t.Fatalf("NewLimiter (reopen): %v", err)
	}
	if limiter.Allow("alice") {
		t.Fatal("alice allowed despite restored empty bucket")
	}
}
