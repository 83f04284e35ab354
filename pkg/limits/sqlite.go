package limits

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists bucket snapshots to a SQLite database. It uses the
// pure-Go driver so binaries without cgo can still persist limits.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at path and creates the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("limits store path cannot be empty")
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d", path, 5000)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open limits store: %w", err)
	}
	// SQLite supports a single writer.
	db.SetMaxOpenConns(1)

	const schema = `
	CREATE TABLE IF NOT EXISTS buckets (
		caller      TEXT PRIMARY KEY,
		tokens      INTEGER NOT NULL,
		last_refill INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize limits schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save upserts one caller's bucket state.
func (s *SQLiteStore) Save(ctx context.Context, caller string, tokens int64, lastRefill time.Time) error {
	const query = `
		INSERT INTO buckets (caller, tokens, last_refill) VALUES (?, ?, ?)
		ON CONFLICT(caller) DO UPDATE SET tokens = excluded.tokens, last_refill = excluded.last_refill
	`
	_, err := s.db.ExecContext(ctx, query, caller, tokens, lastRefill.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save bucket for %q: %w", caller, err)
	}
	return nil
}

// Load returns all persisted bucket states keyed by caller.
func (s *SQLiteStore) Load(ctx context.Context) (map[string]BucketState, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT caller, tokens, last_refill FROM buckets")
	if err != nil {
		return nil, fmt.Errorf("failed to load buckets: %w", err)
	}
	defer rows.Close()

	states := make(map[string]BucketState)
	for rows.Next() {
		var caller string
		var tokens, lastRefillNano int64
		if err := rows.Scan(&caller, &tokens, &lastRefillNano); err != nil {
			return nil, fmt.Errorf("failed to scan bucket row: %w", err)
		}
		states[caller] = BucketState{
			Tokens:     tokens,
			LastRefill: time.Unix(0, lastRefillNano),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load buckets: %w", err)
	}
	return states, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
