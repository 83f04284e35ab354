package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SchemaVersion is the current audit schema version.
const SchemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id               TEXT PRIMARY KEY,
	recorded_at      TIMESTAMP NOT NULL,
	caller           TEXT NOT NULL DEFAULT '',
	user_text_hash   TEXT NOT NULL,
	evidence_count   INTEGER NOT NULL,
	seed             INTEGER NOT NULL,
	mode             TEXT NOT NULL,
	state            TEXT NOT NULL,
	damping          REAL NOT NULL,
	rho_energy       REAL NOT NULL,
	rho_text         REAL NOT NULL,
	rho_mask         REAL NOT NULL,
	evidence_score   REAL NOT NULL,
	evidence_reasons TEXT NOT NULL DEFAULT '[]',
	policy_allow     INTEGER NOT NULL,
	policy_reasons   TEXT NOT NULL DEFAULT '[]',
	gate_fault       TEXT NOT NULL DEFAULT '',
	provider         TEXT NOT NULL DEFAULT '',
	provider_latency_ms INTEGER NOT NULL DEFAULT 0,
	output_chars     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_recorded_at ON runs(recorded_at);
CREATE INDEX IF NOT EXISTS idx_runs_state ON runs(state);
CREATE INDEX IF NOT EXISTS idx_runs_caller ON runs(caller);

CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);
`

// SQLiteConfig contains configuration for the SQLite audit backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/audit.db",
		MaxOpenConns: 10,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements Storage on a SQLite database.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens the database and initializes the schema.
func NewSQLiteStorage(config *SQLiteConfig, logger *slog.Logger) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "audit.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, newStorageError("sqlite", "open", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)

	s := &SQLiteStorage{db: db, config: config, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("audit storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)
	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return newStorageError("sqlite", "enable_wal", err)
		}
	}

	busyMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyMs)); err != nil {
		return newStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(schema); err != nil {
		return newStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec("INSERT OR IGNORE INTO schema_version (version) VALUES (?)", SchemaVersion); err != nil {
		return newStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return newStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return newStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	return nil
}

// Store persists a record.
func (s *SQLiteStorage) Store(ctx context.Context, record *Record) error {
	evidenceReasons, _ := json.Marshal(record.EvidenceReasons)
	policyReasons, _ := json.Marshal(record.PolicyReasons)

	const query = `
		INSERT INTO runs (
			id, recorded_at, caller, user_text_hash, evidence_count, seed,
			mode, state, damping, rho_energy, rho_text, rho_mask,
			evidence_score, evidence_reasons, policy_allow, policy_reasons,
			gate_fault, provider, provider_latency_ms, output_chars
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.RecordedAt, record.Caller, record.UserTextHash,
		record.EvidenceCount, record.Seed,
		record.Mode, record.State, record.Damping,
		record.RhoEnergy, record.RhoText, record.RhoMask,
		record.EvidenceScore, string(evidenceReasons),
		record.PolicyAllow, string(policyReasons),
		record.GateFault, record.Provider,
		record.ProviderLatency.Milliseconds(), record.OutputChars,
	)
	if err != nil {
		return newStorageError("sqlite", "store", err)
	}
	return nil
}

// Query returns records matching the filters, newest first.
func (s *SQLiteStorage) Query(ctx context.Context, query *Query) ([]*Record, error) {
	where, args := buildWhereClause(query)

	sqlQuery := "SELECT * FROM runs"
	if where != "" {
		sqlQuery += " WHERE " + where
	}
	sqlQuery += " ORDER BY recorded_at DESC"

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, newStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*Record{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, newStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, newStorageError("sqlite", "query", err)
	}
	return records, nil
}

// Count returns the number of matching records.
func (s *SQLiteStorage) Count(ctx context.Context, query *Query) (int64, error) {
	where, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM runs"
	if where != "" {
		sqlQuery += " WHERE " + where
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, newStorageError("sqlite", "count", err)
	}
	return count, nil
}

// Delete removes matching records and reports how many.
func (s *SQLiteStorage) Delete(ctx context.Context, query *Query) (int64, error) {
	where, args := buildWhereClause(query)

	sqlQuery := "DELETE FROM runs"
	if where != "" {
		sqlQuery += " WHERE " + where
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, newStorageError("sqlite", "delete", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, newStorageError("sqlite", "delete", err)
	}
	return count, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return newStorageError("sqlite", "close", err)
	}
	s.logger.Info("audit storage closed")
	return nil
}

func buildWhereClause(query *Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if query.StartTime != nil {
		conditions = append(conditions, "recorded_at >= ?")
		args = append(args, *query.StartTime)
	}
	if query.EndTime != nil {
		conditions = append(conditions, "recorded_at <= ?")
		args = append(args, *query.EndTime)
	}
	if query.Mode != "" {
		conditions = append(conditions, "mode = ?")
		args = append(args, query.Mode)
	}
	if query.State != "" {
		conditions = append(conditions, "state = ?")
		args = append(args, query.State)
	}
	if query.Caller != "" {
		conditions = append(conditions, "caller = ?")
		args = append(args, query.Caller)
	}

	where := ""
	for i, condition := range conditions {
		if i > 0 {
			where += " AND "
		}
		where += condition
	}
	return where, args
}

func scanRow(rows *sql.Rows) (*Record, error) {
	var record Record
	var evidenceReasons, policyReasons string
	var providerLatencyMs int64

	err := rows.Scan(
		&record.ID, &record.RecordedAt, &record.Caller, &record.UserTextHash,
		&record.EvidenceCount, &record.Seed,
		&record.Mode, &record.State, &record.Damping,
		&record.RhoEnergy, &record.RhoText, &record.RhoMask,
		&record.EvidenceScore, &evidenceReasons,
		&record.PolicyAllow, &policyReasons,
		&record.GateFault, &record.Provider,
		&providerLatencyMs, &record.OutputChars,
	)
	if err != nil {
		return nil, err
	}

	if evidenceReasons != "" {
		json.Unmarshal([]byte(evidenceReasons), &record.EvidenceReasons)
	}
	if policyReasons != "" {
		json.Unmarshal([]byte(policyReasons), &record.PolicyReasons)
	}
	record.ProviderLatency = time.Duration(providerLatencyMs) * time.Millisecond
	return &record, nil
}
