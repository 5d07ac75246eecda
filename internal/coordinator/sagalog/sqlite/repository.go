// Package sqlite stores saga logs in a local SQLite file using the pure-Go
// modernc driver, so the binary builds without cgo.
//
// The database runs in WAL mode: checkout goroutines append entries while a
// reader replays History, and neither blocks the other.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jcmexdev/storefront/internal/coordinator/sagalog"

	// registers the "sqlite" driver name
	_ "modernc.org/sqlite"
)

// schema is applied on every Open; IF NOT EXISTS makes it idempotent.
// Rows are immutable: one per transition, ordered by id within a saga.
const schema = `
CREATE TABLE IF NOT EXISTS saga_logs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,

    -- checkout id; repeated once per transition, so not UNIQUE
    saga_id         TEXT NOT NULL,

    status          TEXT NOT NULL,
    current_step    TEXT NOT NULL DEFAULT '',

    -- JSON cart snapshot on the STARTED row, NULL on every other row
    payload         TEXT,

    -- JSON array: failing step first, then failed compensations
    error_messages  TEXT NOT NULL DEFAULT '[]',

    -- W3C ids of the span active at write time, '' without tracing
    trace_id        TEXT NOT NULL DEFAULT '',
    span_id         TEXT NOT NULL DEFAULT '',

    -- RFC3339Nano in UTC; SQLite has no native timestamp type
    updated_at      TEXT NOT NULL
);

-- History and Latest: all rows of one saga in write order
CREATE INDEX IF NOT EXISTS idx_saga_logs_saga_id ON saga_logs(saga_id, id);

-- going from a trace back to its checkout
CREATE INDEX IF NOT EXISTS idx_saga_logs_trace_id ON saga_logs(trace_id);
`

const selectColumns = `saga_id, status, current_step, COALESCE(payload,''), error_messages,
       trace_id, span_id, updated_at`

type Repository struct {
	db *sql.DB
}

// Open opens or creates the database at path in WAL mode and applies the
// schema.
//
//	repo, err := sqlite.Open("./data/saga.db")
func Open(path string) (*Repository, error) {
	// modernc reads connection pragmas from _pragma query parameters.
	// busy_timeout makes a writer wait up to 5s for the lock instead of
	// failing with SQLITE_BUSY.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	// SQLite allows one writer at a time; a single connection serialises
	// Save calls in the pool instead of in the database lock.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close releases the database handle. main defers it.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save appends entry. It is safe for concurrent use.
func (r *Repository) Save(ctx context.Context, entry *sagalog.SagaLog) error {
	const q = `
		INSERT INTO saga_logs
			(saga_id, status, current_step, payload, error_messages, trace_id, span_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.SagaID,
		string(entry.Status),
		entry.CurrentStep,
		nullableString(entry.Payload),
		entry.ErrorMessages,
		entry.TraceID,
		entry.SpanID,
		formatTime(entry.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save saga log for %q: %w", entry.SagaID, err)
	}
	return nil
}

// History returns the saga's entries in write order. The id column breaks
// ties between entries written within the same clock tick.
func (r *Repository) History(ctx context.Context, sagaID string) ([]sagalog.SagaLog, error) {
	q := `SELECT ` + selectColumns + ` FROM saga_logs WHERE saga_id = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, q, sagaID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: history for %q: %w", sagaID, err)
	}
	defer rows.Close()

	var out []sagalog.SagaLog
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *entry)
	}
	return out, rows.Err()
}

func (r *Repository) Latest(ctx context.Context, sagaID string) (*sagalog.SagaLog, error) {
	q := `SELECT ` + selectColumns + ` FROM saga_logs WHERE saga_id = ? ORDER BY id DESC LIMIT 1`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, q, sagaID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sagalog.ErrSagaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: latest for %q: %w", sagaID, err)
	}
	return entry, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*sagalog.SagaLog, error) {
	var entry sagalog.SagaLog
	var updatedAt string
	if err := s.Scan(
		&entry.SagaID,
		&entry.Status,
		&entry.CurrentStep,
		&entry.Payload,
		&entry.ErrorMessages,
		&entry.TraceID,
		&entry.SpanID,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	t, err := parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	entry.UpdatedAt = t
	return &entry, nil
}

// nullableString stores NULL for an empty payload, so only the STARTED row
// carries one. COALESCE in selectColumns turns it back into "".
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
