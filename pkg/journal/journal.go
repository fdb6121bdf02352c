// Package journal keeps a history of wheel operations in SQLite.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS operations (
	id          TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	target      TEXT,
	requested   INTEGER NOT NULL DEFAULT 0,
	outcome     TEXT NOT NULL,
	ticks       INTEGER NOT NULL,
	accepted    INTEGER NOT NULL,
	skipped     INTEGER NOT NULL,
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS operations_started ON operations(started_at);
`

// timeFormat is fixed width so stored timestamps sort as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Operation kinds.
const (
	KindSeek = "seek"
	KindSpin = "spin"
)

// Operation outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeCanceled  = "canceled"
	OutcomeStalled   = "stalled"
)

// Operation is one finished seek or spin.
type Operation struct {
	ID         string
	Kind       string
	Target     string // Color code for a seek
	Requested  int    // Transitions asked for by a spin
	Outcome    string
	Ticks      int
	Accepted   int
	Skipped    int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns how long the operation ran.
func (o Operation) Duration() time.Duration {
	return o.FinishedAt.Sub(o.StartedAt)
}

// NewID returns a fresh operation id.
func NewID() string {
	return uuid.New().String()
}

// Journal records operations to a SQLite database.
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal at path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores a finished operation. An empty ID is filled in.
func (j *Journal) Record(ctx context.Context, op Operation) error {
	if op.ID == "" {
		op.ID = NewID()
	}
	if op.FinishedAt.IsZero() {
		op.FinishedAt = time.Now().UTC()
	}
	if op.StartedAt.IsZero() {
		op.StartedAt = op.FinishedAt
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO operations (id, kind, target, requested, outcome, ticks, accepted, skipped, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		op.ID, op.Kind, nullIfEmpty(op.Target), op.Requested, op.Outcome,
		op.Ticks, op.Accepted, op.Skipped,
		op.StartedAt.UTC().Format(timeFormat),
		op.FinishedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("record operation: %w", err)
	}
	return nil
}

// Recent returns up to limit operations, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Operation, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, kind, target, requested, outcome, ticks, accepted, skipped, started_at, finished_at
		 FROM operations ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	var ops []Operation
	for rows.Next() {
		var op Operation
		var target sql.NullString
		var started, finished string
		if err := rows.Scan(&op.ID, &op.Kind, &target, &op.Requested, &op.Outcome,
			&op.Ticks, &op.Accepted, &op.Skipped, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		op.Target = target.String
		op.StartedAt, _ = time.Parse(timeFormat, started)
		op.FinishedAt, _ = time.Parse(timeFormat, finished)
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
