// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records every file operation performed by flash runs in a
// SQLite database so files left in the holding directory can be found later.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/flash/internal/failure"
	"github.com/pdiddy/flash/pkg/types"
)

const defaultLimit = 50

// Store manages the ledger SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger at path, creating parent directories and
// the schema as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, failure.New(failure.LedgerFailed, "open", path, fmt.Errorf("creating ledger directory: %w", err))
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, failure.New(failure.LedgerFailed, "open", path, err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, failure.New(failure.LedgerFailed, "open", path, fmt.Errorf("creating schema: %w", err))
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			command TEXT NOT NULL,
			started_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			time TEXT NOT NULL,
			action TEXT NOT NULL,
			source TEXT NOT NULL,
			target TEXT,
			detail TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_action ON events(action)`,
		`CREATE INDEX IF NOT EXISTS idx_events_run_id ON events(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// NewRunID returns an identifier for a run started at t.
func NewRunID(t time.Time) string {
	return t.UTC().Format("20060102T150405.000000")
}

// BeginRun registers a run so its events can reference it.
func (s *Store) BeginRun(ctx context.Context, runID, command string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO runs (id, command, started_at) VALUES (?, ?, ?)`,
		runID, command, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return failure.New(failure.LedgerFailed, "begin run", runID, err)
	}
	return nil
}

// Record appends ev to the ledger. ev.RunID must have been registered with
// BeginRun.
func (s *Store) Record(ctx context.Context, ev types.Event) error {
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (run_id, time, action, source, target, detail) VALUES (?, ?, ?, ?, ?, ?)`,
		ev.RunID, ev.Time.UTC().Format(time.RFC3339Nano), string(ev.Action), ev.Source, ev.Target, ev.Detail,
	)
	if err != nil {
		return failure.New(failure.LedgerFailed, "record", ev.Source, err)
	}
	return nil
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Action types.Action
	RunID  string

	// Limit caps the result count. Zero uses the default (50); negative means no limit.
	Limit int
}

// List returns matching events, most recent first.
func (s *Store) List(ctx context.Context, f Filter) ([]types.Event, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT run_id, time, action, source, target, detail FROM events WHERE 1=1`)
	if f.Action != "" {
		qb.WriteString(` AND action = ?`)
		args = append(args, string(f.Action))
	}
	if f.RunID != "" {
		qb.WriteString(` AND run_id = ?`)
		args = append(args, f.RunID)
	}
	qb.WriteString(` ORDER BY id DESC`)

	limit := f.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	if limit > 0 {
		qb.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, failure.New(failure.LedgerFailed, "list", "", err)
	}
	defer rows.Close()

	var events []types.Event
	for rows.Next() {
		var (
			ev             types.Event
			ts, action     string
			target, detail sql.NullString
		)
		if err := rows.Scan(&ev.RunID, &ts, &action, &ev.Source, &target, &detail); err != nil {
			return nil, failure.New(failure.LedgerFailed, "list", "", fmt.Errorf("scanning row: %w", err))
		}
		ev.Time, _ = time.Parse(time.RFC3339Nano, ts)
		ev.Action = types.Action(action)
		ev.Target = target.String
		ev.Detail = detail.String
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, failure.New(failure.LedgerFailed, "list", "", err)
	}
	return events, nil
}

// Held returns the hold events whose staged file is still present on disk,
// oldest first. These are the originals nothing has reclaimed yet.
func (s *Store) Held(ctx context.Context) ([]types.Event, error) {
	events, err := s.List(ctx, Filter{Action: types.ActionHeld, Limit: -1})
	if err != nil {
		return nil, err
	}

	var held []types.Event
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		if _, err := os.Stat(ev.Target); err == nil {
			held = append(held, ev)
		}
	}
	return held, nil
}
