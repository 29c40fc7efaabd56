// Package journal keeps a SQLite record of every tracker call made by a run,
// so a partially failed import can be inspected afterwards.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/steveyegge/plan2bead/internal/tracker"
)

const schema = `
CREATE TABLE IF NOT EXISTS tracker_calls (
    id TEXT PRIMARY KEY,
    run_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    issue_id TEXT NOT NULL DEFAULT '',
    args TEXT NOT NULL DEFAULT '[]',
    ok INTEGER NOT NULL,
    error TEXT NOT NULL DEFAULT '',
    duration_ms INTEGER NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tracker_calls_run ON tracker_calls(run_id);
`

// timeLayout is fixed-width UTC so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Entry is one journaled tracker call.
type Entry struct {
	ID        string
	RunID     string
	Kind      tracker.Kind
	IssueID   string
	Args      []string
	OK        bool
	Error     string
	Duration  time.Duration
	CreatedAt time.Time
}

// RunSummary aggregates the calls of one run.
type RunSummary struct {
	RunID      string
	Calls      int
	Failures   int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Store is a journal database.
type Store struct {
	db *sql.DB
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// Open opens or creates the journal at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	// One connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping journal: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores e, filling in ID and CreatedAt when they are unset.
func (s *Store) Record(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	args := e.Args
	if args == nil {
		args = []string{}
	}
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to marshal call args: %w", err)
	}

	ok := 0
	if e.OK {
		ok = 1
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tracker_calls (
			id, run_id, kind, issue_id, args, ok, error, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		e.RunID,
		string(e.Kind),
		e.IssueID,
		string(argsJSON),
		ok,
		e.Error,
		e.Duration.Milliseconds(),
		e.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to record %s call (run=%s): %w", e.Kind, e.RunID, err)
	}
	return nil
}

// Entries returns the calls of one run in the order they were made.
func (s *Store) Entries(ctx context.Context, runID string) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, kind, issue_id, args, ok, error, duration_ms, created_at
		FROM tracker_calls
		WHERE run_id = ?
		ORDER BY rowid
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*Entry
	for rows.Next() {
		var (
			e          Entry
			kind       string
			argsJSON   string
			ok         int64
			durationMS int64
			createdAt  string
		)
		if err := rows.Scan(&e.ID, &e.RunID, &kind, &e.IssueID, &argsJSON, &ok, &e.Error, &durationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		if err := json.Unmarshal([]byte(argsJSON), &e.Args); err != nil {
			return nil, fmt.Errorf("failed to decode args of entry %s: %w", e.ID, err)
		}
		if e.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse timestamp of entry %s: %w", e.ID, err)
		}
		e.Kind = tracker.Kind(kind)
		e.OK = ok != 0
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	return entries, nil
}

// Runs returns up to limit runs, most recent first. A limit of zero or less
// returns every run.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id,
		       COUNT(*),
		       SUM(CASE WHEN ok = 0 THEN 1 ELSE 0 END),
		       MIN(created_at),
		       MAX(created_at)
		FROM tracker_calls
		GROUP BY run_id
		ORDER BY MIN(created_at) DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var started, ended string
		if err := rows.Scan(&r.RunID, &r.Calls, &r.Failures, &started, &ended); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if r.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("failed to parse start of run %s: %w", r.RunID, err)
		}
		if r.FinishedAt, err = time.Parse(timeLayout, ended); err != nil {
			return nil, fmt.Errorf("failed to parse end of run %s: %w", r.RunID, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return runs, nil
}
