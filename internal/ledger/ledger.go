// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger keeps a SQLite history of conversion runs and the outcome
// of every document in them. The ledger is history only: nothing in it
// decides what a later run converts.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/gitbook-pandoc/pkg/types"
)

// Store manages the ledger database.
type Store struct {
	db *sql.DB
}

// Run is one recorded conversion run.
type Run struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time // zero while the run is in progress or if it aborted
	Source     string
	Dest       string
	Converted  int
	Skipped    int
	Failed     int
}

// Document is one recorded document outcome.
type Document struct {
	Seq    int
	Path   string
	Depth  types.Depth
	Status types.DocStatus
	Detail string
}

// Open opens or creates the ledger database at path, creating its parent
// directory and schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
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
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			source TEXT NOT NULL,
			dest TEXT NOT NULL,
			converted INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			path TEXT NOT NULL,
			depth INTEGER NOT NULL,
			status TEXT NOT NULL,
			detail TEXT,
			PRIMARY KEY (run_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun records the start of a run and returns its ID.
func (s *Store) BeginRun(ctx context.Context, source, dest string, started time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (started_at, source, dest) VALUES (?, ?, ?)`,
		started.UTC().Format(time.RFC3339Nano), source, dest,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	return res.LastInsertId()
}

// Record stores the outcome of the seq-th document of a run.
func (s *Store) Record(ctx context.Context, runID int64, seq int, o types.DocOutcome) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (run_id, seq, path, depth, status, detail) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id, seq) DO UPDATE SET
			path=excluded.path, depth=excluded.depth, status=excluded.status, detail=excluded.detail`,
		runID, seq, o.Path, int(o.Depth), string(o.Status), o.Detail,
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", o.Path, err)
	}
	return nil
}

// FinishRun stores the final counters of a run.
func (s *Store) FinishRun(ctx context.Context, runID int64, result types.Result, finished time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, converted = ?, skipped = ?, failed = ? WHERE id = ?`,
		finished.UTC().Format(time.RFC3339Nano), result.Converted, result.Skipped, result.Failed, runID,
	)
	if err != nil {
		return fmt.Errorf("finishing run %d: %w", runID, err)
	}
	return nil
}

// Runs returns the most recent runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, started_at, COALESCE(finished_at, ''), source, dest, converted, skipped, failed
		FROM runs ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished string
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.Source, &r.Dest, &r.Converted, &r.Skipped, &r.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished != "" {
			r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Documents returns the recorded documents of a run in index order.
func (s *Store) Documents(ctx context.Context, runID int64) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, path, depth, status, COALESCE(detail, '') FROM documents WHERE run_id = ? ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			d      Document
			depth  int
			status string
		)
		if err := rows.Scan(&d.Seq, &d.Path, &depth, &status, &d.Detail); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		d.Depth = types.Depth(depth)
		d.Status = types.DocStatus(status)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// RunRecorder binds a Store to one run so it can receive document outcomes
// as they happen.
type RunRecorder struct {
	Store *Store
	RunID int64
}

// Record stores the outcome under the bound run.
func (r RunRecorder) Record(ctx context.Context, seq int, o types.DocOutcome) error {
	return r.Store.Record(ctx, r.RunID, seq, o)
}
