// Package history records analysis runs in a SQLite database so totals can be
// compared across runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ccollicutt/gcstw/pkg/gclog"
	"github.com/ccollicutt/gcstw/pkg/output"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_at TEXT NOT NULL,
	config_file TEXT NOT NULL DEFAULT '',
	total_pause_seconds REAL NOT NULL,
	stw_threshold REAL NOT NULL DEFAULT 0,
	over_threshold INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS run_sources (
	run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	source TEXT NOT NULL,
	algorithm TEXT NOT NULL,
	total_pause_seconds REAL NOT NULL,
	lines INTEGER NOT NULL,
	pauses_counted INTEGER NOT NULL,
	pauses_ignored INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_run_at ON runs(run_at);
CREATE INDEX IF NOT EXISTS idx_run_sources_run_id ON run_sources(run_id);
`

// Run is one recorded analysis.
type Run struct {
	ID                int64       `json:"id"`
	RunAt             time.Time   `json:"run_at"`
	ConfigFile        string      `json:"config_file,omitempty"`
	TotalPauseSeconds float64     `json:"total_pause_seconds"`
	Threshold         float64     `json:"stw_threshold,omitempty"`
	OverThreshold     bool        `json:"over_threshold"`
	Sources           []RunSource `json:"sources"`
}

// RunSource is the per-log part of a run.
type RunSource struct {
	Source            string          `json:"source"`
	Algorithm         gclog.Algorithm `json:"algorithm"`
	TotalPauseSeconds float64         `json:"total_pause_seconds"`
	Lines             int             `json:"lines"`
	PausesCounted     int             `json:"pauses_counted"`
	PausesIgnored     int             `json:"pauses_ignored"`
}

// Store is a run history database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database %s: %w", path, err)
	}

	s := &Store{db: db, path: path}
	if err := s.initDB(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history database %s: %w", path, err)
	}
	return s, nil
}

func (s *Store) initDB(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return err
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			slog.Warn("failed to set pragma", "pragma", pragma, "error", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a report and returns the new run ID.
func (s *Store) Record(ctx context.Context, report *output.Report) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	runAt := report.Metadata.AnalyzedAt
	if runAt.IsZero() {
		runAt = time.Now()
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_at, config_file, total_pause_seconds, stw_threshold, over_threshold)
		VALUES (?, ?, ?, ?, ?)`,
		runAt.UTC().Format(time.RFC3339Nano), report.Metadata.ConfigFile,
		report.TotalPauseSeconds, report.Threshold, report.OverThreshold())
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	for _, src := range report.Sources {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_sources (run_id, source, algorithm, total_pause_seconds, lines, pauses_counted, pauses_ignored)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, src.Source, string(src.Algorithm), src.TotalPauseSeconds,
			src.Stats.LinesProcessed, src.Stats.PausesCounted, src.Stats.PausesIgnored); err != nil {
			return 0, fmt.Errorf("inserting source %s: %w", src.Source, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}

	slog.Debug("run recorded", "db", s.path, "run_id", id, "sources", len(report.Sources))
	return id, nil
}

// Recent returns up to limit runs, newest first, with their sources.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_at, config_file, total_pause_seconds, stw_threshold, over_threshold
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var runAt string
		if err := rows.Scan(&r.ID, &runAt, &r.ConfigFile, &r.TotalPauseSeconds, &r.Threshold, &r.OverThreshold); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if r.RunAt, err = time.Parse(time.RFC3339Nano, runAt); err != nil {
			return nil, fmt.Errorf("run %d: parsing run_at %q: %w", r.ID, runAt, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	for i := range runs {
		sources, err := s.sources(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Sources = sources
	}
	return runs, nil
}

func (s *Store) sources(ctx context.Context, runID int64) ([]RunSource, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, algorithm, total_pause_seconds, lines, pauses_counted, pauses_ignored
		FROM run_sources WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying sources of run %d: %w", runID, err)
	}
	defer rows.Close()

	var sources []RunSource
	for rows.Next() {
		var src RunSource
		var algorithm string
		if err := rows.Scan(&src.Source, &algorithm, &src.TotalPauseSeconds, &src.Lines, &src.PausesCounted, &src.PausesIgnored); err != nil {
			return nil, fmt.Errorf("scanning source of run %d: %w", runID, err)
		}
		src.Algorithm = gclog.Algorithm(algorithm)
		sources = append(sources, src)
	}
	return sources, rows.Err()
}
