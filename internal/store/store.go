package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/BoFFire/kabyliner/internal"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		remote_url TEXT NOT NULL,
		local_path TEXT NOT NULL,
		downloaded BOOLEAN DEFAULT FALSE,
		local_size INTEGER,
		remote_size INTEGER,
		units INTEGER DEFAULT 0,
		pairs INTEGER DEFAULT 0,
		kept INTEGER DEFAULT 0,
		removed INTEGER DEFAULT 0,
		source_lines INTEGER DEFAULT 0,
		target_lines INTEGER DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveRun inserts a run record, assigning a UUID when run.ID is empty, and
// returns the ID used.
func (s *Store) SaveRun(ctx context.Context, run internal.RunRecord) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, remote_url, local_path, downloaded, local_size, remote_size, units, pairs, kept, removed, source_lines, target_lines, status, error, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.RemoteURL, run.LocalPath, run.Downloaded, run.LocalSize, run.RemoteSize,
		run.Units, run.Pairs, run.Kept, run.Removed, run.SourceLines, run.TargetLines,
		run.Status, run.Error, run.StartedAt.UTC(), run.FinishedAt.UTC())
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

const runColumns = `id, remote_url, local_path, downloaded, local_size, remote_size, units, pairs, kept, removed, source_lines, target_lines, status, COALESCE(error, ''), started_at, finished_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (internal.RunRecord, error) {
	var r internal.RunRecord
	err := row.Scan(&r.ID, &r.RemoteURL, &r.LocalPath, &r.Downloaded, &r.LocalSize, &r.RemoteSize,
		&r.Units, &r.Pairs, &r.Kept, &r.Removed, &r.SourceLines, &r.TargetLines,
		&r.Status, &r.Error, &r.StartedAt, &r.FinishedAt)
	return r, err
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*internal.RunRecord, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRuns returns runs ordered by most recent start. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]internal.RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []internal.RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunStats summarises the run history.
type RunStats struct {
	TotalRuns     int
	CompletedRuns int
	FailedRuns    int
	Downloads     int
	// LastPairs is the cleaned pair count of the most recent completed run.
	LastPairs int
	LastRunAt time.Time
}

// Stats returns summary statistics for the run history.
func (s *Store) Stats(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN downloaded THEN 1 ELSE 0 END), 0)
		FROM runs`, internal.RunCompleted, internal.RunFailed).Scan(
		&stats.TotalRuns,
		&stats.CompletedRuns,
		&stats.FailedRuns,
		&stats.Downloads,
	)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT kept, finished_at FROM runs WHERE status = ? ORDER BY started_at DESC LIMIT 1`,
		internal.RunCompleted).Scan(&stats.LastPairs, &stats.LastRunAt)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return stats, nil
}

// DeleteRun permanently removes a run by ID.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// ClearRuns removes every run and returns how many were deleted.
func (s *Store) ClearRuns(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Close() error {
	return s.db.Close()
}
