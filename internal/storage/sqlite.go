// Package storage provides SQLite-based persistence for saved planetary
// systems and performance runs.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/orrery/internal/catalog"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("storage: not found")

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// SystemEntry describes a stored system without its body list.
type SystemEntry struct {
	ID        string
	Name      string
	UpdatedAt time.Time
}

// Run is one recorded performance run of a system.
type Run struct {
	ID           string
	SystemID     string
	Mode         string
	Frames       int
	AvgFPS       float64
	MinFPS       float64
	AvgFrameTime time.Duration
	MaxFrameTime time.Duration
	PeakMemoryMB float64
	MaxDrawCalls int
	MaxTriangles int
	Suggestions  int
	CreatedAt    time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS systems (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			body BLOB NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS perf_runs (
			id TEXT PRIMARY KEY,
			system_id TEXT NOT NULL,
			mode TEXT NOT NULL,
			frames INTEGER NOT NULL DEFAULT 0,
			avg_fps REAL NOT NULL DEFAULT 0,
			min_fps REAL NOT NULL DEFAULT 0,
			avg_frame_us INTEGER NOT NULL DEFAULT 0,
			max_frame_us INTEGER NOT NULL DEFAULT 0,
			peak_memory_mb REAL NOT NULL DEFAULT 0,
			max_draw_calls INTEGER NOT NULL DEFAULT 0,
			max_triangles INTEGER NOT NULL DEFAULT 0,
			suggestions INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_perf_runs_system ON perf_runs(system_id);
		CREATE INDEX IF NOT EXISTS idx_perf_runs_best ON perf_runs(system_id, avg_fps DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Name implements registry.Source.
func (s *Store) Name() string { return "sqlite" }

// Systems implements registry.Source. Rows that no longer parse are
// skipped and reported in the joined error.
func (s *Store) Systems(ctx context.Context) ([]catalog.System, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, body FROM systems ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query systems: %w", err)
	}
	defer rows.Close()

	var (
		systems []catalog.System
		errs    []error
	)
	for rows.Next() {
		var id string
		var body []byte
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		sys, err := catalog.Parse(body)
		if err != nil {
			errs = append(errs, fmt.Errorf("storage: system %s: %w", id, err))
			continue
		}
		systems = append(systems, sys)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return systems, errors.Join(errs...)
}

// SaveSystem inserts or replaces a system.
func (s *Store) SaveSystem(ctx context.Context, sys catalog.System) error {
	if err := sys.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	body, err := catalog.Marshal(sys)
	if err != nil {
		return fmt.Errorf("storage: cannot encode system: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO systems (id, name, body, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, body = excluded.body, updated_at = CURRENT_TIMESTAMP`,
		sys.ID, sys.Title(), body,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save system: %w", err)
	}
	return nil
}

// LoadSystem returns the stored system with the given id.
func (s *Store) LoadSystem(ctx context.Context, id string) (catalog.System, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM systems WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.System{}, fmt.Errorf("%w: system %q", ErrNotFound, id)
	}
	if err != nil {
		return catalog.System{}, fmt.Errorf("storage: cannot query system: %w", err)
	}
	sys, err := catalog.Parse(body)
	if err != nil {
		return catalog.System{}, fmt.Errorf("storage: system %s: %w", id, err)
	}
	return sys, nil
}

// ListSystems returns the stored systems ordered by id.
func (s *Store) ListSystems(ctx context.Context) ([]SystemEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, updated_at FROM systems ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query systems: %w", err)
	}
	defer rows.Close()

	var entries []SystemEntry
	for rows.Next() {
		var e SystemEntry
		var updatedAt any
		if err := rows.Scan(&e.ID, &e.Name, &updatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.UpdatedAt = parseTime(updatedAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// DeleteSystem removes a stored system and its runs. It reports whether
// the system existed.
func (s *Store) DeleteSystem(ctx context.Context, id string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM systems WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("storage: cannot delete system: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM perf_runs WHERE system_id = ?`, id); err != nil {
		return false, fmt.Errorf("storage: cannot delete runs: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("storage: cannot commit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage: cannot count deleted rows: %w", err)
	}
	return n > 0, nil
}

// SaveRun records a performance run. An empty ID is filled with a new UUID.
// Returns the run ID.
func (s *Store) SaveRun(ctx context.Context, r Run) (string, error) {
	if r.SystemID == "" {
		return "", fmt.Errorf("storage: run without system id")
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO perf_runs
		 (id, system_id, mode, frames, avg_fps, min_fps, avg_frame_us, max_frame_us,
		  peak_memory_mb, max_draw_calls, max_triangles, suggestions)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.SystemID,
		r.Mode,
		r.Frames,
		r.AvgFPS,
		r.MinFPS,
		r.AvgFrameTime.Microseconds(),
		r.MaxFrameTime.Microseconds(),
		r.PeakMemoryMB,
		r.MaxDrawCalls,
		r.MaxTriangles,
		r.Suggestions,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save run: %w", err)
	}
	return r.ID, nil
}

const runColumns = `id, system_id, mode, frames, avg_fps, min_fps, avg_frame_us, max_frame_us,
	peak_memory_mb, max_draw_calls, max_triangles, suggestions, created_at`

// RecentRuns returns the latest runs, newest first. An empty systemID
// matches every system.
func (s *Store) RecentRuns(ctx context.Context, systemID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+`
		 FROM perf_runs
		 WHERE ? = '' OR system_id = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		systemID, systemID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return runs, nil
}

// BestRun returns the run with the highest average FPS for a system.
func (s *Store) BestRun(ctx context.Context, systemID string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+`
		 FROM perf_runs
		 WHERE system_id = ?
		 ORDER BY avg_fps DESC
		 LIMIT 1`,
		systemID,
	)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: runs for %q", ErrNotFound, systemID)
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r         Run
		avgUS     int64
		maxUS     int64
		createdAt any
	)
	err := sc.Scan(
		&r.ID,
		&r.SystemID,
		&r.Mode,
		&r.Frames,
		&r.AvgFPS,
		&r.MinFPS,
		&avgUS,
		&maxUS,
		&r.PeakMemoryMB,
		&r.MaxDrawCalls,
		&r.MaxTriangles,
		&r.Suggestions,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("storage: cannot scan row: %w", err)
	}
	r.AvgFrameTime = time.Duration(avgUS) * time.Microsecond
	r.MaxFrameTime = time.Duration(maxUS) * time.Microsecond
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
