package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/geostab/slopekit/internal/errors"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens the run history at dbPath. Use ":memory:" for an
// in-memory store, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.StoreError("open sqlite database", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, errors.StoreError("initialize schema", err)
	}
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		input_path TEXT NOT NULL,
		method TEXT NOT NULL,
		fs REAL NOT NULL,
		beta REAL NOT NULL,
		lambda REAL NOT NULL,
		converged INTEGER NOT NULL,
		slices INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		metadata TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_input ON runs(input_path);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

const runColumns = "id, input_path, method, fs, beta, lambda, converged, slices, created_at, metadata"

// Save persists a run, generating an ID and timestamp when absent.
func (s *SQLiteStore) Save(ctx context.Context, run Run) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	var metadataJSON []byte
	if run.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(run.Metadata)
		if err != nil {
			return Run{}, errors.StoreError("marshal metadata", err)
		}
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs ("+runColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		run.ID, run.InputPath, run.Method, run.FS, run.Beta, run.Lambda,
		boolInt(run.Converged), run.Slices, run.CreatedAt.Unix(), metadataJSON,
	)
	if err != nil {
		return Run{}, errors.StoreError("insert run", err)
	}
	return run, nil
}

// Get returns the run with the given ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return Run{}, errors.New(errors.CategoryStore, errors.SeverityError,
			fmt.Sprintf("run not found: %s", id))
	}
	return run, err
}

// List returns the most recent runs, newest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs ORDER BY created_at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, errors.StoreError("query runs", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// ByInput returns all runs for an input file, newest first.
func (s *SQLiteStore) ByInput(ctx context.Context, inputPath string) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs WHERE input_path = ? ORDER BY created_at DESC, id",
		inputPath)
	if err != nil {
		return nil, errors.StoreError("query runs", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// Governing returns the run with the lowest factor of safety for an input.
func (s *SQLiteStore) Governing(ctx context.Context, inputPath string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+runColumns+" FROM runs WHERE input_path = ? ORDER BY fs ASC LIMIT 1",
		inputPath)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return Run{}, errors.New(errors.CategoryStore, errors.SeverityError,
			fmt.Sprintf("no runs recorded for %s", inputPath))
	}
	return run, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run          Run
		converged    int
		createdUnix  int64
		metadataJSON []byte
	)
	err := row.Scan(&run.ID, &run.InputPath, &run.Method, &run.FS, &run.Beta,
		&run.Lambda, &converged, &run.Slices, &createdUnix, &metadataJSON)
	if err != nil {
		return Run{}, err
	}
	run.Converged = converged != 0
	run.CreatedAt = time.Unix(createdUnix, 0)
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &run.Metadata); err != nil {
			return Run{}, errors.StoreError("unmarshal metadata", err)
		}
	}
	return run, nil
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, errors.StoreError("scan run", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreError("iterate rows", err)
	}
	return runs, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
