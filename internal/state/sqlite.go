package state

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite state store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create state directory: %w", err)
			}
		}
		dsn = fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path)
	} else {
		dsn = ":memory:?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InitSchema initializes the database schema.
func (s *SQLiteStore) InitSchema() error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// CreateRun creates a new run in the running state.
func (s *SQLiteStore) CreateRun(modelPath, scenario string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{
		ID:        generateID(),
		ModelPath: modelPath,
		Scenario:  scenario,
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (id, model_path, scenario, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.ModelPath, run.Scenario, run.Status, run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	return run, nil
}

// CompleteRun marks a run as completed with the given status.
func (s *SQLiteStore) CompleteRun(id string, status RunStatus, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	var startedAt time.Time
	if err := s.db.QueryRow(`SELECT started_at FROM runs WHERE id = ?`, id).Scan(&startedAt); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("run not found: %s", id)
		}
		return fmt.Errorf("failed to get run start time: %w", err)
	}

	now := time.Now().UTC()
	var errorPtr *string
	if errMsg != "" {
		errorPtr = &errMsg
	}

	_, err := s.db.Exec(
		`UPDATE runs SET status = ?, completed_at = ?, duration_ms = ?, error = ? WHERE id = ?`,
		status, now, now.Sub(startedAt).Milliseconds(), errorPtr, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run, err := scanRun(s.db.QueryRow(
		`SELECT id, model_path, scenario, status, started_at, completed_at, duration_ms, error
		 FROM runs WHERE id = ?`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// GetLatestRun retrieves the most recent run.
// Returns nil without error when no runs exist.
func (s *SQLiteStore) GetLatestRun() (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run, err := scanRun(s.db.QueryRow(
		`SELECT id, model_path, scenario, status, started_at, completed_at, duration_ms, error
		 FROM runs ORDER BY started_at DESC LIMIT 1`,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return run, nil
}

// ListRuns retrieves runs ordered newest first, up to limit.
// A limit of 0 or less returns all runs.
func (s *SQLiteStore) ListRuns(limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	query := `SELECT id, model_path, scenario, status, started_at, completed_at, duration_ms, error
	          FROM runs ORDER BY started_at DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// RecordScalars stores resolved scalar values for a run.
func (s *SQLiteStore) RecordScalars(runID string, scalars []ScalarResult) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, sc := range scalars {
		_, err := tx.Exec(
			`INSERT INTO run_scalars (run_id, name, value) VALUES (?, ?, ?)`,
			runID, sc.Name, sc.Value,
		)
		if err != nil {
			return fmt.Errorf("failed to record scalar %s: %w", sc.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetScalars retrieves the recorded scalar values for a run, ordered by name.
func (s *SQLiteStore) GetScalars(runID string) ([]ScalarResult, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT run_id, name, value FROM run_scalars WHERE run_id = ? ORDER BY name`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get scalars: %w", err)
	}
	defer rows.Close()

	var scalars []ScalarResult
	for rows.Next() {
		var sc ScalarResult
		if err := rows.Scan(&sc.RunID, &sc.Name, &sc.Value); err != nil {
			return nil, fmt.Errorf("failed to scan scalar: %w", err)
		}
		scalars = append(scalars, sc)
	}

	return scalars, rows.Err()
}

// RecordTables stores table summaries for a run.
func (s *SQLiteStore) RecordTables(runID string, tables []TableResult) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range tables {
		_, err := tx.Exec(
			`INSERT INTO run_tables (run_id, name, row_count, columns) VALUES (?, ?, ?, ?)`,
			runID, t.Name, t.RowCount, t.Columns,
		)
		if err != nil {
			return fmt.Errorf("failed to record table %s: %w", t.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetTables retrieves the recorded table summaries for a run, ordered by name.
func (s *SQLiteStore) GetTables(runID string) ([]TableResult, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT run_id, name, row_count, columns FROM run_tables WHERE run_id = ? ORDER BY name`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get tables: %w", err)
	}
	defer rows.Close()

	var tables []TableResult
	for rows.Next() {
		var t TableResult
		if err := rows.Scan(&t.RunID, &t.Name, &t.RowCount, &t.Columns); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		tables = append(tables, t)
	}

	return tables, rows.Err()
}

// scanner abstracts sql.Row and sql.Rows for scanRun.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	run := &Run{}
	var completedAt sql.NullTime
	var errMsg sql.NullString

	err := row.Scan(&run.ID, &run.ModelPath, &run.Scenario, &run.Status,
		&run.StartedAt, &completedAt, &run.DurationMS, &errMsg)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}

	return run, nil
}

// Ensure SQLiteStore implements the Store interface.
var _ Store = (*SQLiteStore)(nil)
