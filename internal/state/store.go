// Package state provides run-history tracking for gridcalc using SQLite.
// It records each model resolution, its scenario, status, duration, and
// the resolved scalar values, so previous runs can be listed and compared.
package state

import "time"

// RunStatus represents the lifecycle state of a run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run represents a single model resolution.
type Run struct {
	ID          string
	ModelPath   string
	Scenario    string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	DurationMS  int64
	Error       string
}

// ScalarResult is a resolved scalar value recorded for a run.
type ScalarResult struct {
	RunID string
	Name  string
	Value string
}

// TableResult summarizes a resolved table recorded for a run.
type TableResult struct {
	RunID    string
	Name     string
	RowCount int
	Columns  int
}

// Store is the interface for run-history storage.
type Store interface {
	Open(path string) error
	Close() error
	InitSchema() error

	CreateRun(modelPath, scenario string) (*Run, error)
	CompleteRun(id string, status RunStatus, errMsg string) error
	GetRun(id string) (*Run, error)
	GetLatestRun() (*Run, error)
	ListRuns(limit int) ([]*Run, error)

	RecordScalars(runID string, scalars []ScalarResult) error
	GetScalars(runID string) ([]ScalarResult, error)
	RecordTables(runID string, tables []TableResult) error
	GetTables(runID string) ([]TableResult, error)
}
