package core

import "time"

// RunStatus represents the status of a pipeline run.
type RunStatus string

// Run status constants.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run represents one invocation of ingest, summarize or run.
type Run struct {
	ID          string
	Command     string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// StepStatus represents the outcome of a single step within a run.
type StepStatus string

// Step status constants.
const (
	StepStatusSuccess StepStatus = "success"
	StepStatusFailed  StepStatus = "failed"
)

// RunStep is a loaded file or a summary stage recorded within a run.
type RunStep struct {
	ID         string
	RunID      string
	Name       string
	Status     StepStatus
	Rows       int64
	DurationMS int64
	Error      string
	CreatedAt  time.Time
}

// Store defines the interface for run history operations.
type Store interface {
	Open(path string) error
	Close() error
	InitSchema() error

	CreateRun(command string) (*Run, error)
	GetRun(id string) (*Run, error)
	CompleteRun(id string, status RunStatus, errMsg string) error
	ListRuns(limit int) ([]*Run, error)

	RecordStep(step *RunStep) error
	GetStepsForRun(runID string) ([]*RunStep, error)
}
