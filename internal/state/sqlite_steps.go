package state

import (
	"database/sql"
	"fmt"
	"time"
)

// RecordStep stores a step of a run. ID and CreatedAt are filled in when empty.
func (s *SQLiteStore) RecordStep(step *RunStep) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if step.ID == "" {
		step.ID = generateID()
	}
	if step.CreatedAt.IsZero() {
		step.CreatedAt = time.Now().UTC()
	}

	var errorPtr *string
	if step.Error != "" {
		errorPtr = &step.Error
	}

	_, err := s.db.Exec(
		`INSERT INTO run_steps (id, run_id, name, status, rows, duration_ms, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		step.ID, step.RunID, step.Name, string(step.Status), step.Rows, step.DurationMS, errorPtr, step.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record step %s: %w", step.Name, err)
	}
	return nil
}

// GetStepsForRun returns the steps of a run in the order they were recorded.
func (s *SQLiteStore) GetStepsForRun(runID string) ([]*RunStep, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, run_id, name, status, rows, duration_ms, error, created_at
		 FROM run_steps WHERE run_id = ? ORDER BY created_at, rowid`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get steps: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var steps []*RunStep
	for rows.Next() {
		step := &RunStep{}
		var status string
		var errMsg sql.NullString
		if err := rows.Scan(&step.ID, &step.RunID, &step.Name, &status, &step.Rows,
			&step.DurationMS, &errMsg, &step.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		step.Status = StepStatus(status)
		step.Error = errMsg.String
		steps = append(steps, step)
	}
	return steps, rows.Err()
}
