// Package state records the history of pipeline runs in a SQLite file.
// Each run has the steps it executed: one per loaded CSV file and one per
// summary stage.
package state

import (
	"github.com/leapstack-labs/vendorperf/pkg/core"
)

// Type aliases for the run history types defined in pkg/core.
type (
	// Store is an alias for core.Store.
	Store = core.Store

	// RunStatus is an alias for core.RunStatus.
	RunStatus = core.RunStatus

	// Run is an alias for core.Run.
	Run = core.Run

	// StepStatus is an alias for core.StepStatus.
	StepStatus = core.StepStatus

	// RunStep is an alias for core.RunStep.
	RunStep = core.RunStep
)

// Re-export constants.
const (
	RunStatusRunning   = core.RunStatusRunning
	RunStatusCompleted = core.RunStatusCompleted
	RunStatusFailed    = core.RunStatusFailed

	StepStatusSuccess = core.StepStatusSuccess
	StepStatusFailed  = core.StepStatusFailed
)

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
