package migration

import (
	"context"
	"time"
)

// Step represents a single schema migration.
type Step struct {
	Version     int    // Sequential version number, starting at 1
	Description string // Human-readable description of the step
	SQL         string // Statements to execute
}

// Applied records a step that has been successfully applied.
type Applied struct {
	Version       int
	Description   string
	AppliedAt     time.Time
	ExecutionTime time.Duration
}

// Status summarizes the store's migration state.
type Status struct {
	CurrentVersion int
	PendingCount   int
	Applied        []Applied
}

// Manager orchestrates the migration process.
type Manager interface {
	// Run applies all pending steps in version order.
	Run(ctx context.Context) error

	// Status reports the current and pending versions.
	Status(ctx context.Context) (Status, error)
}
