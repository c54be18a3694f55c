package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Executor applies individual steps and tracks applied versions.
type Executor struct {
	db *sql.DB
}

// NewExecutor creates an executor bound to a database handle.
func NewExecutor(db *sql.DB) *Executor {
	return &Executor{db: db}
}

// InitializeVersionTable creates the schema_migrations table if needed.
func (e *Executor) InitializeVersionTable(ctx context.Context) error {
	_, err := e.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version           INTEGER PRIMARY KEY,
    description       TEXT NOT NULL,
    applied_at        TEXT NOT NULL,
    execution_time_ms INTEGER NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

// IsVersionApplied checks whether a step version has already been applied.
func (e *Executor) IsVersionApplied(ctx context.Context, version int) (bool, error) {
	var count int
	err := e.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check version %d: %w", version, err)
	}
	return count > 0, nil
}

// ExecuteStep runs one step and records it, both inside a single transaction
// so that a failed step leaves no partial schema behind.
func (e *Executor) ExecuteStep(ctx context.Context, step Step) error {
	start := time.Now()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, step.SQL); err != nil {
		_ = tx.Rollback()
		return &StepError{Version: step.Version, Description: step.Description,
			Err: fmt.Errorf("%w: %v", ErrStepFailed, err)}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, description, applied_at, execution_time_ms) VALUES (?, ?, ?, ?)",
		step.Version,
		step.Description,
		time.Now().UTC().Format(time.RFC3339Nano),
		time.Since(start).Milliseconds(),
	); err != nil {
		_ = tx.Rollback()
		return &StepError{Version: step.Version, Description: step.Description,
			Err: fmt.Errorf("failed to record step: %w", err)}
	}

	if err := tx.Commit(); err != nil {
		return &StepError{Version: step.Version, Description: step.Description,
			Err: fmt.Errorf("failed to commit step: %w", err)}
	}

	return nil
}

// AppliedVersions returns all applied steps in version order.
func (e *Executor) AppliedVersions(ctx context.Context) ([]Applied, error) {
	rows, err := e.db.QueryContext(ctx,
		"SELECT version, description, applied_at, execution_time_ms FROM schema_migrations ORDER BY version ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query applied versions: %w", err)
	}
	defer rows.Close()

	var applied []Applied
	for rows.Next() {
		var record Applied
		var appliedAtStr string
		var execMs int64
		if err := rows.Scan(&record.Version, &record.Description, &appliedAtStr, &execMs); err != nil {
			return nil, fmt.Errorf("failed to scan applied version: %w", err)
		}
		if record.AppliedAt, err = time.Parse(time.RFC3339Nano, appliedAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse applied_at: %w", err)
		}
		record.ExecutionTime = time.Duration(execMs) * time.Millisecond
		applied = append(applied, record)
	}

	return applied, rows.Err()
}
