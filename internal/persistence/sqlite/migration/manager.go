package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

type manager struct {
	executor *Executor
	steps    []Step
	logger   *slog.Logger
}

// NewManager creates a Manager that applies the given ordered steps.
func NewManager(db *sql.DB, steps []Step, logger *slog.Logger) Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &manager{executor: NewExecutor(db), steps: steps, logger: logger}
}

// Run applies all pending steps in version order.
func (m *manager) Run(ctx context.Context) error {
	if err := validateSteps(m.steps); err != nil {
		return err
	}

	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return err
	}

	pending, err := m.pendingSteps(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		m.logger.Debug("schema is up to date", "steps", len(m.steps))
		return nil
	}

	for _, step := range pending {
		m.logger.Info("applying migration step", "version", step.Version, "description", step.Description)
		if err := m.executor.ExecuteStep(ctx, step); err != nil {
			return err
		}
	}

	m.logger.Info("migrations applied", "count", len(pending))
	return nil
}

// Status reports the current and pending versions.
func (m *manager) Status(ctx context.Context) (Status, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return Status{}, err
	}

	applied, err := m.executor.AppliedVersions(ctx)
	if err != nil {
		return Status{}, err
	}

	status := Status{Applied: applied, PendingCount: len(m.steps) - len(applied)}
	if len(applied) > 0 {
		status.CurrentVersion = applied[len(applied)-1].Version
	}
	if status.PendingCount < 0 {
		status.PendingCount = 0
	}
	return status, nil
}

func (m *manager) pendingSteps(ctx context.Context) ([]Step, error) {
	var pending []Step
	for _, step := range m.steps {
		applied, err := m.executor.IsVersionApplied(ctx, step.Version)
		if err != nil {
			return nil, err
		}
		if !applied {
			pending = append(pending, step)
		}
	}
	return pending, nil
}

func validateSteps(steps []Step) error {
	for i, step := range steps {
		if step.Version != i+1 {
			return fmt.Errorf("%w: step %d has version %d", ErrVersionGap, i, step.Version)
		}
	}
	return nil
}
