package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/talentflow/internal/persistence"
	"github.com/example/talentflow/internal/persistence/sqlite"
	"github.com/example/talentflow/internal/persistence/sqlite/migration"
)

// SQLiteHarness provides repository access backed by a temporary SQLite store
// for integration-style persistence tests.
type SQLiteHarness struct {
	Pool          *sqlite.ConnectionPool
	Jobs          persistence.JobRepository
	Candidates    persistence.CandidateRepository
	Assessments   persistence.AssessmentRepository
	Users         persistence.UserRepository
	Notifications persistence.NotificationRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// also registers a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "talentflow.db")

	pool, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open store: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := migration.NewManager(pool.DB(), migration.Steps(), logger).Run(context.Background()); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate store: %v", err)
	}

	harness := &SQLiteHarness{
		Pool:          pool,
		Jobs:          sqlite.NewJobRepository(pool),
		Candidates:    sqlite.NewCandidateRepository(pool),
		Assessments:   sqlite.NewAssessmentRepository(pool),
		Users:         sqlite.NewUserRepository(pool),
		Notifications: sqlite.NewNotificationRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
