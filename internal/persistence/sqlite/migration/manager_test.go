package migration

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migration.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func twoSteps() []Step {
	return []Step{
		{Version: 1, Description: "create widgets", SQL: "CREATE TABLE widgets (id TEXT PRIMARY KEY)"},
		{Version: 2, Description: "create gadgets", SQL: "CREATE TABLE gadgets (id TEXT PRIMARY KEY)"},
	}
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()

	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
	require.NoError(t, err)
	return count > 0
}

func TestManager_Run(t *testing.T) {
	t.Parallel()

	t.Run("applies every pending step in order", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		manager := NewManager(db, twoSteps(), testLogger())

		require.NoError(t, manager.Run(context.Background()))
		assert.True(t, tableExists(t, db, "widgets"))
		assert.True(t, tableExists(t, db, "gadgets"))

		status, err := manager.Status(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, status.CurrentVersion)
		assert.Equal(t, 0, status.PendingCount)
		require.Len(t, status.Applied, 2)
		assert.Equal(t, "create widgets", status.Applied[0].Description)
	})

	t.Run("a second run is a no-op", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		manager := NewManager(db, twoSteps(), testLogger())

		require.NoError(t, manager.Run(context.Background()))
		require.NoError(t, manager.Run(context.Background()))

		status, err := manager.Status(context.Background())
		require.NoError(t, err)
		assert.Len(t, status.Applied, 2, "steps are recorded exactly once")
	})

	t.Run("resumes from a partially migrated database", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		steps := twoSteps()

		require.NoError(t, NewManager(db, steps[:1], testLogger()).Run(context.Background()))
		require.False(t, tableExists(t, db, "gadgets"))

		require.NoError(t, NewManager(db, steps, testLogger()).Run(context.Background()))
		assert.True(t, tableExists(t, db, "gadgets"))

		status, err := NewManager(db, steps, testLogger()).Status(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, status.CurrentVersion)
	})

	t.Run("rejects a non-contiguous step list", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		steps := []Step{
			{Version: 1, Description: "create widgets", SQL: "CREATE TABLE widgets (id TEXT PRIMARY KEY)"},
			{Version: 3, Description: "skipped a version", SQL: "CREATE TABLE gadgets (id TEXT PRIMARY KEY)"},
		}

		err := NewManager(db, steps, testLogger()).Run(context.Background())
		require.ErrorIs(t, err, ErrVersionGap)
		assert.False(t, tableExists(t, db, "widgets"), "nothing is applied when validation fails")
	})
}

func TestExecutor_StepFailureLeavesNoTrace(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	steps := []Step{
		{Version: 1, Description: "create widgets", SQL: "CREATE TABLE widgets (id TEXT PRIMARY KEY)"},
		{Version: 2, Description: "broken", SQL: "CREATE TABLE FROM nonsense"},
	}

	err := NewManager(db, steps, testLogger()).Run(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrStepFailed)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 2, stepErr.Version)

	status, statusErr := NewManager(db, steps, testLogger()).Status(context.Background())
	require.NoError(t, statusErr)
	assert.Equal(t, 1, status.CurrentVersion, "the failed step is not recorded")
	assert.Equal(t, 1, status.PendingCount)
}

func TestSteps_ProduceTheFullSchema(t *testing.T) {
	t.Parallel()

	steps := Steps()
	require.NotEmpty(t, steps)
	for i, step := range steps {
		assert.Equal(t, i+1, step.Version, "step versions are contiguous from 1")
		assert.NotEmpty(t, step.Description)
	}

	db := openTestDB(t)
	require.NoError(t, NewManager(db, steps, testLogger()).Run(context.Background()))

	for _, table := range []string{
		"jobs",
		"candidates",
		"candidate_events",
		"assessments",
		"assessment_responses",
		"users",
		"notifications",
	} {
		assert.True(t, tableExists(t, db, table), "expected table %s", table)
	}
}
