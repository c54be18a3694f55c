package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/talentflow/internal/persistence"
)

func fixedNow() time.Time {
	return time.Date(2024, time.March, 14, 9, 0, 0, 0, time.UTC)
}

func sequenceIDs(ids ...string) func() string {
	return func() string {
		if len(ids) == 0 {
			return "fallback"
		}
		id := ids[0]
		ids = ids[1:]
		return id
	}
}

func TestJobService_CreateJob(t *testing.T) {
	t.Parallel()

	t.Run("persists a job at the end of the board", func(t *testing.T) {
		t.Parallel()

		repo := newJobRepoStub(persistence.Job{ID: "job-existing", Slug: "existing", SortOrder: 3})
		svc := NewJobService(repo, sequenceIDs("job-1"), fixedNow, nil)

		job, err := svc.CreateJob(context.Background(), CreateJobParams{Input: JobInput{
			Title: "Senior Backend Engineer",
			Tags:  []string{"engineering", " remote "},
		}})
		require.NoError(t, err)

		assert.Equal(t, "job-1", job.ID)
		assert.Equal(t, "senior-backend-engineer", job.Slug)
		assert.Equal(t, JobStatusActive, job.Status)
		assert.Equal(t, []string{"engineering", "remote"}, job.Tags)
		assert.Equal(t, 4, job.SortOrder)
		assert.Equal(t, fixedNow(), job.CreatedAt)
		assert.Equal(t, job.CreatedAt, job.UpdatedAt)
	})

	t.Run("rejects missing title and unknown status", func(t *testing.T) {
		t.Parallel()

		svc := NewJobService(newJobRepoStub(), sequenceIDs("job-1"), fixedNow, nil)

		_, err := svc.CreateJob(context.Background(), CreateJobParams{Input: JobInput{
			Title:  "   ",
			Status: "paused",
		}})

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.FieldErrors, "title")
		assert.Contains(t, vErr.FieldErrors, "status")
	})

	t.Run("rejects duplicate slugs", func(t *testing.T) {
		t.Parallel()

		repo := newJobRepoStub(persistence.Job{ID: "job-a", Slug: "backend-engineer"})
		svc := NewJobService(repo, sequenceIDs("job-b"), fixedNow, nil)

		_, err := svc.CreateJob(context.Background(), CreateJobParams{Input: JobInput{
			Title: "Backend Engineer",
		}})
		require.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("propagates repository failures", func(t *testing.T) {
		t.Parallel()

		expected := errors.New("boom")
		repo := newJobRepoStub()
		repo.createErr = expected
		svc := NewJobService(repo, sequenceIDs("job-1"), fixedNow, nil)

		_, err := svc.CreateJob(context.Background(), CreateJobParams{Input: JobInput{Title: "Data Engineer"}})
		require.ErrorIs(t, err, expected)
	})
}

func TestJobService_UpdateJob(t *testing.T) {
	t.Parallel()

	base := persistence.Job{
		ID:        "job-1",
		Title:     "Backend Engineer",
		Slug:      "backend-engineer",
		Status:    JobStatusActive,
		Tags:      []string{"engineering"},
		SortOrder: 1,
		CreatedAt: fixedNow().Add(-time.Hour),
		UpdatedAt: fixedNow().Add(-time.Hour),
	}

	t.Run("regenerates the slug when the title changes", func(t *testing.T) {
		t.Parallel()

		repo := newJobRepoStub(base)
		svc := NewJobService(repo, sequenceIDs(), fixedNow, nil)

		title := "Staff Backend Engineer"
		job, err := svc.UpdateJob(context.Background(), UpdateJobParams{JobID: "job-1", Title: &title})
		require.NoError(t, err)

		assert.Equal(t, "staff-backend-engineer", job.Slug)
		assert.Equal(t, fixedNow(), job.UpdatedAt)
		assert.Equal(t, base.CreatedAt, job.CreatedAt)
	})

	t.Run("keeps an explicit slug over the derived one", func(t *testing.T) {
		t.Parallel()

		repo := newJobRepoStub(base)
		svc := NewJobService(repo, sequenceIDs(), fixedNow, nil)

		title := "Staff Backend Engineer"
		slug := "staff-be"
		job, err := svc.UpdateJob(context.Background(), UpdateJobParams{JobID: "job-1", Title: &title, Slug: &slug})
		require.NoError(t, err)
		assert.Equal(t, "staff-be", job.Slug)
	})

	t.Run("rejects slugs already owned by another job", func(t *testing.T) {
		t.Parallel()

		other := persistence.Job{ID: "job-2", Slug: "frontend-engineer", Status: JobStatusActive, Title: "Frontend Engineer"}
		repo := newJobRepoStub(base, other)
		svc := NewJobService(repo, sequenceIDs(), fixedNow, nil)

		slug := "frontend-engineer"
		_, err := svc.UpdateJob(context.Background(), UpdateJobParams{JobID: "job-1", Slug: &slug})
		require.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("returns ErrNotFound for a missing job", func(t *testing.T) {
		t.Parallel()

		svc := NewJobService(newJobRepoStub(), sequenceIDs(), fixedNow, nil)

		title := "Anything"
		_, err := svc.UpdateJob(context.Background(), UpdateJobParams{JobID: "missing", Title: &title})
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestJobService_ListJobs(t *testing.T) {
	t.Parallel()

	t.Run("applies default pagination", func(t *testing.T) {
		t.Parallel()

		repo := newJobRepoStub(
			persistence.Job{ID: "job-1", Slug: "a", Status: JobStatusActive, SortOrder: 1},
			persistence.Job{ID: "job-2", Slug: "b", Status: JobStatusArchived, SortOrder: 2},
		)
		svc := NewJobService(repo, sequenceIDs(), fixedNow, nil)

		page, err := svc.ListJobs(context.Background(), ListJobsParams{})
		require.NoError(t, err)

		assert.Equal(t, 1, page.Page)
		assert.Equal(t, DefaultJobPageSize, page.PageSize)
		assert.Equal(t, 2, page.Total)
		assert.Equal(t, 1, page.TotalPages)
		assert.Len(t, page.Jobs, 2)
	})

	t.Run("filters by status", func(t *testing.T) {
		t.Parallel()

		repo := newJobRepoStub(
			persistence.Job{ID: "job-1", Slug: "a", Status: JobStatusActive, SortOrder: 1},
			persistence.Job{ID: "job-2", Slug: "b", Status: JobStatusArchived, SortOrder: 2},
		)
		svc := NewJobService(repo, sequenceIDs(), fixedNow, nil)

		page, err := svc.ListJobs(context.Background(), ListJobsParams{Status: JobStatusArchived})
		require.NoError(t, err)
		require.Len(t, page.Jobs, 1)
		assert.Equal(t, "job-2", page.Jobs[0].ID)
	})
}

func TestJobService_ReorderJob(t *testing.T) {
	t.Parallel()

	t.Run("moves a job between positions", func(t *testing.T) {
		t.Parallel()

		repo := newJobRepoStub(persistence.Job{ID: "job-1", Slug: "a", SortOrder: 2})
		svc := NewJobService(repo, sequenceIDs(), fixedNow, nil)

		err := svc.ReorderJob(context.Background(), ReorderJobParams{JobID: "job-1", FromOrder: 2, ToOrder: 5})
		require.NoError(t, err)
		assert.Equal(t, 5, repo.jobs["job-1"].SortOrder)
	})

	t.Run("rejects non-positive positions", func(t *testing.T) {
		t.Parallel()

		svc := NewJobService(newJobRepoStub(), sequenceIDs(), fixedNow, nil)

		err := svc.ReorderJob(context.Background(), ReorderJobParams{JobID: "job-1", FromOrder: 0, ToOrder: -1})

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.FieldErrors, "fromOrder")
		assert.Contains(t, vErr.FieldErrors, "toOrder")
	})

	t.Run("maps a stale fromOrder to ErrConflict", func(t *testing.T) {
		t.Parallel()

		repo := newJobRepoStub(persistence.Job{ID: "job-1", Slug: "a", SortOrder: 3})
		svc := NewJobService(repo, sequenceIDs(), fixedNow, nil)

		err := svc.ReorderJob(context.Background(), ReorderJobParams{JobID: "job-1", FromOrder: 2, ToOrder: 1})
		require.ErrorIs(t, err, ErrConflict)
	})

	t.Run("returns ErrNotFound for a missing job", func(t *testing.T) {
		t.Parallel()

		svc := NewJobService(newJobRepoStub(), sequenceIDs(), fixedNow, nil)

		err := svc.ReorderJob(context.Background(), ReorderJobParams{JobID: "missing", FromOrder: 1, ToOrder: 2})
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestJobService_DeleteJob(t *testing.T) {
	t.Parallel()

	t.Run("removes an existing job", func(t *testing.T) {
		t.Parallel()

		repo := newJobRepoStub(persistence.Job{ID: "job-1", Slug: "a"})
		svc := NewJobService(repo, sequenceIDs(), fixedNow, nil)

		require.NoError(t, svc.DeleteJob(context.Background(), "job-1"))
		assert.Empty(t, repo.jobs)
	})

	t.Run("returns ErrNotFound for a missing job", func(t *testing.T) {
		t.Parallel()

		svc := NewJobService(newJobRepoStub(), sequenceIDs(), fixedNow, nil)
		require.ErrorIs(t, svc.DeleteJob(context.Background(), "missing"), ErrNotFound)
	})
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		title string
		want  string
	}{
		{name: "simple title", title: "Backend Engineer", want: "backend-engineer"},
		{name: "punctuation collapses", title: "Sr. Engineer (Platform)", want: "sr-engineer-platform"},
		{name: "leading and trailing separators trimmed", title: "  --Engineer--  ", want: "engineer"},
		{name: "empty input", title: "", want: ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Slugify(tc.title))
		})
	}
}
