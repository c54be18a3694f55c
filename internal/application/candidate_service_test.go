package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/talentflow/internal/persistence"
)

type mentionNotifierStub struct {
	calls []mentionCall
}

type mentionCall struct {
	mentions  []string
	candidate persistence.Candidate
	note      persistence.Note
}

func (s *mentionNotifierStub) NotifyMentions(ctx context.Context, mentions []string, candidate persistence.Candidate, note persistence.Note) {
	s.calls = append(s.calls, mentionCall{mentions: mentions, candidate: candidate, note: note})
}

func TestCandidateService_CreateCandidate(t *testing.T) {
	t.Parallel()

	jobs := func() *jobRepoStub {
		return newJobRepoStub(persistence.Job{ID: "job-1", Slug: "backend-engineer", Status: JobStatusActive})
	}

	t.Run("persists a candidate and records the initial stage", func(t *testing.T) {
		t.Parallel()

		repo := newCandidateRepoStub()
		svc := NewCandidateService(repo, jobs(), nil, sequenceIDs("cand-1", "event-1"), fixedNow, nil)

		candidate, err := svc.CreateCandidate(context.Background(), CreateCandidateParams{Input: CandidateInput{
			Name:  "Jordan Reyes",
			Email: "Jordan.Reyes@Example.com ",
			JobID: "job-1",
		}})
		require.NoError(t, err)

		assert.Equal(t, "cand-1", candidate.ID)
		assert.Equal(t, "jordan.reyes@example.com", candidate.Email)
		assert.Equal(t, StageApplied, candidate.Stage)
		assert.NotNil(t, candidate.Notes)
		assert.Empty(t, candidate.Notes)

		require.Len(t, repo.events, 1)
		assert.Equal(t, EventStageChange, repo.events[0].Type)
		assert.Equal(t, map[string]any{"to": StageApplied}, repo.events[0].Data)
	})

	t.Run("rejects a candidate for a missing job", func(t *testing.T) {
		t.Parallel()

		svc := NewCandidateService(newCandidateRepoStub(), newJobRepoStub(), nil, sequenceIDs("cand-1"), fixedNow, nil)

		_, err := svc.CreateCandidate(context.Background(), CreateCandidateParams{Input: CandidateInput{
			Name:  "Jordan Reyes",
			Email: "jordan@example.com",
			JobID: "missing",
		}})

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "job does not exist", vErr.FieldErrors["jobId"])
	})

	t.Run("validates required fields and email format", func(t *testing.T) {
		t.Parallel()

		svc := NewCandidateService(newCandidateRepoStub(), jobs(), nil, sequenceIDs("cand-1"), fixedNow, nil)

		_, err := svc.CreateCandidate(context.Background(), CreateCandidateParams{Input: CandidateInput{
			Email: "not-an-email",
			Stage: "limbo",
		}})

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.FieldErrors, "name")
		assert.Contains(t, vErr.FieldErrors, "email")
		assert.Contains(t, vErr.FieldErrors, "jobId")
		assert.Contains(t, vErr.FieldErrors, "stage")
	})

	t.Run("drops blank phone numbers", func(t *testing.T) {
		t.Parallel()

		repo := newCandidateRepoStub()
		svc := NewCandidateService(repo, jobs(), nil, sequenceIDs("cand-1", "event-1"), fixedNow, nil)

		phone := "   "
		candidate, err := svc.CreateCandidate(context.Background(), CreateCandidateParams{Input: CandidateInput{
			Name:  "Jordan Reyes",
			Email: "jordan@example.com",
			Phone: &phone,
			JobID: "job-1",
		}})
		require.NoError(t, err)
		assert.Nil(t, candidate.Phone)
	})
}

func TestCandidateService_UpdateCandidate(t *testing.T) {
	t.Parallel()

	base := persistence.Candidate{
		ID:    "cand-1",
		Name:  "Jordan Reyes",
		Email: "jordan@example.com",
		JobID: "job-1",
		Stage: StageApplied,
	}
	jobs := func() *jobRepoStub {
		return newJobRepoStub(persistence.Job{ID: "job-1", Slug: "backend-engineer", Status: JobStatusActive})
	}

	t.Run("records a stage transition on the timeline", func(t *testing.T) {
		t.Parallel()

		repo := newCandidateRepoStub(base)
		svc := NewCandidateService(repo, jobs(), nil, sequenceIDs("event-1"), fixedNow, nil)

		stage := StageScreen
		candidate, err := svc.UpdateCandidate(context.Background(), UpdateCandidateParams{CandidateID: "cand-1", Stage: &stage})
		require.NoError(t, err)

		assert.Equal(t, StageScreen, candidate.Stage)
		require.Len(t, repo.events, 1)
		assert.Equal(t, EventStageChange, repo.events[0].Type)
		assert.Equal(t, map[string]any{"from": StageApplied, "to": StageScreen}, repo.events[0].Data)
	})

	t.Run("skips the timeline event when the stage is unchanged", func(t *testing.T) {
		t.Parallel()

		repo := newCandidateRepoStub(base)
		svc := NewCandidateService(repo, jobs(), nil, sequenceIDs("event-1"), fixedNow, nil)

		name := "Jordan A. Reyes"
		_, err := svc.UpdateCandidate(context.Background(), UpdateCandidateParams{CandidateID: "cand-1", Name: &name})
		require.NoError(t, err)
		assert.Empty(t, repo.events)
	})

	t.Run("verifies the target job when it changes", func(t *testing.T) {
		t.Parallel()

		repo := newCandidateRepoStub(base)
		svc := NewCandidateService(repo, jobs(), nil, sequenceIDs("event-1"), fixedNow, nil)

		jobID := "missing"
		_, err := svc.UpdateCandidate(context.Background(), UpdateCandidateParams{CandidateID: "cand-1", JobID: &jobID})

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "job does not exist", vErr.FieldErrors["jobId"])
	})

	t.Run("returns ErrNotFound for a missing candidate", func(t *testing.T) {
		t.Parallel()

		svc := NewCandidateService(newCandidateRepoStub(), jobs(), nil, sequenceIDs(), fixedNow, nil)

		stage := StageScreen
		_, err := svc.UpdateCandidate(context.Background(), UpdateCandidateParams{CandidateID: "missing", Stage: &stage})
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCandidateService_AddNote(t *testing.T) {
	t.Parallel()

	base := persistence.Candidate{
		ID:    "cand-1",
		Name:  "Jordan Reyes",
		Email: "jordan@example.com",
		JobID: "job-1",
		Stage: StageApplied,
		Notes: []persistence.Note{},
	}

	t.Run("appends the note and notifies mentioned users", func(t *testing.T) {
		t.Parallel()

		repo := newCandidateRepoStub(base)
		notifier := &mentionNotifierStub{}
		svc := NewCandidateService(repo, newJobRepoStub(), notifier, sequenceIDs("note-1", "event-1"), fixedNow, nil)

		candidate, err := svc.AddNote(context.Background(), AddNoteParams{
			CandidateID: "cand-1",
			Content:     "Strong take-home, @priya.nair and @sam-ortiz please review. cc @priya.nair",
			Author:      "Alex Morgan",
		})
		require.NoError(t, err)

		require.Len(t, candidate.Notes, 1)
		note := candidate.Notes[0]
		assert.Equal(t, "note-1", note.ID)
		assert.Equal(t, []string{"priya.nair", "sam-ortiz"}, note.Mentions)

		require.Len(t, repo.events, 1)
		assert.Equal(t, EventNoteAdded, repo.events[0].Type)
		assert.Equal(t, map[string]any{"note_id": "note-1", "author": "Alex Morgan"}, repo.events[0].Data)

		require.Len(t, notifier.calls, 1)
		assert.Equal(t, []string{"priya.nair", "sam-ortiz"}, notifier.calls[0].mentions)
	})

	t.Run("skips the notifier when nothing is mentioned", func(t *testing.T) {
		t.Parallel()

		notifier := &mentionNotifierStub{}
		svc := NewCandidateService(newCandidateRepoStub(base), newJobRepoStub(), notifier, sequenceIDs("note-1", "event-1"), fixedNow, nil)

		_, err := svc.AddNote(context.Background(), AddNoteParams{CandidateID: "cand-1", Content: "Solid interview", Author: "Alex Morgan"})
		require.NoError(t, err)
		assert.Empty(t, notifier.calls)
	})

	t.Run("requires content and author", func(t *testing.T) {
		t.Parallel()

		svc := NewCandidateService(newCandidateRepoStub(base), newJobRepoStub(), nil, sequenceIDs(), fixedNow, nil)

		_, err := svc.AddNote(context.Background(), AddNoteParams{CandidateID: "cand-1", Content: "  ", Author: ""})

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.FieldErrors, "content")
		assert.Contains(t, vErr.FieldErrors, "author")
	})
}

func TestCandidateService_Timeline(t *testing.T) {
	t.Parallel()

	t.Run("returns events for an existing candidate", func(t *testing.T) {
		t.Parallel()

		repo := newCandidateRepoStub(persistence.Candidate{ID: "cand-1", JobID: "job-1"})
		repo.events = []persistence.CandidateEvent{
			{ID: "event-1", CandidateID: "cand-1", Type: EventStageChange},
			{ID: "event-2", CandidateID: "other", Type: EventNoteAdded},
		}
		svc := NewCandidateService(repo, newJobRepoStub(), nil, sequenceIDs(), fixedNow, nil)

		events, err := svc.Timeline(context.Background(), "cand-1")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "event-1", events[0].ID)
	})

	t.Run("returns ErrNotFound for a missing candidate", func(t *testing.T) {
		t.Parallel()

		svc := NewCandidateService(newCandidateRepoStub(), newJobRepoStub(), nil, sequenceIDs(), fixedNow, nil)
		_, err := svc.Timeline(context.Background(), "missing")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestExtractMentions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
		want    []string
	}{
		{name: "no mentions", content: "plain note", want: nil},
		{name: "single mention", content: "ping @alex", want: []string{"alex"}},
		{name: "dedup is case insensitive", content: "@Alex and @alex again", want: []string{"Alex"}},
		{name: "allows dots dashes underscores", content: "@priya.nair @sam-ortiz @dana_f", want: []string{"priya.nair", "sam-ortiz", "dana_f"}},
		{name: "bare at sign ignored", content: "meet @ noon", want: nil},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ExtractMentions(tc.content))
		})
	}
}
