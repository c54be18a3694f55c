package sqlite_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/talentflow/internal/persistence"
	"github.com/example/talentflow/internal/testfixtures"
)

func TestAssessmentRepository_UpsertAssessmentByJob(t *testing.T) {
	t.Parallel()

	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	job := seedJob(t, harness)

	original := testfixtures.NewAssessmentFixture(testfixtures.WithAssessmentJobID(job.ID)).Persistence()
	created, err := harness.Assessments.UpsertAssessmentByJob(ctx, original)
	require.NoError(t, err)
	assert.Equal(t, original.ID, created.ID)

	replacement := testfixtures.NewAssessmentFixture(
		testfixtures.WithAssessmentJobID(job.ID),
		testfixtures.WithAssessmentTitle("Revised Screening"),
		testfixtures.WithAssessmentTimestamps(original.CreatedAt.Add(time.Hour), original.CreatedAt.Add(time.Hour)),
	).Persistence()

	replaced, err := harness.Assessments.UpsertAssessmentByJob(ctx, replacement)
	require.NoError(t, err)

	assert.Equal(t, original.ID, replaced.ID, "replace keeps the original identity")
	assert.Equal(t, "Revised Screening", replaced.Title)
	assert.True(t, replaced.CreatedAt.Equal(original.CreatedAt), "replace keeps the original creation time")

	retrieved, err := harness.Assessments.GetAssessmentByJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, original.ID, retrieved.ID)
	assert.Equal(t, "Revised Screening", retrieved.Title)
	assert.JSONEq(t, string(replacement.Structure), string(retrieved.Structure))
}

func TestAssessmentRepository_GetAssessmentByJob_NotFound(t *testing.T) {
	t.Parallel()

	harness := testfixtures.NewSQLiteHarness(t)

	_, err := harness.Assessments.GetAssessmentByJob(context.Background(), "missing")
	require.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestAssessmentRepository_UpsertResponse(t *testing.T) {
	t.Parallel()

	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	job := seedJob(t, harness)

	assessment := testfixtures.NewAssessmentFixture(testfixtures.WithAssessmentJobID(job.ID)).Persistence()
	_, err := harness.Assessments.UpsertAssessmentByJob(ctx, assessment)
	require.NoError(t, err)

	base := testfixtures.ReferenceTime()
	first, err := harness.Assessments.UpsertResponse(ctx, persistence.AssessmentResponse{
		ID:           "response-1",
		AssessmentID: assessment.ID,
		CandidateID:  "cand-1",
		Answers:      json.RawMessage(`{"q1":"8"}`),
		SubmittedAt:  base,
	})
	require.NoError(t, err)
	assert.Equal(t, "response-1", first.ID)

	second, err := harness.Assessments.UpsertResponse(ctx, persistence.AssessmentResponse{
		ID:           "response-2",
		AssessmentID: assessment.ID,
		CandidateID:  "cand-1",
		Answers:      json.RawMessage(`{"q1":"9"}`),
		SubmittedAt:  base.Add(time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, "response-1", second.ID, "resubmission keeps the original identity")

	other, err := harness.Assessments.UpsertResponse(ctx, persistence.AssessmentResponse{
		ID:           "response-3",
		AssessmentID: assessment.ID,
		CandidateID:  "cand-2",
		Answers:      json.RawMessage(`{"q1":"3"}`),
		SubmittedAt:  base.Add(2 * time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, "response-3", other.ID)

	responses, err := harness.Assessments.ListResponses(ctx, assessment.ID)
	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.JSONEq(t, `{"q1":"9"}`, string(responses[0].Answers))
}

func TestAssessmentRepository_DeleteAssessment_CascadesResponses(t *testing.T) {
	t.Parallel()

	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	job := seedJob(t, harness)

	assessment := testfixtures.NewAssessmentFixture(testfixtures.WithAssessmentJobID(job.ID)).Persistence()
	_, err := harness.Assessments.UpsertAssessmentByJob(ctx, assessment)
	require.NoError(t, err)

	_, err = harness.Assessments.UpsertResponse(ctx, persistence.AssessmentResponse{
		ID:           "response-1",
		AssessmentID: assessment.ID,
		CandidateID:  "cand-1",
		Answers:      json.RawMessage(`{}`),
		SubmittedAt:  testfixtures.ReferenceTime(),
	})
	require.NoError(t, err)

	require.NoError(t, harness.Assessments.DeleteAssessment(ctx, assessment.ID))

	_, err = harness.Assessments.GetAssessmentByJob(ctx, job.ID)
	require.ErrorIs(t, err, persistence.ErrNotFound)

	responses, err := harness.Assessments.ListResponses(ctx, assessment.ID)
	require.NoError(t, err)
	assert.Empty(t, responses)

	require.ErrorIs(t, harness.Assessments.DeleteAssessment(ctx, assessment.ID), persistence.ErrNotFound)
}
