package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/talentflow/internal/persistence"
)

// AssessmentRepository implements persistence.AssessmentRepository using SQLite.
type AssessmentRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewAssessmentRepository creates a new SQLite assessment repository.
func NewAssessmentRepository(pool *ConnectionPool) *AssessmentRepository {
	return &AssessmentRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// GetAssessmentByJob returns the assessment attached to a job. When several
// exist the oldest wins, matching the store's one-per-job upsert semantics.
func (r *AssessmentRepository) GetAssessmentByJob(ctx context.Context, jobID string) (persistence.Assessment, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT id, job_id, title, structure, created_at, updated_at
		FROM assessments
		WHERE job_id = ?
		ORDER BY created_at ASC, id ASC
		LIMIT 1`, jobID)
	return r.scanAssessment(row.Scan)
}

// UpsertAssessmentByJob creates the job's assessment or replaces its title
// and structure, preserving identity and creation time on replace.
func (r *AssessmentRepository) UpsertAssessmentByJob(ctx context.Context, assessment persistence.Assessment) (persistence.Assessment, error) {
	existing, err := r.GetAssessmentByJob(ctx, assessment.JobID)
	if err != nil && !errors.Is(err, persistence.ErrNotFound) {
		return persistence.Assessment{}, err
	}

	structure := rawJSON(assessment.Structure, "{}")

	if errors.Is(err, persistence.ErrNotFound) {
		_, err = r.helper.Exec(ctx, `
			INSERT INTO assessments (id, job_id, title, structure, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			assessment.ID,
			assessment.JobID,
			assessment.Title,
			structure,
			encodeTime(assessment.CreatedAt),
			encodeTime(assessment.UpdatedAt),
		)
		if err != nil {
			return persistence.Assessment{}, r.mapper.MapError(err)
		}
		return assessment, nil
	}

	existing.Title = assessment.Title
	existing.Structure = assessment.Structure
	existing.UpdatedAt = assessment.UpdatedAt

	_, err = r.helper.Exec(ctx,
		"UPDATE assessments SET title = ?, structure = ?, updated_at = ? WHERE id = ?",
		existing.Title, structure, encodeTime(existing.UpdatedAt), existing.ID,
	)
	if err != nil {
		return persistence.Assessment{}, r.mapper.MapError(err)
	}
	return existing, nil
}

// DeleteAssessment removes an assessment and all of its responses in one
// transaction.
func (r *AssessmentRepository) DeleteAssessment(ctx context.Context, id string) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := r.helper.ExecTx(tx, "DELETE FROM assessment_responses WHERE assessment_id = ?", id); err != nil {
			return r.mapper.MapError(err)
		}

		result, err := r.helper.ExecTx(tx, "DELETE FROM assessments WHERE id = ?", id)
		if err != nil {
			return r.mapper.MapError(err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
}

// UpsertResponse stores submitted answers, replacing any previous submission
// by the same candidate for the same assessment.
func (r *AssessmentRepository) UpsertResponse(ctx context.Context, response persistence.AssessmentResponse) (persistence.AssessmentResponse, error) {
	answers := rawJSON(response.Answers, "{}")

	row := r.helper.QueryRow(ctx,
		"SELECT id FROM assessment_responses WHERE assessment_id = ? AND candidate_id = ?",
		response.AssessmentID, response.CandidateID)

	var existingID string
	err := row.Scan(&existingID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = r.helper.Exec(ctx, `
			INSERT INTO assessment_responses (id, assessment_id, candidate_id, answers, submitted_at)
			VALUES (?, ?, ?, ?, ?)`,
			response.ID, response.AssessmentID, response.CandidateID, answers, encodeTime(response.SubmittedAt),
		)
		if err != nil {
			return persistence.AssessmentResponse{}, r.mapper.MapError(err)
		}
		return response, nil
	case err != nil:
		return persistence.AssessmentResponse{}, r.mapper.MapError(err)
	}

	response.ID = existingID
	_, err = r.helper.Exec(ctx,
		"UPDATE assessment_responses SET answers = ?, submitted_at = ? WHERE id = ?",
		answers, encodeTime(response.SubmittedAt), existingID,
	)
	if err != nil {
		return persistence.AssessmentResponse{}, r.mapper.MapError(err)
	}
	return response, nil
}

// ListResponses returns all responses for an assessment ordered by submission.
func (r *AssessmentRepository) ListResponses(ctx context.Context, assessmentID string) ([]persistence.AssessmentResponse, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, assessment_id, candidate_id, answers, submitted_at
		FROM assessment_responses
		WHERE assessment_id = ?
		ORDER BY submitted_at ASC, id ASC`, assessmentID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var responses []persistence.AssessmentResponse
	for rows.Next() {
		var response persistence.AssessmentResponse
		var answers, submittedAt string
		if err := rows.Scan(&response.ID, &response.AssessmentID, &response.CandidateID, &answers, &submittedAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		response.Answers = json.RawMessage(answers)
		if response.SubmittedAt, err = decodeTime(submittedAt); err != nil {
			return nil, err
		}
		responses = append(responses, response)
	}

	return responses, rows.Err()
}

func (r *AssessmentRepository) scanAssessment(scan func(dest ...any) error) (persistence.Assessment, error) {
	var assessment persistence.Assessment
	var structure, createdAt, updatedAt string

	err := scan(&assessment.ID, &assessment.JobID, &assessment.Title, &structure, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Assessment{}, persistence.ErrNotFound
		}
		return persistence.Assessment{}, r.mapper.MapError(err)
	}

	assessment.Structure = json.RawMessage(structure)
	if assessment.CreatedAt, err = decodeTime(createdAt); err != nil {
		return persistence.Assessment{}, err
	}
	if assessment.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return persistence.Assessment{}, err
	}
	return assessment, nil
}

func rawJSON(raw json.RawMessage, zero string) string {
	if len(raw) == 0 {
		return zero
	}
	return string(raw)
}
