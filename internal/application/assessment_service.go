package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/example/talentflow/internal/persistence"
)

// assessmentStructureSchema constrains the builder document stored per job:
// ordered sections, each holding typed questions.
const assessmentStructureSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["sections"],
  "properties": {
    "sections": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "title", "questions"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "title": {"type": "string", "minLength": 1},
          "questions": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["id", "type", "label"],
              "properties": {
                "id": {"type": "string", "minLength": 1},
                "type": {"enum": ["single_choice", "multi_choice", "short_text", "long_text", "numeric", "file_upload"]},
                "label": {"type": "string", "minLength": 1},
                "required": {"type": "boolean"},
                "options": {"type": "array", "items": {"type": "string"}},
                "min": {"type": "number"},
                "max": {"type": "number"},
                "maxLength": {"type": "integer", "minimum": 1},
                "showIf": {
                  "type": "object",
                  "required": ["questionId", "equals"],
                  "properties": {
                    "questionId": {"type": "string"},
                    "equals": {}
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

// AssessmentService manages per-job assessment forms and candidate
// submissions.
type AssessmentService struct {
	assessments persistence.AssessmentRepository
	candidates  persistence.CandidateRepository
	jobs        persistence.JobRepository
	schema      *gojsonschema.Schema
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAssessmentService wires dependencies for the assessment service.
func NewAssessmentService(assessments persistence.AssessmentRepository, candidates persistence.CandidateRepository, jobs persistence.JobRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) (*AssessmentService, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(assessmentStructureSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile assessment structure schema: %w", err)
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AssessmentService{
		assessments: assessments,
		candidates:  candidates,
		jobs:        jobs,
		schema:      schema,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}, nil
}

// GetAssessment returns the assessment attached to a job.
func (s *AssessmentService) GetAssessment(ctx context.Context, jobID string) (persistence.Assessment, error) {
	if s == nil {
		return persistence.Assessment{}, fmt.Errorf("AssessmentService is nil")
	}

	assessment, err := s.assessments.GetAssessmentByJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Assessment{}, ErrNotFound
		}
		return persistence.Assessment{}, err
	}
	return assessment, nil
}

// SaveAssessment creates or replaces a job's assessment after validating the
// builder structure.
func (s *AssessmentService) SaveAssessment(ctx context.Context, params SaveAssessmentParams) (persistence.Assessment, error) {
	if s == nil {
		return persistence.Assessment{}, fmt.Errorf("AssessmentService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "assessment", "save", "job_id", params.JobID)

	title := strings.TrimSpace(params.Input.Title)

	vErr := &ValidationError{}
	if title == "" {
		vErr.add("title", "title is required")
	}
	vErr.merge(s.validateStructure(params.Input.Structure))
	if vErr.HasErrors() {
		return persistence.Assessment{}, vErr
	}

	if _, err := s.jobs.GetJob(ctx, params.JobID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Assessment{}, ErrNotFound
		}
		return persistence.Assessment{}, err
	}

	now := s.now()
	assessment, err := s.assessments.UpsertAssessmentByJob(ctx, persistence.Assessment{
		ID:        s.idGenerator(),
		JobID:     params.JobID,
		Title:     title,
		Structure: params.Input.Structure,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return persistence.Assessment{}, err
	}

	logger.InfoContext(ctx, "assessment saved", "assessment_id", assessment.ID)
	return assessment, nil
}

// SubmitResponse records a candidate's answers for a job's assessment.
// Resubmitting replaces the earlier answers. The completion event on the
// candidate timeline is best effort.
func (s *AssessmentService) SubmitResponse(ctx context.Context, params SubmitResponseParams) (persistence.AssessmentResponse, error) {
	if s == nil {
		return persistence.AssessmentResponse{}, fmt.Errorf("AssessmentService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "assessment", "submit", "job_id", params.JobID, "candidate_id", params.CandidateID)

	vErr := &ValidationError{}
	if strings.TrimSpace(params.CandidateID) == "" {
		vErr.add("candidateId", "candidateId is required")
	}
	if len(params.Answers) == 0 || !json.Valid(params.Answers) {
		vErr.add("answers", "answers must be a JSON document")
	}
	if vErr.HasErrors() {
		return persistence.AssessmentResponse{}, vErr
	}

	assessment, err := s.assessments.GetAssessmentByJob(ctx, params.JobID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.AssessmentResponse{}, ErrNotFound
		}
		return persistence.AssessmentResponse{}, err
	}

	candidate, err := s.candidates.GetCandidate(ctx, params.CandidateID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.AssessmentResponse{}, ErrNotFound
		}
		return persistence.AssessmentResponse{}, err
	}

	response, err := s.assessments.UpsertResponse(ctx, persistence.AssessmentResponse{
		ID:           s.idGenerator(),
		AssessmentID: assessment.ID,
		CandidateID:  candidate.ID,
		Answers:      params.Answers,
		SubmittedAt:  s.now(),
	})
	if err != nil {
		return persistence.AssessmentResponse{}, err
	}

	event := persistence.CandidateEvent{
		ID:          s.idGenerator(),
		CandidateID: candidate.ID,
		Type:        EventAssessmentCompleted,
		Data: map[string]any{
			"assessment_id": assessment.ID,
			"job_id":        assessment.JobID,
		},
		CreatedAt: s.now(),
	}
	if err := s.candidates.AppendEvent(ctx, event); err != nil {
		logger.WarnContext(ctx, "failed to record timeline event", "event_type", EventAssessmentCompleted, "error", err)
	}

	logger.InfoContext(ctx, "assessment response submitted", "response_id", response.ID)
	return response, nil
}

func (s *AssessmentService) validateStructure(structure json.RawMessage) *ValidationError {
	vErr := &ValidationError{}

	if len(structure) == 0 {
		vErr.add("structure", "structure is required")
		return vErr
	}

	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(structure))
	if err != nil {
		vErr.add("structure", "structure must be a JSON document")
		return vErr
	}
	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, issue := range result.Errors() {
			messages = append(messages, issue.String())
		}
		vErr.add("structure", strings.Join(messages, "; "))
	}

	return vErr
}
