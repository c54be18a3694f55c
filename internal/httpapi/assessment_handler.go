package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/talentflow/internal/application"
	"github.com/example/talentflow/internal/persistence"
)

var errInvalidAssessmentJobID = errors.New("a job id is required in the path")

type assessmentService interface {
	GetAssessment(ctx context.Context, jobID string) (persistence.Assessment, error)
	SaveAssessment(ctx context.Context, params application.SaveAssessmentParams) (persistence.Assessment, error)
	SubmitResponse(ctx context.Context, params application.SubmitResponseParams) (persistence.AssessmentResponse, error)
}

type AssessmentHandler struct {
	service   assessmentService
	responder responder
	logger    *slog.Logger
}

func NewAssessmentHandler(service assessmentService, logger *slog.Logger) *AssessmentHandler {
	base := defaultLogger(logger)
	return &AssessmentHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AssessmentHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AssessmentHandler", operation, attrs...)
}

func (h *AssessmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	jobID, ok := JobIDFromContext(r.Context())
	if !ok || strings.TrimSpace(jobID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errInvalidAssessmentJobID)
		return
	}

	assessment, err := h.service.GetAssessment(r.Context(), jobID)
	if err != nil {
		h.log(r.Context(), "Get", "job_id", jobID).ErrorContext(r.Context(), "assessment lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, toAssessmentDTO(assessment))
}

func (h *AssessmentHandler) Save(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	jobID, ok := JobIDFromContext(r.Context())
	if !ok || strings.TrimSpace(jobID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errInvalidAssessmentJobID)
		return
	}

	var req assessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Save", "job_id", jobID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode assessment request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Save", "job_id", jobID)

	assessment, err := h.service.SaveAssessment(r.Context(), application.SaveAssessmentParams{
		JobID: jobID,
		Input: application.AssessmentInput{Title: req.Title, Structure: req.Structure},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "saving assessment failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("assessment_id", assessment.ID).InfoContext(r.Context(), "assessment saved")
	h.responder.writeData(r.Context(), w, http.StatusOK, toAssessmentDTO(assessment))
}

func (h *AssessmentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	jobID, ok := JobIDFromContext(r.Context())
	if !ok || strings.TrimSpace(jobID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errInvalidAssessmentJobID)
		return
	}

	var req submitResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Submit", "job_id", jobID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode submission", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Submit", "job_id", jobID, "candidate_id", req.CandidateID)

	response, err := h.service.SubmitResponse(r.Context(), application.SubmitResponseParams{
		JobID:       jobID,
		CandidateID: req.CandidateID,
		Answers:     req.Answers,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "submission failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("response_id", response.ID).InfoContext(r.Context(), "assessment response submitted")
	h.responder.writeData(r.Context(), w, http.StatusCreated, toResponseDTO(response))
}

type assessmentRequest struct {
	Title     string          `json:"title"`
	Structure json.RawMessage `json:"structure"`
}

type submitResponseRequest struct {
	CandidateID string          `json:"candidateId"`
	Answers     json.RawMessage `json:"answers"`
}

type assessmentDTO struct {
	ID        string          `json:"id"`
	JobID     string          `json:"jobId"`
	Title     string          `json:"title"`
	Structure json.RawMessage `json:"structure"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type responseDTO struct {
	ID           string          `json:"id"`
	AssessmentID string          `json:"assessmentId"`
	CandidateID  string          `json:"candidateId"`
	Answers      json.RawMessage `json:"answers"`
	SubmittedAt  time.Time       `json:"submittedAt"`
}

func toAssessmentDTO(assessment persistence.Assessment) assessmentDTO {
	return assessmentDTO{
		ID:        assessment.ID,
		JobID:     assessment.JobID,
		Title:     assessment.Title,
		Structure: assessment.Structure,
		CreatedAt: assessment.CreatedAt,
		UpdatedAt: assessment.UpdatedAt,
	}
}

func toResponseDTO(response persistence.AssessmentResponse) responseDTO {
	return responseDTO{
		ID:           response.ID,
		AssessmentID: response.AssessmentID,
		CandidateID:  response.CandidateID,
		Answers:      response.Answers,
		SubmittedAt:  response.SubmittedAt,
	}
}
