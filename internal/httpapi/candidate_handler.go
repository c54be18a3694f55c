package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/talentflow/internal/application"
	"github.com/example/talentflow/internal/persistence"
)

type candidateService interface {
	CreateCandidate(ctx context.Context, params application.CreateCandidateParams) (persistence.Candidate, error)
	UpdateCandidate(ctx context.Context, params application.UpdateCandidateParams) (persistence.Candidate, error)
	AddNote(ctx context.Context, params application.AddNoteParams) (persistence.Candidate, error)
	GetCandidate(ctx context.Context, candidateID string) (persistence.Candidate, error)
	ListCandidates(ctx context.Context, params application.ListCandidatesParams) (application.CandidatePage, error)
	DeleteCandidate(ctx context.Context, candidateID string) error
	Timeline(ctx context.Context, candidateID string) ([]persistence.CandidateEvent, error)
}

type CandidateHandler struct {
	service   candidateService
	responder responder
	logger    *slog.Logger
}

func NewCandidateHandler(service candidateService, logger *slog.Logger) *CandidateHandler {
	base := defaultLogger(logger)
	return &CandidateHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *CandidateHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "CandidateHandler", operation, attrs...)
}

func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	page, err := h.service.ListCandidates(r.Context(), application.ListCandidatesParams{
		Search:   query.Get("search"),
		JobID:    query.Get("jobId"),
		Stage:    query.Get("stage"),
		Sort:     query.Get("sort"),
		Page:     intQueryParam(query.Get("page")),
		PageSize: intQueryParam(query.Get("pageSize")),
	})
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "candidate listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, listCandidatesResponse{
		Items:      toCandidateDTOs(page.Candidates),
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	})
}

func (h *CandidateHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req candidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode candidate request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create")

	candidate, err := h.service.CreateCandidate(r.Context(), application.CreateCandidateParams{Input: req.toInput()})
	if err != nil {
		logger.ErrorContext(r.Context(), "candidate creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("candidate_id", candidate.ID).InfoContext(r.Context(), "candidate created")
	h.responder.writeData(r.Context(), w, http.StatusCreated, toCandidateDTO(candidate))
}

func (h *CandidateHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	candidateID, ok := CandidateIDFromContext(r.Context())
	if !ok || strings.TrimSpace(candidateID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errInvalidCandidateID)
		return
	}

	candidate, err := h.service.GetCandidate(r.Context(), candidateID)
	if err != nil {
		h.log(r.Context(), "Get", "candidate_id", candidateID).ErrorContext(r.Context(), "candidate lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, toCandidateDTO(candidate))
}

func (h *CandidateHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	candidateID, ok := CandidateIDFromContext(r.Context())
	if !ok || strings.TrimSpace(candidateID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errInvalidCandidateID)
		return
	}

	var req updateCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "candidate_id", candidateID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode candidate update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "candidate_id", candidateID)

	candidate, err := h.service.UpdateCandidate(r.Context(), application.UpdateCandidateParams{
		CandidateID: candidateID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		JobID:       req.JobID,
		Stage:       req.Stage,
		Profile:     req.Profile,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "candidate update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "candidate updated")
	h.responder.writeData(r.Context(), w, http.StatusOK, toCandidateDTO(candidate))
}

func (h *CandidateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	candidateID, ok := CandidateIDFromContext(r.Context())
	if !ok || strings.TrimSpace(candidateID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errInvalidCandidateID)
		return
	}

	logger := h.log(r.Context(), "Delete", "candidate_id", candidateID)

	if err := h.service.DeleteCandidate(r.Context(), candidateID); err != nil {
		logger.ErrorContext(r.Context(), "candidate deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "candidate deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *CandidateHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	candidateID, ok := CandidateIDFromContext(r.Context())
	if !ok || strings.TrimSpace(candidateID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errInvalidCandidateID)
		return
	}

	events, err := h.service.Timeline(r.Context(), candidateID)
	if err != nil {
		h.log(r.Context(), "Timeline", "candidate_id", candidateID).ErrorContext(r.Context(), "timeline lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, toEventDTOs(events))
}

func (h *CandidateHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	candidateID, ok := CandidateIDFromContext(r.Context())
	if !ok || strings.TrimSpace(candidateID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errInvalidCandidateID)
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "AddNote", "candidate_id", candidateID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode note request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "AddNote", "candidate_id", candidateID)

	candidate, err := h.service.AddNote(r.Context(), application.AddNoteParams{
		CandidateID: candidateID,
		Content:     req.Content,
		Author:      req.Author,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "adding note failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "note added")
	h.responder.writeData(r.Context(), w, http.StatusCreated, toCandidateDTO(candidate))
}

type candidateRequest struct {
	Name    string                        `json:"name"`
	Email   string                        `json:"email"`
	Phone   *string                       `json:"phone"`
	JobID   string                        `json:"jobId"`
	Stage   string                        `json:"stage"`
	Profile persistence.CandidateProfile  `json:"profile"`
}

func (req candidateRequest) toInput() application.CandidateInput {
	return application.CandidateInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		JobID:   req.JobID,
		Stage:   req.Stage,
		Profile: req.Profile,
	}
}

type updateCandidateRequest struct {
	Name    *string                       `json:"name"`
	Email   *string                       `json:"email"`
	Phone   *string                       `json:"phone"`
	JobID   *string                       `json:"jobId"`
	Stage   *string                       `json:"stage"`
	Profile *persistence.CandidateProfile `json:"profile"`
}

type noteRequest struct {
	Content string `json:"content"`
	Author  string `json:"author"`
}

type candidateDTO struct {
	ID        string                       `json:"id"`
	Name      string                       `json:"name"`
	Email     string                       `json:"email"`
	Phone     *string                      `json:"phone,omitempty"`
	JobID     string                       `json:"jobId"`
	Stage     string                       `json:"stage"`
	Notes     []persistence.Note           `json:"notes"`
	Profile   persistence.CandidateProfile `json:"profile"`
	AppliedAt time.Time                    `json:"appliedAt"`
	UpdatedAt time.Time                    `json:"updatedAt"`
}

type listCandidatesResponse struct {
	Items      []candidateDTO `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type eventDTO struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"createdAt"`
}

func toCandidateDTO(candidate persistence.Candidate) candidateDTO {
	notes := candidate.Notes
	if notes == nil {
		notes = []persistence.Note{}
	}
	return candidateDTO{
		ID:        candidate.ID,
		Name:      candidate.Name,
		Email:     candidate.Email,
		Phone:     candidate.Phone,
		JobID:     candidate.JobID,
		Stage:     candidate.Stage,
		Notes:     notes,
		Profile:   candidate.Profile,
		AppliedAt: candidate.AppliedAt,
		UpdatedAt: candidate.UpdatedAt,
	}
}

func toCandidateDTOs(candidates []persistence.Candidate) []candidateDTO {
	out := make([]candidateDTO, 0, len(candidates))
	for _, candidate := range candidates {
		out = append(out, toCandidateDTO(candidate))
	}
	return out
}

func toEventDTOs(events []persistence.CandidateEvent) []eventDTO {
	out := make([]eventDTO, 0, len(events))
	for _, event := range events {
		out = append(out, eventDTO{
			ID:        event.ID,
			Type:      event.Type,
			Data:      event.Data,
			CreatedAt: event.CreatedAt,
		})
	}
	return out
}
