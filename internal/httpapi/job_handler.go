package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/talentflow/internal/application"
	"github.com/example/talentflow/internal/persistence"
)

type jobService interface {
	CreateJob(ctx context.Context, params application.CreateJobParams) (persistence.Job, error)
	UpdateJob(ctx context.Context, params application.UpdateJobParams) (persistence.Job, error)
	GetJob(ctx context.Context, jobID string) (persistence.Job, error)
	ListJobs(ctx context.Context, params application.ListJobsParams) (application.JobPage, error)
	DeleteJob(ctx context.Context, jobID string) error
	ReorderJob(ctx context.Context, params application.ReorderJobParams) error
}

type JobHandler struct {
	service   jobService
	responder responder
	logger    *slog.Logger
}

func NewJobHandler(service jobService, logger *slog.Logger) *JobHandler {
	base := defaultLogger(logger)
	return &JobHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *JobHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "JobHandler", operation, attrs...)
}

func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	page, err := h.service.ListJobs(r.Context(), application.ListJobsParams{
		Search:   query.Get("search"),
		Status:   query.Get("status"),
		Sort:     query.Get("sort"),
		Page:     intQueryParam(query.Get("page")),
		PageSize: intQueryParam(query.Get("pageSize")),
	})
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "job listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, listJobsResponse{
		Items:      toJobDTOs(page.Jobs),
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	})
}

func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode job request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create")

	job, err := h.service.CreateJob(r.Context(), application.CreateJobParams{Input: req.toInput()})
	if err != nil {
		logger.ErrorContext(r.Context(), "job creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("job_id", job.ID).InfoContext(r.Context(), "job created")
	h.responder.writeData(r.Context(), w, http.StatusCreated, toJobDTO(job))
}

func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	jobID, ok := JobIDFromContext(r.Context())
	if !ok || strings.TrimSpace(jobID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errInvalidJobID)
		return
	}

	job, err := h.service.GetJob(r.Context(), jobID)
	if err != nil {
		h.log(r.Context(), "Get", "job_id", jobID).ErrorContext(r.Context(), "job lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, toJobDTO(job))
}

func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	jobID, ok := JobIDFromContext(r.Context())
	if !ok || strings.TrimSpace(jobID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errInvalidJobID)
		return
	}

	var req updateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "job_id", jobID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode job update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "job_id", jobID)

	job, err := h.service.UpdateJob(r.Context(), application.UpdateJobParams{
		JobID:  jobID,
		Title:  req.Title,
		Slug:   req.Slug,
		Status: req.Status,
		Tags:   req.Tags,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "job update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "job updated")
	h.responder.writeData(r.Context(), w, http.StatusOK, toJobDTO(job))
}

func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	jobID, ok := JobIDFromContext(r.Context())
	if !ok || strings.TrimSpace(jobID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errInvalidJobID)
		return
	}

	logger := h.log(r.Context(), "Delete", "job_id", jobID)

	if err := h.service.DeleteJob(r.Context(), jobID); err != nil {
		logger.ErrorContext(r.Context(), "job deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "job deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *JobHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	jobID, ok := JobIDFromContext(r.Context())
	if !ok || strings.TrimSpace(jobID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errInvalidJobID)
		return
	}

	var req reorderJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Reorder", "job_id", jobID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode reorder request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Reorder", "job_id", jobID)

	err := h.service.ReorderJob(r.Context(), application.ReorderJobParams{
		JobID:     jobID,
		FromOrder: req.FromOrder,
		ToOrder:   req.ToOrder,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "job reorder failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "job reordered", "from", req.FromOrder, "to", req.ToOrder)
	h.responder.writeData(r.Context(), w, http.StatusOK, reorderJobResponse{FromOrder: req.FromOrder, ToOrder: req.ToOrder})
}

func intQueryParam(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

type jobRequest struct {
	Title  string   `json:"title"`
	Slug   string   `json:"slug"`
	Status string   `json:"status"`
	Tags   []string `json:"tags"`
}

func (req jobRequest) toInput() application.JobInput {
	return application.JobInput{
		Title:  req.Title,
		Slug:   req.Slug,
		Status: req.Status,
		Tags:   req.Tags,
	}
}

type updateJobRequest struct {
	Title  *string   `json:"title"`
	Slug   *string   `json:"slug"`
	Status *string   `json:"status"`
	Tags   *[]string `json:"tags"`
}

type reorderJobRequest struct {
	FromOrder int `json:"fromOrder"`
	ToOrder   int `json:"toOrder"`
}

type reorderJobResponse struct {
	FromOrder int `json:"fromOrder"`
	ToOrder   int `json:"toOrder"`
}

type jobDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Status    string    `json:"status"`
	Tags      []string  `json:"tags"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type listJobsResponse struct {
	Items      []jobDTO `json:"items"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
	TotalPages int      `json:"totalPages"`
}

func toJobDTO(job persistence.Job) jobDTO {
	tags := job.Tags
	if tags == nil {
		tags = []string{}
	}
	return jobDTO{
		ID:        job.ID,
		Title:     job.Title,
		Slug:      job.Slug,
		Status:    job.Status,
		Tags:      tags,
		Order:     job.SortOrder,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
}

func toJobDTOs(jobs []persistence.Job) []jobDTO {
	out := make([]jobDTO, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, toJobDTO(job))
	}
	return out
}
