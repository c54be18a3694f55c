package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/example/talentflow/internal/persistence"
)

// JobService orchestrates validation, slug management, and board ordering
// for jobs.
type JobService struct {
	jobs        persistence.JobRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewJobService wires dependencies for the job service.
func NewJobService(jobs persistence.JobRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *JobService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &JobService{jobs: jobs, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

// CreateJob validates input and persists a new job at the end of the board.
func (s *JobService) CreateJob(ctx context.Context, params CreateJobParams) (persistence.Job, error) {
	if s == nil {
		return persistence.Job{}, fmt.Errorf("JobService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "job", "create")

	normalized := normalizeJobInput(params.Input)
	vErr := validateJobInput(normalized)
	if vErr.HasErrors() {
		return persistence.Job{}, vErr
	}

	if err := s.ensureSlugAvailable(ctx, normalized.Slug, ""); err != nil {
		return persistence.Job{}, err
	}

	maxOrder, err := s.jobs.MaxSortOrder(ctx)
	if err != nil {
		return persistence.Job{}, err
	}

	job := persistence.Job{
		ID:        s.idGenerator(),
		Title:     normalized.Title,
		Slug:      normalized.Slug,
		Status:    normalized.Status,
		Tags:      normalized.Tags,
		SortOrder: maxOrder + 1,
		CreatedAt: s.now(),
	}
	job.UpdatedAt = job.CreatedAt

	if err := s.jobs.CreateJob(ctx, job); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return persistence.Job{}, ErrAlreadyExists
		}
		return persistence.Job{}, err
	}

	logger.InfoContext(ctx, "job created", "job_id", job.ID, "slug", job.Slug)
	return job, nil
}

// UpdateJob applies a partial update to an existing job.
func (s *JobService) UpdateJob(ctx context.Context, params UpdateJobParams) (persistence.Job, error) {
	if s == nil {
		return persistence.Job{}, fmt.Errorf("JobService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "job", "update", "job_id", params.JobID)

	existing, err := s.jobs.GetJob(ctx, params.JobID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Job{}, ErrNotFound
		}
		return persistence.Job{}, err
	}

	updated := existing
	if params.Title != nil {
		updated.Title = *params.Title
		updated.Slug = Slugify(*params.Title)
	}
	if params.Slug != nil {
		updated.Slug = *params.Slug
	}
	if params.Status != nil {
		updated.Status = *params.Status
	}
	if params.Tags != nil {
		updated.Tags = *params.Tags
	}

	normalized := normalizeJobInput(JobInput{
		Title:  updated.Title,
		Slug:   updated.Slug,
		Status: updated.Status,
		Tags:   updated.Tags,
	})
	vErr := validateJobInput(normalized)
	if vErr.HasErrors() {
		return persistence.Job{}, vErr
	}

	if normalized.Slug != existing.Slug {
		if err := s.ensureSlugAvailable(ctx, normalized.Slug, existing.ID); err != nil {
			return persistence.Job{}, err
		}
	}

	updated.Title = normalized.Title
	updated.Slug = normalized.Slug
	updated.Status = normalized.Status
	updated.Tags = normalized.Tags
	updated.UpdatedAt = s.now()

	if err := s.jobs.UpdateJob(ctx, updated); err != nil {
		switch {
		case errors.Is(err, persistence.ErrNotFound):
			return persistence.Job{}, ErrNotFound
		case errors.Is(err, persistence.ErrDuplicate):
			return persistence.Job{}, ErrAlreadyExists
		}
		return persistence.Job{}, err
	}

	logger.InfoContext(ctx, "job updated", "slug", updated.Slug)
	return updated, nil
}

// GetJob retrieves a job by ID.
func (s *JobService) GetJob(ctx context.Context, jobID string) (persistence.Job, error) {
	if s == nil {
		return persistence.Job{}, fmt.Errorf("JobService is nil")
	}

	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Job{}, ErrNotFound
		}
		return persistence.Job{}, err
	}
	return job, nil
}

// ListJobs returns one page of jobs matching the filter.
func (s *JobService) ListJobs(ctx context.Context, params ListJobsParams) (JobPage, error) {
	if s == nil {
		return JobPage{}, fmt.Errorf("JobService is nil")
	}

	page := normalizePage(params.Page, params.PageSize, DefaultJobPageSize)
	jobs, total, err := s.jobs.ListJobs(ctx, persistence.JobFilter{
		Search: strings.TrimSpace(params.Search),
		Status: strings.TrimSpace(params.Status),
		Sort:   params.Sort,
		Page:   page,
	})
	if err != nil {
		return JobPage{}, err
	}

	return JobPage{
		Jobs:       jobs,
		Total:      total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: totalPages(total, page.PageSize),
	}, nil
}

// DeleteJob removes a job. Candidates referencing the job are left in place.
func (s *JobService) DeleteJob(ctx context.Context, jobID string) error {
	if s == nil {
		return fmt.Errorf("JobService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "job", "delete", "job_id", jobID)

	if err := s.jobs.DeleteJob(ctx, jobID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	logger.InfoContext(ctx, "job deleted")
	return nil
}

// ReorderJob moves a job between board positions. The stated fromOrder must
// match the job's current position or the move is rejected as a conflict.
func (s *JobService) ReorderJob(ctx context.Context, params ReorderJobParams) error {
	if s == nil {
		return fmt.Errorf("JobService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "job", "reorder", "job_id", params.JobID)

	vErr := &ValidationError{}
	if params.FromOrder < 1 {
		vErr.add("fromOrder", "fromOrder must be a positive position")
	}
	if params.ToOrder < 1 {
		vErr.add("toOrder", "toOrder must be a positive position")
	}
	if vErr.HasErrors() {
		return vErr
	}

	if err := s.jobs.ReorderJob(ctx, params.JobID, params.FromOrder, params.ToOrder); err != nil {
		switch {
		case errors.Is(err, persistence.ErrNotFound):
			return ErrNotFound
		case errors.Is(err, persistence.ErrConstraintViolation):
			return ErrConflict
		}
		return err
	}

	logger.InfoContext(ctx, "job reordered", "from", params.FromOrder, "to", params.ToOrder)
	return nil
}

func (s *JobService) ensureSlugAvailable(ctx context.Context, slug, selfID string) error {
	existing, err := s.jobs.GetJobBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID == selfID {
		return nil
	}
	return ErrAlreadyExists
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a title. Duplicate slugs are rejected
// rather than suffixed.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func normalizeJobInput(input JobInput) JobInput {
	title := strings.TrimSpace(input.Title)

	slug := strings.TrimSpace(strings.ToLower(input.Slug))
	if slug == "" {
		slug = Slugify(title)
	}

	status := strings.TrimSpace(strings.ToLower(input.Status))
	if status == "" {
		status = JobStatusActive
	}

	tags := make([]string, 0, len(input.Tags))
	for _, tag := range input.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	return JobInput{Title: title, Slug: slug, Status: status, Tags: tags}
}

func validateJobInput(input JobInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Title == "" {
		vErr.add("title", "title is required")
	}
	if input.Slug == "" {
		vErr.add("slug", "slug could not be derived from the title")
	}
	if !validJobStatuses[input.Status] {
		vErr.add("status", "status must be active or archived")
	}

	return vErr
}
