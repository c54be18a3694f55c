package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/example/talentflow/internal/persistence"
)

// Event types recorded on a candidate's timeline.
const (
	EventStageChange         = "stage_change"
	EventNoteAdded           = "note_added"
	EventAssessmentCompleted = "assessment_completed"
)

// MentionNotifier delivers a notification to every user a note mentions.
type MentionNotifier interface {
	NotifyMentions(ctx context.Context, mentions []string, candidate persistence.Candidate, note persistence.Note)
}

// CandidateService orchestrates candidate lifecycle, notes, and the
// append-only timeline.
type CandidateService struct {
	candidates  persistence.CandidateRepository
	jobs        persistence.JobRepository
	notifier    MentionNotifier
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewCandidateService wires dependencies for the candidate service. The
// notifier may be nil, in which case mentions are recorded but not delivered.
func NewCandidateService(candidates persistence.CandidateRepository, jobs persistence.JobRepository, notifier MentionNotifier, idGenerator func() string, now func() time.Time, logger *slog.Logger) *CandidateService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &CandidateService{
		candidates:  candidates,
		jobs:        jobs,
		notifier:    notifier,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreateCandidate validates input, persists a new candidate, and records the
// initial stage on the timeline.
func (s *CandidateService) CreateCandidate(ctx context.Context, params CreateCandidateParams) (persistence.Candidate, error) {
	if s == nil {
		return persistence.Candidate{}, fmt.Errorf("CandidateService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "candidate", "create")

	normalized := normalizeCandidateInput(params.Input)
	vErr := validateCandidateInput(normalized)
	if vErr.HasErrors() {
		return persistence.Candidate{}, vErr
	}

	if _, err := s.jobs.GetJob(ctx, normalized.JobID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			vErr.add("jobId", "job does not exist")
			return persistence.Candidate{}, vErr
		}
		return persistence.Candidate{}, err
	}

	candidate := persistence.Candidate{
		ID:        s.idGenerator(),
		Name:      normalized.Name,
		Email:     normalized.Email,
		Phone:     normalized.Phone,
		JobID:     normalized.JobID,
		Stage:     normalized.Stage,
		Notes:     []persistence.Note{},
		Profile:   normalized.Profile,
		AppliedAt: s.now(),
	}
	candidate.UpdatedAt = candidate.AppliedAt

	if err := s.candidates.CreateCandidate(ctx, candidate); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return persistence.Candidate{}, ErrAlreadyExists
		}
		return persistence.Candidate{}, err
	}

	s.recordEvent(ctx, logger, candidate.ID, EventStageChange, map[string]any{"to": candidate.Stage})

	logger.InfoContext(ctx, "candidate created", "candidate_id", candidate.ID, "job_id", candidate.JobID)
	return candidate, nil
}

// UpdateCandidate applies a partial update. A stage transition records a
// timeline event after the update commits; the event write is best effort.
func (s *CandidateService) UpdateCandidate(ctx context.Context, params UpdateCandidateParams) (persistence.Candidate, error) {
	if s == nil {
		return persistence.Candidate{}, fmt.Errorf("CandidateService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "candidate", "update", "candidate_id", params.CandidateID)

	existing, err := s.candidates.GetCandidate(ctx, params.CandidateID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Candidate{}, ErrNotFound
		}
		return persistence.Candidate{}, err
	}

	updated := existing
	if params.Name != nil {
		updated.Name = *params.Name
	}
	if params.Email != nil {
		updated.Email = *params.Email
	}
	if params.Phone != nil {
		updated.Phone = params.Phone
	}
	if params.JobID != nil {
		updated.JobID = *params.JobID
	}
	if params.Stage != nil {
		updated.Stage = *params.Stage
	}
	if params.Profile != nil {
		updated.Profile = *params.Profile
	}

	normalized := normalizeCandidateInput(CandidateInput{
		Name:    updated.Name,
		Email:   updated.Email,
		Phone:   updated.Phone,
		JobID:   updated.JobID,
		Stage:   updated.Stage,
		Profile: updated.Profile,
	})
	vErr := validateCandidateInput(normalized)
	if vErr.HasErrors() {
		return persistence.Candidate{}, vErr
	}

	if normalized.JobID != existing.JobID {
		if _, err := s.jobs.GetJob(ctx, normalized.JobID); err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				vErr.add("jobId", "job does not exist")
				return persistence.Candidate{}, vErr
			}
			return persistence.Candidate{}, err
		}
	}

	updated.Name = normalized.Name
	updated.Email = normalized.Email
	updated.Phone = normalized.Phone
	updated.JobID = normalized.JobID
	updated.Stage = normalized.Stage
	updated.Profile = normalized.Profile
	updated.UpdatedAt = s.now()

	if err := s.candidates.UpdateCandidate(ctx, updated); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Candidate{}, ErrNotFound
		}
		return persistence.Candidate{}, err
	}

	if updated.Stage != existing.Stage {
		s.recordEvent(ctx, logger, updated.ID, EventStageChange, map[string]any{
			"from": existing.Stage,
			"to":   updated.Stage,
		})
	}

	logger.InfoContext(ctx, "candidate updated", "stage", updated.Stage)
	return updated, nil
}

// AddNote appends a note to a candidate, records a timeline event, and
// notifies mentioned users.
func (s *CandidateService) AddNote(ctx context.Context, params AddNoteParams) (persistence.Candidate, error) {
	if s == nil {
		return persistence.Candidate{}, fmt.Errorf("CandidateService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "candidate", "add_note", "candidate_id", params.CandidateID)

	content := strings.TrimSpace(params.Content)
	author := strings.TrimSpace(params.Author)

	vErr := &ValidationError{}
	if content == "" {
		vErr.add("content", "content is required")
	}
	if author == "" {
		vErr.add("author", "author is required")
	}
	if vErr.HasErrors() {
		return persistence.Candidate{}, vErr
	}

	candidate, err := s.candidates.GetCandidate(ctx, params.CandidateID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Candidate{}, ErrNotFound
		}
		return persistence.Candidate{}, err
	}

	note := persistence.Note{
		ID:        s.idGenerator(),
		Content:   content,
		Author:    author,
		Mentions:  ExtractMentions(content),
		CreatedAt: s.now(),
	}

	candidate.Notes = append(candidate.Notes, note)
	candidate.UpdatedAt = note.CreatedAt

	if err := s.candidates.UpdateCandidate(ctx, candidate); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Candidate{}, ErrNotFound
		}
		return persistence.Candidate{}, err
	}

	s.recordEvent(ctx, logger, candidate.ID, EventNoteAdded, map[string]any{
		"note_id": note.ID,
		"author":  note.Author,
	})

	if s.notifier != nil && len(note.Mentions) > 0 {
		s.notifier.NotifyMentions(ctx, note.Mentions, candidate, note)
	}

	logger.InfoContext(ctx, "note added", "note_id", note.ID, "mentions", len(note.Mentions))
	return candidate, nil
}

// GetCandidate retrieves a candidate by ID.
func (s *CandidateService) GetCandidate(ctx context.Context, candidateID string) (persistence.Candidate, error) {
	if s == nil {
		return persistence.Candidate{}, fmt.Errorf("CandidateService is nil")
	}

	candidate, err := s.candidates.GetCandidate(ctx, candidateID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Candidate{}, ErrNotFound
		}
		return persistence.Candidate{}, err
	}
	return candidate, nil
}

// ListCandidates returns one page of candidates matching the filter.
func (s *CandidateService) ListCandidates(ctx context.Context, params ListCandidatesParams) (CandidatePage, error) {
	if s == nil {
		return CandidatePage{}, fmt.Errorf("CandidateService is nil")
	}

	page := normalizePage(params.Page, params.PageSize, DefaultCandidatePageSize)
	candidates, total, err := s.candidates.ListCandidates(ctx, persistence.CandidateFilter{
		Search: strings.TrimSpace(params.Search),
		JobID:  strings.TrimSpace(params.JobID),
		Stage:  strings.TrimSpace(params.Stage),
		Sort:   params.Sort,
		Page:   page,
	})
	if err != nil {
		return CandidatePage{}, err
	}

	return CandidatePage{
		Candidates: candidates,
		Total:      total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: totalPages(total, page.PageSize),
	}, nil
}

// DeleteCandidate removes a candidate together with its timeline events.
func (s *CandidateService) DeleteCandidate(ctx context.Context, candidateID string) error {
	if s == nil {
		return fmt.Errorf("CandidateService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "candidate", "delete", "candidate_id", candidateID)

	if err := s.candidates.DeleteCandidate(ctx, candidateID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	logger.InfoContext(ctx, "candidate deleted")
	return nil
}

// Timeline returns a candidate's events in chronological order.
func (s *CandidateService) Timeline(ctx context.Context, candidateID string) ([]persistence.CandidateEvent, error) {
	if s == nil {
		return nil, fmt.Errorf("CandidateService is nil")
	}

	if _, err := s.candidates.GetCandidate(ctx, candidateID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return s.candidates.ListEvents(ctx, candidateID)
}

// recordEvent appends a timeline event. The mutation it follows has already
// committed, so a failure here is logged and swallowed.
func (s *CandidateService) recordEvent(ctx context.Context, logger *slog.Logger, candidateID, eventType string, data map[string]any) {
	event := persistence.CandidateEvent{
		ID:          s.idGenerator(),
		CandidateID: candidateID,
		Type:        eventType,
		Data:        data,
		CreatedAt:   s.now(),
	}
	if err := s.candidates.AppendEvent(ctx, event); err != nil {
		logger.WarnContext(ctx, "failed to record timeline event", "event_type", eventType, "error", err)
	}
}

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9][A-Za-z0-9._-]*)`)

// ExtractMentions returns the unique @mention tokens in note content, in
// order of first appearance.
func ExtractMentions(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	mentions := make([]string, 0, len(matches))
	for _, match := range matches {
		token := match[1]
		key := strings.ToLower(token)
		if seen[key] {
			continue
		}
		seen[key] = true
		mentions = append(mentions, token)
	}
	return mentions
}

func normalizeCandidateInput(input CandidateInput) CandidateInput {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	phone := input.Phone
	if phone != nil {
		trimmed := strings.TrimSpace(*phone)
		if trimmed == "" {
			phone = nil
		} else {
			phone = &trimmed
		}
	}

	stage := strings.TrimSpace(strings.ToLower(input.Stage))
	if stage == "" {
		stage = StageApplied
	}

	return CandidateInput{
		Name:    name,
		Email:   email,
		Phone:   phone,
		JobID:   strings.TrimSpace(input.JobID),
		Stage:   stage,
		Profile: input.Profile,
	}
}

func validateCandidateInput(input CandidateInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Name == "" {
		vErr.add("name", "name is required")
	}
	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is invalid")
	}
	if input.JobID == "" {
		vErr.add("jobId", "jobId is required")
	}
	if !validStages[input.Stage] {
		vErr.add("stage", "stage is not a known pipeline stage")
	}

	return vErr
}
