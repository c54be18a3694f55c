package application

import (
	"context"
	"sort"
	"strings"

	"github.com/example/talentflow/internal/persistence"
)

// jobRepoStub is an in-memory JobRepository with error injection hooks.
type jobRepoStub struct {
	jobs       map[string]persistence.Job
	createErr  error
	updateErr  error
	getErr     error
	deleteErr  error
	reorderErr error
	listErr    error
}

func newJobRepoStub(jobs ...persistence.Job) *jobRepoStub {
	stub := &jobRepoStub{jobs: make(map[string]persistence.Job)}
	for _, job := range jobs {
		stub.jobs[job.ID] = job
	}
	return stub
}

func (s *jobRepoStub) CreateJob(ctx context.Context, job persistence.Job) error {
	if s.createErr != nil {
		return s.createErr
	}
	for _, existing := range s.jobs {
		if existing.Slug == job.Slug {
			return persistence.ErrDuplicate
		}
	}
	s.jobs[job.ID] = job
	return nil
}

func (s *jobRepoStub) UpdateJob(ctx context.Context, job persistence.Job) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.jobs[job.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.jobs[job.ID] = job
	return nil
}

func (s *jobRepoStub) GetJob(ctx context.Context, id string) (persistence.Job, error) {
	if s.getErr != nil {
		return persistence.Job{}, s.getErr
	}
	job, ok := s.jobs[id]
	if !ok {
		return persistence.Job{}, persistence.ErrNotFound
	}
	return job, nil
}

func (s *jobRepoStub) GetJobBySlug(ctx context.Context, slug string) (persistence.Job, error) {
	if s.getErr != nil {
		return persistence.Job{}, s.getErr
	}
	for _, job := range s.jobs {
		if job.Slug == slug {
			return job, nil
		}
	}
	return persistence.Job{}, persistence.ErrNotFound
}

func (s *jobRepoStub) ListJobs(ctx context.Context, filter persistence.JobFilter) ([]persistence.Job, int, error) {
	if s.listErr != nil {
		return nil, 0, s.listErr
	}
	var out []persistence.Job
	for _, job := range s.jobs {
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, len(out), nil
}

func (s *jobRepoStub) DeleteJob(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.jobs[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.jobs, id)
	return nil
}

func (s *jobRepoStub) MaxSortOrder(ctx context.Context) (int, error) {
	max := 0
	for _, job := range s.jobs {
		if job.SortOrder > max {
			max = job.SortOrder
		}
	}
	return max, nil
}

func (s *jobRepoStub) ReorderJob(ctx context.Context, id string, fromOrder, toOrder int) error {
	if s.reorderErr != nil {
		return s.reorderErr
	}
	job, ok := s.jobs[id]
	if !ok {
		return persistence.ErrNotFound
	}
	if job.SortOrder != fromOrder {
		return persistence.ErrConstraintViolation
	}
	job.SortOrder = toOrder
	s.jobs[id] = job
	return nil
}

// candidateRepoStub is an in-memory CandidateRepository with error injection.
type candidateRepoStub struct {
	candidates map[string]persistence.Candidate
	events     []persistence.CandidateEvent
	createErr  error
	updateErr  error
	getErr     error
	deleteErr  error
	appendErr  error
}

func newCandidateRepoStub(candidates ...persistence.Candidate) *candidateRepoStub {
	stub := &candidateRepoStub{candidates: make(map[string]persistence.Candidate)}
	for _, candidate := range candidates {
		stub.candidates[candidate.ID] = candidate
	}
	return stub
}

func (s *candidateRepoStub) CreateCandidate(ctx context.Context, candidate persistence.Candidate) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.candidates[candidate.ID] = candidate
	return nil
}

func (s *candidateRepoStub) UpdateCandidate(ctx context.Context, candidate persistence.Candidate) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.candidates[candidate.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.candidates[candidate.ID] = candidate
	return nil
}

func (s *candidateRepoStub) GetCandidate(ctx context.Context, id string) (persistence.Candidate, error) {
	if s.getErr != nil {
		return persistence.Candidate{}, s.getErr
	}
	candidate, ok := s.candidates[id]
	if !ok {
		return persistence.Candidate{}, persistence.ErrNotFound
	}
	return candidate, nil
}

func (s *candidateRepoStub) ListCandidates(ctx context.Context, filter persistence.CandidateFilter) ([]persistence.Candidate, int, error) {
	var out []persistence.Candidate
	for _, candidate := range s.candidates {
		if filter.JobID != "" && candidate.JobID != filter.JobID {
			continue
		}
		if filter.Stage != "" && candidate.Stage != filter.Stage {
			continue
		}
		out = append(out, candidate)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (s *candidateRepoStub) DeleteCandidate(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.candidates[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.candidates, id)
	return nil
}

func (s *candidateRepoStub) AppendEvent(ctx context.Context, event persistence.CandidateEvent) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.events = append(s.events, event)
	return nil
}

func (s *candidateRepoStub) ListEvents(ctx context.Context, candidateID string) ([]persistence.CandidateEvent, error) {
	var out []persistence.CandidateEvent
	for _, event := range s.events {
		if event.CandidateID == candidateID {
			out = append(out, event)
		}
	}
	return out, nil
}

// assessmentRepoStub is an in-memory AssessmentRepository keyed by job.
type assessmentRepoStub struct {
	assessments map[string]persistence.Assessment
	responses   map[string]persistence.AssessmentResponse
	upsertErr   error
	getErr      error
}

func newAssessmentRepoStub(assessments ...persistence.Assessment) *assessmentRepoStub {
	stub := &assessmentRepoStub{
		assessments: make(map[string]persistence.Assessment),
		responses:   make(map[string]persistence.AssessmentResponse),
	}
	for _, assessment := range assessments {
		stub.assessments[assessment.JobID] = assessment
	}
	return stub
}

func (s *assessmentRepoStub) GetAssessmentByJob(ctx context.Context, jobID string) (persistence.Assessment, error) {
	if s.getErr != nil {
		return persistence.Assessment{}, s.getErr
	}
	assessment, ok := s.assessments[jobID]
	if !ok {
		return persistence.Assessment{}, persistence.ErrNotFound
	}
	return assessment, nil
}

func (s *assessmentRepoStub) UpsertAssessmentByJob(ctx context.Context, assessment persistence.Assessment) (persistence.Assessment, error) {
	if s.upsertErr != nil {
		return persistence.Assessment{}, s.upsertErr
	}
	if existing, ok := s.assessments[assessment.JobID]; ok {
		existing.Title = assessment.Title
		existing.Structure = assessment.Structure
		existing.UpdatedAt = assessment.UpdatedAt
		s.assessments[assessment.JobID] = existing
		return existing, nil
	}
	s.assessments[assessment.JobID] = assessment
	return assessment, nil
}

func (s *assessmentRepoStub) DeleteAssessment(ctx context.Context, id string) error {
	for jobID, assessment := range s.assessments {
		if assessment.ID == id {
			delete(s.assessments, jobID)
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (s *assessmentRepoStub) UpsertResponse(ctx context.Context, response persistence.AssessmentResponse) (persistence.AssessmentResponse, error) {
	if s.upsertErr != nil {
		return persistence.AssessmentResponse{}, s.upsertErr
	}
	key := response.AssessmentID + "/" + response.CandidateID
	if existing, ok := s.responses[key]; ok {
		existing.Answers = response.Answers
		existing.SubmittedAt = response.SubmittedAt
		s.responses[key] = existing
		return existing, nil
	}
	s.responses[key] = response
	return response, nil
}

func (s *assessmentRepoStub) ListResponses(ctx context.Context, assessmentID string) ([]persistence.AssessmentResponse, error) {
	var out []persistence.AssessmentResponse
	for _, response := range s.responses {
		if response.AssessmentID == assessmentID {
			out = append(out, response)
		}
	}
	return out, nil
}

// userRepoStub is an in-memory UserRepository with error injection hooks.
type userRepoStub struct {
	users     map[string]persistence.User
	createErr error
	updateErr error
	getErr    error
	listErr   error

	updateCalls []persistence.User
}

func newUserRepoStub(users ...persistence.User) *userRepoStub {
	stub := &userRepoStub{users: make(map[string]persistence.User)}
	for _, user := range users {
		stub.users[user.ID] = user
	}
	return stub
}

func (s *userRepoStub) CreateUser(ctx context.Context, user persistence.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return persistence.ErrDuplicate
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *userRepoStub) UpdateUser(ctx context.Context, user persistence.User) error {
	s.updateCalls = append(s.updateCalls, user)
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.users[user.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.users[user.ID] = user
	return nil
}

func (s *userRepoStub) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if s.getErr != nil {
		return persistence.User{}, s.getErr
	}
	user, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

func (s *userRepoStub) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	if s.getErr != nil {
		return persistence.User{}, s.getErr
	}
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

func (s *userRepoStub) ListUsers(ctx context.Context, filter persistence.UserFilter) ([]persistence.User, int, error) {
	if s.listErr != nil {
		return nil, 0, s.listErr
	}
	var out []persistence.User
	for _, user := range s.users {
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(user.Name), needle) && !strings.Contains(strings.ToLower(user.Email), needle) {
				continue
			}
		}
		if filter.Role != "" && user.Role != filter.Role {
			continue
		}
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (s *userRepoStub) DeleteUser(ctx context.Context, id string) error {
	if _, ok := s.users[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// notificationRepoStub is an in-memory NotificationRepository.
type notificationRepoStub struct {
	notifications map[string]persistence.Notification
	createErr     error
	markErr       error
}

func newNotificationRepoStub(notifications ...persistence.Notification) *notificationRepoStub {
	stub := &notificationRepoStub{notifications: make(map[string]persistence.Notification)}
	for _, notification := range notifications {
		stub.notifications[notification.ID] = notification
	}
	return stub
}

func (s *notificationRepoStub) CreateNotification(ctx context.Context, notification persistence.Notification) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.notifications[notification.ID] = notification
	return nil
}

func (s *notificationRepoStub) GetNotification(ctx context.Context, id string) (persistence.Notification, error) {
	notification, ok := s.notifications[id]
	if !ok {
		return persistence.Notification{}, persistence.ErrNotFound
	}
	return notification, nil
}

func (s *notificationRepoStub) ListNotifications(ctx context.Context, filter persistence.NotificationFilter) ([]persistence.Notification, int, error) {
	var out []persistence.Notification
	for _, notification := range s.notifications {
		if notification.UserID != filter.UserID {
			continue
		}
		if filter.Category != "" && notification.Category != filter.Category {
			continue
		}
		if filter.Unread != nil && notification.IsRead == *filter.Unread {
			continue
		}
		out = append(out, notification)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (s *notificationRepoStub) MarkRead(ctx context.Context, id string) (persistence.Notification, error) {
	if s.markErr != nil {
		return persistence.Notification{}, s.markErr
	}
	notification, ok := s.notifications[id]
	if !ok {
		return persistence.Notification{}, persistence.ErrNotFound
	}
	notification.IsRead = true
	s.notifications[id] = notification
	return notification, nil
}

func (s *notificationRepoStub) MarkAllRead(ctx context.Context, userID string) (int, error) {
	if s.markErr != nil {
		return 0, s.markErr
	}
	updated := 0
	for id, notification := range s.notifications {
		if notification.UserID == userID && !notification.IsRead {
			notification.IsRead = true
			s.notifications[id] = notification
			updated++
		}
	}
	return updated, nil
}

func (s *notificationRepoStub) DeleteNotification(ctx context.Context, id string) error {
	if _, ok := s.notifications[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.notifications, id)
	return nil
}

func (s *notificationRepoStub) Stats(ctx context.Context, userID string) (persistence.NotificationStats, error) {
	stats := persistence.NotificationStats{
		ByCategory: make(map[string]int),
		ByType:     make(map[string]int),
	}
	for _, notification := range s.notifications {
		if notification.UserID != userID {
			continue
		}
		stats.Total++
		if !notification.IsRead {
			stats.Unread++
		}
		stats.ByCategory[notification.Category]++
		stats.ByType[notification.Type]++
	}
	return stats, nil
}
