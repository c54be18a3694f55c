package persistence

import "context"

// Page selects a window of a filtered listing. Page numbering starts at 1.
type Page struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// JobFilter narrows job listings. Search matches title and tags.
type JobFilter struct {
	Search string
	Status string
	Sort   string
	Page   Page
}

// CandidateFilter narrows candidate listings. Search matches name and email.
type CandidateFilter struct {
	Search string
	JobID  string
	Stage  string
	Sort   string
	Page   Page
}

// UserFilter narrows user listings. Search matches name and email.
type UserFilter struct {
	Search string
	Role   string
	Sort   string
	Page   Page
}

// NotificationFilter narrows notification listings for one user.
type NotificationFilter struct {
	UserID   string
	Category string
	Unread   *bool
	Page     Page
}

// JobRepository exposes CRUD and ordering operations for jobs.
type JobRepository interface {
	CreateJob(ctx context.Context, job Job) error
	UpdateJob(ctx context.Context, job Job) error
	GetJob(ctx context.Context, id string) (Job, error)
	GetJobBySlug(ctx context.Context, slug string) (Job, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]Job, int, error)
	DeleteJob(ctx context.Context, id string) error
	MaxSortOrder(ctx context.Context) (int, error)
	// ReorderJob shifts every job whose sort order lies strictly between
	// fromOrder and toOrder by one position and moves the identified job to
	// toOrder, atomically. Orders are assumed contiguous and unique.
	ReorderJob(ctx context.Context, id string, fromOrder, toOrder int) error
}

// CandidateRepository exposes CRUD operations for candidates and their
// append-only timeline events.
type CandidateRepository interface {
	CreateCandidate(ctx context.Context, candidate Candidate) error
	UpdateCandidate(ctx context.Context, candidate Candidate) error
	GetCandidate(ctx context.Context, id string) (Candidate, error)
	ListCandidates(ctx context.Context, filter CandidateFilter) ([]Candidate, int, error)
	// DeleteCandidate removes the candidate and cascades to its timeline events.
	DeleteCandidate(ctx context.Context, id string) error
	AppendEvent(ctx context.Context, event CandidateEvent) error
	ListEvents(ctx context.Context, candidateID string) ([]CandidateEvent, error)
}

// AssessmentRepository stores assessments keyed by job plus their responses.
type AssessmentRepository interface {
	GetAssessmentByJob(ctx context.Context, jobID string) (Assessment, error)
	// UpsertAssessmentByJob creates the job's assessment or replaces its title
	// and structure, preserving identity and creation time on replace.
	UpsertAssessmentByJob(ctx context.Context, assessment Assessment) (Assessment, error)
	// DeleteAssessment removes the assessment and cascades to its responses.
	DeleteAssessment(ctx context.Context, id string) error
	UpsertResponse(ctx context.Context, response AssessmentResponse) (AssessmentResponse, error)
	ListResponses(ctx context.Context, assessmentID string) ([]AssessmentResponse, error)
}

// UserRepository exposes CRUD operations for user accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]User, int, error)
	DeleteUser(ctx context.Context, id string) error
}

// NotificationRepository stores per-user notifications.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification Notification) error
	GetNotification(ctx context.Context, id string) (Notification, error)
	ListNotifications(ctx context.Context, filter NotificationFilter) ([]Notification, int, error)
	MarkRead(ctx context.Context, id string) (Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int, error)
	DeleteNotification(ctx context.Context, id string) error
	// Stats performs a full scan per call; counts are not maintained incrementally.
	Stats(ctx context.Context, userID string) (NotificationStats, error)
}
