package application

import (
	"encoding/json"
	"time"

	"github.com/example/talentflow/internal/persistence"
)

// Pipeline stages a candidate moves through, in order.
const (
	StageApplied  = "applied"
	StageScreen   = "screen"
	StageTech     = "tech"
	StageOffer    = "offer"
	StageHired    = "hired"
	StageRejected = "rejected"
)

var validStages = map[string]bool{
	StageApplied:  true,
	StageScreen:   true,
	StageTech:     true,
	StageOffer:    true,
	StageHired:    true,
	StageRejected: true,
}

// Job lifecycle statuses.
const (
	JobStatusActive   = "active"
	JobStatusArchived = "archived"
)

var validJobStatuses = map[string]bool{
	JobStatusActive:   true,
	JobStatusArchived: true,
}

// Account roles.
const (
	RoleAdmin         = "admin"
	RoleHRManager     = "hr_manager"
	RoleRecruiter     = "recruiter"
	RoleHiringManager = "hiring_manager"
)

var validRoles = map[string]bool{
	RoleAdmin:         true,
	RoleHRManager:     true,
	RoleRecruiter:     true,
	RoleHiringManager: true,
}

// Notification severities and subject categories.
const (
	NotificationInfo    = "info"
	NotificationSuccess = "success"
	NotificationWarning = "warning"
	NotificationError   = "error"

	CategoryCandidate  = "candidate"
	CategoryJob        = "job"
	CategoryAssessment = "assessment"
	CategorySystem     = "system"
	CategoryUser       = "user"
)

var validNotificationTypes = map[string]bool{
	NotificationInfo:    true,
	NotificationSuccess: true,
	NotificationWarning: true,
	NotificationError:   true,
}

var validNotificationCategories = map[string]bool{
	CategoryCandidate:  true,
	CategoryJob:        true,
	CategoryAssessment: true,
	CategorySystem:     true,
	CategoryUser:       true,
}

// Default page sizes per listing.
const (
	DefaultJobPageSize          = 10
	DefaultCandidatePageSize    = 1000
	DefaultUserPageSize         = 50
	DefaultNotificationPageSize = 50
)

// JobInput carries the writable fields of a job.
type JobInput struct {
	Title  string
	Slug   string
	Status string
	Tags   []string
}

// CreateJobParams requests creation of a job.
type CreateJobParams struct {
	Input JobInput
}

// UpdateJobParams requests a partial update of a job.
type UpdateJobParams struct {
	JobID  string
	Title  *string
	Slug   *string
	Status *string
	Tags   *[]string
}

// ReorderJobParams moves one job between board positions.
type ReorderJobParams struct {
	JobID     string
	FromOrder int
	ToOrder   int
}

// ListJobsParams narrows and pages the job listing.
type ListJobsParams struct {
	Search   string
	Status   string
	Sort     string
	Page     int
	PageSize int
}

// JobPage is one page of a filtered job listing.
type JobPage struct {
	Jobs       []persistence.Job
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// CandidateInput carries the writable fields of a candidate.
type CandidateInput struct {
	Name    string
	Email   string
	Phone   *string
	JobID   string
	Stage   string
	Profile persistence.CandidateProfile
}

// CreateCandidateParams requests creation of a candidate.
type CreateCandidateParams struct {
	Input CandidateInput
}

// UpdateCandidateParams requests a partial update of a candidate. Nil fields
// are left unchanged.
type UpdateCandidateParams struct {
	CandidateID string
	Name        *string
	Email       *string
	Phone       *string
	JobID       *string
	Stage       *string
	Profile     *persistence.CandidateProfile
}

// AddNoteParams appends a note to a candidate.
type AddNoteParams struct {
	CandidateID string
	Content     string
	Author      string
}

// ListCandidatesParams narrows and pages the candidate listing.
type ListCandidatesParams struct {
	Search   string
	JobID    string
	Stage    string
	Sort     string
	Page     int
	PageSize int
}

// CandidatePage is one page of a filtered candidate listing.
type CandidatePage struct {
	Candidates []persistence.Candidate
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// AssessmentInput carries the writable fields of a job's assessment.
type AssessmentInput struct {
	Title     string
	Structure json.RawMessage
}

// SaveAssessmentParams creates or replaces the assessment for a job.
type SaveAssessmentParams struct {
	JobID string
	Input AssessmentInput
}

// SubmitResponseParams records a candidate's answers for a job's assessment.
type SubmitResponseParams struct {
	JobID       string
	CandidateID string
	Answers     json.RawMessage
}

// SignupInput carries the fields needed to register an account.
type SignupInput struct {
	Email      string
	Name       string
	Password   string
	Role       string
	Department *string
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// Session is the result of a successful login or signup. The server keeps no
// session state; the expiry is advisory and enforced client-side.
type Session struct {
	User      persistence.User
	ExpiresAt time.Time
}

// CreateNotificationParams requests creation of a notification.
type CreateNotificationParams struct {
	UserID    string
	Type      string
	Category  string
	Title     string
	Message   string
	ActionURL *string
	Metadata  map[string]any
}

// ListNotificationsParams narrows and pages one user's notifications.
type ListNotificationsParams struct {
	UserID   string
	Category string
	Unread   *bool
	Page     int
	PageSize int
}

// NotificationPage is one page of a user's notifications.
type NotificationPage struct {
	Notifications []persistence.Notification
	Total         int
	Page          int
	PageSize      int
	TotalPages    int
}

func normalizePage(page, pageSize, defaultSize int) persistence.Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultSize
	}
	return persistence.Page{Page: page, PageSize: pageSize}
}

func totalPages(total, pageSize int) int {
	if total == 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
