package persistence

import (
	"encoding/json"
	"time"
)

// Job represents a posting in the hiring pipeline.
type Job struct {
	ID        string
	Title     string
	Slug      string
	Status    string
	Tags      []string
	SortOrder int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Note is a comment attached to a candidate. Notes are embedded in the
// candidate record rather than stored as a separate collection.
type Note struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	Mentions  []string  `json:"mentions,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CandidateProfile carries the optional free-form profile attributes.
type CandidateProfile struct {
	Skills            []string `json:"skills,omitempty"`
	Education         string   `json:"education,omitempty"`
	WorkExperience    string   `json:"work_experience,omitempty"`
	SalaryExpectation string   `json:"salary_expectation,omitempty"`
	Location          string   `json:"location,omitempty"`
}

// Candidate represents an applicant attached to a job.
type Candidate struct {
	ID        string
	Name      string
	Email     string
	Phone     *string
	JobID     string
	Stage     string
	Notes     []Note
	Profile   CandidateProfile
	AppliedAt time.Time
	UpdatedAt time.Time
}

// CandidateEvent is an append-only timeline record. Events are never mutated
// and are deleted only when their parent candidate is deleted.
type CandidateEvent struct {
	ID          string
	CandidateID string
	Type        string
	Data        map[string]any
	CreatedAt   time.Time
}

// Assessment holds the question structure attached to a job. The structure
// document is stored verbatim as JSON.
type Assessment struct {
	ID        string
	JobID     string
	Title     string
	Structure json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AssessmentResponse stores submitted answers, upserted by the composite
// (assessment, candidate) identity.
type AssessmentResponse struct {
	ID           string
	AssessmentID string
	CandidateID  string
	Answers      json.RawMessage
	SubmittedAt  time.Time
}

// User represents an account that can operate the system.
type User struct {
	ID           string
	Email        string
	Name         string
	Role         string
	Department   *string
	PasswordHash string
	IsActive     bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Notification is a message addressed to a single user.
type Notification struct {
	ID        string
	UserID    string
	Type      string
	Category  string
	Title     string
	Message   string
	ActionURL *string
	IsRead    bool
	Metadata  map[string]any
	CreatedAt time.Time
}

// NotificationStats aggregates notification counts for one user.
type NotificationStats struct {
	Total      int
	Unread     int
	ByCategory map[string]int
	ByType     map[string]int
}
