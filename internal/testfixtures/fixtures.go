package testfixtures

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/talentflow/internal/application"
	"github.com/example/talentflow/internal/persistence"
)

var (
	jobCounter          uint64
	candidateCounter    uint64
	userCounter         uint64
	notificationCounter uint64
	assessmentCounter   uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ------------------------------ Job fixtures ------------------------------

// JobFixture represents a deterministic job record that can be materialised
// for application or persistence tests.
type JobFixture struct {
	ID        string
	Title     string
	Slug      string
	Status    string
	Tags      []string
	SortOrder int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// JobOption configures the generated job fixture.
type JobOption func(*JobFixture)

// NewJobFixture returns a deterministic job fixture with optional overrides.
func NewJobFixture(opts ...JobOption) JobFixture {
	idx := atomic.AddUint64(&jobCounter, 1)
	id := fmt.Sprintf("job-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := JobFixture{
		ID:        id,
		Title:     fmt.Sprintf("Job %03d", idx),
		Slug:      fmt.Sprintf("job-%03d", idx),
		Status:    application.JobStatusActive,
		Tags:      []string{"engineering"},
		SortOrder: int(idx),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithJobID overrides the generated job ID.
func WithJobID(id string) JobOption {
	return func(f *JobFixture) {
		f.ID = id
	}
}

// WithJobTitle overrides the generated title.
func WithJobTitle(title string) JobOption {
	return func(f *JobFixture) {
		f.Title = title
	}
}

// WithJobSlug overrides the generated slug.
func WithJobSlug(slug string) JobOption {
	return func(f *JobFixture) {
		f.Slug = slug
	}
}

// WithJobStatus sets the job status.
func WithJobStatus(status string) JobOption {
	return func(f *JobFixture) {
		f.Status = status
	}
}

// WithJobTags sets the job tags.
func WithJobTags(tags ...string) JobOption {
	return func(f *JobFixture) {
		f.Tags = append([]string(nil), tags...)
	}
}

// WithJobSortOrder sets the board position.
func WithJobSortOrder(order int) JobOption {
	return func(f *JobFixture) {
		f.SortOrder = order
	}
}

// WithJobTimestamps sets both created and updated timestamps on the fixture.
func WithJobTimestamps(created, updated time.Time) JobOption {
	return func(f *JobFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Persistence returns the fixture as a persistence.Job value.
func (f JobFixture) Persistence() persistence.Job {
	return persistence.Job{
		ID:        f.ID,
		Title:     f.Title,
		Slug:      f.Slug,
		Status:    f.Status,
		Tags:      append([]string(nil), f.Tags...),
		SortOrder: f.SortOrder,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Input returns the fixture as an application.JobInput.
func (f JobFixture) Input() application.JobInput {
	return application.JobInput{
		Title:  f.Title,
		Slug:   f.Slug,
		Status: f.Status,
		Tags:   append([]string(nil), f.Tags...),
	}
}

// --------------------------- Candidate fixtures ---------------------------

// CandidateFixture represents a deterministic candidate record.
type CandidateFixture struct {
	ID        string
	Name      string
	Email     string
	Phone     *string
	JobID     string
	Stage     string
	Notes     []persistence.Note
	Profile   persistence.CandidateProfile
	AppliedAt time.Time
	UpdatedAt time.Time
}

// CandidateOption configures the generated candidate fixture.
type CandidateOption func(*CandidateFixture)

// NewCandidateFixture returns a deterministic candidate fixture with optional overrides.
func NewCandidateFixture(opts ...CandidateOption) CandidateFixture {
	idx := atomic.AddUint64(&candidateCounter, 1)
	id := fmt.Sprintf("candidate-%03d", idx)
	applied := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := CandidateFixture{
		ID:        id,
		Name:      fmt.Sprintf("Candidate %03d", idx),
		Email:     fmt.Sprintf("%s@example.com", id),
		JobID:     fmt.Sprintf("job-%03d", idx),
		Stage:     application.StageApplied,
		AppliedAt: applied,
		UpdatedAt: applied,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithCandidateID overrides the generated candidate ID.
func WithCandidateID(id string) CandidateOption {
	return func(f *CandidateFixture) {
		f.ID = id
	}
}

// WithCandidateName overrides the generated name.
func WithCandidateName(name string) CandidateOption {
	return func(f *CandidateFixture) {
		f.Name = name
	}
}

// WithCandidateEmail overrides the generated email address.
func WithCandidateEmail(email string) CandidateOption {
	return func(f *CandidateFixture) {
		f.Email = email
	}
}

// WithCandidatePhone sets the optional phone number.
func WithCandidatePhone(phone string) CandidateOption {
	return func(f *CandidateFixture) {
		value := phone
		f.Phone = &value
	}
}

// WithCandidateJobID sets the owning job ID.
func WithCandidateJobID(jobID string) CandidateOption {
	return func(f *CandidateFixture) {
		f.JobID = jobID
	}
}

// WithCandidateStage sets the pipeline stage.
func WithCandidateStage(stage string) CandidateOption {
	return func(f *CandidateFixture) {
		f.Stage = stage
	}
}

// WithCandidateNotes sets the embedded notes.
func WithCandidateNotes(notes ...persistence.Note) CandidateOption {
	return func(f *CandidateFixture) {
		f.Notes = append([]persistence.Note(nil), notes...)
	}
}

// WithCandidateProfile sets the optional profile attributes.
func WithCandidateProfile(profile persistence.CandidateProfile) CandidateOption {
	return func(f *CandidateFixture) {
		f.Profile = profile
	}
}

// WithCandidateTimestamps sets both applied and updated timestamps.
func WithCandidateTimestamps(applied, updated time.Time) CandidateOption {
	return func(f *CandidateFixture) {
		f.AppliedAt = applied
		f.UpdatedAt = updated
	}
}

// Persistence returns the fixture as a persistence.Candidate value.
func (f CandidateFixture) Persistence() persistence.Candidate {
	return persistence.Candidate{
		ID:        f.ID,
		Name:      f.Name,
		Email:     f.Email,
		Phone:     copyStringPtr(f.Phone),
		JobID:     f.JobID,
		Stage:     f.Stage,
		Notes:     append([]persistence.Note(nil), f.Notes...),
		Profile:   f.Profile,
		AppliedAt: f.AppliedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Input returns the fixture as an application.CandidateInput.
func (f CandidateFixture) Input() application.CandidateInput {
	return application.CandidateInput{
		Name:    f.Name,
		Email:   f.Email,
		Phone:   copyStringPtr(f.Phone),
		JobID:   f.JobID,
		Stage:   f.Stage,
		Profile: f.Profile,
	}
}

// ----------------------------- User fixtures ------------------------------

// UserFixture represents a deterministic user account record.
type UserFixture struct {
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

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		Name:         fmt.Sprintf("User %03d", idx),
		Role:         application.RoleRecruiter,
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		IsActive:     true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserName overrides the generated display name.
func WithUserName(name string) UserOption {
	return func(f *UserFixture) {
		f.Name = name
	}
}

// WithUserRole sets the account role.
func WithUserRole(role string) UserOption {
	return func(f *UserFixture) {
		f.Role = role
	}
}

// WithUserDepartment sets the optional department.
func WithUserDepartment(department string) UserOption {
	return func(f *UserFixture) {
		value := department
		f.Department = &value
	}
}

// WithUserPasswordHash overrides the generated password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// WithUserActive sets the active flag on the generated fixture.
func WithUserActive(active bool) UserOption {
	return func(f *UserFixture) {
		f.IsActive = active
	}
}

// WithUserLastLoginAt sets the optional last login timestamp.
func WithUserLastLoginAt(t time.Time) UserOption {
	return func(f *UserFixture) {
		last := t
		f.LastLoginAt = &last
	}
}

// WithUserTimestamps sets both created and updated timestamps on the fixture.
func WithUserTimestamps(created, updated time.Time) UserOption {
	return func(f *UserFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	var lastLogin *time.Time
	if f.LastLoginAt != nil {
		t := *f.LastLoginAt
		lastLogin = &t
	}
	return persistence.User{
		ID:           f.ID,
		Email:        f.Email,
		Name:         f.Name,
		Role:         f.Role,
		Department:   copyStringPtr(f.Department),
		PasswordHash: f.PasswordHash,
		IsActive:     f.IsActive,
		LastLoginAt:  lastLogin,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Signup returns the fixture as an application.SignupInput. The plain
// password defaults to "fixture-password" because the stored hash is synthetic.
func (f UserFixture) Signup() application.SignupInput {
	return application.SignupInput{
		Email:      f.Email,
		Name:       f.Name,
		Password:   "fixture-password",
		Role:       f.Role,
		Department: copyStringPtr(f.Department),
	}
}

// ------------------------- Notification fixtures --------------------------

// NotificationFixture represents a deterministic notification record.
type NotificationFixture struct {
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

// NotificationOption configures the generated notification fixture.
type NotificationOption func(*NotificationFixture)

// NewNotificationFixture returns a deterministic notification fixture with
// optional overrides.
func NewNotificationFixture(opts ...NotificationOption) NotificationFixture {
	idx := atomic.AddUint64(&notificationCounter, 1)
	id := fmt.Sprintf("notification-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := NotificationFixture{
		ID:        id,
		UserID:    fmt.Sprintf("user-%03d", idx),
		Type:      application.NotificationInfo,
		Category:  application.CategorySystem,
		Title:     fmt.Sprintf("Notification %03d", idx),
		Message:   fmt.Sprintf("Message %03d", idx),
		CreatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithNotificationID overrides the generated notification ID.
func WithNotificationID(id string) NotificationOption {
	return func(f *NotificationFixture) {
		f.ID = id
	}
}

// WithNotificationUserID sets the recipient user ID.
func WithNotificationUserID(userID string) NotificationOption {
	return func(f *NotificationFixture) {
		f.UserID = userID
	}
}

// WithNotificationType sets the severity type.
func WithNotificationType(kind string) NotificationOption {
	return func(f *NotificationFixture) {
		f.Type = kind
	}
}

// WithNotificationCategory sets the category.
func WithNotificationCategory(category string) NotificationOption {
	return func(f *NotificationFixture) {
		f.Category = category
	}
}

// WithNotificationTitle overrides the generated title.
func WithNotificationTitle(title string) NotificationOption {
	return func(f *NotificationFixture) {
		f.Title = title
	}
}

// WithNotificationMessage overrides the generated message.
func WithNotificationMessage(message string) NotificationOption {
	return func(f *NotificationFixture) {
		f.Message = message
	}
}

// WithNotificationActionURL sets the optional action URL.
func WithNotificationActionURL(url string) NotificationOption {
	return func(f *NotificationFixture) {
		value := url
		f.ActionURL = &value
	}
}

// WithNotificationRead marks the fixture as read.
func WithNotificationRead(read bool) NotificationOption {
	return func(f *NotificationFixture) {
		f.IsRead = read
	}
}

// WithNotificationMetadata sets the metadata payload.
func WithNotificationMetadata(metadata map[string]any) NotificationOption {
	return func(f *NotificationFixture) {
		f.Metadata = metadata
	}
}

// WithNotificationCreatedAt sets the created timestamp.
func WithNotificationCreatedAt(t time.Time) NotificationOption {
	return func(f *NotificationFixture) {
		f.CreatedAt = t
	}
}

// Persistence returns the fixture as a persistence.Notification value.
func (f NotificationFixture) Persistence() persistence.Notification {
	return persistence.Notification{
		ID:        f.ID,
		UserID:    f.UserID,
		Type:      f.Type,
		Category:  f.Category,
		Title:     f.Title,
		Message:   f.Message,
		ActionURL: copyStringPtr(f.ActionURL),
		IsRead:    f.IsRead,
		Metadata:  f.Metadata,
		CreatedAt: f.CreatedAt,
	}
}

// -------------------------- Assessment fixtures ---------------------------

// AssessmentFixture represents a deterministic assessment record.
type AssessmentFixture struct {
	ID        string
	JobID     string
	Title     string
	Structure json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AssessmentOption configures the generated assessment fixture.
type AssessmentOption func(*AssessmentFixture)

// NewAssessmentFixture returns a deterministic assessment fixture with a
// minimal valid structure document.
func NewAssessmentFixture(opts ...AssessmentOption) AssessmentFixture {
	idx := atomic.AddUint64(&assessmentCounter, 1)
	id := fmt.Sprintf("assessment-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	structure := fmt.Sprintf(`{"sections":[{"id":"s1","title":"Section %03d","questions":[{"id":"q1","type":"short_text","label":"Tell us about yourself"}]}]}`, idx)
	fixture := AssessmentFixture{
		ID:        id,
		JobID:     fmt.Sprintf("job-%03d", idx),
		Title:     fmt.Sprintf("Assessment %03d", idx),
		Structure: json.RawMessage(structure),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAssessmentID overrides the generated assessment ID.
func WithAssessmentID(id string) AssessmentOption {
	return func(f *AssessmentFixture) {
		f.ID = id
	}
}

// WithAssessmentJobID sets the owning job ID.
func WithAssessmentJobID(jobID string) AssessmentOption {
	return func(f *AssessmentFixture) {
		f.JobID = jobID
	}
}

// WithAssessmentTitle overrides the generated title.
func WithAssessmentTitle(title string) AssessmentOption {
	return func(f *AssessmentFixture) {
		f.Title = title
	}
}

// WithAssessmentStructure sets the structure document.
func WithAssessmentStructure(structure json.RawMessage) AssessmentOption {
	return func(f *AssessmentFixture) {
		f.Structure = append(json.RawMessage(nil), structure...)
	}
}

// WithAssessmentTimestamps sets both created and updated timestamps.
func WithAssessmentTimestamps(created, updated time.Time) AssessmentOption {
	return func(f *AssessmentFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Persistence returns the fixture as a persistence.Assessment value.
func (f AssessmentFixture) Persistence() persistence.Assessment {
	return persistence.Assessment{
		ID:        f.ID,
		JobID:     f.JobID,
		Title:     f.Title,
		Structure: append(json.RawMessage(nil), f.Structure...),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Input returns the fixture as an application.AssessmentInput.
func (f AssessmentFixture) Input() application.AssessmentInput {
	return application.AssessmentInput{
		Title:     f.Title,
		Structure: append(json.RawMessage(nil), f.Structure...),
	}
}

// helper to deep copy optional strings.
func copyStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}
