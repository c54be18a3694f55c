// Package seed populates an empty store with demo data: a job board, a
// candidate pipeline, assessments, accounts, and notifications.
package seed

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/talentflow/internal/application"
	"github.com/example/talentflow/internal/persistence/sqlite"
)

// Known demo accounts all share this password.
const demoPassword = "password123"

// Seeder inserts demo data in a single transaction. A store that already
// holds jobs is left untouched.
type Seeder struct {
	pool        *sqlite.ConnectionPool
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewSeeder wires dependencies for seeding.
func NewSeeder(pool *sqlite.ConnectionPool, idGenerator func() string, now func() time.Time, logger *slog.Logger) *Seeder {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{pool: pool, idGenerator: idGenerator, now: now, logger: logger}
}

// Run seeds the store. All inserts share one transaction; any failure rolls
// the whole seed back.
func (s *Seeder) Run(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("seeder is not configured")
	}

	var jobCount int
	if err := s.pool.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM jobs").Scan(&jobCount); err != nil {
		return fmt.Errorf("failed to inspect store before seeding: %w", err)
	}
	if jobCount > 0 {
		s.logger.InfoContext(ctx, "store already populated, skipping seed", "jobs", jobCount)
		return nil
	}

	start := s.now()
	err := s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		userIDs, err := s.seedUsers(ctx, tx)
		if err != nil {
			return err
		}
		jobIDs, err := s.seedJobs(ctx, tx)
		if err != nil {
			return err
		}
		candidateIDs, err := s.seedCandidates(ctx, tx, jobIDs)
		if err != nil {
			return err
		}
		if err := s.seedAssessments(ctx, tx, jobIDs, candidateIDs); err != nil {
			return err
		}
		return s.seedNotifications(ctx, tx, userIDs, candidateIDs)
	})
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	s.logger.InfoContext(ctx, "store seeded", "duration", time.Since(start))
	return nil
}

func (s *Seeder) seedUsers(ctx context.Context, tx *sql.Tx) ([]string, error) {
	accounts := []struct {
		email      string
		name       string
		role       string
		department string
	}{
		{"admin@talentflow.example", "Alex Morgan", application.RoleAdmin, "Operations"},
		{"hr@talentflow.example", "Priya Nair", application.RoleHRManager, "People"},
		{"recruiter@talentflow.example", "Sam Ortiz", application.RoleRecruiter, "Talent"},
		{"hiring@talentflow.example", "Dana Fischer", application.RoleHiringManager, "Engineering"},
	}

	hash, err := application.CreatePasswordHash(demoPassword, application.DefaultArgon2idParams)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(accounts))
	now := s.timestamp(0)
	for _, account := range accounts {
		id := s.idGenerator()
		ids = append(ids, id)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, email, name, role, department, password_hash, is_active, last_login_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, 1, NULL, ?, ?)`,
			id, account.email, account.name, account.role, account.department, hash, now, now)
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (s *Seeder) seedJobs(ctx context.Context, tx *sql.Tx) ([]string, error) {
	jobs := []struct {
		title  string
		status string
		tags   []string
	}{
		{"Senior Backend Engineer", application.JobStatusActive, []string{"go", "remote"}},
		{"Frontend Engineer", application.JobStatusActive, []string{"react", "typescript"}},
		{"Staff Platform Engineer", application.JobStatusActive, []string{"kubernetes", "go"}},
		{"Product Designer", application.JobStatusActive, []string{"figma", "design-systems"}},
		{"Engineering Manager", application.JobStatusActive, []string{"leadership"}},
		{"Data Engineer", application.JobStatusActive, []string{"python", "sql"}},
		{"QA Engineer", application.JobStatusActive, []string{"automation"}},
		{"Site Reliability Engineer", application.JobStatusActive, []string{"oncall", "aws"}},
		{"Technical Writer", application.JobStatusArchived, []string{"docs"}},
		{"Mobile Engineer", application.JobStatusActive, []string{"kotlin", "swift"}},
		{"Security Engineer", application.JobStatusActive, []string{"appsec"}},
		{"Office Coordinator", application.JobStatusArchived, []string{"onsite"}},
	}

	ids := make([]string, 0, len(jobs))
	for i, job := range jobs {
		id := s.idGenerator()
		ids = append(ids, id)
		tags, err := json.Marshal(job.tags)
		if err != nil {
			return nil, err
		}
		created := s.timestamp(-time.Duration(len(jobs)-i) * 24 * time.Hour)
		_, err = tx.ExecContext(ctx, `
			INSERT INTO jobs (id, title, slug, status, tags, sort_order, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, job.title, application.Slugify(job.title), job.status, string(tags), i+1, created, created)
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (s *Seeder) seedCandidates(ctx context.Context, tx *sql.Tx, jobIDs []string) ([]string, error) {
	firstNames := []string{"Ava", "Noah", "Mia", "Liam", "Zoe", "Ethan", "Ivy", "Lucas", "Nina", "Omar", "Ruth", "Theo"}
	lastNames := []string{"Kim", "Patel", "Garcia", "Chen", "Okafor", "Novak", "Silva", "Haddad", "Berg", "Tanaka"}
	stages := []string{
		application.StageApplied, application.StageApplied, application.StageApplied,
		application.StageScreen, application.StageScreen,
		application.StageTech, application.StageTech,
		application.StageOffer,
		application.StageHired,
		application.StageRejected,
	}

	emptyNotes := "[]"
	emptyProfile := "{}"

	total := 60
	ids := make([]string, 0, total)
	for i := 0; i < total; i++ {
		id := s.idGenerator()
		ids = append(ids, id)

		first := firstNames[i%len(firstNames)]
		last := lastNames[(i/len(firstNames))%len(lastNames)]
		name := first + " " + last
		email := fmt.Sprintf("%s.%s.%d@example.com", strings.ToLower(first), strings.ToLower(last), i)
		jobID := jobIDs[i%len(jobIDs)]
		stage := stages[i%len(stages)]
		applied := s.timestamp(-time.Duration(total-i) * 6 * time.Hour)

		_, err := tx.ExecContext(ctx, `
			INSERT INTO candidates (id, name, email, phone, job_id, stage, notes, profile, applied_at, updated_at)
			VALUES (?, ?, ?, NULL, ?, ?, ?, ?, ?, ?)`,
			id, name, email, jobID, stage, emptyNotes, emptyProfile, applied, applied)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(map[string]any{"to": stage})
		if err != nil {
			return nil, err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO candidate_events (id, candidate_id, type, data, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			s.idGenerator(), id, application.EventStageChange, string(data), applied)
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (s *Seeder) seedAssessments(ctx context.Context, tx *sql.Tx, jobIDs, candidateIDs []string) error {
	structure := map[string]any{
		"sections": []map[string]any{
			{
				"id":    "background",
				"title": "Background",
				"questions": []map[string]any{
					{"id": "q1", "type": "short_text", "label": "Years of relevant experience", "required": true},
					{"id": "q2", "type": "single_choice", "label": "Comfortable with on-call?", "options": []string{"yes", "no"}},
				},
			},
			{
				"id":    "practical",
				"title": "Practical",
				"questions": []map[string]any{
					{"id": "q3", "type": "long_text", "label": "Describe a system you designed", "maxLength": 2000},
				},
			},
		},
	}

	raw, err := json.Marshal(structure)
	if err != nil {
		return err
	}

	now := s.timestamp(0)
	for i := 0; i < 2 && i < len(jobIDs); i++ {
		assessmentID := s.idGenerator()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO assessments (id, job_id, title, structure, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			assessmentID, jobIDs[i], "Screening Questionnaire", string(raw), now, now)
		if err != nil {
			return err
		}

		if i < len(candidateIDs) {
			answers := `{"q1":"6","q2":"yes","q3":"An event ingestion pipeline."}`
			_, err = tx.ExecContext(ctx, `
				INSERT INTO assessment_responses (id, assessment_id, candidate_id, answers, submitted_at)
				VALUES (?, ?, ?, ?, ?)`,
				s.idGenerator(), assessmentID, candidateIDs[i], answers, now)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedNotifications(ctx context.Context, tx *sql.Tx, userIDs, candidateIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}

	entries := []struct {
		notificationType string
		category         string
		title            string
		message          string
		read             bool
	}{
		{application.NotificationInfo, application.CategoryCandidate, "New application", "A candidate applied to Senior Backend Engineer", false},
		{application.NotificationSuccess, application.CategoryCandidate, "Offer accepted", "A candidate accepted the offer", true},
		{application.NotificationWarning, application.CategoryAssessment, "Assessment pending", "3 candidates have not completed their assessment", false},
		{application.NotificationInfo, application.CategorySystem, "Welcome to TalentFlow", "Your workspace is ready", true},
	}

	metadata := "{}"
	if len(candidateIDs) > 0 {
		raw, err := json.Marshal(map[string]any{"candidate_id": candidateIDs[0]})
		if err != nil {
			return err
		}
		metadata = string(raw)
	}

	for _, userID := range userIDs {
		for i, entry := range entries {
			created := s.timestamp(-time.Duration(i) * time.Hour)
			read := 0
			if entry.read {
				read = 1
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO notifications (id, user_id, type, category, title, message, action_url, is_read, metadata, created_at)
				VALUES (?, ?, ?, ?, ?, ?, NULL, ?, ?, ?)`,
				s.idGenerator(), userID, entry.notificationType, entry.category, entry.title, entry.message, read, metadata, created)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) timestamp(offset time.Duration) string {
	return s.now().Add(offset).UTC().Format(sqlite.TimeLayout)
}
