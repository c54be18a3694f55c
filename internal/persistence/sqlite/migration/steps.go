package migration

// Steps is the ordered schema history for the TalentFlow store. New schema
// changes append a step; existing steps are never edited once released.
func Steps() []Step {
	return []Step{
		{
			Version:     1,
			Description: "jobs, candidates and timeline events",
			SQL: `
CREATE TABLE jobs (
    id         TEXT PRIMARY KEY,
    title      TEXT NOT NULL,
    slug       TEXT NOT NULL,
    status     TEXT NOT NULL DEFAULT 'active',
    tags       TEXT NOT NULL DEFAULT '[]',
    sort_order INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE UNIQUE INDEX idx_jobs_slug ON jobs(slug);
CREATE INDEX idx_jobs_status ON jobs(status);
CREATE INDEX idx_jobs_sort_order ON jobs(sort_order);

CREATE TABLE candidates (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    email      TEXT NOT NULL,
    phone      TEXT,
    job_id     TEXT NOT NULL,
    stage      TEXT NOT NULL,
    notes      TEXT NOT NULL DEFAULT '[]',
    profile    TEXT NOT NULL DEFAULT '{}',
    applied_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX idx_candidates_job_id ON candidates(job_id);
CREATE INDEX idx_candidates_stage ON candidates(stage);
CREATE INDEX idx_candidates_email ON candidates(email);
CREATE INDEX idx_candidates_applied_at ON candidates(applied_at);

CREATE TABLE candidate_events (
    id           TEXT PRIMARY KEY,
    candidate_id TEXT NOT NULL,
    type         TEXT NOT NULL,
    data         TEXT NOT NULL DEFAULT '{}',
    created_at   TEXT NOT NULL
);
CREATE INDEX idx_candidate_events_candidate_id ON candidate_events(candidate_id);
CREATE INDEX idx_candidate_events_created_at ON candidate_events(created_at);
`,
		},
		{
			Version:     2,
			Description: "assessments and responses",
			SQL: `
CREATE TABLE assessments (
    id         TEXT PRIMARY KEY,
    job_id     TEXT NOT NULL,
    title      TEXT NOT NULL,
    structure  TEXT NOT NULL DEFAULT '{}',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX idx_assessments_job_id ON assessments(job_id);

CREATE TABLE assessment_responses (
    id            TEXT PRIMARY KEY,
    assessment_id TEXT NOT NULL,
    candidate_id  TEXT NOT NULL,
    answers       TEXT NOT NULL DEFAULT '{}',
    submitted_at  TEXT NOT NULL
);
CREATE UNIQUE INDEX idx_responses_assessment_candidate
    ON assessment_responses(assessment_id, candidate_id);
`,
		},
		{
			Version:     3,
			Description: "users and notifications",
			SQL: `
CREATE TABLE users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL,
    name          TEXT NOT NULL,
    role          TEXT NOT NULL,
    department    TEXT,
    password_hash TEXT NOT NULL,
    is_active     INTEGER NOT NULL DEFAULT 1,
    last_login_at TEXT,
    created_at    TEXT NOT NULL,
    updated_at    TEXT NOT NULL
);
CREATE UNIQUE INDEX idx_users_email ON users(email);
CREATE INDEX idx_users_role ON users(role);

CREATE TABLE notifications (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL,
    type       TEXT NOT NULL,
    category   TEXT NOT NULL,
    title      TEXT NOT NULL,
    message    TEXT NOT NULL,
    action_url TEXT,
    is_read    INTEGER NOT NULL DEFAULT 0,
    metadata   TEXT NOT NULL DEFAULT '{}',
    created_at TEXT NOT NULL
);
CREATE INDEX idx_notifications_user_id ON notifications(user_id);
CREATE INDEX idx_notifications_is_read ON notifications(is_read);
CREATE INDEX idx_notifications_category ON notifications(category);
CREATE INDEX idx_notifications_created_at ON notifications(created_at);
`,
		},
	}
}
