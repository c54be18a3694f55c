package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/talentflow/internal/persistence"
)

// CandidateRepository implements persistence.CandidateRepository using SQLite.
type CandidateRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewCandidateRepository creates a new SQLite candidate repository.
func NewCandidateRepository(pool *ConnectionPool) *CandidateRepository {
	return &CandidateRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

var candidateSortColumns = map[string]string{
	"name":       "name",
	"stage":      "stage",
	"applied_at": "applied_at",
}

const candidateColumns = "id, name, email, phone, job_id, stage, notes, profile, applied_at, updated_at"

// CreateCandidate inserts a new candidate.
func (r *CandidateRepository) CreateCandidate(ctx context.Context, candidate persistence.Candidate) error {
	if candidate.ID == "" {
		return persistence.ErrConstraintViolation
	}

	notes, err := encodeJSON(candidate.Notes, "[]")
	if err != nil {
		return err
	}
	profile, err := encodeJSON(candidate.Profile, "{}")
	if err != nil {
		return err
	}

	_, err = r.helper.Exec(ctx, `
		INSERT INTO candidates (id, name, email, phone, job_id, stage, notes, profile, applied_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		candidate.ID,
		candidate.Name,
		candidate.Email,
		nullString(candidate.Phone),
		candidate.JobID,
		candidate.Stage,
		notes,
		profile,
		encodeTime(candidate.AppliedAt),
		encodeTime(candidate.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// UpdateCandidate replaces a candidate's mutable fields, notes included.
func (r *CandidateRepository) UpdateCandidate(ctx context.Context, candidate persistence.Candidate) error {
	notes, err := encodeJSON(candidate.Notes, "[]")
	if err != nil {
		return err
	}
	profile, err := encodeJSON(candidate.Profile, "{}")
	if err != nil {
		return err
	}

	result, err := r.helper.Exec(ctx, `
		UPDATE candidates SET name = ?, email = ?, phone = ?, job_id = ?, stage = ?, notes = ?, profile = ?, updated_at = ?
		WHERE id = ?`,
		candidate.Name,
		candidate.Email,
		nullString(candidate.Phone),
		candidate.JobID,
		candidate.Stage,
		notes,
		profile,
		encodeTime(candidate.UpdatedAt),
		candidate.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetCandidate retrieves a candidate by ID.
func (r *CandidateRepository) GetCandidate(ctx context.Context, id string) (persistence.Candidate, error) {
	row := r.helper.QueryRow(ctx, "SELECT "+candidateColumns+" FROM candidates WHERE id = ?", id)
	return r.scanCandidate(row.Scan)
}

// ListCandidates returns candidates matching the filter plus the total
// filtered count. Search is a case-insensitive substring match over name and
// email.
func (r *CandidateRepository) ListCandidates(ctx context.Context, filter persistence.CandidateFilter) ([]persistence.Candidate, int, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 4)

	if search := strings.TrimSpace(filter.Search); search != "" {
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)")
		pattern := "%" + strings.ToLower(search) + "%"
		args = append(args, pattern, pattern)
	}
	if filter.JobID != "" {
		where = append(where, "job_id = ?")
		args = append(args, filter.JobID)
	}
	if filter.Stage != "" {
		where = append(where, "stage = ?")
		args = append(args, filter.Stage)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.helper.QueryRow(ctx, "SELECT COUNT(*) FROM candidates"+clause, args...).Scan(&total); err != nil {
		return nil, 0, r.mapper.MapError(err)
	}

	sortColumn, ok := candidateSortColumns[filter.Sort]
	if !ok {
		sortColumn = "applied_at"
	}

	query := fmt.Sprintf("SELECT %s FROM candidates%s ORDER BY %s ASC, id ASC LIMIT ? OFFSET ?",
		candidateColumns, clause, sortColumn)
	args = append(args, filter.Page.PageSize, filter.Page.Offset())

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, r.mapper.MapError(err)
	}
	defer rows.Close()

	var candidates []persistence.Candidate
	for rows.Next() {
		candidate, err := r.scanCandidate(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		candidates = append(candidates, candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, r.mapper.MapError(err)
	}

	return candidates, total, nil
}

// DeleteCandidate removes a candidate and all of its timeline events in one
// transaction.
func (r *CandidateRepository) DeleteCandidate(ctx context.Context, id string) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := r.helper.ExecTx(tx, "DELETE FROM candidate_events WHERE candidate_id = ?", id); err != nil {
			return r.mapper.MapError(err)
		}

		result, err := r.helper.ExecTx(tx, "DELETE FROM candidates WHERE id = ?", id)
		if err != nil {
			return r.mapper.MapError(err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
}

// AppendEvent records a timeline event. Events are append-only.
func (r *CandidateRepository) AppendEvent(ctx context.Context, event persistence.CandidateEvent) error {
	data, err := encodeJSON(event.Data, "{}")
	if err != nil {
		return err
	}

	_, err = r.helper.Exec(ctx, `
		INSERT INTO candidate_events (id, candidate_id, type, data, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		event.ID, event.CandidateID, event.Type, data, encodeTime(event.CreatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// ListEvents returns a candidate's timeline ordered oldest first.
func (r *CandidateRepository) ListEvents(ctx context.Context, candidateID string) ([]persistence.CandidateEvent, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, candidate_id, type, data, created_at
		FROM candidate_events
		WHERE candidate_id = ?
		ORDER BY created_at ASC, id ASC`, candidateID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var events []persistence.CandidateEvent
	for rows.Next() {
		var event persistence.CandidateEvent
		var data, createdAt string
		if err := rows.Scan(&event.ID, &event.CandidateID, &event.Type, &data, &createdAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if err := decodeJSON(data, &event.Data); err != nil {
			return nil, err
		}
		if event.CreatedAt, err = decodeTime(createdAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

func (r *CandidateRepository) scanCandidate(scan func(dest ...any) error) (persistence.Candidate, error) {
	var candidate persistence.Candidate
	var phone sql.NullString
	var notes, profile, appliedAt, updatedAt string

	err := scan(&candidate.ID, &candidate.Name, &candidate.Email, &phone, &candidate.JobID,
		&candidate.Stage, &notes, &profile, &appliedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Candidate{}, persistence.ErrNotFound
		}
		return persistence.Candidate{}, r.mapper.MapError(err)
	}

	candidate.Phone = fromNullString(phone)
	if err := decodeJSON(notes, &candidate.Notes); err != nil {
		return persistence.Candidate{}, err
	}
	if err := decodeJSON(profile, &candidate.Profile); err != nil {
		return persistence.Candidate{}, err
	}
	if candidate.AppliedAt, err = decodeTime(appliedAt); err != nil {
		return persistence.Candidate{}, err
	}
	if candidate.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return persistence.Candidate{}, err
	}
	return candidate, nil
}
