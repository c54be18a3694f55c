package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/talentflow/internal/persistence"
)

// JobRepository implements persistence.JobRepository using SQLite.
type JobRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewJobRepository creates a new SQLite job repository.
func NewJobRepository(pool *ConnectionPool) *JobRepository {
	return &JobRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// jobSortColumns is the allow-list of sortable fields. Unknown keys fall back
// to the manual sort order.
var jobSortColumns = map[string]string{
	"title":      "title",
	"created_at": "created_at",
	"order":      "sort_order",
}

const jobColumns = "id, title, slug, status, tags, sort_order, created_at, updated_at"

// CreateJob inserts a new job. A duplicate slug is rejected with ErrDuplicate.
func (r *JobRepository) CreateJob(ctx context.Context, job persistence.Job) error {
	if job.ID == "" {
		return persistence.ErrConstraintViolation
	}

	tags, err := encodeJSON(job.Tags, "[]")
	if err != nil {
		return err
	}

	_, err = r.helper.Exec(ctx, `
		INSERT INTO jobs (id, title, slug, status, tags, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		job.Title,
		job.Slug,
		job.Status,
		tags,
		job.SortOrder,
		encodeTime(job.CreatedAt),
		encodeTime(job.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// UpdateJob replaces a job's mutable fields.
func (r *JobRepository) UpdateJob(ctx context.Context, job persistence.Job) error {
	tags, err := encodeJSON(job.Tags, "[]")
	if err != nil {
		return err
	}

	result, err := r.helper.Exec(ctx, `
		UPDATE jobs SET title = ?, slug = ?, status = ?, tags = ?, sort_order = ?, updated_at = ?
		WHERE id = ?`,
		job.Title, job.Slug, job.Status, tags, job.SortOrder, encodeTime(job.UpdatedAt), job.ID,
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

// GetJob retrieves a job by ID.
func (r *JobRepository) GetJob(ctx context.Context, id string) (persistence.Job, error) {
	row := r.helper.QueryRow(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = ?", id)
	return r.scanJob(row.Scan)
}

// GetJobBySlug retrieves a job by its unique slug.
func (r *JobRepository) GetJobBySlug(ctx context.Context, slug string) (persistence.Job, error) {
	row := r.helper.QueryRow(ctx, "SELECT "+jobColumns+" FROM jobs WHERE slug = ?", slug)
	return r.scanJob(row.Scan)
}

// ListJobs returns jobs matching the filter plus the total filtered count.
// Search is a case-insensitive substring match over title and tags.
func (r *JobRepository) ListJobs(ctx context.Context, filter persistence.JobFilter) ([]persistence.Job, int, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 3)

	if search := strings.TrimSpace(filter.Search); search != "" {
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(tags) LIKE ?)")
		pattern := "%" + strings.ToLower(search) + "%"
		args = append(args, pattern, pattern)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.helper.QueryRow(ctx, "SELECT COUNT(*) FROM jobs"+clause, args...).Scan(&total); err != nil {
		return nil, 0, r.mapper.MapError(err)
	}

	sortColumn, ok := jobSortColumns[filter.Sort]
	if !ok {
		sortColumn = "sort_order"
	}

	query := fmt.Sprintf("SELECT %s FROM jobs%s ORDER BY %s ASC, id ASC LIMIT ? OFFSET ?",
		jobColumns, clause, sortColumn)
	args = append(args, filter.Page.PageSize, filter.Page.Offset())

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, r.mapper.MapError(err)
	}
	defer rows.Close()

	var jobs []persistence.Job
	for rows.Next() {
		job, err := r.scanJob(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, r.mapper.MapError(err)
	}

	return jobs, total, nil
}

// DeleteJob removes a job by ID. Candidates and assessments referencing the
// job are left in place; orphaned references are the caller's concern.
func (r *JobRepository) DeleteJob(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, "DELETE FROM jobs WHERE id = ?", id)
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

// MaxSortOrder returns the highest sort order currently assigned, or 0 when
// no jobs exist.
func (r *JobRepository) MaxSortOrder(ctx context.Context) (int, error) {
	var max sql.NullInt64
	if err := r.helper.QueryRow(ctx, "SELECT MAX(sort_order) FROM jobs").Scan(&max); err != nil {
		return 0, r.mapper.MapError(err)
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64), nil
}

// ReorderJob shifts every job whose sort order lies strictly between
// fromOrder and toOrder by one position and moves the identified job to
// toOrder. The shift and the move commit atomically. Orders are assumed to be
// a contiguous unique sequence; the function does not restore a broken one.
func (r *JobRepository) ReorderJob(ctx context.Context, id string, fromOrder, toOrder int) error {
	if fromOrder == toOrder {
		return nil
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var current int
		err := r.helper.QueryRowTx(tx, "SELECT sort_order FROM jobs WHERE id = ?", id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.ErrNotFound
		}
		if err != nil {
			return r.mapper.MapError(err)
		}
		if current != fromOrder {
			return fmt.Errorf("%w: job %s has order %d, expected %d",
				persistence.ErrConstraintViolation, id, current, fromOrder)
		}

		if fromOrder < toOrder {
			_, err = r.helper.ExecTx(tx,
				"UPDATE jobs SET sort_order = sort_order - 1 WHERE sort_order > ? AND sort_order <= ?",
				fromOrder, toOrder)
		} else {
			_, err = r.helper.ExecTx(tx,
				"UPDATE jobs SET sort_order = sort_order + 1 WHERE sort_order >= ? AND sort_order < ?",
				toOrder, fromOrder)
		}
		if err != nil {
			return r.mapper.MapError(err)
		}

		if _, err := r.helper.ExecTx(tx, "UPDATE jobs SET sort_order = ? WHERE id = ?", toOrder, id); err != nil {
			return r.mapper.MapError(err)
		}
		return nil
	})
}

func (r *JobRepository) scanJob(scan func(dest ...any) error) (persistence.Job, error) {
	var job persistence.Job
	var tags, createdAt, updatedAt string

	err := scan(&job.ID, &job.Title, &job.Slug, &job.Status, &tags, &job.SortOrder, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Job{}, persistence.ErrNotFound
		}
		return persistence.Job{}, r.mapper.MapError(err)
	}

	if err := decodeJSON(tags, &job.Tags); err != nil {
		return persistence.Job{}, err
	}
	if job.CreatedAt, err = decodeTime(createdAt); err != nil {
		return persistence.Job{}, err
	}
	if job.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return persistence.Job{}, err
	}
	return job, nil
}
