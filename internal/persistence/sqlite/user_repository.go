package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/talentflow/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite.
type UserRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

var userSortColumns = map[string]string{
	"name":       "name",
	"email":      "email",
	"created_at": "created_at",
}

const userColumns = "id, email, name, role, department, password_hash, is_active, last_login_at, created_at, updated_at"

// CreateUser inserts a new user. A duplicate email is rejected with
// ErrDuplicate.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" || user.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.helper.Exec(ctx, `
		INSERT INTO users (id, email, name, role, department, password_hash, is_active, last_login_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		normalizeEmail(user.Email),
		user.Name,
		user.Role,
		nullString(user.Department),
		user.PasswordHash,
		user.IsActive,
		encodeNullTime(user.LastLoginAt),
		encodeTime(user.CreatedAt),
		encodeTime(user.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// UpdateUser replaces a user's mutable fields.
func (r *UserRepository) UpdateUser(ctx context.Context, user persistence.User) error {
	if user.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}

	result, err := r.helper.Exec(ctx, `
		UPDATE users SET email = ?, name = ?, role = ?, department = ?, password_hash = ?, is_active = ?, last_login_at = ?, updated_at = ?
		WHERE id = ?`,
		normalizeEmail(user.Email),
		user.Name,
		user.Role,
		nullString(user.Department),
		user.PasswordHash,
		user.IsActive,
		encodeNullTime(user.LastLoginAt),
		encodeTime(user.UpdatedAt),
		user.ID,
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

// GetUser retrieves a user by ID.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	row := r.helper.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return r.scanUser(row.Scan)
}

// GetUserByEmail retrieves a user by normalized email address.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	row := r.helper.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", normalizeEmail(email))
	return r.scanUser(row.Scan)
}

// ListUsers returns users matching the filter plus the total filtered count.
func (r *UserRepository) ListUsers(ctx context.Context, filter persistence.UserFilter) ([]persistence.User, int, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 3)

	if search := strings.TrimSpace(filter.Search); search != "" {
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)")
		pattern := "%" + strings.ToLower(search) + "%"
		args = append(args, pattern, pattern)
	}
	if filter.Role != "" {
		where = append(where, "role = ?")
		args = append(args, filter.Role)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.helper.QueryRow(ctx, "SELECT COUNT(*) FROM users"+clause, args...).Scan(&total); err != nil {
		return nil, 0, r.mapper.MapError(err)
	}

	sortColumn, ok := userSortColumns[filter.Sort]
	if !ok {
		sortColumn = "created_at"
	}

	query := fmt.Sprintf("SELECT %s FROM users%s ORDER BY %s ASC, id ASC LIMIT ? OFFSET ?",
		userColumns, clause, sortColumn)
	args = append(args, filter.Page.PageSize, filter.Page.Offset())

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, r.mapper.MapError(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		user, err := r.scanUser(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, r.mapper.MapError(err)
	}

	return users, total, nil
}

// DeleteUser removes a user by ID. Notifications addressed to the user are
// left in place.
func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, "DELETE FROM users WHERE id = ?", id)
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

func (r *UserRepository) scanUser(scan func(dest ...any) error) (persistence.User, error) {
	var user persistence.User
	var department, lastLoginAt sql.NullString
	var createdAt, updatedAt string

	err := scan(&user.ID, &user.Email, &user.Name, &user.Role, &department, &user.PasswordHash,
		&user.IsActive, &lastLoginAt, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.User{}, persistence.ErrNotFound
		}
		return persistence.User{}, r.mapper.MapError(err)
	}

	user.Department = fromNullString(department)
	if user.LastLoginAt, err = decodeNullTime(lastLoginAt); err != nil {
		return persistence.User{}, err
	}
	if user.CreatedAt, err = decodeTime(createdAt); err != nil {
		return persistence.User{}, err
	}
	if user.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return persistence.User{}, err
	}
	return user, nil
}

// normalizeEmail normalizes email addresses for consistent storage and lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
