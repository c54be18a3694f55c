package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/talentflow/internal/persistence"
)

// NotificationRepository implements persistence.NotificationRepository using
// SQLite.
type NotificationRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewNotificationRepository creates a new SQLite notification repository.
func NewNotificationRepository(pool *ConnectionPool) *NotificationRepository {
	return &NotificationRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const notificationColumns = "id, user_id, type, category, title, message, action_url, is_read, metadata, created_at"

// CreateNotification inserts a new notification.
func (r *NotificationRepository) CreateNotification(ctx context.Context, notification persistence.Notification) error {
	metadata, err := encodeJSON(notification.Metadata, "{}")
	if err != nil {
		return err
	}

	_, err = r.helper.Exec(ctx, `
		INSERT INTO notifications (id, user_id, type, category, title, message, action_url, is_read, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		notification.ID,
		notification.UserID,
		notification.Type,
		notification.Category,
		notification.Title,
		notification.Message,
		nullString(notification.ActionURL),
		notification.IsRead,
		metadata,
		encodeTime(notification.CreatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetNotification retrieves a notification by ID.
func (r *NotificationRepository) GetNotification(ctx context.Context, id string) (persistence.Notification, error) {
	row := r.helper.QueryRow(ctx, "SELECT "+notificationColumns+" FROM notifications WHERE id = ?", id)
	return r.scanNotification(row.Scan)
}

// ListNotifications returns a user's notifications, newest first, plus the
// total filtered count.
func (r *NotificationRepository) ListNotifications(ctx context.Context, filter persistence.NotificationFilter) ([]persistence.Notification, int, error) {
	where := []string{"user_id = ?"}
	args := []any{filter.UserID}

	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Unread != nil {
		where = append(where, "is_read = ?")
		args = append(args, !*filter.Unread)
	}

	clause := " WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.helper.QueryRow(ctx, "SELECT COUNT(*) FROM notifications"+clause, args...).Scan(&total); err != nil {
		return nil, 0, r.mapper.MapError(err)
	}

	query := "SELECT " + notificationColumns + " FROM notifications" + clause +
		" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Page.PageSize, filter.Page.Offset())

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, r.mapper.MapError(err)
	}
	defer rows.Close()

	var notifications []persistence.Notification
	for rows.Next() {
		notification, err := r.scanNotification(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		notifications = append(notifications, notification)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, r.mapper.MapError(err)
	}

	return notifications, total, nil
}

// MarkRead marks one notification as read and returns the updated row.
// Marking an already-read notification is a no-op that still succeeds.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) (persistence.Notification, error) {
	result, err := r.helper.Exec(ctx, "UPDATE notifications SET is_read = 1 WHERE id = ?", id)
	if err != nil {
		return persistence.Notification{}, r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.Notification{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.Notification{}, persistence.ErrNotFound
	}

	return r.GetNotification(ctx, id)
}

// MarkAllRead marks every unread notification for the user as read and
// returns the number of rows it changed.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	result, err := r.helper.Exec(ctx,
		"UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0", userID)
	if err != nil {
		return 0, r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(affected), nil
}

// DeleteNotification removes a notification by ID.
func (r *NotificationRepository) DeleteNotification(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, "DELETE FROM notifications WHERE id = ?", id)
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

// Stats aggregates per-user notification counts.
func (r *NotificationRepository) Stats(ctx context.Context, userID string) (persistence.NotificationStats, error) {
	stats := persistence.NotificationStats{
		ByCategory: make(map[string]int),
		ByType:     make(map[string]int),
	}

	rows, err := r.helper.Query(ctx,
		"SELECT category, type, is_read, COUNT(*) FROM notifications WHERE user_id = ? GROUP BY category, type, is_read",
		userID)
	if err != nil {
		return persistence.NotificationStats{}, r.mapper.MapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var category, notificationType string
		var isRead bool
		var count int
		if err := rows.Scan(&category, &notificationType, &isRead, &count); err != nil {
			return persistence.NotificationStats{}, r.mapper.MapError(err)
		}
		stats.Total += count
		if !isRead {
			stats.Unread += count
		}
		stats.ByCategory[category] += count
		stats.ByType[notificationType] += count
	}
	if err := rows.Err(); err != nil {
		return persistence.NotificationStats{}, r.mapper.MapError(err)
	}

	return stats, nil
}

func (r *NotificationRepository) scanNotification(scan func(dest ...any) error) (persistence.Notification, error) {
	var notification persistence.Notification
	var actionURL sql.NullString
	var metadata, createdAt string

	err := scan(&notification.ID, &notification.UserID, &notification.Type, &notification.Category,
		&notification.Title, &notification.Message, &actionURL, &notification.IsRead, &metadata, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Notification{}, persistence.ErrNotFound
		}
		return persistence.Notification{}, r.mapper.MapError(err)
	}

	notification.ActionURL = fromNullString(actionURL)
	if err := decodeJSON(metadata, &notification.Metadata); err != nil {
		return persistence.Notification{}, err
	}
	if notification.CreatedAt, err = decodeTime(createdAt); err != nil {
		return persistence.Notification{}, err
	}
	return notification, nil
}
