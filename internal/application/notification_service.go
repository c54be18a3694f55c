package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/talentflow/internal/persistence"
)

// NotificationService manages per-user notifications and mention delivery.
type NotificationService struct {
	notifications persistence.NotificationRepository
	users         persistence.UserRepository
	idGenerator   func() string
	now           func() time.Time
	logger        *slog.Logger
}

// NewNotificationService wires dependencies for the notification service.
func NewNotificationService(notifications persistence.NotificationRepository, users persistence.UserRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *NotificationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &NotificationService{
		notifications: notifications,
		users:         users,
		idGenerator:   idGenerator,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

// CreateNotification validates input and persists a notification for a user.
func (s *NotificationService) CreateNotification(ctx context.Context, params CreateNotificationParams) (persistence.Notification, error) {
	if s == nil {
		return persistence.Notification{}, fmt.Errorf("NotificationService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "notification", "create")

	normalized := normalizeNotificationParams(params)
	vErr := validateNotificationParams(normalized)
	if vErr.HasErrors() {
		return persistence.Notification{}, vErr
	}

	if _, err := s.users.GetUser(ctx, normalized.UserID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			vErr.add("userId", "user does not exist")
			return persistence.Notification{}, vErr
		}
		return persistence.Notification{}, err
	}

	notification := persistence.Notification{
		ID:        s.idGenerator(),
		UserID:    normalized.UserID,
		Type:      normalized.Type,
		Category:  normalized.Category,
		Title:     normalized.Title,
		Message:   normalized.Message,
		ActionURL: normalized.ActionURL,
		Metadata:  normalized.Metadata,
		CreatedAt: s.now(),
	}

	if err := s.notifications.CreateNotification(ctx, notification); err != nil {
		return persistence.Notification{}, err
	}

	logger.InfoContext(ctx, "notification created", "notification_id", notification.ID, "user_id", notification.UserID)
	return notification, nil
}

// ListNotifications returns one page of a user's notifications, newest first.
func (s *NotificationService) ListNotifications(ctx context.Context, params ListNotificationsParams) (NotificationPage, error) {
	if s == nil {
		return NotificationPage{}, fmt.Errorf("NotificationService is nil")
	}

	if strings.TrimSpace(params.UserID) == "" {
		vErr := &ValidationError{}
		vErr.add("userId", "userId is required")
		return NotificationPage{}, vErr
	}

	page := normalizePage(params.Page, params.PageSize, DefaultNotificationPageSize)
	notifications, total, err := s.notifications.ListNotifications(ctx, persistence.NotificationFilter{
		UserID:   params.UserID,
		Category: strings.TrimSpace(params.Category),
		Unread:   params.Unread,
		Page:     page,
	})
	if err != nil {
		return NotificationPage{}, err
	}

	return NotificationPage{
		Notifications: notifications,
		Total:         total,
		Page:          page.Page,
		PageSize:      page.PageSize,
		TotalPages:    totalPages(total, page.PageSize),
	}, nil
}

// MarkRead marks one notification as read and returns the updated row.
func (s *NotificationService) MarkRead(ctx context.Context, id string) (persistence.Notification, error) {
	if s == nil {
		return persistence.Notification{}, fmt.Errorf("NotificationService is nil")
	}

	notification, err := s.notifications.MarkRead(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Notification{}, ErrNotFound
		}
		return persistence.Notification{}, err
	}
	return notification, nil
}

// MarkAllRead marks every unread notification for a user as read and returns
// how many were affected.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("NotificationService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "notification", "mark_all_read", "user_id", userID)

	affected, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}

	logger.InfoContext(ctx, "notifications marked read", "count", affected)
	return affected, nil
}

// DeleteNotification removes one notification.
func (s *NotificationService) DeleteNotification(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("NotificationService is nil")
	}

	if err := s.notifications.DeleteNotification(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Stats aggregates a user's notification counts.
func (s *NotificationService) Stats(ctx context.Context, userID string) (persistence.NotificationStats, error) {
	if s == nil {
		return persistence.NotificationStats{}, fmt.Errorf("NotificationService is nil")
	}
	return s.notifications.Stats(ctx, userID)
}

// NotifyMentions resolves @mention tokens against the user directory and
// creates a notification per matching user. Delivery is best effort; failures
// are logged and do not fail the note that triggered them.
func (s *NotificationService) NotifyMentions(ctx context.Context, mentions []string, candidate persistence.Candidate, note persistence.Note) {
	if s == nil {
		return
	}
	logger := serviceLogger(ctx, s.logger, "notification", "notify_mentions", "candidate_id", candidate.ID)

	actionURL := "/candidates/" + candidate.ID
	notified := make(map[string]bool)

	for _, mention := range mentions {
		users, _, err := s.users.ListUsers(ctx, persistence.UserFilter{
			Search: mention,
			Page:   persistence.Page{Page: 1, PageSize: DefaultUserPageSize},
		})
		if err != nil {
			logger.WarnContext(ctx, "failed to resolve mention", "mention", mention, "error", err)
			continue
		}

		for _, user := range users {
			if notified[user.ID] || !user.IsActive {
				continue
			}
			notified[user.ID] = true

			notification := persistence.Notification{
				ID:        s.idGenerator(),
				UserID:    user.ID,
				Type:      NotificationInfo,
				Category:  CategoryCandidate,
				Title:     "You were mentioned in a note",
				Message:   fmt.Sprintf("%s mentioned you in a note on %s", note.Author, candidate.Name),
				ActionURL: &actionURL,
				Metadata: map[string]any{
					"candidate_id": candidate.ID,
					"note_id":      note.ID,
				},
				CreatedAt: s.now(),
			}
			if err := s.notifications.CreateNotification(ctx, notification); err != nil {
				logger.WarnContext(ctx, "failed to deliver mention notification", "user_id", user.ID, "error", err)
			}
		}
	}
}

func normalizeNotificationParams(params CreateNotificationParams) CreateNotificationParams {
	notificationType := strings.TrimSpace(strings.ToLower(params.Type))
	if notificationType == "" {
		notificationType = NotificationInfo
	}

	category := strings.TrimSpace(strings.ToLower(params.Category))
	if category == "" {
		category = CategorySystem
	}

	actionURL := params.ActionURL
	if actionURL != nil {
		trimmed := strings.TrimSpace(*actionURL)
		if trimmed == "" {
			actionURL = nil
		} else {
			actionURL = &trimmed
		}
	}

	return CreateNotificationParams{
		UserID:    strings.TrimSpace(params.UserID),
		Type:      notificationType,
		Category:  category,
		Title:     strings.TrimSpace(params.Title),
		Message:   strings.TrimSpace(params.Message),
		ActionURL: actionURL,
		Metadata:  params.Metadata,
	}
}

func validateNotificationParams(params CreateNotificationParams) *ValidationError {
	vErr := &ValidationError{}

	if params.UserID == "" {
		vErr.add("userId", "userId is required")
	}
	if params.Title == "" {
		vErr.add("title", "title is required")
	}
	if params.Message == "" {
		vErr.add("message", "message is required")
	}
	if !validNotificationTypes[params.Type] {
		vErr.add("type", "type is not recognized")
	}
	if !validNotificationCategories[params.Category] {
		vErr.add("category", "category is not recognized")
	}

	return vErr
}
