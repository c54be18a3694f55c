package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/talentflow/internal/application"
	"github.com/example/talentflow/internal/persistence"
)

var errMissingUserID = errors.New("a userId query parameter is required")

type notificationService interface {
	CreateNotification(ctx context.Context, params application.CreateNotificationParams) (persistence.Notification, error)
	ListNotifications(ctx context.Context, params application.ListNotificationsParams) (application.NotificationPage, error)
	MarkRead(ctx context.Context, id string) (persistence.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int, error)
	DeleteNotification(ctx context.Context, id string) error
	Stats(ctx context.Context, userID string) (persistence.NotificationStats, error)
}

type NotificationHandler struct {
	service   notificationService
	responder responder
	logger    *slog.Logger
}

func NewNotificationHandler(service notificationService, logger *slog.Logger) *NotificationHandler {
	base := defaultLogger(logger)
	return &NotificationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *NotificationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "NotificationHandler", operation, attrs...)
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()

	var unread *bool
	if value := strings.TrimSpace(query.Get("unread")); value != "" {
		parsed := value == "true" || value == "1"
		unread = &parsed
	}

	page, err := h.service.ListNotifications(r.Context(), application.ListNotificationsParams{
		UserID:   query.Get("userId"),
		Category: query.Get("category"),
		Unread:   unread,
		Page:     intQueryParam(query.Get("page")),
		PageSize: intQueryParam(query.Get("pageSize")),
	})
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "notification listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, listNotificationsResponse{
		Items:      toNotificationDTOs(page.Notifications),
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	})
}

func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req notificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode notification request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create")

	notification, err := h.service.CreateNotification(r.Context(), application.CreateNotificationParams{
		UserID:    req.UserID,
		Type:      req.Type,
		Category:  req.Category,
		Title:     req.Title,
		Message:   req.Message,
		ActionURL: req.ActionURL,
		Metadata:  req.Metadata,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "notification creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("notification_id", notification.ID).InfoContext(r.Context(), "notification created")
	h.responder.writeData(r.Context(), w, http.StatusCreated, toNotificationDTO(notification))
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	notificationID, ok := NotificationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(notificationID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errInvalidNotificationID)
		return
	}

	notification, err := h.service.MarkRead(r.Context(), notificationID)
	if err != nil {
		h.log(r.Context(), "MarkRead", "notification_id", notificationID).ErrorContext(r.Context(), "marking notification read failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, toNotificationDTO(notification))
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req markAllReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "MarkAllRead", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode mark-all-read request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errBadRequestBody)
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errMissingUserID)
		return
	}

	logger := h.log(r.Context(), "MarkAllRead", "user_id", req.UserID)

	affected, err := h.service.MarkAllRead(r.Context(), req.UserID)
	if err != nil {
		logger.ErrorContext(r.Context(), "mark-all-read failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "notifications marked read", "count", affected)
	h.responder.writeData(r.Context(), w, http.StatusOK, markAllReadResponse{Updated: affected})
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	notificationID, ok := NotificationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(notificationID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errInvalidNotificationID)
		return
	}

	logger := h.log(r.Context(), "Delete", "notification_id", notificationID)

	if err := h.service.DeleteNotification(r.Context(), notificationID); err != nil {
		logger.ErrorContext(r.Context(), "notification deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "notification deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *NotificationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errMissingUserID)
		return
	}

	stats, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		h.log(r.Context(), "Stats", "user_id", userID).ErrorContext(r.Context(), "stats lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, statsDTO{
		Total:      stats.Total,
		Unread:     stats.Unread,
		ByCategory: stats.ByCategory,
		ByType:     stats.ByType,
	})
}

type notificationRequest struct {
	UserID    string         `json:"userId"`
	Type      string         `json:"type"`
	Category  string         `json:"category"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	ActionURL *string        `json:"actionUrl"`
	Metadata  map[string]any `json:"metadata"`
}

type markAllReadRequest struct {
	UserID string `json:"userId"`
}

type markAllReadResponse struct {
	Updated int `json:"updated"`
}

type notificationDTO struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Type      string         `json:"type"`
	Category  string         `json:"category"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	ActionURL *string        `json:"actionUrl,omitempty"`
	IsRead    bool           `json:"isRead"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

type listNotificationsResponse struct {
	Items      []notificationDTO `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}

type statsDTO struct {
	Total      int            `json:"total"`
	Unread     int            `json:"unread"`
	ByCategory map[string]int `json:"byCategory"`
	ByType     map[string]int `json:"byType"`
}

func toNotificationDTO(notification persistence.Notification) notificationDTO {
	return notificationDTO{
		ID:        notification.ID,
		UserID:    notification.UserID,
		Type:      notification.Type,
		Category:  notification.Category,
		Title:     notification.Title,
		Message:   notification.Message,
		ActionURL: notification.ActionURL,
		IsRead:    notification.IsRead,
		Metadata:  notification.Metadata,
		CreatedAt: notification.CreatedAt,
	}
}

func toNotificationDTOs(notifications []persistence.Notification) []notificationDTO {
	out := make([]notificationDTO, 0, len(notifications))
	for _, notification := range notifications {
		out = append(out, toNotificationDTO(notification))
	}
	return out
}
