// Package client provides the in-process consumer of the TalentFlow API: a
// thin HTTP wrapper plus cached state stores with optimistic updates.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxTransportRetries bounds how often a request is retried after a
// transport-level failure. HTTP-level errors are never retried.
const maxTransportRetries = 2

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Message string
	Label   string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Label, e.Message)
}

// IsFault reports whether the error was an injected simulated failure.
func (e *APIError) IsFault() bool {
	return e != nil && e.Status == http.StatusServiceUnavailable && e.Label == "injected_fault"
}

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Errors  map[string]string `json:"errors"`
}

// Client wraps the REST API. All calls decode the uniform envelope and
// surface failures as *APIError.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a client for the given base URL, e.g. "http://localhost:8080".
func New(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: failed to encode request body: %w", err)
		}
		payload = encoded
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var resp *http.Response
	var lastErr error
	for attempt := 0; attempt <= maxTransportRetries; attempt++ {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return fmt.Errorf("client: failed to build request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, lastErr = c.http.Do(req)
		if lastErr == nil {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.WarnContext(ctx, "transport failure, retrying", "method", method, "path", path, "attempt", attempt+1, "error", lastErr)
	}
	if lastErr != nil {
		return fmt.Errorf("client: request failed after retries: %w", lastErr)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("client: unexpected response (status %d): %w", resp.StatusCode, err)
	}

	if !env.Success {
		return &APIError{
			Status:  resp.StatusCode,
			Message: env.Message,
			Label:   env.Error,
			Fields:  env.Errors,
		}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("client: failed to decode response data: %w", err)
		}
	}
	return nil
}

// User mirrors the API's user payload.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	Department  *string    `json:"department,omitempty"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Session mirrors the API's login/signup payload.
type Session struct {
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Candidate mirrors the API's candidate payload, trimmed to what the board
// needs.
type Candidate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	JobID     string    `json:"jobId"`
	Stage     string    `json:"stage"`
	AppliedAt time.Time `json:"appliedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Notification mirrors the API's notification payload.
type Notification struct {
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

// NotificationStats mirrors the API's stats payload.
type NotificationStats struct {
	Total      int            `json:"total"`
	Unread     int            `json:"unread"`
	ByCategory map[string]int `json:"byCategory"`
	ByType     map[string]int `json:"byType"`
}

type listPayload[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// Login authenticates and returns the session.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, map[string]string{
		"email":    email,
		"password": password,
	}, &session)
	return session, err
}

// Signup registers an account and returns the session.
func (c *Client) Signup(ctx context.Context, email, name, password, role string) (Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPost, "/api/auth/signup", nil, map[string]string{
		"email":    email,
		"name":     name,
		"password": password,
		"role":     role,
	}, &session)
	return session, err
}

// Logout tells the server the client discarded its session.
func (c *Client) Logout(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, map[string]string{"userId": userID}, nil)
}

// ListCandidates fetches candidates, optionally filtered to one job.
func (c *Client) ListCandidates(ctx context.Context, jobID string) ([]Candidate, error) {
	query := url.Values{}
	if jobID != "" {
		query.Set("jobId", jobID)
	}

	var page listPayload[Candidate]
	if err := c.do(ctx, http.MethodGet, "/api/candidates", query, nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// MoveCandidate changes a candidate's pipeline stage.
func (c *Client) MoveCandidate(ctx context.Context, candidateID, stage string) (Candidate, error) {
	var candidate Candidate
	err := c.do(ctx, http.MethodPatch, "/api/candidates/"+candidateID, nil, map[string]string{"stage": stage}, &candidate)
	return candidate, err
}

// ListNotifications fetches one user's notifications.
func (c *Client) ListNotifications(ctx context.Context, userID string) ([]Notification, error) {
	query := url.Values{"userId": {userID}}

	var page listPayload[Notification]
	if err := c.do(ctx, http.MethodGet, "/api/notifications", query, nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// MarkNotificationRead marks one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) (Notification, error) {
	var notification Notification
	err := c.do(ctx, http.MethodPatch, "/api/notifications/"+id+"/read", nil, nil, &notification)
	return notification, err
}

// MarkAllNotificationsRead marks every unread notification for a user.
func (c *Client) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodPatch, "/api/notifications/mark-all-read", nil, map[string]string{"userId": userID}, nil)
}

// DeleteNotification removes one notification.
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/notifications/"+id, nil, nil, nil)
}
