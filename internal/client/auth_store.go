package client

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Capabilities consulted through AuthStore.Can.
const (
	CapJobsRead         = "jobs:read"
	CapJobsWrite        = "jobs:write"
	CapCandidatesRead   = "candidates:read"
	CapCandidatesWrite  = "candidates:write"
	CapAssessmentsRead  = "assessments:read"
	CapAssessmentsWrite = "assessments:write"
	CapUsersManage      = "users:manage"
	CapSettingsManage   = "settings:manage"
)

// roleCapabilities maps each role to what it may do. Admin carries every
// capability; hiring managers are read-only outside assessments.
var roleCapabilities = map[string]map[string]bool{
	"admin": {
		CapJobsRead: true, CapJobsWrite: true,
		CapCandidatesRead: true, CapCandidatesWrite: true,
		CapAssessmentsRead: true, CapAssessmentsWrite: true,
		CapUsersManage: true, CapSettingsManage: true,
	},
	"hr_manager": {
		CapJobsRead: true, CapJobsWrite: true,
		CapCandidatesRead: true, CapCandidatesWrite: true,
		CapAssessmentsRead: true, CapAssessmentsWrite: true,
		CapSettingsManage: true,
	},
	"recruiter": {
		CapJobsRead:       true,
		CapCandidatesRead: true, CapCandidatesWrite: true,
		CapAssessmentsRead: true, CapAssessmentsWrite: true,
	},
	"hiring_manager": {
		CapJobsRead:        true,
		CapCandidatesRead:  true,
		CapAssessmentsRead: true,
	},
}

// AuthStore holds the client's view of the current session. The server keeps
// no session state, so expiry is enforced here on every check.
type AuthStore struct {
	client *Client
	now    func() time.Time
	logger *slog.Logger

	mu        sync.RWMutex
	user      *User
	expiresAt time.Time
	observers []Observer
}

// NewAuthStore wires an auth store around the API client.
func NewAuthStore(client *Client, now func() time.Time, logger *slog.Logger) *AuthStore {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthStore{client: client, now: now, logger: logger}
}

// Subscribe registers an observer notified on every state change.
func (s *AuthStore) Subscribe(observer Observer) {
	if observer == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, observer)
	s.mu.Unlock()
}

// Login authenticates and stores the session.
func (s *AuthStore) Login(ctx context.Context, email, password string) (User, error) {
	session, err := s.client.Login(ctx, email, password)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	user := session.User
	s.user = &user
	s.expiresAt = session.ExpiresAt
	observers := s.snapshotObservers()
	s.mu.Unlock()

	notifyAll(observers)
	return session.User, nil
}

// Signup registers an account and stores the resulting session.
func (s *AuthStore) Signup(ctx context.Context, email, name, password, role string) (User, error) {
	session, err := s.client.Signup(ctx, email, name, password, role)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	user := session.User
	s.user = &user
	s.expiresAt = session.ExpiresAt
	observers := s.snapshotObservers()
	s.mu.Unlock()

	notifyAll(observers)
	return session.User, nil
}

// Logout clears the session locally and tells the server, best effort.
func (s *AuthStore) Logout(ctx context.Context) {
	s.mu.Lock()
	var userID string
	if s.user != nil {
		userID = s.user.ID
	}
	s.user = nil
	s.expiresAt = time.Time{}
	observers := s.snapshotObservers()
	s.mu.Unlock()

	notifyAll(observers)

	if userID != "" {
		if err := s.client.Logout(ctx, userID); err != nil {
			s.logger.WarnContext(ctx, "logout call failed", "error", err)
		}
	}
}

// CheckSession reports whether a valid session exists. An expired session is
// cleared as a side effect.
func (s *AuthStore) CheckSession() bool {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return false
	}
	if !s.now().Before(s.expiresAt) {
		s.user = nil
		s.expiresAt = time.Time{}
		observers := s.snapshotObservers()
		s.mu.Unlock()
		notifyAll(observers)
		return false
	}
	s.mu.Unlock()
	return true
}

// CurrentUser returns the logged-in user, if any.
func (s *AuthStore) CurrentUser() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// SessionExpiry returns when the current session lapses.
func (s *AuthStore) SessionExpiry() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return time.Time{}, false
	}
	return s.expiresAt, true
}

// Can reports whether the current user's role grants a capability. Without a
// valid session nothing is allowed.
func (s *AuthStore) Can(capability string) bool {
	if !s.CheckSession() {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return false
	}
	return roleCapabilities[s.user.Role][capability]
}

func (s *AuthStore) snapshotObservers() []Observer {
	out := make([]Observer, len(s.observers))
	copy(out, s.observers)
	return out
}
