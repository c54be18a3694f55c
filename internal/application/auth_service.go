package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/example/talentflow/internal/persistence"
)

// DefaultSessionTTL is how long a login is considered valid. The server keeps
// no session records; expiry is enforced by the client store.
const DefaultSessionTTL = 24 * time.Hour

// AuthService handles login, signup, and logout against the user collection.
type AuthService struct {
	users       persistence.UserRepository
	hashParams  Argon2idParams
	sessionTTL  time.Duration
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAuthService wires dependencies for the auth service.
func NewAuthService(users persistence.UserRepository, sessionTTL time.Duration, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		users:       users,
		hashParams:  DefaultArgon2idParams,
		sessionTTL:  sessionTTL,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// Login verifies credentials and returns the account with its session expiry.
// Account lookup failures and password mismatches are indistinguishable to
// the caller.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (Session, error) {
	if s == nil {
		return Session{}, fmt.Errorf("AuthService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "auth", "login")

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return Session{}, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}

	if err := VerifyPassword(user.PasswordHash, input.Password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}

	if !user.IsActive {
		return Session{}, ErrAccountDisabled
	}

	now := s.now()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := s.users.UpdateUser(ctx, user); err != nil {
		logger.WarnContext(ctx, "failed to stamp last login", "user_id", user.ID, "error", err)
	}

	logger.InfoContext(ctx, "login succeeded", "user_id", user.ID, "role", user.Role)
	return Session{User: user, ExpiresAt: now.Add(s.sessionTTL)}, nil
}

// Signup validates and registers a new account, then returns a session for it.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (Session, error) {
	if s == nil {
		return Session{}, fmt.Errorf("AuthService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "auth", "signup")

	normalized := normalizeSignupInput(input)
	vErr := validateSignupInput(normalized)
	if vErr.HasErrors() {
		return Session{}, vErr
	}

	if _, err := s.users.GetUserByEmail(ctx, normalized.Email); err == nil {
		return Session{}, ErrAlreadyExists
	} else if !errors.Is(err, persistence.ErrNotFound) {
		return Session{}, err
	}

	hash, err := CreatePasswordHash(normalized.Password, s.hashParams)
	if err != nil {
		return Session{}, err
	}

	now := s.now()
	user := persistence.User{
		ID:           s.idGenerator(),
		Email:        normalized.Email,
		Name:         normalized.Name,
		Role:         normalized.Role,
		Department:   normalized.Department,
		PasswordHash: hash,
		IsActive:     true,
		LastLoginAt:  &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return Session{}, ErrAlreadyExists
		}
		return Session{}, err
	}

	logger.InfoContext(ctx, "signup succeeded", "user_id", user.ID, "role", user.Role)
	return Session{User: user, ExpiresAt: now.Add(s.sessionTTL)}, nil
}

// Logout acknowledges the client clearing its session. No server state exists
// to revoke.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	serviceLogger(ctx, s.logger, "auth", "logout").InfoContext(ctx, "logout acknowledged", "user_id", userID)
	return nil
}

func normalizeSignupInput(input SignupInput) SignupInput {
	role := strings.TrimSpace(strings.ToLower(input.Role))
	if role == "" {
		role = RoleRecruiter
	}

	department := input.Department
	if department != nil {
		trimmed := strings.TrimSpace(*department)
		if trimmed == "" {
			department = nil
		} else {
			department = &trimmed
		}
	}

	return SignupInput{
		Email:      strings.ToLower(strings.TrimSpace(input.Email)),
		Name:       strings.TrimSpace(input.Name),
		Password:   input.Password,
		Role:       role,
		Department: department,
	}
}

func validateSignupInput(input SignupInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is invalid")
	}

	if input.Name == "" {
		vErr.add("name", "name is required")
	}

	if len(input.Password) < 8 {
		vErr.add("password", "password must be at least 8 characters")
	}

	if !validRoles[input.Role] {
		vErr.add("role", "role is not recognized")
	}

	return vErr
}
