package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// observerRecorder counts StoreChanged callbacks.
type observerRecorder struct {
	changes atomic.Int32
}

func (o *observerRecorder) StoreChanged() {
	o.changes.Add(1)
}

// newAuthBackend serves login/signup/logout for a single account with the
// given role, recording logout calls.
func newAuthBackend(t *testing.T, role string, logouts *atomic.Int32) *httptest.Server {
	t.Helper()

	expiry := time.Now().Add(24 * time.Hour).UTC()
	session := map[string]any{
		"user": map[string]any{
			"id":       "user-1",
			"email":    "dana@example.com",
			"name":     "Dana Fox",
			"role":     role,
			"isActive": true,
		},
		"expiresAt": expiry.Format(time.RFC3339),
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/auth/login", "/api/auth/signup":
			json.NewEncoder(w).Encode(map[string]any{"success": true, "data": session})
		case "/api/auth/logout":
			if logouts != nil {
				logouts.Add(1)
			}
			json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"loggedOut": true}})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestAuthStoreLogin(t *testing.T) {
	t.Parallel()

	server := newAuthBackend(t, "recruiter", nil)
	api := New(server.URL, server.Client(), discardLogger())
	store := NewAuthStore(api, nil, discardLogger())

	observer := &observerRecorder{}
	store.Subscribe(observer)

	user, err := store.Login(context.Background(), "dana@example.com", "password")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, int32(1), observer.changes.Load())

	current, ok := store.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "recruiter", current.Role)
	assert.True(t, store.CheckSession())
}

func TestAuthStoreCheckSessionExpiry(t *testing.T) {
	t.Parallel()

	server := newAuthBackend(t, "recruiter", nil)
	api := New(server.URL, server.Client(), discardLogger())

	now := time.Now()
	current := &now
	store := NewAuthStore(api, func() time.Time { return *current }, discardLogger())

	_, err := store.Login(context.Background(), "dana@example.com", "password")
	require.NoError(t, err)
	require.True(t, store.CheckSession())

	observer := &observerRecorder{}
	store.Subscribe(observer)

	later := now.Add(25 * time.Hour)
	current = &later

	assert.False(t, store.CheckSession(), "an expired session fails the check")
	assert.Equal(t, int32(1), observer.changes.Load(), "clearing the session notifies observers")

	_, ok := store.CurrentUser()
	assert.False(t, ok, "the expired session is cleared")
	assert.False(t, store.CheckSession(), "a second check stays false without renotifying")
	assert.Equal(t, int32(1), observer.changes.Load())
}

func TestAuthStoreLogout(t *testing.T) {
	t.Parallel()

	var logouts atomic.Int32
	server := newAuthBackend(t, "admin", &logouts)
	api := New(server.URL, server.Client(), discardLogger())
	store := NewAuthStore(api, nil, discardLogger())

	_, err := store.Login(context.Background(), "dana@example.com", "password")
	require.NoError(t, err)

	store.Logout(context.Background())

	_, ok := store.CurrentUser()
	assert.False(t, ok)
	assert.False(t, store.CheckSession())
	assert.Equal(t, int32(1), logouts.Load(), "the server is told about the logout")
}

func TestAuthStoreCan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role       string
		capability string
		want       bool
	}{
		{"admin", CapUsersManage, true},
		{"admin", CapJobsWrite, true},
		{"hr_manager", CapJobsWrite, true},
		{"hr_manager", CapUsersManage, false},
		{"hr_manager", CapSettingsManage, true},
		{"recruiter", CapCandidatesWrite, true},
		{"recruiter", CapJobsWrite, false},
		{"recruiter", CapAssessmentsWrite, true},
		{"hiring_manager", CapCandidatesRead, true},
		{"hiring_manager", CapCandidatesWrite, false},
		{"hiring_manager", CapAssessmentsWrite, false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.role+" "+tc.capability, func(t *testing.T) {
			t.Parallel()

			server := newAuthBackend(t, tc.role, nil)
			api := New(server.URL, server.Client(), discardLogger())
			store := NewAuthStore(api, nil, discardLogger())

			_, err := store.Login(context.Background(), "dana@example.com", "password")
			require.NoError(t, err)

			assert.Equal(t, tc.want, store.Can(tc.capability))
		})
	}

	t.Run("nothing is allowed without a session", func(t *testing.T) {
		t.Parallel()

		server := newAuthBackend(t, "admin", nil)
		api := New(server.URL, server.Client(), discardLogger())
		store := NewAuthStore(api, nil, discardLogger())

		assert.False(t, store.Can(CapJobsRead))
	})
}
