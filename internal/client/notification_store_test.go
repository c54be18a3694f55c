package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// notificationBackend is a scriptable stand-in for the notifications API.
type notificationBackend struct {
	mu        sync.Mutex
	items     []Notification
	failWrite bool
}

func (b *notificationBackend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		b.mu.Lock()
		failWrite := b.failWrite
		items := make([]Notification, len(b.items))
		copy(items, b.items)
		b.mu.Unlock()

		if r.Method != http.MethodGet && failWrite {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"message": "a simulated upstream failure occurred, please retry",
				"error":   "injected_fault",
			})
			return
		}

		switch {
		case r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{
				"items": items,
				"total": len(items),
			}})
		case r.Method == http.MethodPatch && strings.HasSuffix(r.URL.Path, "/read"):
			json.NewEncoder(w).Encode(map[string]any{"success": true, "data": items[0]})
		case r.Method == http.MethodPatch:
			json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"updated": len(items)}})
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}
}

func (b *notificationBackend) setFailWrite(fail bool) {
	b.mu.Lock()
	b.failWrite = fail
	b.mu.Unlock()
}

func newNotificationStoreUnderTest(t *testing.T, backend *notificationBackend) *NotificationStore {
	t.Helper()

	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	api := New(server.URL, server.Client(), discardLogger())
	return NewNotificationStore(api, discardLogger())
}

func seedNotifications() []Notification {
	return []Notification{
		{ID: "notif-1", UserID: "user-1", Type: "info", Category: "candidate", Title: "Mentioned in a note"},
		{ID: "notif-2", UserID: "user-1", Type: "warning", Category: "system", Title: "Import finished", IsRead: true},
		{ID: "notif-3", UserID: "user-1", Type: "info", Category: "system", Title: "Weekly digest"},
	}
}

func TestNotificationStoreRefresh(t *testing.T) {
	t.Parallel()

	backend := &notificationBackend{items: seedNotifications()}
	store := newNotificationStoreUnderTest(t, backend)

	observer := &observerRecorder{}
	store.Subscribe(observer)

	require.NoError(t, store.Refresh(context.Background(), "user-1"))
	assert.Equal(t, int32(1), observer.changes.Load())

	items := store.Items()
	require.Len(t, items, 3)

	stats := store.Stats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Unread)
	assert.Equal(t, map[string]int{"candidate": 1, "system": 2}, stats.ByCategory)
	assert.Equal(t, map[string]int{"info": 2, "warning": 1}, stats.ByType)
}

func TestNotificationStoreMarkRead(t *testing.T) {
	t.Parallel()

	t.Run("applies optimistically and sticks on success", func(t *testing.T) {
		t.Parallel()

		backend := &notificationBackend{items: seedNotifications()}
		store := newNotificationStoreUnderTest(t, backend)
		require.NoError(t, store.Refresh(context.Background(), "user-1"))

		require.NoError(t, store.MarkRead(context.Background(), "notif-1"))

		items := store.Items()
		assert.True(t, items[0].IsRead)
		assert.Equal(t, 1, store.Stats().Unread)
	})

	t.Run("rolls back when the server rejects the write", func(t *testing.T) {
		t.Parallel()

		backend := &notificationBackend{items: seedNotifications()}
		store := newNotificationStoreUnderTest(t, backend)
		require.NoError(t, store.Refresh(context.Background(), "user-1"))

		backend.setFailWrite(true)

		observer := &observerRecorder{}
		store.Subscribe(observer)

		err := store.MarkRead(context.Background(), "notif-1")
		require.Error(t, err)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.True(t, apiErr.IsFault())

		items := store.Items()
		assert.False(t, items[0].IsRead, "the optimistic flag is undone")
		assert.Equal(t, 2, store.Stats().Unread)
		assert.Equal(t, int32(2), observer.changes.Load(), "one change for the optimistic apply, one for the rollback")
	})
}

func TestNotificationStoreMarkAllRead(t *testing.T) {
	t.Parallel()

	backend := &notificationBackend{items: seedNotifications()}
	store := newNotificationStoreUnderTest(t, backend)
	require.NoError(t, store.Refresh(context.Background(), "user-1"))

	require.NoError(t, store.MarkAllRead(context.Background()))

	for _, item := range store.Items() {
		assert.True(t, item.IsRead)
	}
	assert.Equal(t, 0, store.Stats().Unread)
}

func TestNotificationStoreDelete(t *testing.T) {
	t.Parallel()

	t.Run("removes the item on success", func(t *testing.T) {
		t.Parallel()

		backend := &notificationBackend{items: seedNotifications()}
		store := newNotificationStoreUnderTest(t, backend)
		require.NoError(t, store.Refresh(context.Background(), "user-1"))

		require.NoError(t, store.Delete(context.Background(), "notif-2"))

		items := store.Items()
		require.Len(t, items, 2)
		assert.Equal(t, "notif-1", items[0].ID)
		assert.Equal(t, "notif-3", items[1].ID)
		assert.Equal(t, 2, store.Stats().Total)
	})

	t.Run("restores the item when the delete fails", func(t *testing.T) {
		t.Parallel()

		backend := &notificationBackend{items: seedNotifications()}
		store := newNotificationStoreUnderTest(t, backend)
		require.NoError(t, store.Refresh(context.Background(), "user-1"))

		backend.setFailWrite(true)

		require.Error(t, store.Delete(context.Background(), "notif-2"))

		items := store.Items()
		require.Len(t, items, 3)
		assert.Equal(t, "notif-2", items[1].ID)
	})
}

func TestNotificationStoreRollbackSkippedWhenSuperseded(t *testing.T) {
	t.Parallel()

	backend := &notificationBackend{items: seedNotifications()}
	store := newNotificationStoreUnderTest(t, backend)
	require.NoError(t, store.Refresh(context.Background(), "user-1"))

	// Take the pre-image of one mutation, then apply a second before
	// attempting the first one's rollback. The stale sequence stamp must
	// leave the newer state untouched.
	seq, preImage, _ := store.mutate(func(items []Notification) []Notification {
		items[0].IsRead = true
		return items
	})
	_, _, _ = store.mutate(func(items []Notification) []Notification {
		items[2].IsRead = true
		return items
	})

	store.rollback(context.Background(), seq, preImage, errors.New("late failure"))

	items := store.Items()
	assert.True(t, items[0].IsRead, "the superseding state survives")
	assert.True(t, items[2].IsRead)
	assert.Equal(t, 1, store.Stats().Unread)
}
