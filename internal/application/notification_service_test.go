package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/talentflow/internal/persistence"
)

func TestNotificationService_CreateNotification(t *testing.T) {
	t.Parallel()

	users := func() *userRepoStub {
		return newUserRepoStub(persistence.User{ID: "user-1", Email: "alex@example.com", Name: "Alex Morgan", IsActive: true})
	}

	t.Run("persists a notification with defaults applied", func(t *testing.T) {
		t.Parallel()

		repo := newNotificationRepoStub()
		svc := NewNotificationService(repo, users(), sequenceIDs("notif-1"), fixedNow, nil)

		notification, err := svc.CreateNotification(context.Background(), CreateNotificationParams{
			UserID:  "user-1",
			Title:   "Pipeline update",
			Message: "A candidate moved to tech",
		})
		require.NoError(t, err)

		assert.Equal(t, "notif-1", notification.ID)
		assert.Equal(t, NotificationInfo, notification.Type)
		assert.Equal(t, CategorySystem, notification.Category)
		assert.False(t, notification.IsRead)
		assert.Equal(t, fixedNow(), notification.CreatedAt)
	})

	t.Run("rejects unknown types and categories", func(t *testing.T) {
		t.Parallel()

		svc := NewNotificationService(newNotificationRepoStub(), users(), sequenceIDs(), fixedNow, nil)

		_, err := svc.CreateNotification(context.Background(), CreateNotificationParams{
			UserID:   "user-1",
			Type:     "loud",
			Category: "misc",
			Title:    "t",
			Message:  "m",
		})

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.FieldErrors, "type")
		assert.Contains(t, vErr.FieldErrors, "category")
	})

	t.Run("rejects a recipient that does not exist", func(t *testing.T) {
		t.Parallel()

		svc := NewNotificationService(newNotificationRepoStub(), newUserRepoStub(), sequenceIDs(), fixedNow, nil)

		_, err := svc.CreateNotification(context.Background(), CreateNotificationParams{
			UserID:  "ghost",
			Title:   "t",
			Message: "m",
		})

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "user does not exist", vErr.FieldErrors["userId"])
	})
}

func TestNotificationService_ListNotifications(t *testing.T) {
	t.Parallel()

	t.Run("requires a user id", func(t *testing.T) {
		t.Parallel()

		svc := NewNotificationService(newNotificationRepoStub(), newUserRepoStub(), sequenceIDs(), fixedNow, nil)

		_, err := svc.ListNotifications(context.Background(), ListNotificationsParams{})

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.FieldErrors, "userId")
	})

	t.Run("filters unread notifications", func(t *testing.T) {
		t.Parallel()

		repo := newNotificationRepoStub(
			persistence.Notification{ID: "notif-1", UserID: "user-1", IsRead: false},
			persistence.Notification{ID: "notif-2", UserID: "user-1", IsRead: true},
			persistence.Notification{ID: "notif-3", UserID: "other", IsRead: false},
		)
		svc := NewNotificationService(repo, newUserRepoStub(), sequenceIDs(), fixedNow, nil)

		unread := true
		page, err := svc.ListNotifications(context.Background(), ListNotificationsParams{UserID: "user-1", Unread: &unread})
		require.NoError(t, err)
		require.Len(t, page.Notifications, 1)
		assert.Equal(t, "notif-1", page.Notifications[0].ID)
		assert.Equal(t, DefaultNotificationPageSize, page.PageSize)
	})
}

func TestNotificationService_MarkRead(t *testing.T) {
	t.Parallel()

	t.Run("marks a notification as read", func(t *testing.T) {
		t.Parallel()

		repo := newNotificationRepoStub(persistence.Notification{ID: "notif-1", UserID: "user-1"})
		svc := NewNotificationService(repo, newUserRepoStub(), sequenceIDs(), fixedNow, nil)

		notification, err := svc.MarkRead(context.Background(), "notif-1")
		require.NoError(t, err)
		assert.True(t, notification.IsRead)
	})

	t.Run("returns ErrNotFound when missing", func(t *testing.T) {
		t.Parallel()

		svc := NewNotificationService(newNotificationRepoStub(), newUserRepoStub(), sequenceIDs(), fixedNow, nil)
		_, err := svc.MarkRead(context.Background(), "ghost")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	t.Parallel()

	repo := newNotificationRepoStub(
		persistence.Notification{ID: "notif-1", UserID: "user-1"},
		persistence.Notification{ID: "notif-2", UserID: "user-1"},
		persistence.Notification{ID: "notif-3", UserID: "user-1", IsRead: true},
		persistence.Notification{ID: "notif-4", UserID: "other"},
	)
	svc := NewNotificationService(repo, newUserRepoStub(), sequenceIDs(), fixedNow, nil)

	affected, err := svc.MarkAllRead(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, affected)
}

func TestNotificationService_NotifyMentions(t *testing.T) {
	t.Parallel()

	candidate := persistence.Candidate{ID: "cand-1", Name: "Jordan Reyes"}
	note := persistence.Note{ID: "note-1", Author: "Alex Morgan"}

	t.Run("delivers one notification per resolved user", func(t *testing.T) {
		t.Parallel()

		users := newUserRepoStub(
			persistence.User{ID: "user-1", Name: "Priya Nair", Email: "priya.nair@example.com", IsActive: true},
			persistence.User{ID: "user-2", Name: "Sam Ortiz", Email: "sam.ortiz@example.com", IsActive: true},
		)
		repo := newNotificationRepoStub()
		svc := NewNotificationService(repo, users, sequenceIDs("notif-1", "notif-2"), fixedNow, nil)

		svc.NotifyMentions(context.Background(), []string{"priya.nair", "sam.ortiz"}, candidate, note)

		require.Len(t, repo.notifications, 2)
		delivered := repo.notifications["notif-1"]
		assert.Equal(t, CategoryCandidate, delivered.Category)
		assert.Equal(t, "You were mentioned in a note", delivered.Title)
		assert.Equal(t, "Alex Morgan mentioned you in a note on Jordan Reyes", delivered.Message)
		require.NotNil(t, delivered.ActionURL)
		assert.Equal(t, "/candidates/cand-1", *delivered.ActionURL)
		assert.Equal(t, map[string]any{"candidate_id": "cand-1", "note_id": "note-1"}, delivered.Metadata)
	})

	t.Run("skips inactive users", func(t *testing.T) {
		t.Parallel()

		users := newUserRepoStub(persistence.User{ID: "user-1", Name: "Priya Nair", Email: "priya.nair@example.com", IsActive: false})
		repo := newNotificationRepoStub()
		svc := NewNotificationService(repo, users, sequenceIDs("notif-1"), fixedNow, nil)

		svc.NotifyMentions(context.Background(), []string{"priya.nair"}, candidate, note)
		assert.Empty(t, repo.notifications)
	})

	t.Run("notifies a user once across overlapping tokens", func(t *testing.T) {
		t.Parallel()

		users := newUserRepoStub(persistence.User{ID: "user-1", Name: "Priya Nair", Email: "priya.nair@example.com", IsActive: true})
		repo := newNotificationRepoStub()
		svc := NewNotificationService(repo, users, sequenceIDs("notif-1", "notif-2"), fixedNow, nil)

		svc.NotifyMentions(context.Background(), []string{"priya.nair", "priya"}, candidate, note)
		assert.Len(t, repo.notifications, 1)
	})

	t.Run("swallows directory lookup failures", func(t *testing.T) {
		t.Parallel()

		users := newUserRepoStub()
		users.listErr = persistence.ErrNotFound
		repo := newNotificationRepoStub()
		svc := NewNotificationService(repo, users, sequenceIDs(), fixedNow, nil)

		svc.NotifyMentions(context.Background(), []string{"anyone"}, candidate, note)
		assert.Empty(t, repo.notifications)
	})
}
