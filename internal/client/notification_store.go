package client

import (
	"context"
	"log/slog"
	"sync"
)

// NotificationStore caches one user's notifications. Mutations apply
// optimistically: the pre-image is kept with a sequence stamp and restored
// only if the API call fails and no newer mutation has superseded it.
type NotificationStore struct {
	client *Client
	logger *slog.Logger

	mu        sync.Mutex
	userID    string
	items     []Notification
	stats     NotificationStats
	seq       uint64
	observers []Observer
}

// NewNotificationStore wires a notification store around the API client.
func NewNotificationStore(client *Client, logger *slog.Logger) *NotificationStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationStore{client: client, logger: logger}
}

// Subscribe registers an observer notified on every state change.
func (s *NotificationStore) Subscribe(observer Observer) {
	if observer == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, observer)
	s.mu.Unlock()
}

// Refresh replaces the cache with the server's current list.
func (s *NotificationStore) Refresh(ctx context.Context, userID string) error {
	items, err := s.client.ListNotifications(ctx, userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.userID = userID
	s.items = items
	s.seq++
	s.recomputeStatsLocked()
	observers := s.snapshotObserversLocked()
	s.mu.Unlock()

	notifyAll(observers)
	return nil
}

// Items returns a copy of the cached notifications.
func (s *NotificationStore) Items() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Stats returns the counts derived from the cached list.
func (s *NotificationStore) Stats() NotificationStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// MarkRead optimistically marks one notification as read, then confirms with
// the server.
func (s *NotificationStore) MarkRead(ctx context.Context, id string) error {
	seq, preImage, observers := s.mutate(func(items []Notification) []Notification {
		for i := range items {
			if items[i].ID == id {
				items[i].IsRead = true
			}
		}
		return items
	})
	notifyAll(observers)

	_, err := s.client.MarkNotificationRead(ctx, id)
	if err != nil {
		s.rollback(ctx, seq, preImage, err)
	}
	return err
}

// MarkAllRead optimistically marks everything read, then confirms with the
// server.
func (s *NotificationStore) MarkAllRead(ctx context.Context) error {
	s.mu.Lock()
	userID := s.userID
	s.mu.Unlock()

	seq, preImage, observers := s.mutate(func(items []Notification) []Notification {
		for i := range items {
			items[i].IsRead = true
		}
		return items
	})
	notifyAll(observers)

	err := s.client.MarkAllNotificationsRead(ctx, userID)
	if err != nil {
		s.rollback(ctx, seq, preImage, err)
	}
	return err
}

// Delete optimistically removes one notification, then confirms with the
// server.
func (s *NotificationStore) Delete(ctx context.Context, id string) error {
	seq, preImage, observers := s.mutate(func(items []Notification) []Notification {
		out := items[:0]
		for _, item := range items {
			if item.ID != id {
				out = append(out, item)
			}
		}
		return out
	})
	notifyAll(observers)

	err := s.client.DeleteNotification(ctx, id)
	if err != nil {
		s.rollback(ctx, seq, preImage, err)
	}
	return err
}

// mutate applies an optimistic change and returns the mutation's sequence
// stamp plus the pre-image needed to undo it.
func (s *NotificationStore) mutate(apply func([]Notification) []Notification) (uint64, []Notification, []Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	preImage := make([]Notification, len(s.items))
	copy(preImage, s.items)

	working := make([]Notification, len(s.items))
	copy(working, s.items)
	s.items = apply(working)

	s.seq++
	s.recomputeStatsLocked()
	return s.seq, preImage, s.snapshotObserversLocked()
}

// rollback restores the pre-image unless a newer mutation already replaced
// the optimistic state.
func (s *NotificationStore) rollback(ctx context.Context, seq uint64, preImage []Notification, cause error) {
	s.mu.Lock()
	if s.seq != seq {
		s.mu.Unlock()
		s.logger.WarnContext(ctx, "skipping rollback, state superseded", "error", cause)
		return
	}
	s.items = preImage
	s.seq++
	s.recomputeStatsLocked()
	observers := s.snapshotObserversLocked()
	s.mu.Unlock()

	s.logger.WarnContext(ctx, "optimistic update rolled back", "error", cause)
	notifyAll(observers)
}

// recomputeStatsLocked rebuilds the counters from the full slice.
func (s *NotificationStore) recomputeStatsLocked() {
	stats := NotificationStats{
		ByCategory: make(map[string]int),
		ByType:     make(map[string]int),
	}
	for _, item := range s.items {
		stats.Total++
		if !item.IsRead {
			stats.Unread++
		}
		stats.ByCategory[item.Category]++
		stats.ByType[item.Type]++
	}
	s.stats = stats
}

func (s *NotificationStore) snapshotObserversLocked() []Observer {
	out := make([]Observer, len(s.observers))
	copy(out, s.observers)
	return out
}
