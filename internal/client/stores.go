package client

import (
	"log/slog"
	"time"
)

// Observer is notified after a store's state changes. Implementations must
// not call back into the store synchronously while holding their own locks.
type Observer interface {
	StoreChanged()
}

func notifyAll(observers []Observer) {
	for _, observer := range observers {
		observer.StoreChanged()
	}
}

// Stores bundles the client-side state stores behind one explicit context
// object. There are no package-level singletons.
type Stores struct {
	Auth          *AuthStore
	Notifications *NotificationStore
	Board         *BoardStore
}

// NewStores builds the full store set around one API client.
func NewStores(api *Client, now func() time.Time, logger *slog.Logger) *Stores {
	return &Stores{
		Auth:          NewAuthStore(api, now, logger),
		Notifications: NewNotificationStore(api, logger),
		Board:         NewBoardStore(api, logger),
	}
}
