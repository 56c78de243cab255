// Package notify defines the notifications surfaced to the user as banners
// and kept in the notification history.
package notify

import (
	"context"
	"time"
)

// Level represents the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification represents a single notification event.
type Notification struct {
	ID        int64 // assigned by the store, zero until saved
	Level     Level
	Message   string
	CreatedAt time.Time
}

// New creates a notification stamped with the current time.
func New(level Level, message string) Notification {
	return Notification{Level: level, Message: message, CreatedAt: time.Now()}
}

// Store persists notification history.
type Store interface {
	Save(ctx context.Context, n Notification) (int64, error)
	// List returns up to limit notifications, newest first. A limit below 1
	// returns all of them.
	List(ctx context.Context, limit int) ([]Notification, error)
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}
