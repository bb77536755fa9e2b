package service

import (
	"context"
	"time"
)

// EventType names a domain event.
type EventType string

const (
	EventFavoriteAdded   EventType = "favorite.added"
	EventFavoriteRemoved EventType = "favorite.removed"
	EventAccountDeleted  EventType = "account.deleted"
)

// DomainEvent is published after the change it describes has been committed.
type DomainEvent struct {
	RequestID  string    `json:"request_id,omitempty"` // For distributed tracing
	EventID    string    `json:"event_id"`
	Type       EventType `json:"type"`
	UserID     string    `json:"user_id"`
	BookID     string    `json:"book_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// Publish sends the event. Callers treat failures as non-fatal.
	Publish(ctx context.Context, event *DomainEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
