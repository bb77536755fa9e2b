package pubsub

import "booklib/internal/domain/service"

// eventAttributes builds the message attributes subscribers filter on.
func eventAttributes(event *service.DomainEvent) map[string]string {
	attributes := map[string]string{
		"event_id":   event.EventID,
		"event_type": string(event.Type),
		"user_id":    event.UserID,
	}
	if event.BookID != "" {
		attributes["book_id"] = event.BookID
	}
	if event.RequestID != "" {
		attributes["request_id"] = event.RequestID
	}

	return attributes
}
