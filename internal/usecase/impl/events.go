package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "booklib/internal/delivery/context"
	"booklib/internal/domain/service"

	"github.com/google/uuid"
)

const publishTimeout = 5 * time.Second

// eventEmitter publishes domain events after commit. Failures are logged and dropped.
type eventEmitter struct {
	publisher service.EventPublisher
	clock     service.Clock
	logger    *slog.Logger
}

func (e *eventEmitter) emit(ctx context.Context, eventType service.EventType, userID uuid.UUID, bookID string) {
	event := &service.DomainEvent{
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		EventID:    uuid.NewString(),
		Type:       eventType,
		UserID:     userID.String(),
		BookID:     bookID,
		OccurredAt: e.clock.Now().UTC(),
	}

	// The change is already committed; a canceled request must not drop the event.
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := e.publisher.Publish(publishCtx, event); err != nil {
		deliverycontext.GetLoggerOrDefault(ctx, e.logger).Warn("Failed to publish event",
			slog.String("event_type", string(eventType)),
			slog.String("event_id", event.EventID),
			slog.Any("error", err),
		)
	}
}
