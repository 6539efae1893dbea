package services

import (
	"context"

	"rentproof_backend/internal/pending"
)

// StatusWaiters completes long-poll requests parked on a rental.
type StatusWaiters struct {
	registry *pending.Registry[StatusEvent]
}

func NewStatusWaiters(registry *pending.Registry[StatusEvent]) *StatusWaiters {
	return &StatusWaiters{registry: registry}
}

func (w *StatusWaiters) PublishStatus(_ context.Context, event StatusEvent) {
	w.registry.DeliverTag(event.RentalID, event)
}
