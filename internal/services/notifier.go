package services

import (
	"context"
	"time"

	"rentproof_backend/internal/models"
)

// StatusEvent is published after every successful status write.
type StatusEvent struct {
	RentalID string              `json:"rental_id"`
	OwnerID  string              `json:"owner_id"`
	RenterID string              `json:"renter_id"`
	Phase    models.Phase        `json:"phase"`
	From     models.RentalStatus `json:"from"`
	To       models.RentalStatus `json:"to"`
	Version  int64               `json:"version"`
	At       time.Time           `json:"at"`
}

// StatusNotifier must not block: it is called while the rental lock is held.
type StatusNotifier interface {
	PublishStatus(ctx context.Context, event StatusEvent)
}

type nopNotifier struct{}

func (nopNotifier) PublishStatus(context.Context, StatusEvent) {}

// Notifiers fans one event out to every non-nil notifier.
type Notifiers []StatusNotifier

func (n Notifiers) PublishStatus(ctx context.Context, event StatusEvent) {
	for _, notifier := range n {
		if notifier != nil {
			notifier.PublishStatus(ctx, event)
		}
	}
}
