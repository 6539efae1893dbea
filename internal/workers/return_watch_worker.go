package workers

import (
	"context"
	"time"

	"rentproof_backend/internal/logger"
	"rentproof_backend/internal/repositories"

	"gorm.io/gorm"
)

const (
	returnWatchWorker     = "return_watch"
	returnWatchBatch      = 100
	returnWatchMaxBatches = 10 // за один тик
)

// ReturnWatchWorker помечает аренды, застрявшие на этапе возврата.
// It only stamps escalated_at; the rental status is left untouched.
type ReturnWatchWorker struct {
	db         *gorm.DB
	rentalRepo repositories.RentalRepository
	after      time.Duration
	interval   time.Duration
	now        func() time.Time
}

func NewReturnWatchWorker(db *gorm.DB, rentalRepo repositories.RentalRepository, after, interval time.Duration) *ReturnWatchWorker {
	return &ReturnWatchWorker{
		db:         db,
		rentalRepo: rentalRepo,
		after:      after,
		interval:   interval,
		now:        time.Now,
	}
}

// Start запускает проверку в фоне
func (w *ReturnWatchWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *ReturnWatchWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Return watch worker stopped")
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick escalates every overdue rental, one batch after another. Returns how many were marked.
func (w *ReturnWatchWorker) Tick(ctx context.Context) int {
	now := w.now()
	cutoff := now.Add(-w.after)
	marked := 0

	for batch := 0; batch < returnWatchMaxBatches; batch++ {
		if ctx.Err() != nil {
			return marked
		}
		rentals, err := w.rentalRepo.FindUnescalatedReturnStage(w.scoped(ctx), cutoff, returnWatchBatch)
		if err != nil {
			logger.WorkerLog(returnWatchWorker, "find_overdue", err)
			return marked
		}

		for i := range rentals {
			rental := &rentals[i]
			if err := w.rentalRepo.MarkEscalated(w.scoped(ctx), rental.ID, now); err != nil {
				logger.WorkerLog(returnWatchWorker, "mark_escalated", err, "rental_id", rental.ID)
				return marked
			}
			marked++
			logger.Warn("Rental return overdue",
				"rental_id", rental.ID,
				"status", rental.Status,
				"started_at", rental.StartedAt,
				"owner_id", rental.OwnerID,
				"renter_id", rental.RenterID,
			)
		}

		if len(rentals) < returnWatchBatch {
			break
		}
	}

	if marked > 0 {
		logger.WorkerLog(returnWatchWorker, "escalate", nil, "marked", marked)
	}
	return marked
}

func (w *ReturnWatchWorker) scoped(ctx context.Context) *gorm.DB {
	if w.db == nil {
		return nil
	}
	return w.db.WithContext(ctx)
}
