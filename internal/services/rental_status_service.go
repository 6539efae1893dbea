package services

import (
	"context"
	"errors"
	"time"

	"rentproof_backend/internal/logger"
	"rentproof_backend/internal/models"
	"rentproof_backend/internal/repositories"
	"rentproof_backend/internal/services/dto"
	"rentproof_backend/pkg/apperrors"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const defaultStatusWriteAttempts = 3

// RentalStatusService derives a rental's status from the evidence of both parties.
type RentalStatusService interface {
	// OnEvidenceUploaded recomputes the status for phase after an evidence write.
	// triggeredBy is stamped as started_by/ended_by when the phase completes.
	OnEvidenceUploaded(ctx context.Context, db *gorm.DB, rentalID string, phase models.Phase, triggeredBy string) (*dto.StatusResult, error)
}

type rentalStatusService struct {
	rentalRepo  repositories.RentalRepository
	evaluator   EvidenceEvaluator
	notifier    StatusNotifier
	locks       *rentalLocks
	maxAttempts int
	now         func() time.Time
}

func NewRentalStatusService(
	rentalRepo repositories.RentalRepository,
	evaluator EvidenceEvaluator,
	notifier StatusNotifier,
	maxAttempts int,
) RentalStatusService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultStatusWriteAttempts
	}
	return &rentalStatusService{
		rentalRepo:  rentalRepo,
		evaluator:   evaluator,
		notifier:    notifier,
		locks:       newRentalLocks(),
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

func (s *rentalStatusService) OnEvidenceUploaded(ctx context.Context, db *gorm.DB, rentalID string, phase models.Phase, triggeredBy string) (*dto.StatusResult, error) {
	if !phase.Valid() {
		return nil, apperrors.ErrInvalidPhase
	}

	unlock := s.locks.Lock(rentalID)
	defer unlock()

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		result, err := s.recompute(ctx, db, rentalID, phase, triggeredBy)
		if errors.Is(err, repositories.ErrStatusConflict) {
			logger.CtxWarn(ctx, "Rental status changed concurrently, recomputing",
				"rental_id", rentalID, "phase", phase, "attempt", attempt)
			continue
		}
		return result, err
	}

	logger.CtxError(ctx, "Rental status write attempts exhausted",
		"rental_id", rentalID, "phase", phase, "attempts", s.maxAttempts)
	return nil, apperrors.ErrStatusContention
}

// recompute performs one read-decide-write round. ErrStatusConflict is returned
// unwrapped so the caller can retry from a fresh read.
func (s *rentalStatusService) recompute(ctx context.Context, db *gorm.DB, rentalID string, phase models.Phase, triggeredBy string) (*dto.StatusResult, error) {
	rental, err := s.rentalRepo.FindByID(scoped(ctx, db), rentalID)
	if err != nil {
		if errors.Is(err, repositories.ErrRentalNotFound) {
			return nil, apperrors.ErrRentalNotFound
		}
		return nil, apperrors.DatabaseError(err)
	}
	if phase == models.PhaseReturn && rental.Status.Stage() < phase.Stage() {
		return nil, apperrors.ErrReturnBeforeStart
	}

	ownerDone, renterDone, err := s.evaluateParties(ctx, db, rentalID, phase)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	result := &dto.StatusResult{
		RentalID:   rentalID,
		Phase:      phase,
		Previous:   rental.Status,
		Status:     rental.Status,
		OwnerDone:  ownerDone,
		RenterDone: renterDone,
		Version:    rental.Version,
	}

	next, write := NextStatus(rental.Status, phase, ownerDone, renterDone)
	if write {
		if err := s.rentalRepo.SetStatus(scoped(ctx, db), rentalID, next, rental.Status); err != nil {
			if errors.Is(err, repositories.ErrStatusConflict) {
				return nil, err
			}
			return nil, apperrors.DatabaseError(err)
		}
		result.Status = next
		result.Changed = true
		result.Version = rental.Version + 1
		logger.CtxInfo(ctx, "Rental status changed",
			"rental_id", rentalID, "phase", phase, "from", rental.Status, "to", next)
		s.notifier.PublishStatus(ctx, StatusEvent{
			RentalID: rentalID,
			OwnerID:  rental.OwnerID,
			RenterID: rental.RenterID,
			Phase:    phase,
			From:     result.Previous,
			To:       result.Status,
			Version:  result.Version,
			At:       s.now(),
		})
	}

	// The stamp is written on the completing transition and repaired by any later
	// recompute that finds the phase complete but unstamped.
	if ownerDone && renterDone && result.Status.Stage() > phase.Stage() && rental.CompletionOf(phase) == nil {
		stamped, err := s.rentalRepo.StampCompletion(scoped(ctx, db), rentalID, phase, s.now(), triggeredBy)
		if err != nil {
			logger.CtxWithError(ctx, "Failed to stamp phase completion", err,
				"rental_id", rentalID, "phase", phase)
			return nil, apperrors.DatabaseError(err)
		}
		if stamped && !result.Changed {
			logger.CtxInfo(ctx, "Repaired missing completion stamp", "rental_id", rentalID, "phase", phase)
		}
	}

	return result, nil
}

func (s *rentalStatusService) evaluateParties(ctx context.Context, db *gorm.DB, rentalID string, phase models.Phase) (bool, bool, error) {
	var ownerDone, renterDone bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ownerDone, err = s.evaluator.Satisfied(gctx, db, rentalID, phase, models.PartyOwner)
		return err
	})
	g.Go(func() error {
		var err error
		renterDone, err = s.evaluator.Satisfied(gctx, db, rentalID, phase, models.PartyRenter)
		return err
	})
	if err := g.Wait(); err != nil {
		return false, false, err
	}
	return ownerDone, renterDone, nil
}
