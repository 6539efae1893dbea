package services

import (
	"context"
	"errors"
	"time"

	"rentproof_backend/internal/logger"
	"rentproof_backend/internal/models"
	"rentproof_backend/internal/pending"
	"rentproof_backend/internal/repositories"
	"rentproof_backend/internal/services/dto"
	"rentproof_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type RentalService interface {
	CreateRental(ctx context.Context, db *gorm.DB, req *dto.CreateRentalRequest) (*models.Rental, error)
	GetRental(ctx context.Context, db *gorm.DB, requesterID, rentalID string) (*dto.RentalResponse, error)

	// CompletePhase re-runs the status recomputation for a phase on behalf of a party.
	// Clients call it after an upload answered with status_pending.
	CompletePhase(ctx context.Context, db *gorm.DB, requesterID, rentalID string, phase models.Phase) (*dto.StatusResult, error)

	// WaitForStatus blocks until the rental leaves since, or until timeout.
	WaitForStatus(ctx context.Context, db *gorm.DB, requesterID, rentalID string, since models.RentalStatus, timeout time.Duration) (*dto.WaitStatusResponse, error)
}

type rentalService struct {
	rentalRepo   repositories.RentalRepository
	evaluator    EvidenceEvaluator
	statusEngine RentalStatusService
	waiters      *pending.Registry[StatusEvent]
	maxWait      time.Duration
}

func NewRentalService(
	rentalRepo repositories.RentalRepository,
	evaluator EvidenceEvaluator,
	statusEngine RentalStatusService,
	waiters *pending.Registry[StatusEvent],
	maxWait time.Duration,
) RentalService {
	return &rentalService{
		rentalRepo:   rentalRepo,
		evaluator:    evaluator,
		statusEngine: statusEngine,
		waiters:      waiters,
		maxWait:      maxWait,
	}
}

func (s *rentalService) CreateRental(ctx context.Context, db *gorm.DB, req *dto.CreateRentalRequest) (*models.Rental, error) {
	rental := &models.Rental{
		GoodID:   req.GoodID,
		OwnerID:  req.OwnerID,
		RenterID: req.RenterID,
		Status:   models.RentalStatusConfirmed,
	}
	if err := s.rentalRepo.Create(scoped(ctx, db), rental); err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	logger.CtxInfo(ctx, "Rental created", "rental_id", rental.ID, "good_id", rental.GoodID, "self_rental", rental.IsSelfRental())
	return rental, nil
}

func (s *rentalService) GetRental(ctx context.Context, db *gorm.DB, requesterID, rentalID string) (*dto.RentalResponse, error) {
	rental, err := s.partyRental(ctx, db, requesterID, rentalID)
	if err != nil {
		return nil, err
	}

	resp := &dto.RentalResponse{Rental: rental, Progress: make(map[models.Phase]dto.PhaseProgress, len(models.Phases))}
	for _, phase := range models.Phases {
		var progress dto.PhaseProgress
		if progress.Owner, err = s.evaluator.Progress(ctx, db, rentalID, phase, models.PartyOwner); err != nil {
			return nil, apperrors.DatabaseError(err)
		}
		if progress.Renter, err = s.evaluator.Progress(ctx, db, rentalID, phase, models.PartyRenter); err != nil {
			return nil, apperrors.DatabaseError(err)
		}
		resp.Progress[phase] = progress
	}
	return resp, nil
}

func (s *rentalService) CompletePhase(ctx context.Context, db *gorm.DB, requesterID, rentalID string, phase models.Phase) (*dto.StatusResult, error) {
	if !phase.Valid() {
		return nil, apperrors.ErrInvalidPhase
	}
	if _, err := s.partyRental(ctx, db, requesterID, rentalID); err != nil {
		return nil, err
	}
	return s.statusEngine.OnEvidenceUploaded(ctx, db, rentalID, phase, requesterID)
}

func (s *rentalService) WaitForStatus(ctx context.Context, db *gorm.DB, requesterID, rentalID string, since models.RentalStatus, timeout time.Duration) (*dto.WaitStatusResponse, error) {
	if since != "" && !since.Valid() {
		return nil, apperrors.NewBadRequestError("Unknown rental status")
	}
	if timeout <= 0 || (s.maxWait > 0 && timeout > s.maxWait) {
		timeout = s.maxWait
	}

	// Register before reading so a change between the read and the wait is not lost.
	id, ch := s.waiters.Register(rentalID, timeout)
	defer s.waiters.Cancel(id)
	ctx = logger.WithCorrelationID(ctx, id)

	rental, err := s.partyRental(ctx, db, requesterID, rentalID)
	if err != nil {
		return nil, err
	}
	resp := &dto.WaitStatusResponse{RentalID: rentalID, Status: rental.Status}
	if since == "" || rental.Status != since {
		resp.Changed = since != ""
		return resp, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case event, ok := <-ch:
		if ok {
			resp.Status = event.To
			resp.Changed = event.To != since
			return resp, nil
		}
		resp.TimedOut = true
	case <-timer.C:
		resp.TimedOut = true
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	logger.CtxDebug(ctx, "Status wait ended without event", "rental_id", rentalID, "since", since)

	// Another instance may have written the status; report what the row says now.
	if latest, err := s.rentalRepo.FindByID(scoped(ctx, db), rentalID); err == nil {
		resp.Status = latest.Status
		resp.Changed = latest.Status != since
	}
	return resp, nil
}

// partyRental loads a rental the requester participates in.
func (s *rentalService) partyRental(ctx context.Context, db *gorm.DB, requesterID, rentalID string) (*models.Rental, error) {
	rental, err := s.rentalRepo.FindByID(scoped(ctx, db), rentalID)
	if err != nil {
		if errors.Is(err, repositories.ErrRentalNotFound) {
			return nil, apperrors.ErrRentalNotFound
		}
		return nil, apperrors.DatabaseError(err)
	}
	if len(rental.PartiesOf(requesterID)) == 0 {
		return nil, apperrors.ErrNotRentalParty
	}
	return rental, nil
}
