package services

import (
	"context"
	"errors"

	"rentproof_backend/internal/models"
	"rentproof_backend/internal/repositories"
	"rentproof_backend/internal/services/dto"
	"rentproof_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type ReviewService interface {
	// OnReturnPhaseActorFinished returns the review flow for the party that just
	// finished its return evidence.
	OnReturnPhaseActorFinished(ctx context.Context, db *gorm.DB, rentalID string, triggering models.Party) (*dto.FlowDecision, error)
	// StartFlow resolves the caller's party first. hint is only needed for self-rentals.
	StartFlow(ctx context.Context, db *gorm.DB, callerID, rentalID string, hint models.Party) (*dto.FlowDecision, error)
	SubmitReview(ctx context.Context, db *gorm.DB, rentalID, reviewerID string, req *dto.SubmitReviewRequest) (*dto.StepOutcome, error)

	// Rating operations
	GetGoodTotals(ctx context.Context, db *gorm.DB, goodID string) (*models.ReviewTotals, error)
	GetPartyTotals(ctx context.Context, db *gorm.DB, partyID string, role models.PartyRole) (*models.ReviewTotals, error)
}

type reviewService struct {
	rentalRepo repositories.RentalRepository
	reviewRepo repositories.ReviewRepository
	gate       ReviewGate
}

func NewReviewService(
	rentalRepo repositories.RentalRepository,
	reviewRepo repositories.ReviewRepository,
	gate ReviewGate,
) ReviewService {
	return &reviewService{
		rentalRepo: rentalRepo,
		reviewRepo: reviewRepo,
		gate:       gate,
	}
}

func (s *reviewService) OnReturnPhaseActorFinished(ctx context.Context, db *gorm.DB, rentalID string, triggering models.Party) (*dto.FlowDecision, error) {
	return s.gate.Evaluate(ctx, db, rentalID, models.PhaseReturn, triggering)
}

func (s *reviewService) StartFlow(ctx context.Context, db *gorm.DB, callerID, rentalID string, hint models.Party) (*dto.FlowDecision, error) {
	rental, err := s.rentalRepo.FindByID(scoped(ctx, db), rentalID)
	if err != nil {
		if errors.Is(err, repositories.ErrRentalNotFound) {
			return nil, apperrors.ErrRentalNotFound
		}
		return nil, apperrors.DatabaseError(err)
	}

	// A self-rental never gets a flow, so its owner needs no hint.
	if rental.IsSelfRental() && rental.OwnerID == callerID && hint == "" {
		hint = models.PartyRenter
	}
	party, err := resolveParty(rental, callerID, hint)
	if err != nil {
		return nil, err
	}
	return s.OnReturnPhaseActorFinished(ctx, db, rentalID, party)
}

func (s *reviewService) SubmitReview(ctx context.Context, db *gorm.DB, rentalID, reviewerID string, req *dto.SubmitReviewRequest) (*dto.StepOutcome, error) {
	return s.gate.Submit(ctx, db, rentalID, reviewerID, req.ReviewTarget, req.Rating, req.Comment)
}

func (s *reviewService) GetGoodTotals(ctx context.Context, db *gorm.DB, goodID string) (*models.ReviewTotals, error) {
	totals, err := s.reviewRepo.GoodTotals(scoped(ctx, db), goodID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return totals, nil
}

func (s *reviewService) GetPartyTotals(ctx context.Context, db *gorm.DB, partyID string, role models.PartyRole) (*models.ReviewTotals, error) {
	if !role.Valid() {
		return nil, apperrors.ErrInvalidReviewTarget
	}
	totals, err := s.reviewRepo.PartyTotals(scoped(ctx, db), partyID, role)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return totals, nil
}
