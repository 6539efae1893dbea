package services

import (
	"context"
	"errors"

	"rentproof_backend/internal/logger"
	"rentproof_backend/internal/models"
	"rentproof_backend/internal/repositories"
	"rentproof_backend/internal/services/dto"
	"rentproof_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// ReviewGate decides which reviews a party is prompted for after the return
// hand-off and records them one step at a time.
//
// The renter rates the item and then the owner; the owner rates the renter.
// Self-rentals get no reviews. Progress is derived from the stored reviews, so a
// flow can be resumed from any instance.
type ReviewGate interface {
	Evaluate(ctx context.Context, db *gorm.DB, rentalID string, phase models.Phase, triggering models.Party) (*dto.FlowDecision, error)
	Submit(ctx context.Context, db *gorm.DB, rentalID, reviewerID string, target dto.ReviewTarget, rating int, comment string) (*dto.StepOutcome, error)
}

type reviewGate struct {
	rentalRepo repositories.RentalRepository
	reviewRepo repositories.ReviewRepository
	evaluator  EvidenceEvaluator
	validator  ReviewValidator
}

func NewReviewGate(
	rentalRepo repositories.RentalRepository,
	reviewRepo repositories.ReviewRepository,
	evaluator EvidenceEvaluator,
	validator ReviewValidator,
) ReviewGate {
	return &reviewGate{
		rentalRepo: rentalRepo,
		reviewRepo: reviewRepo,
		evaluator:  evaluator,
		validator:  validator,
	}
}

func (g *reviewGate) Evaluate(ctx context.Context, db *gorm.DB, rentalID string, phase models.Phase, triggering models.Party) (*dto.FlowDecision, error) {
	if !phase.Valid() {
		return nil, apperrors.ErrInvalidPhase
	}
	decision := &dto.FlowDecision{RentalID: rentalID, Flow: dto.FlowNone}
	if phase != models.PhaseReturn {
		decision.SkipReason = dto.SkipNotReturnPhase
		return decision, nil
	}
	if !triggering.Valid() {
		return nil, apperrors.ErrInvalidParty
	}

	rental, err := g.loadRental(ctx, db, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.IsSelfRental() {
		decision.SkipReason = dto.SkipSelfRental
		return decision, nil
	}

	open, err := g.reviewsOpen(ctx, db, rental, triggering)
	if err != nil {
		return nil, err
	}
	if !open {
		decision.SkipReason = dto.SkipEvidencePending
		return decision, nil
	}

	decision.Flow, decision.Steps = flowFor(rental, triggering)
	if err := g.markDone(ctx, db, rentalID, decision.Steps); err != nil {
		return nil, err
	}
	decision.Next = firstPending(decision.Steps)
	return decision, nil
}

func (g *reviewGate) Submit(ctx context.Context, db *gorm.DB, rentalID, reviewerID string, target dto.ReviewTarget, rating int, comment string) (*dto.StepOutcome, error) {
	record, err := g.validator.ValidateAndBuild(ctx, db, rentalID, reviewerID, target, rating, comment)
	if err != nil {
		return nil, err
	}

	rental, err := g.loadRental(ctx, db, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.IsSelfRental() {
		return nil, apperrors.ErrSelfRentalReview
	}

	// The validator already pinned the reviewer to the party this target belongs to.
	reviewer := models.PartyRenter
	if target.Kind == models.ReviewKindParty && target.Role == models.RoleRatedAsRenter {
		reviewer = models.PartyOwner
	}

	open, err := g.reviewsOpen(ctx, db, rental, reviewer)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, apperrors.ErrReviewsNotOpen
	}

	if target.Kind == models.ReviewKindParty && target.Role == models.RoleRatedAsOwner {
		rated, err := g.reviewRepo.HasItemReview(scoped(ctx, db), rentalID, reviewerID)
		if err != nil {
			return nil, apperrors.DatabaseError(err)
		}
		if !rated {
			return nil, apperrors.ErrItemReviewFirst
		}
	}

	outcome := &dto.StepOutcome{}
	err = g.reviewRepo.InsertReview(scoped(ctx, db), record)
	switch {
	case errors.Is(err, repositories.ErrDuplicateReview):
		logger.CtxInfo(ctx, "Review already recorded, advancing",
			"rental_id", rentalID, "kind", target.Kind, "role", target.Role)
		outcome.AlreadyRecorded = true
	case err != nil:
		return nil, apperrors.DatabaseError(err)
	default:
		logger.CtxInfo(ctx, "Review recorded",
			"rental_id", rentalID, "kind", target.Kind, "role", target.Role, "rating", rating)
		outcome.Record = &dto.ReviewRecordResponse{Kind: record.Kind, Item: record.Item, Party: record.Party}
	}

	_, steps := flowFor(rental, reviewer)
	if err := g.markDone(ctx, db, rentalID, steps); err != nil {
		return nil, err
	}
	outcome.Next = firstPending(steps)
	outcome.FlowDone = outcome.Next == nil
	return outcome, nil
}

func (g *reviewGate) loadRental(ctx context.Context, db *gorm.DB, rentalID string) (*models.Rental, error) {
	rental, err := g.rentalRepo.FindByID(scoped(ctx, db), rentalID)
	if err != nil {
		if errors.Is(err, repositories.ErrRentalNotFound) {
			return nil, apperrors.ErrRentalNotFound
		}
		return nil, apperrors.DatabaseError(err)
	}
	return rental, nil
}

// reviewsOpen: a party may review once its own return evidence is complete.
func (g *reviewGate) reviewsOpen(ctx context.Context, db *gorm.DB, rental *models.Rental, party models.Party) (bool, error) {
	if rental.Status.IsTerminal() {
		return true, nil
	}
	if rental.Status.Stage() < models.PhaseReturn.Stage() {
		return false, nil
	}
	done, err := g.evaluator.Satisfied(ctx, db, rental.ID, models.PhaseReturn, party)
	if err != nil {
		return false, apperrors.DatabaseError(err)
	}
	return done, nil
}

func (g *reviewGate) markDone(ctx context.Context, db *gorm.DB, rentalID string, steps []dto.ReviewStep) error {
	for i := range steps {
		var (
			done bool
			err  error
		)
		step := &steps[i]
		switch step.Target.Kind {
		case models.ReviewKindItem:
			done, err = g.reviewRepo.HasItemReview(scoped(ctx, db), rentalID, step.ReviewerID)
		case models.ReviewKindParty:
			done, err = g.reviewRepo.HasPartyReview(scoped(ctx, db), rentalID, step.ReviewerID, step.Target.Role)
		}
		if err != nil {
			return apperrors.DatabaseError(err)
		}
		step.Done = done
	}
	return nil
}

// flowFor lists the review steps of one party in the order they are asked.
func flowFor(rental *models.Rental, party models.Party) (dto.FlowKind, []dto.ReviewStep) {
	switch party {
	case models.PartyRenter:
		return dto.FlowRenter, []dto.ReviewStep{
			{Index: 0, ReviewerID: rental.RenterID, Target: dto.ReviewTarget{Kind: models.ReviewKindItem}},
			{Index: 1, ReviewerID: rental.RenterID, Target: dto.ReviewTarget{
				Kind: models.ReviewKindParty, Role: models.RoleRatedAsOwner, RevieweeID: rental.OwnerID,
			}},
		}
	case models.PartyOwner:
		return dto.FlowOwner, []dto.ReviewStep{
			{Index: 0, ReviewerID: rental.OwnerID, Target: dto.ReviewTarget{
				Kind: models.ReviewKindParty, Role: models.RoleRatedAsRenter, RevieweeID: rental.RenterID,
			}},
		}
	}
	panic("services: unknown party " + string(party))
}

func firstPending(steps []dto.ReviewStep) *dto.ReviewStep {
	for i := range steps {
		if !steps[i].Done {
			step := steps[i]
			return &step
		}
	}
	return nil
}
