package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"rentproof_backend/internal/models"
	"rentproof_backend/internal/repositories"
	"rentproof_backend/internal/services/dto"
	"rentproof_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// ReviewValidator checks who may review what and builds the record to persist.
// Checks run in a fixed order and the first failure is returned.
type ReviewValidator interface {
	ValidateAndBuild(ctx context.Context, db *gorm.DB, rentalID, reviewerID string, target dto.ReviewTarget, rating int, comment string) (*models.ReviewRecord, error)
}

type reviewValidator struct {
	rentalRepo repositories.RentalRepository
	now        func() time.Time
}

func NewReviewValidator(rentalRepo repositories.RentalRepository) ReviewValidator {
	return &reviewValidator{rentalRepo: rentalRepo, now: time.Now}
}

func (v *reviewValidator) ValidateAndBuild(ctx context.Context, db *gorm.DB, rentalID, reviewerID string, target dto.ReviewTarget, rating int, comment string) (*models.ReviewRecord, error) {
	rental, err := v.rentalRepo.FindByID(scoped(ctx, db), rentalID)
	if err != nil {
		if errors.Is(err, repositories.ErrRentalNotFound) {
			return nil, apperrors.ErrRentalNotFound
		}
		return nil, apperrors.DatabaseError(err)
	}

	switch target.Kind {
	case models.ReviewKindItem:
		if reviewerID != rental.RenterID {
			return nil, apperrors.ErrOnlyRenterRatesItem
		}
	case models.ReviewKindParty:
		switch target.Role {
		case models.RoleRatedAsOwner:
			if target.RevieweeID != rental.OwnerID {
				return nil, apperrors.ErrRevieweeNotOwner
			}
			if reviewerID != rental.RenterID {
				return nil, apperrors.ErrOnlyRenterRatesOwner
			}
		case models.RoleRatedAsRenter:
			if target.RevieweeID != rental.RenterID {
				return nil, apperrors.ErrRevieweeNotRenter
			}
			if reviewerID != rental.OwnerID {
				return nil, apperrors.ErrOnlyOwnerRatesRenter
			}
		default:
			return nil, apperrors.ErrInvalidReviewTarget
		}
	default:
		return nil, apperrors.ErrInvalidReviewTarget
	}

	if rating < 1 || rating > 5 {
		return nil, apperrors.ErrInvalidRating
	}

	var text *string
	if trimmed := strings.TrimSpace(comment); trimmed != "" {
		text = &trimmed
	}
	now := v.now()

	if target.Kind == models.ReviewKindItem {
		item := &models.ItemReview{
			RentalID:   rental.ID,
			GoodID:     rental.GoodID,
			ReviewerID: reviewerID,
			Rating:     rating,
			Comment:    text,
		}
		item.CreatedAt = now
		return &models.ReviewRecord{Kind: models.ReviewKindItem, Item: item}, nil
	}

	party := &models.PartyReview{
		RentalID:   rental.ID,
		ReviewerID: reviewerID,
		RevieweeID: target.RevieweeID,
		Role:       target.Role,
		Rating:     rating,
		Comment:    text,
	}
	party.CreatedAt = now
	return &models.ReviewRecord{Kind: models.ReviewKindParty, Party: party}, nil
}
