package services

import (
	"context"
	"testing"

	"rentproof_backend/internal/models"
	"rentproof_backend/internal/services/dto"
	"rentproof_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	itemTarget        = dto.ReviewTarget{Kind: models.ReviewKindItem}
	ownerAsOwner      = dto.ReviewTarget{Kind: models.ReviewKindParty, Role: models.RoleRatedAsOwner, RevieweeID: ownerID}
	renterAsRenter    = dto.ReviewTarget{Kind: models.ReviewKindParty, Role: models.RoleRatedAsRenter, RevieweeID: renterID}
	renterAsOwnerRole = dto.ReviewTarget{Kind: models.ReviewKindParty, Role: models.RoleRatedAsOwner, RevieweeID: renterID}
)

func TestValidateAndBuild_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		rental   string
		reviewer string
		target   dto.ReviewTarget
		rating   int
		want     error
	}{
		{"rental missing", "missing", renterID, itemTarget, 5, apperrors.ErrRentalNotFound},
		{"owner rates item", rentalID, ownerID, itemTarget, 5, apperrors.ErrOnlyRenterRatesItem},
		{"outsider rates item", rentalID, outsider, itemTarget, 5, apperrors.ErrOnlyRenterRatesItem},
		{"owner review names the renter", rentalID, renterID, renterAsOwnerRole, 5, apperrors.ErrRevieweeNotOwner},
		{"owner rates themselves as owner", rentalID, ownerID, ownerAsOwner, 5, apperrors.ErrOnlyRenterRatesOwner},
		{"renter review names the owner", rentalID, ownerID, dto.ReviewTarget{Kind: models.ReviewKindParty, Role: models.RoleRatedAsRenter, RevieweeID: ownerID}, 5, apperrors.ErrRevieweeNotRenter},
		{"renter rates themselves as renter", rentalID, renterID, renterAsRenter, 5, apperrors.ErrOnlyOwnerRatesRenter},
		{"unknown role", rentalID, renterID, dto.ReviewTarget{Kind: models.ReviewKindParty, Role: "rated_as_guest"}, 5, apperrors.ErrInvalidReviewTarget},
		{"unknown kind", rentalID, renterID, dto.ReviewTarget{Kind: "product"}, 5, apperrors.ErrInvalidReviewTarget},
		{"rating zero", rentalID, renterID, itemTarget, 0, apperrors.ErrInvalidRating},
		{"rating six", rentalID, ownerID, renterAsRenter, 6, apperrors.ErrInvalidRating},
		// the reviewee check comes before the rating check
		{"wrong reviewee and bad rating", rentalID, renterID, renterAsOwnerRole, 9, apperrors.ErrRevieweeNotOwner},
	}

	v := NewReviewValidator(newFakeRentalRepo(newRental(models.RentalStatusCompleted)))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := v.ValidateAndBuild(context.Background(), nil, tt.rental, tt.reviewer, tt.target, tt.rating, "")
			assert.Nil(t, record)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateAndBuild_ItemReview(t *testing.T) {
	v := NewReviewValidator(newFakeRentalRepo(newRental(models.RentalStatusCompleted)))

	record, err := v.ValidateAndBuild(context.Background(), nil, rentalID, renterID, itemTarget, 4, "  works fine  ")
	require.NoError(t, err)
	require.NotNil(t, record.Item)
	assert.Nil(t, record.Party)
	assert.Equal(t, models.ReviewKindItem, record.Kind)
	assert.Equal(t, goodID, record.Item.GoodID)
	assert.Equal(t, renterID, record.Item.ReviewerID)
	assert.Equal(t, 4, record.Item.Rating)
	require.NotNil(t, record.Item.Comment)
	assert.Equal(t, "works fine", *record.Item.Comment)
	assert.False(t, record.Item.CreatedAt.IsZero())
}

func TestValidateAndBuild_PartyReviews(t *testing.T) {
	v := NewReviewValidator(newFakeRentalRepo(newRental(models.RentalStatusCompleted)))

	record, err := v.ValidateAndBuild(context.Background(), nil, rentalID, renterID, ownerAsOwner, 5, "")
	require.NoError(t, err)
	require.NotNil(t, record.Party)
	assert.Equal(t, ownerID, record.Party.RevieweeID)
	assert.Equal(t, models.RoleRatedAsOwner, record.Party.Role)
	assert.Nil(t, record.Party.Comment, "blank comments are not stored")

	record, err = v.ValidateAndBuild(context.Background(), nil, rentalID, ownerID, renterAsRenter, 1, "late")
	require.NoError(t, err)
	assert.Equal(t, renterID, record.Party.RevieweeID)
	assert.Equal(t, ownerID, record.Party.ReviewerID)
	assert.Equal(t, models.RoleRatedAsRenter, record.Party.Role)
}
