package services

import (
	"rentproof_backend/internal/models"
	"rentproof_backend/pkg/apperrors"
)

// resolveParty maps a caller to the role they act in. A self-rental owner plays
// both roles and must name one through hint.
func resolveParty(rental *models.Rental, userID string, hint models.Party) (models.Party, error) {
	if hint != "" && !hint.Valid() {
		return "", apperrors.ErrInvalidParty
	}

	parties := rental.PartiesOf(userID)
	switch len(parties) {
	case 0:
		return "", apperrors.ErrNotRentalParty
	case 1:
		if hint != "" && hint != parties[0] {
			return "", apperrors.ErrNotRentalParty
		}
		return parties[0], nil
	default:
		if hint == "" {
			return "", apperrors.ErrSameOwnerAndRenter
		}
		return hint, nil
	}
}
