package repositories

import (
	"errors"
	"fmt"
	"time"

	"rentproof_backend/internal/models"

	"gorm.io/gorm"
)

type RentalRepository interface {
	Create(db *gorm.DB, rental *models.Rental) error
	FindByID(db *gorm.DB, id string) (*models.Rental, error)

	// SetStatus is a compare-and-set: it writes next only while the row still
	// holds expectedPrior, otherwise ErrStatusConflict.
	SetStatus(db *gorm.DB, id string, next, expectedPrior models.RentalStatus) error

	// StampCompletion records when and by whom a phase completed. The first stamp wins;
	// the bool reports whether this call wrote it.
	StampCompletion(db *gorm.DB, id string, phase models.Phase, at time.Time, partyID string) (bool, error)

	FindUnescalatedReturnStage(db *gorm.DB, startedBefore time.Time, limit int) ([]models.Rental, error)
	MarkEscalated(db *gorm.DB, id string, at time.Time) error
}

type RentalRepositoryImpl struct{}

func NewRentalRepository() RentalRepository {
	return &RentalRepositoryImpl{}
}

func (r *RentalRepositoryImpl) Create(db *gorm.DB, rental *models.Rental) error {
	if rental.Status == "" {
		rental.Status = models.RentalStatusConfirmed
	}
	return db.Create(rental).Error
}

func (r *RentalRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Rental, error) {
	var rental models.Rental
	if err := db.First(&rental, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRentalNotFound
		}
		return nil, err
	}
	return &rental, nil
}

func (r *RentalRepositoryImpl) SetStatus(db *gorm.DB, id string, next, expectedPrior models.RentalStatus) error {
	result := db.Model(&models.Rental{}).
		Where("id = ? AND status = ?", id, expectedPrior).
		Updates(map[string]interface{}{
			"status":     next,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *RentalRepositoryImpl) StampCompletion(db *gorm.DB, id string, phase models.Phase, at time.Time, partyID string) (bool, error) {
	var atColumn, byColumn string
	switch phase {
	case models.PhaseStart:
		atColumn, byColumn = "started_at", "started_by"
	case models.PhaseReturn:
		atColumn, byColumn = "ended_at", "ended_by"
	default:
		return false, fmt.Errorf("unknown phase %q", phase)
	}

	result := db.Model(&models.Rental{}).
		Where("id = ?", id).
		Where(atColumn + " IS NULL").
		Updates(map[string]interface{}{
			atColumn:     at,
			byColumn:     partyID,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *RentalRepositoryImpl) FindUnescalatedReturnStage(db *gorm.DB, startedBefore time.Time, limit int) ([]models.Rental, error) {
	var rentals []models.Rental
	err := db.Where("status IN ?", []models.RentalStatus{
		models.RentalStatusActive,
		models.RentalStatusAwaitingReturnOwner,
		models.RentalStatusAwaitingReturnRenter,
	}).
		Where("escalated_at IS NULL").
		Where("started_at < ?", startedBefore).
		Order("started_at ASC").
		Limit(limit).
		Find(&rentals).Error
	return rentals, err
}

func (r *RentalRepositoryImpl) MarkEscalated(db *gorm.DB, id string, at time.Time) error {
	return db.Model(&models.Rental{}).
		Where("id = ? AND escalated_at IS NULL", id).
		Update("escalated_at", at).Error
}
