package repositories

import (
	"errors"

	"rentproof_backend/internal/models"

	"gorm.io/gorm"
)

// EvidenceRepository is append-only: records are never updated or deleted.
type EvidenceRepository interface {
	// Append returns ErrDuplicateEvidence when a record with the same storage path exists.
	Append(db *gorm.DB, record *models.EvidenceRecord) error
	FindByStoragePath(db *gorm.DB, storagePath string) (*models.EvidenceRecord, error)
	ListEvidence(db *gorm.DB, rentalID string, phase models.Phase, party models.Party) ([]models.EvidenceRecord, error)
	ListByRental(db *gorm.DB, rentalID string) ([]models.EvidenceRecord, error)
}

type EvidenceRepositoryImpl struct{}

func NewEvidenceRepository() EvidenceRepository {
	return &EvidenceRepositoryImpl{}
}

func (r *EvidenceRepositoryImpl) Append(db *gorm.DB, record *models.EvidenceRecord) error {
	err := db.Create(record).Error
	if isUniqueViolation(err) {
		return ErrDuplicateEvidence
	}
	return err
}

func (r *EvidenceRepositoryImpl) FindByStoragePath(db *gorm.DB, storagePath string) (*models.EvidenceRecord, error) {
	var record models.EvidenceRecord
	err := db.Where("storage_path = ?", storagePath).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEvidenceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *EvidenceRepositoryImpl) ListEvidence(db *gorm.DB, rentalID string, phase models.Phase, party models.Party) ([]models.EvidenceRecord, error) {
	var records []models.EvidenceRecord
	err := db.Where("rental_id = ? AND phase = ? AND party = ?", rentalID, phase, party).
		Order("seq ASC, captured_at ASC").
		Find(&records).Error
	return records, err
}

func (r *EvidenceRepositoryImpl) ListByRental(db *gorm.DB, rentalID string) ([]models.EvidenceRecord, error) {
	var records []models.EvidenceRecord
	err := db.Where("rental_id = ?", rentalID).
		Order("phase ASC, party ASC, seq ASC").
		Find(&records).Error
	return records, err
}
