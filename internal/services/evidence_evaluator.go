package services

import (
	"context"

	"rentproof_backend/internal/models"
	"rentproof_backend/internal/repositories"
	"rentproof_backend/internal/services/dto"

	"gorm.io/gorm"
)

// Пороги достаточности: три фото или одно видео.
const (
	MinPhotos = 3
	MinVideos = 1
)

// TallyEvidence counts photos and videos. Unknown kinds are ignored.
func TallyEvidence(records []models.EvidenceRecord) dto.PartyProgress {
	var p dto.PartyProgress
	for _, r := range records {
		switch r.Kind {
		case models.EvidencePhoto:
			p.Photos++
		case models.EvidenceVideo:
			p.Videos++
		}
	}
	p.Satisfied = p.Videos >= MinVideos || p.Photos >= MinPhotos
	return p
}

// IsSufficient reports whether one party's evidence for a phase is complete.
func IsSufficient(records []models.EvidenceRecord) bool {
	return TallyEvidence(records).Satisfied
}

type EvidenceEvaluator interface {
	Satisfied(ctx context.Context, db *gorm.DB, rentalID string, phase models.Phase, party models.Party) (bool, error)
	Progress(ctx context.Context, db *gorm.DB, rentalID string, phase models.Phase, party models.Party) (dto.PartyProgress, error)
}

type evidenceEvaluator struct {
	evidenceRepo repositories.EvidenceRepository
}

func NewEvidenceEvaluator(evidenceRepo repositories.EvidenceRepository) EvidenceEvaluator {
	return &evidenceEvaluator{evidenceRepo: evidenceRepo}
}

func (e *evidenceEvaluator) Satisfied(ctx context.Context, db *gorm.DB, rentalID string, phase models.Phase, party models.Party) (bool, error) {
	progress, err := e.Progress(ctx, db, rentalID, phase, party)
	if err != nil {
		return false, err
	}
	return progress.Satisfied, nil
}

func (e *evidenceEvaluator) Progress(ctx context.Context, db *gorm.DB, rentalID string, phase models.Phase, party models.Party) (dto.PartyProgress, error) {
	records, err := e.evidenceRepo.ListEvidence(scoped(ctx, db), rentalID, phase, party)
	if err != nil {
		return dto.PartyProgress{}, err
	}
	return TallyEvidence(records), nil
}
