package repositories

import (
	"fmt"

	"rentproof_backend/internal/models"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	// InsertReview returns ErrDuplicateReview when the reviewer already rated this target.
	InsertReview(db *gorm.DB, record *models.ReviewRecord) error
	HasItemReview(db *gorm.DB, rentalID, reviewerID string) (bool, error)
	HasPartyReview(db *gorm.DB, rentalID, reviewerID string, role models.PartyRole) (bool, error)

	// Read model
	GoodTotals(db *gorm.DB, goodID string) (*models.ReviewTotals, error)
	PartyTotals(db *gorm.DB, partyID string, role models.PartyRole) (*models.ReviewTotals, error)
}

type ReviewRepositoryImpl struct{}

func NewReviewRepository() ReviewRepository {
	return &ReviewRepositoryImpl{}
}

type ratingBucket struct {
	Rating int
	Count  int64
}

func (r *ReviewRepositoryImpl) InsertReview(db *gorm.DB, record *models.ReviewRecord) error {
	var err error
	switch record.Kind {
	case models.ReviewKindItem:
		err = db.Create(record.Item).Error
	case models.ReviewKindParty:
		err = db.Create(record.Party).Error
	default:
		return fmt.Errorf("unknown review kind %q", record.Kind)
	}
	if isUniqueViolation(err) {
		return ErrDuplicateReview
	}
	return err
}

func (r *ReviewRepositoryImpl) HasItemReview(db *gorm.DB, rentalID, reviewerID string) (bool, error) {
	var count int64
	err := db.Model(&models.ItemReview{}).
		Where("rental_id = ? AND reviewer_id = ?", rentalID, reviewerID).
		Count(&count).Error
	return count > 0, err
}

func (r *ReviewRepositoryImpl) HasPartyReview(db *gorm.DB, rentalID, reviewerID string, role models.PartyRole) (bool, error) {
	var count int64
	err := db.Model(&models.PartyReview{}).
		Where("rental_id = ? AND reviewer_id = ? AND role = ?", rentalID, reviewerID, role).
		Count(&count).Error
	return count > 0, err
}

func (r *ReviewRepositoryImpl) GoodTotals(db *gorm.DB, goodID string) (*models.ReviewTotals, error) {
	var buckets []ratingBucket
	err := db.Model(&models.ItemReview{}).
		Select("rating, COUNT(*) AS count").
		Where("good_id = ?", goodID).
		Group("rating").
		Scan(&buckets).Error
	if err != nil {
		return nil, err
	}
	return buildTotals(buckets), nil
}

func (r *ReviewRepositoryImpl) PartyTotals(db *gorm.DB, partyID string, role models.PartyRole) (*models.ReviewTotals, error) {
	var buckets []ratingBucket
	err := db.Model(&models.PartyReview{}).
		Select("rating, COUNT(*) AS count").
		Where("reviewee_id = ? AND role = ?", partyID, role).
		Group("rating").
		Scan(&buckets).Error
	if err != nil {
		return nil, err
	}
	return buildTotals(buckets), nil
}

func buildTotals(buckets []ratingBucket) *models.ReviewTotals {
	totals := &models.ReviewTotals{StarCounts: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	var sum int64
	for _, b := range buckets {
		totals.StarCounts[b.Rating] += b.Count
		totals.TotalReviews += b.Count
		sum += int64(b.Rating) * b.Count
	}
	if totals.TotalReviews > 0 {
		totals.AverageRating = float64(sum) / float64(totals.TotalReviews)
	}
	return totals
}
