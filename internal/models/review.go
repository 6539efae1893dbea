package models

// ItemReview - арендатор оценивает вещь. Один отзыв на аренду от автора.
type ItemReview struct {
	BaseModel
	RentalID   string  `gorm:"type:uuid;not null;uniqueIndex:uq_item_reviews_rental_reviewer,priority:1" json:"rental_id"`
	GoodID     string  `gorm:"type:uuid;not null;index" json:"good_id"`
	ReviewerID string  `gorm:"type:uuid;not null;uniqueIndex:uq_item_reviews_rental_reviewer,priority:2" json:"reviewer_id"`
	Rating     int     `gorm:"not null;check:chk_item_reviews_rating,rating >= 1 AND rating <= 5" json:"rating"`
	Comment    *string `json:"comment,omitempty"`
}

// PartyReview - один участник оценивает другого в конкретной роли.
type PartyReview struct {
	BaseModel
	RentalID   string    `gorm:"type:uuid;not null;uniqueIndex:uq_party_reviews_rental_reviewer_role,priority:1" json:"rental_id"`
	ReviewerID string    `gorm:"type:uuid;not null;uniqueIndex:uq_party_reviews_rental_reviewer_role,priority:2" json:"reviewer_id"`
	RevieweeID string    `gorm:"type:uuid;not null;index:idx_party_reviews_reviewee_role,priority:1" json:"reviewee_id"`
	Role       PartyRole `gorm:"type:varchar(32);not null;uniqueIndex:uq_party_reviews_rental_reviewer_role,priority:3;index:idx_party_reviews_reviewee_role,priority:2" json:"role"`
	Rating     int       `gorm:"not null;check:chk_party_reviews_rating,rating >= 1 AND rating <= 5" json:"rating"`
	Comment    *string   `json:"comment,omitempty"`
}

// ReviewRecord is a validated review ready to persist. Exactly one of Item/Party is set.
type ReviewRecord struct {
	Kind  ReviewKind
	Item  *ItemReview
	Party *PartyReview
}

// ReviewTotals - агрегат оценок (read model).
type ReviewTotals struct {
	TotalReviews  int64         `json:"total_reviews"`
	AverageRating float64       `json:"average_rating"`
	StarCounts    map[int]int64 `json:"star_counts"`
}
