package dto

import "rentproof_backend/internal/models"

// ======================
// Request DTOs
// ======================

// ReviewTarget names what a review is about.
type ReviewTarget struct {
	Kind       models.ReviewKind `json:"kind" validate:"required,is-review-kind"`
	Role       models.PartyRole  `json:"role,omitempty" validate:"omitempty,is-party-role"`
	RevieweeID string            `json:"reviewee_id,omitempty" validate:"omitempty,uuid"`
}

type SubmitReviewRequest struct {
	ReviewTarget
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=2000"`
}

type ReviewFlowRequest struct {
	Party models.Party `json:"party,omitempty" validate:"omitempty,is-party"`
}

// ======================
// Response DTOs
// ======================

type FlowKind string

const (
	FlowNone   FlowKind = "none"
	FlowRenter FlowKind = "renter_flow"
	FlowOwner  FlowKind = "owner_flow"
)

// Причины, по которым отзывы не предлагаются.
const (
	SkipNotReturnPhase  = "not_return_phase"
	SkipSelfRental      = "self_rental"
	SkipEvidencePending = "return_evidence_pending"
)

type ReviewStep struct {
	Index      int          `json:"index"`
	Target     ReviewTarget `json:"target"`
	ReviewerID string       `json:"reviewer_id"`
	Done       bool         `json:"done"`
}

type FlowDecision struct {
	RentalID   string       `json:"rental_id"`
	Flow       FlowKind     `json:"flow"`
	SkipReason string       `json:"skip_reason,omitempty"`
	Steps      []ReviewStep `json:"steps,omitempty"`
	Next       *ReviewStep  `json:"next,omitempty"`
}

type StepOutcome struct {
	// AlreadyRecorded is set when the review existed before this submission.
	AlreadyRecorded bool                  `json:"already_recorded"`
	Next            *ReviewStep           `json:"next,omitempty"`
	FlowDone        bool                  `json:"flow_done"`
	Record          *ReviewRecordResponse `json:"review,omitempty"`
}

type ReviewRecordResponse struct {
	Kind  models.ReviewKind   `json:"kind"`
	Item  *models.ItemReview  `json:"item,omitempty"`
	Party *models.PartyReview `json:"party,omitempty"`
}
