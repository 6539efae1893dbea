package dto

import (
	"time"

	"rentproof_backend/internal/models"
)

// ======================
// Request DTOs
// ======================

type CreateRentalRequest struct {
	GoodID   string `json:"good_id" validate:"required,uuid"`
	OwnerID  string `json:"owner_id" validate:"required,uuid"`
	RenterID string `json:"renter_id" validate:"required,uuid"`
}

type WaitStatusRequest struct {
	Since          string `form:"since" validate:"omitempty,is-rental-status"`
	TimeoutSeconds int    `form:"timeout" validate:"omitempty,min=0,max=300"`
}

func (r *WaitStatusRequest) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// ======================
// Response DTOs
// ======================

// PartyProgress - сколько доказательств собрал участник в фазе.
type PartyProgress struct {
	Photos    int  `json:"photos"`
	Videos    int  `json:"videos"`
	Satisfied bool `json:"satisfied"`
}

type PhaseProgress struct {
	Owner  PartyProgress `json:"owner"`
	Renter PartyProgress `json:"renter"`
}

type RentalResponse struct {
	*models.Rental
	Progress map[models.Phase]PhaseProgress `json:"progress"`
}

// StatusResult describes the outcome of one status recomputation.
type StatusResult struct {
	RentalID   string              `json:"rental_id"`
	Phase      models.Phase        `json:"phase"`
	Previous   models.RentalStatus `json:"previous_status"`
	Status     models.RentalStatus `json:"status"`
	OwnerDone  bool                `json:"owner_done"`
	RenterDone bool                `json:"renter_done"`
	Changed    bool                `json:"changed"`
	Version    int64               `json:"version"`
}

type WaitStatusResponse struct {
	RentalID string              `json:"rental_id"`
	Status   models.RentalStatus `json:"status"`
	Changed  bool                `json:"changed"`
	TimedOut bool                `json:"timed_out"`
}
