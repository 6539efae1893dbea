package models

import "time"

type Rental struct {
	BaseModel
	GoodID   string       `gorm:"type:uuid;not null;index" json:"good_id"`
	OwnerID  string       `gorm:"type:uuid;not null;index" json:"owner_id"`
	RenterID string       `gorm:"type:uuid;not null;index" json:"renter_id"`
	Status   RentalStatus `gorm:"type:varchar(32);not null;default:'confirmed';index" json:"status"`
	// Version растет при каждой записи статуса.
	Version int64 `gorm:"not null;default:0" json:"version"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	StartedBy   *string    `gorm:"type:uuid" json:"started_by,omitempty"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	EndedBy     *string    `gorm:"type:uuid" json:"ended_by,omitempty"`
	EscalatedAt *time.Time `json:"escalated_at,omitempty"`
}

// IsSelfRental - владелец арендует собственную вещь.
func (r *Rental) IsSelfRental() bool {
	return r.OwnerID == r.RenterID
}

// PartyID returns the identifier of the participant playing p.
func (r *Rental) PartyID(p Party) string {
	switch p {
	case PartyOwner:
		return r.OwnerID
	case PartyRenter:
		return r.RenterID
	}
	panic("models: unknown party " + string(p))
}

// PartiesOf lists the roles userID plays in the rental: none, one, or both for a self-rental.
func (r *Rental) PartiesOf(userID string) []Party {
	var parties []Party
	if userID == "" {
		return parties
	}
	if r.OwnerID == userID {
		parties = append(parties, PartyOwner)
	}
	if r.RenterID == userID {
		parties = append(parties, PartyRenter)
	}
	return parties
}

// CompletionOf returns the stamp for a phase, nil if the phase never completed.
func (r *Rental) CompletionOf(p Phase) *time.Time {
	switch p {
	case PhaseStart:
		return r.StartedAt
	case PhaseReturn:
		return r.EndedAt
	}
	panic("models: unknown phase " + string(p))
}
