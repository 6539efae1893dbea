package models

// Phase - контрольная точка аренды: передача арендатору или возврат владельцу.
type Phase string

// Party - участник аренды.
type Party string

type EvidenceKind string

// RentalStatus values are stored verbatim and read by external dashboards.
type RentalStatus string

// PartyRole - в какой роли оценивают участника.
type PartyRole string

type ReviewKind string

const (
	PhaseStart  Phase = "start"
	PhaseReturn Phase = "return"

	PartyOwner  Party = "owner"
	PartyRenter Party = "renter"

	EvidencePhoto EvidenceKind = "photo"
	EvidenceVideo EvidenceKind = "video"

	RentalStatusConfirmed            RentalStatus = "confirmed"
	RentalStatusAwaitingStartOwner   RentalStatus = "awaiting_start_owner"
	RentalStatusAwaitingStartRenter  RentalStatus = "awaiting_start_renter"
	RentalStatusActive               RentalStatus = "active"
	RentalStatusAwaitingReturnOwner  RentalStatus = "awaiting_return_owner"
	RentalStatusAwaitingReturnRenter RentalStatus = "awaiting_return_renter"
	RentalStatusCompleted            RentalStatus = "completed"

	RoleRatedAsOwner  PartyRole = "rated_as_owner"
	RoleRatedAsRenter PartyRole = "rated_as_renter"

	ReviewKindItem  ReviewKind = "item"
	ReviewKindParty ReviewKind = "party"
)

var Phases = []Phase{PhaseStart, PhaseReturn}
var Parties = []Party{PartyOwner, PartyRenter}

func (p Phase) Valid() bool {
	switch p {
	case PhaseStart, PhaseReturn:
		return true
	}
	return false
}

// Baseline is the status a phase falls back to when nobody has finished it.
func (p Phase) Baseline() RentalStatus {
	switch p {
	case PhaseStart:
		return RentalStatusConfirmed
	case PhaseReturn:
		return RentalStatusActive
	}
	panic("models: unknown phase " + string(p))
}

// Terminal is the status written once both parties finished the phase.
func (p Phase) Terminal() RentalStatus {
	switch p {
	case PhaseStart:
		return RentalStatusActive
	case PhaseReturn:
		return RentalStatusCompleted
	}
	panic("models: unknown phase " + string(p))
}

// AwaitingFrom names the status for a phase where only pending is still missing.
func (p Phase) AwaitingFrom(pending Party) RentalStatus {
	switch p {
	case PhaseStart:
		switch pending {
		case PartyOwner:
			return RentalStatusAwaitingStartOwner
		case PartyRenter:
			return RentalStatusAwaitingStartRenter
		}
	case PhaseReturn:
		switch pending {
		case PartyOwner:
			return RentalStatusAwaitingReturnOwner
		case PartyRenter:
			return RentalStatusAwaitingReturnRenter
		}
	}
	panic("models: unknown phase/party " + string(p) + "/" + string(pending))
}

func (p Party) Valid() bool {
	switch p {
	case PartyOwner, PartyRenter:
		return true
	}
	return false
}

// Other returns the counterpart.
func (p Party) Other() Party {
	switch p {
	case PartyOwner:
		return PartyRenter
	case PartyRenter:
		return PartyOwner
	}
	panic("models: unknown party " + string(p))
}

// RatedAs is the role under which this party is rated by the counterpart.
func (p Party) RatedAs() PartyRole {
	switch p {
	case PartyOwner:
		return RoleRatedAsOwner
	case PartyRenter:
		return RoleRatedAsRenter
	}
	panic("models: unknown party " + string(p))
}

func (k EvidenceKind) Valid() bool {
	switch k {
	case EvidencePhoto, EvidenceVideo:
		return true
	}
	return false
}

func (r PartyRole) Valid() bool {
	switch r {
	case RoleRatedAsOwner, RoleRatedAsRenter:
		return true
	}
	return false
}

func (k ReviewKind) Valid() bool {
	switch k {
	case ReviewKindItem, ReviewKindParty:
		return true
	}
	return false
}

func (s RentalStatus) Valid() bool {
	return s.Stage() >= 0
}

// Stage orders statuses along the lifecycle: start hand-off (0),
// return hand-off (1), completed (2). Unknown statuses return -1.
func (s RentalStatus) Stage() int {
	switch s {
	case RentalStatusConfirmed, RentalStatusAwaitingStartOwner, RentalStatusAwaitingStartRenter:
		return 0
	case RentalStatusActive, RentalStatusAwaitingReturnOwner, RentalStatusAwaitingReturnRenter:
		return 1
	case RentalStatusCompleted:
		return 2
	}
	return -1
}

func (s RentalStatus) IsTerminal() bool {
	return s == RentalStatusCompleted
}

// Stage is the lifecycle stage a phase's statuses belong to.
func (p Phase) Stage() int {
	switch p {
	case PhaseStart:
		return 0
	case PhaseReturn:
		return 1
	}
	panic("models: unknown phase " + string(p))
}
