package services

import "rentproof_backend/internal/models"

// NextStatus decides the status a phase implies for the given completion flags.
// The bool is false when nothing must be written: the rental is terminal, the
// phase belongs to a stage the rental already left or has not reached, or the
// return phase has no finished party yet.
func NextStatus(current models.RentalStatus, phase models.Phase, ownerDone, renterDone bool) (models.RentalStatus, bool) {
	if current.IsTerminal() || current.Stage() != phase.Stage() {
		return current, false
	}

	var next models.RentalStatus
	switch {
	case ownerDone && renterDone:
		next = phase.Terminal()
	case ownerDone:
		next = phase.AwaitingFrom(models.PartyRenter)
	case renterDone:
		next = phase.AwaitingFrom(models.PartyOwner)
	default:
		if phase != models.PhaseStart {
			return current, false
		}
		next = phase.Baseline()
	}
	return next, next != current
}
