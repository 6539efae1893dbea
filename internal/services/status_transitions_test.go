package services

import (
	"testing"

	"rentproof_backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNextStatus(t *testing.T) {
	start, ret := models.PhaseStart, models.PhaseReturn

	tests := []struct {
		name       string
		current    models.RentalStatus
		phase      models.Phase
		owner      bool
		renter     bool
		want       models.RentalStatus
		wantChange bool
	}{
		{"start nobody done", models.RentalStatusConfirmed, start, false, false, models.RentalStatusConfirmed, false},
		{"start owner done", models.RentalStatusConfirmed, start, true, false, models.RentalStatusAwaitingStartRenter, true},
		{"start renter done", models.RentalStatusConfirmed, start, false, true, models.RentalStatusAwaitingStartOwner, true},
		{"start both done", models.RentalStatusAwaitingStartOwner, start, true, true, models.RentalStatusActive, true},
		{"start owner done again", models.RentalStatusAwaitingStartRenter, start, true, false, models.RentalStatusAwaitingStartRenter, false},
		{"start after active is ignored", models.RentalStatusActive, start, false, false, models.RentalStatusActive, false},
		{"start after completed is ignored", models.RentalStatusCompleted, start, true, true, models.RentalStatusCompleted, false},

		{"return nobody done keeps active", models.RentalStatusActive, ret, false, false, models.RentalStatusActive, false},
		{"return nobody done keeps awaiting", models.RentalStatusAwaitingReturnOwner, ret, false, false, models.RentalStatusAwaitingReturnOwner, false},
		{"return owner done", models.RentalStatusActive, ret, true, false, models.RentalStatusAwaitingReturnRenter, true},
		{"return renter done", models.RentalStatusActive, ret, false, true, models.RentalStatusAwaitingReturnOwner, true},
		{"return both done", models.RentalStatusAwaitingReturnRenter, ret, true, true, models.RentalStatusCompleted, true},
		{"return before start is ignored", models.RentalStatusConfirmed, ret, true, true, models.RentalStatusConfirmed, false},
		{"completed is terminal", models.RentalStatusCompleted, ret, true, false, models.RentalStatusCompleted, false},
		{"unknown status is left alone", "lost", start, true, true, "lost", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := NextStatus(tt.current, tt.phase, tt.owner, tt.renter)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantChange, changed)
			if changed {
				assert.GreaterOrEqual(t, got.Stage(), tt.current.Stage(), "stage must never go down")
			}
		})
	}
}
