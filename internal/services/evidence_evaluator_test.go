package services

import (
	"context"
	"errors"
	"testing"

	"rentproof_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evidence(kinds ...models.EvidenceKind) []models.EvidenceRecord {
	records := make([]models.EvidenceRecord, 0, len(kinds))
	for _, k := range kinds {
		records = append(records, models.EvidenceRecord{Kind: k})
	}
	return records
}

func TestIsSufficient(t *testing.T) {
	photo, video := models.EvidencePhoto, models.EvidenceVideo

	tests := []struct {
		name    string
		records []models.EvidenceRecord
		want    bool
	}{
		{"nothing", nil, false},
		{"two photos", evidence(photo, photo), false},
		{"three photos", evidence(photo, photo, photo), true},
		{"one video", evidence(video), true},
		{"two photos and a video", evidence(photo, photo, video), true},
		{"unknown kinds are ignored", evidence("audio", "audio", "audio"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSufficient(tt.records))
		})
	}
}

func TestEvaluatorCountsOnlyThePartyAndPhase(t *testing.T) {
	repo := &fakeEvidenceRepo{}
	repo.add(models.PhaseStart, models.PartyOwner, models.EvidencePhoto, 2)
	repo.add(models.PhaseStart, models.PartyRenter, models.EvidencePhoto, 1)
	repo.add(models.PhaseReturn, models.PartyOwner, models.EvidencePhoto, 1)

	e := NewEvidenceEvaluator(repo)
	ctx := context.Background()

	ok, err := e.Satisfied(ctx, nil, rentalID, models.PhaseStart, models.PartyOwner)
	require.NoError(t, err)
	assert.False(t, ok, "photos of other parties and phases must not count")

	repo.add(models.PhaseStart, models.PartyOwner, models.EvidencePhoto, 1)
	ok, err = e.Satisfied(ctx, nil, rentalID, models.PhaseStart, models.PartyOwner)
	require.NoError(t, err)
	assert.True(t, ok)

	progress, err := e.Progress(ctx, nil, rentalID, models.PhaseStart, models.PartyOwner)
	require.NoError(t, err)
	assert.Equal(t, 3, progress.Photos)
	assert.Equal(t, 0, progress.Videos)
}

func TestEvaluatorPropagatesReadErrors(t *testing.T) {
	repo := &fakeEvidenceRepo{listErr: errors.New("connection reset")}
	_, err := NewEvidenceEvaluator(repo).Satisfied(context.Background(), nil, rentalID, models.PhaseStart, models.PartyOwner)
	assert.Error(t, err)
}
