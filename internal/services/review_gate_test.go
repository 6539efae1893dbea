package services

import (
	"context"
	"errors"
	"testing"

	"rentproof_backend/internal/models"
	"rentproof_backend/internal/services/dto"
	"rentproof_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gateFixture struct {
	rentals  *fakeRentalRepo
	evidence *fakeEvidenceRepo
	reviews  *fakeReviewRepo
	gate     ReviewGate
	service  ReviewService
}

func newGateFixture(rental *models.Rental) *gateFixture {
	f := &gateFixture{
		rentals:  newFakeRentalRepo(rental),
		evidence: &fakeEvidenceRepo{},
		reviews:  newFakeReviewRepo(),
	}
	f.gate = NewReviewGate(f.rentals, f.reviews, NewEvidenceEvaluator(f.evidence), NewReviewValidator(f.rentals))
	f.service = NewReviewService(f.rentals, f.reviews, f.gate)
	return f
}

func TestEvaluate_SkipCases(t *testing.T) {
	ctx := context.Background()

	f := newGateFixture(newRental(models.RentalStatusCompleted))
	decision, err := f.gate.Evaluate(ctx, nil, rentalID, models.PhaseStart, models.PartyRenter)
	require.NoError(t, err)
	assert.Equal(t, dto.FlowNone, decision.Flow)
	assert.Equal(t, dto.SkipNotReturnPhase, decision.SkipReason)

	self := newRental(models.RentalStatusCompleted)
	self.RenterID = ownerID
	f = newGateFixture(self)
	decision, err = f.gate.Evaluate(ctx, nil, rentalID, models.PhaseReturn, models.PartyRenter)
	require.NoError(t, err)
	assert.Equal(t, dto.FlowNone, decision.Flow)
	assert.Equal(t, dto.SkipSelfRental, decision.SkipReason)

	f = newGateFixture(newRental(models.RentalStatusActive))
	decision, err = f.gate.Evaluate(ctx, nil, rentalID, models.PhaseReturn, models.PartyRenter)
	require.NoError(t, err)
	assert.Equal(t, dto.FlowNone, decision.Flow)
	assert.Equal(t, dto.SkipEvidencePending, decision.SkipReason)

	_, err = f.gate.Evaluate(ctx, nil, "missing", models.PhaseReturn, models.PartyRenter)
	assert.ErrorIs(t, err, apperrors.ErrRentalNotFound)
	_, err = f.gate.Evaluate(ctx, nil, rentalID, models.PhaseReturn, "guest")
	assert.ErrorIs(t, err, apperrors.ErrInvalidParty)
}

func TestEvaluate_RenterFinishedFirst(t *testing.T) {
	f := newGateFixture(newRental(models.RentalStatusAwaitingReturnOwner))
	f.evidence.add(models.PhaseReturn, models.PartyRenter, models.EvidenceVideo, 1)

	decision, err := f.gate.Evaluate(context.Background(), nil, rentalID, models.PhaseReturn, models.PartyRenter)
	require.NoError(t, err)

	assert.Equal(t, dto.FlowRenter, decision.Flow)
	require.Len(t, decision.Steps, 2)
	assert.Equal(t, models.ReviewKindItem, decision.Steps[0].Target.Kind)
	assert.Equal(t, models.RoleRatedAsOwner, decision.Steps[1].Target.Role)
	assert.Equal(t, ownerID, decision.Steps[1].Target.RevieweeID)
	require.NotNil(t, decision.Next)
	assert.Equal(t, 0, decision.Next.Index)

	// the owner has not finished, so the owner gets nothing yet
	decision, err = f.gate.Evaluate(context.Background(), nil, rentalID, models.PhaseReturn, models.PartyOwner)
	require.NoError(t, err)
	assert.Equal(t, dto.FlowNone, decision.Flow)
}

func TestEvaluate_OwnerFlow(t *testing.T) {
	f := newGateFixture(newRental(models.RentalStatusCompleted))

	decision, err := f.service.OnReturnPhaseActorFinished(context.Background(), nil, rentalID, models.PartyOwner)
	require.NoError(t, err)
	assert.Equal(t, dto.FlowOwner, decision.Flow)
	require.Len(t, decision.Steps, 1)
	assert.Equal(t, renterID, decision.Steps[0].Target.RevieweeID)
	assert.Equal(t, ownerID, decision.Steps[0].ReviewerID)
}

func TestSubmit_RenterFlowInOrder(t *testing.T) {
	f := newGateFixture(newRental(models.RentalStatusCompleted))
	ctx := context.Background()

	_, err := f.gate.Submit(ctx, nil, rentalID, renterID, ownerAsOwner, 5, "")
	assert.ErrorIs(t, err, apperrors.ErrItemReviewFirst)

	outcome, err := f.gate.Submit(ctx, nil, rentalID, renterID, itemTarget, 4, "clean")
	require.NoError(t, err)
	assert.False(t, outcome.AlreadyRecorded)
	assert.False(t, outcome.FlowDone)
	require.NotNil(t, outcome.Next)
	assert.Equal(t, models.RoleRatedAsOwner, outcome.Next.Target.Role)
	require.NotNil(t, outcome.Record)

	outcome, err = f.gate.Submit(ctx, nil, rentalID, renterID, ownerAsOwner, 5, "")
	require.NoError(t, err)
	assert.True(t, outcome.FlowDone)
	assert.Nil(t, outcome.Next)

	decision, err := f.gate.Evaluate(ctx, nil, rentalID, models.PhaseReturn, models.PartyRenter)
	require.NoError(t, err)
	assert.Nil(t, decision.Next, "a finished flow has nothing pending")
}

func TestSubmit_DuplicateAdvances(t *testing.T) {
	f := newGateFixture(newRental(models.RentalStatusCompleted))
	ctx := context.Background()

	_, err := f.gate.Submit(ctx, nil, rentalID, renterID, itemTarget, 4, "")
	require.NoError(t, err)

	outcome, err := f.gate.Submit(ctx, nil, rentalID, renterID, itemTarget, 2, "")
	require.NoError(t, err, "a duplicate is not an error")
	assert.True(t, outcome.AlreadyRecorded)
	assert.Nil(t, outcome.Record)
	require.NotNil(t, outcome.Next)
	assert.Equal(t, 1, outcome.Next.Index)

	_, err = f.gate.Submit(ctx, nil, rentalID, ownerID, renterAsRenter, 5, "")
	require.NoError(t, err)
	outcome, err = f.gate.Submit(ctx, nil, rentalID, ownerID, renterAsRenter, 5, "")
	require.NoError(t, err)
	assert.True(t, outcome.AlreadyRecorded)
	assert.True(t, outcome.FlowDone)
}

func TestSubmit_Rejections(t *testing.T) {
	ctx := context.Background()

	self := newRental(models.RentalStatusCompleted)
	self.RenterID = ownerID
	f := newGateFixture(self)
	_, err := f.gate.Submit(ctx, nil, rentalID, ownerID, itemTarget, 5, "")
	assert.ErrorIs(t, err, apperrors.ErrSelfRentalReview)

	f = newGateFixture(newRental(models.RentalStatusActive))
	_, err = f.gate.Submit(ctx, nil, rentalID, renterID, itemTarget, 5, "")
	assert.ErrorIs(t, err, apperrors.ErrReviewsNotOpen)

	f = newGateFixture(newRental(models.RentalStatusCompleted))
	_, err = f.gate.Submit(ctx, nil, rentalID, ownerID, itemTarget, 5, "")
	assert.ErrorIs(t, err, apperrors.ErrOnlyRenterRatesItem)

	f.reviews.insertErr = errors.New("connection reset")
	_, err = f.gate.Submit(ctx, nil, rentalID, renterID, itemTarget, 5, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDatabaseError))
}

func TestSubmit_OpensOnceReviewerFinishedReturn(t *testing.T) {
	f := newGateFixture(newRental(models.RentalStatusAwaitingReturnRenter))
	f.evidence.add(models.PhaseReturn, models.PartyOwner, models.EvidencePhoto, 3)

	outcome, err := f.gate.Submit(context.Background(), nil, rentalID, ownerID, renterAsRenter, 3, "")
	require.NoError(t, err)
	assert.True(t, outcome.FlowDone)

	_, err = f.gate.Submit(context.Background(), nil, rentalID, renterID, itemTarget, 3, "")
	assert.ErrorIs(t, err, apperrors.ErrReviewsNotOpen)
}

func TestStartFlow_ResolvesCaller(t *testing.T) {
	f := newGateFixture(newRental(models.RentalStatusCompleted))
	ctx := context.Background()

	decision, err := f.service.StartFlow(ctx, nil, renterID, rentalID, "")
	require.NoError(t, err)
	assert.Equal(t, dto.FlowRenter, decision.Flow)

	_, err = f.service.StartFlow(ctx, nil, outsider, rentalID, "")
	assert.ErrorIs(t, err, apperrors.ErrNotRentalParty)

	self := newRental(models.RentalStatusCompleted)
	self.RenterID = ownerID
	f = newGateFixture(self)
	decision, err = f.service.StartFlow(ctx, nil, ownerID, rentalID, "")
	require.NoError(t, err)
	assert.Equal(t, dto.SkipSelfRental, decision.SkipReason)
}

func TestReviewTotals(t *testing.T) {
	f := newGateFixture(newRental(models.RentalStatusCompleted))
	ctx := context.Background()

	_, err := f.service.SubmitReview(ctx, nil, rentalID, renterID, &dto.SubmitReviewRequest{ReviewTarget: itemTarget, Rating: 4})
	require.NoError(t, err)

	totals, err := f.service.GetGoodTotals(ctx, nil, goodID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), totals.TotalReviews)
	assert.Equal(t, int64(1), totals.StarCounts[4])

	_, err = f.service.GetPartyTotals(ctx, nil, ownerID, "rated_as_guest")
	assert.ErrorIs(t, err, apperrors.ErrInvalidReviewTarget)
}
