package validator

import (
	"testing"

	"rentproof_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateReviewRequest(t *testing.T) {
	v := New()

	ok := dto.SubmitReviewRequest{
		ReviewTarget: dto.ReviewTarget{Kind: "party", Role: "rated_as_owner", RevieweeID: "11111111-1111-1111-1111-111111111111"},
		Rating:       5,
	}
	assert.NoError(t, v.Validate(&ok))

	bad := dto.SubmitReviewRequest{
		ReviewTarget: dto.ReviewTarget{Kind: "product", Role: "rated_as_guest", RevieweeID: "nope"},
		Rating:       7,
	}
	err := v.Validate(&bad)
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Must be one of: item, party", vErr.Errors["kind"])
	assert.Equal(t, "Must be one of: rated_as_owner, rated_as_renter", vErr.Errors["role"])
	assert.Equal(t, "Must be a valid UUID", vErr.Errors["reviewee_id"])
	assert.Equal(t, "Must be at most 5", vErr.Errors["rating"])
}

func TestValidateUploadFormUsesFormNames(t *testing.T) {
	v := New()

	err := v.Validate(&dto.UploadEvidenceForm{Phase: "middle", Kind: "photo"})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Errors, "phase")
	assert.NotContains(t, vErr.Errors, "kind")

	assert.NoError(t, v.Validate(&dto.UploadEvidenceForm{Phase: "return", Kind: "video", Party: "renter"}))
}

func TestValidationErrorMessageIsStable(t *testing.T) {
	err := &ValidationError{Errors: map[string]string{"b": "two", "a": "one"}}
	assert.Equal(t, "Validation failed: field 'a': one; field 'b': two", err.Error())
}
