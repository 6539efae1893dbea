package apperrors

import (
	"net/http"
)

// =========================================================================
// Фабричные функции
// =========================================================================

// ErrNotFound - фабрика для ошибки "не найдено" (404)
func ErrNotFound(err error, domain, message string) *AppError {
	return Wrap(err, CodeNotFound, domain, message, http.StatusNotFound)
}

// ErrConflict - общая фабрика для конфликтов (409)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidStatus - операция невозможна в текущем статусе
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusConflict)
}

// =========================================================================
// Предопределенные ошибки
// =========================================================================

// --- Rentals ---

var ErrRentalNotFound = New(
	CodeRentalNotFound,
	"rental",
	"Rental not found",
	http.StatusNotFound,
)

var ErrNotRentalParty = New(
	CodeForbidden,
	"rental",
	"Only the owner or the renter of this rental may do this",
	http.StatusForbidden,
)

var ErrSameOwnerAndRenter = New(
	CodeValidationFailed,
	"rental",
	"Ambiguous party: pass the party explicitly for a rental of your own item",
	http.StatusBadRequest,
)

var ErrReturnBeforeStart = New(
	CodeInvalidStatus,
	"rental",
	"Return evidence is not accepted before the rental is active",
	http.StatusConflict,
)

var ErrStatusContention = New(
	CodeConflict,
	"rental",
	"Rental status is being updated concurrently, please retry",
	http.StatusConflict,
)

// --- Evidence ---

var ErrInvalidPhase = New(
	CodeValidationFailed,
	"evidence",
	"Phase must be one of: start, return",
	http.StatusBadRequest,
)

var ErrInvalidParty = New(
	CodeValidationFailed,
	"evidence",
	"Party must be one of: owner, renter",
	http.StatusBadRequest,
)

var ErrInvalidEvidenceKind = New(
	CodeValidationFailed,
	"evidence",
	"Kind must be one of: photo, video",
	http.StatusBadRequest,
)

var ErrFileTooLarge = New(
	CodeLimitExceeded,
	"evidence",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge,
)

var ErrInvalidFileType = New(
	CodeValidationFailed,
	"evidence",
	"The provided file type is not allowed",
	http.StatusUnsupportedMediaType,
)

// --- Reviews ---

var ErrOnlyRenterRatesItem = New(
	CodeItemReviewerNotRenter,
	"review",
	"only the renter may rate the item",
	http.StatusForbidden,
)

var ErrRevieweeNotOwner = New(
	CodeRevieweeNotOwner,
	"review",
	"the reviewee is not the owner of this rental",
	http.StatusBadRequest,
)

var ErrOnlyRenterRatesOwner = New(
	CodeOwnerReviewerNotRenter,
	"review",
	"only the renter may rate the owner",
	http.StatusForbidden,
)

var ErrRevieweeNotRenter = New(
	CodeRevieweeNotRenter,
	"review",
	"the reviewee is not the renter of this rental",
	http.StatusBadRequest,
)

var ErrOnlyOwnerRatesRenter = New(
	CodeRenterReviewerNotOwner,
	"review",
	"only the owner may rate the renter",
	http.StatusForbidden,
)

var ErrInvalidRating = New(
	CodeInvalidRating,
	"review",
	"rating must be an integer from 1 to 5",
	http.StatusBadRequest,
)

var ErrInvalidReviewTarget = New(
	CodeValidationFailed,
	"review",
	"unknown review target",
	http.StatusBadRequest,
)

var ErrItemReviewFirst = New(
	CodeStepOutOfOrder,
	"review",
	"rate the item before rating the owner",
	http.StatusConflict,
)

var ErrReviewsNotOpen = New(
	CodeInvalidStatus,
	"review",
	"reviews open once you have finished the return hand-off",
	http.StatusConflict,
)

var ErrSelfRentalReview = New(
	CodeInvalidOperation,
	"review",
	"reviews do not apply to renting your own item",
	http.StatusBadRequest,
)

// --- Auth ---

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)
