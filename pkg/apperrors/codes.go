package apperrors

// ErrorCode - тип для кодов ошибок
type ErrorCode string

const (
	// Системные ошибки
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Общие ошибки бизнес-логики
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeLimitExceeded    ErrorCode = "LIMIT_EXCEEDED"
	CodeInvalidStatus    ErrorCode = "INVALID_STATUS"
	CodeInvalidOperation ErrorCode = "INVALID_OPERATION"

	// Review gate rejections, one per check so clients can branch on them.
	CodeRentalNotFound         ErrorCode = "RENTAL_NOT_FOUND"
	CodeItemReviewerNotRenter  ErrorCode = "ITEM_REVIEWER_NOT_RENTER"
	CodeRevieweeNotOwner       ErrorCode = "REVIEWEE_NOT_OWNER"
	CodeOwnerReviewerNotRenter ErrorCode = "OWNER_REVIEWER_NOT_RENTER"
	CodeRevieweeNotRenter      ErrorCode = "REVIEWEE_NOT_RENTER"
	CodeRenterReviewerNotOwner ErrorCode = "RENTER_REVIEWER_NOT_OWNER"
	CodeInvalidRating          ErrorCode = "INVALID_RATING"
	CodeStepOutOfOrder         ErrorCode = "REVIEW_STEP_OUT_OF_ORDER"

	// Аутентификация и авторизация
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeInvalidToken ErrorCode = "INVALID_TOKEN"
)
