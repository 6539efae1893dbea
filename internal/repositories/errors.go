package repositories

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrRentalNotFound  = errors.New("rental not found")
	ErrStatusConflict  = errors.New("rental status changed since it was read")
	ErrDuplicateReview = errors.New("review already exists for this rental")

	ErrDuplicateEvidence = errors.New("evidence already recorded at this storage path")
	ErrEvidenceNotFound  = errors.New("evidence not found")
)

// isUniqueViolation распознает нарушение уникального индекса как с
// TranslateError, так и без него (сырой *pgconn.PgError).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
