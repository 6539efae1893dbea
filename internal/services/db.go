package services

import (
	"context"

	"gorm.io/gorm"
)

// scoped binds the request context to the handle DBMiddleware injected.
// A nil handle stays nil so repositories can be exercised without a database.
func scoped(ctx context.Context, db *gorm.DB) *gorm.DB {
	if db == nil {
		return nil
	}
	return db.WithContext(ctx)
}
