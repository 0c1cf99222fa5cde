package database

import (
	"context"

	"gorm.io/gorm"
)

// WithTransaction runs fn inside a transaction bound to ctx. fn's error,
// or a panic inside fn, rolls everything back; otherwise the transaction
// commits. Stores use it where readers must never see a half-applied write,
// such as replacing a property's whole competitor set.
func WithTransaction(ctx context.Context, db Database, fn func(tx *gorm.DB) error) error {
	return db.Session(ctx).Transaction(fn)
}
