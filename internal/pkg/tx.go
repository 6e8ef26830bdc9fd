package pkg

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"
)

// WithTx runs fn in a transaction bound to ctx. The transaction commits when
// fn returns nil and rolls back when fn fails or panics; the panic is
// re-raised. A rollback failure is joined to fn's error.
func WithTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return errors.New("db is nil")
	}

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		// A cancelled context has already rolled the transaction back.
		if rbErr := tx.Rollback().Error; rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, rbErr)
		}
		return err
	}

	return tx.Commit().Error
}
