package repositories

import (
	"errors"

	"storefront/internal/apperr"

	"gorm.io/gorm"
)

// classify wraps storage failures as Persistence errors and keeps errors
// that already carry a kind.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if apperr.KindOf(err) != apperr.Unknown {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &apperr.Error{Kind: apperr.NotFound, Op: op, Message: "record not found", Err: err}
	}
	return apperr.Wrap(apperr.Persistence, op, err)
}

// withIDRetry runs fn again while it fails with a duplicate key, which is
// how two writers that allocated the same ID find out.
func withIDRetry(op string, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return classify(op, err)
		}
	}
	return apperr.Wrap(apperr.Persistence, op, err)
}
