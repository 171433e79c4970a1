package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"storefront/internal/apperr"
	"storefront/internal/database"
	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestDuplicateOrderIDIsTranslated(t *testing.T) {
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := database.Open(context.Background(), database.DriverSQLite, dsn, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	require.NoError(t, db.Create(&models.Order{ID: "000001", Status: models.OrderStatusPending}).Error)
	err = db.Create(&models.Order{ID: "000001", Status: models.OrderStatusPending}).Error
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestWithIDRetry(t *testing.T) {
	duplicate := fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)

	t.Run("succeeds once the key is free", func(t *testing.T) {
		calls := 0
		err := withIDRetry("orders.place", 3, func() error {
			calls++
			if calls < 3 {
				return duplicate
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after the last attempt", func(t *testing.T) {
		calls := 0
		err := withIDRetry("orders.place", 3, func() error {
			calls++
			return duplicate
		})
		assert.Equal(t, 3, calls)
		assert.Equal(t, apperr.Persistence, apperr.KindOf(err))
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		calls := 0
		err := withIDRetry("orders.place", 3, func() error {
			calls++
			return apperr.New(apperr.InsufficientStock, "orders.place", "not enough units")
		})
		assert.Equal(t, 1, calls)
		assert.Equal(t, apperr.InsufficientStock, apperr.KindOf(err))

		calls = 0
		err = withIDRetry("orders.place", 3, func() error {
			calls++
			return errors.New("disk I/O error")
		})
		assert.Equal(t, 1, calls)
		assert.Equal(t, apperr.Persistence, apperr.KindOf(err))
	})

	t.Run("runs at least once", func(t *testing.T) {
		calls := 0
		require.NoError(t, withIDRetry("orders.place", 0, func() error {
			calls++
			return nil
		}))
		assert.Equal(t, 1, calls)
	})
}
