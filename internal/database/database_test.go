package database_test

import (
	"context"
	"testing"

	"storefront/internal/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpen_SQLiteMigrates(t *testing.T) {
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := database.Open(context.Background(), database.DriverSQLite, dsn, zap.NewNop())
	require.NoError(t, err)

	for _, table := range []string{"products", "orders", "order_items"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := database.Open(context.Background(), "mysql", "x", zap.NewNop())
	assert.Error(t, err)
}
