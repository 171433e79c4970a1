// Package idalloc derives sequential, zero-padded numeric keys for a table
// column.
//
// Next is not safe on its own against concurrent writers: callers run it in
// the same transaction as the insert and retry on a duplicate key.
package idalloc

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/apperr"

	"gorm.io/gorm"
)

// Width is the minimum number of digits of an allocated ID. IDs above
// 999999 are longer.
const Width = 6

// DefaultCeiling is the largest maximum that still allocates max+1.
const DefaultCeiling int64 = 1_000_000_000

// Source exposes the key column an ID is allocated for.
type Source interface {
	// MaxID returns the largest existing key read as an integer; ok is
	// false when the column has no rows.
	MaxID(ctx context.Context) (max int64, ok bool, err error)
	Exists(ctx context.Context, id string) (bool, error)
}

// Format zero-pads n to Width digits.
func Format(n int64) string {
	return fmt.Sprintf("%0*d", Width, n)
}

// Next returns an ID not present in src. Below the ceiling it is max+1;
// at or above it the lowest free ID from 1 is probed.
func Next(ctx context.Context, src Source, ceiling int64) (string, error) {
	max, ok, err := src.MaxID(ctx)
	if err != nil {
		return "", apperr.Wrap(apperr.Persistence, "idalloc.next", err)
	}
	if !ok {
		return Format(1), nil
	}
	if max < ceiling {
		return Format(max + 1), nil
	}
	for n := int64(1); n <= ceiling; n++ {
		id := Format(n)
		exists, err := src.Exists(ctx, id)
		if err != nil {
			return "", apperr.Wrap(apperr.Persistence, "idalloc.next", err)
		}
		if !exists {
			return id, nil
		}
	}
	return "", apperr.New(apperr.CapacityExceeded, "idalloc.next", "no identifiers left")
}

// GORMSource reads a key column through a *gorm.DB, normally a transaction.
type GORMSource struct {
	DB     *gorm.DB
	Table  string
	Column string
}

func (s GORMSource) MaxID(ctx context.Context) (int64, bool, error) {
	var max sql.NullInt64
	row := s.DB.WithContext(ctx).
		Table(s.Table).
		Select(fmt.Sprintf("MAX(CAST(%s AS BIGINT))", s.Column)).
		Row()
	if err := row.Scan(&max); err != nil {
		return 0, false, fmt.Errorf("failed to read max %s.%s: %w", s.Table, s.Column, err)
	}
	return max.Int64, max.Valid, nil
}

func (s GORMSource) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).
		Table(s.Table).
		Where(fmt.Sprintf("%s = ?", s.Column), id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to probe %s.%s: %w", s.Table, s.Column, err)
	}
	return count > 0, nil
}
