package repositories

import (
	"context"

	"storefront/internal/models"
)

// PlacementLimits bounds order placement.
type PlacementLimits struct {
	// Capacity is the number of stored orders at which placement fails.
	Capacity int64
	// Ceiling is passed to the ID allocator.
	Ceiling int64
	// MaxAttempts bounds retries after an ID collision.
	MaxAttempts int
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	List(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// Place assigns the order its ID, takes the ordered units out of stock
	// and stores the order with its items, all or nothing.
	Place(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error
	// Delete removes the order and its items.
	Delete(ctx context.Context, id string) error
}
