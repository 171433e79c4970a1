package repositories

import (
	"context"

	"storefront/internal/models"
)

// ProductFilter narrows a product listing. The zero value lists everything.
type ProductFilter struct {
	Category      models.Category
	AvailableOnly bool
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	// Create allocates the next sequential ID; any ID already set is replaced.
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}
