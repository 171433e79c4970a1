package repositories

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/apperr"
	"storefront/internal/idalloc"
	"storefront/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db          *gorm.DB
	ceiling     int64
	maxAttempts int
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB, limits PlacementLimits) *GORMProductRepository {
	return &GORMProductRepository{
		db:          db,
		ceiling:     limits.Ceiling,
		maxAttempts: limits.MaxAttempts,
	}
}

// List retrieves products ordered by ID.
func (r *GORMProductRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Order("product_id")
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.AvailableOnly {
		q = q.Where("available_units > 0")
	}

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, apperr.Wrap(apperr.Persistence, "products.list", fmt.Errorf("failed to list products: %w", err))
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "product_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "products.get", "product with ID %s not found", id)
		}
		return nil, apperr.Wrap(apperr.Persistence, "products.get", fmt.Errorf("failed to get product by ID %s: %w", id, err))
	}
	return &product, nil
}

// Create allocates an ID and inserts the product in one transaction.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	return withIDRetry("products.create", r.maxAttempts, func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			id, err := idalloc.Next(ctx, idalloc.GORMSource{DB: tx, Table: "products", Column: "product_id"}, r.ceiling)
			if err != nil {
				return err
			}
			product.ID = id
			return tx.Create(product).Error
		})
	})
}

// Update overwrites every column of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).
		Model(product).
		Select("*").
		Omit("ID", "CreatedAt").
		Updates(product)
	if res.Error != nil {
		return apperr.Wrap(apperr.Persistence, "products.update", fmt.Errorf("failed to update product: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		return apperr.Newf(apperr.NotFound, "products.update", "product with ID %s not found for update", product.ID)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "product_id = ?", id)
	if res.Error != nil {
		return apperr.Wrap(apperr.Persistence, "products.delete", fmt.Errorf("failed to delete product: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		return apperr.Newf(apperr.NotFound, "products.delete", "product with ID %s not found for deletion", id)
	}
	return nil
}

func (r *GORMProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error; err != nil {
		return 0, apperr.Wrap(apperr.Persistence, "products.count", err)
	}
	return n, nil
}
