package services

import (
	"context"
	"io"

	"storefront/internal/apperr"
	"storefront/internal/export"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// CategoryView is a category with its display label.
type CategoryView struct {
	ID    models.Category `json:"id"`
	Label string          `json:"label"`
}

// CatalogService handles business logic related to products.
type CatalogService struct {
	repo     repositories.ProductRepository
	validate *validator.Validate
	log      *zap.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo repositories.ProductRepository, log *zap.Logger) *CatalogService {
	return &CatalogService{
		repo:     repo,
		validate: NewValidator(),
		log:      log,
	}
}

// Categories lists the catalog sections in display order.
func (s *CatalogService) Categories() []CategoryView {
	views := make([]CategoryView, 0, len(models.Categories))
	for _, c := range models.Categories {
		views = append(views, CategoryView{ID: c, Label: c.Label()})
	}
	return views
}

// ListAvailable returns products with units in stock, optionally limited to
// one category.
func (s *CatalogService) ListAvailable(ctx context.Context, category string) ([]models.Product, error) {
	filter := repositories.ProductFilter{AvailableOnly: true}
	if category != "" {
		c := models.Category(category)
		if !c.Valid() {
			return nil, apperr.Newf(apperr.Validation, "catalog.list", "unknown category: %s", category)
		}
		filter.Category = c
	}
	return s.repo.List(ctx, filter)
}

// ListAll returns the whole catalog, sold out products included.
func (s *CatalogService) ListAll(ctx context.Context) ([]models.Product, error) {
	return s.repo.List(ctx, repositories.ProductFilter{})
}

// GetProduct retrieves a single product by its ID.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct validates and stores a new product under a fresh ID.
func (s *CatalogService) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := validateStruct(s.validate, "catalog.create", product); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return err
	}
	s.log.Info("product created", zap.String("product_id", product.ID), zap.String("name", product.Name))
	return nil
}

// UpdateProduct replaces the product stored under id.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, product *models.Product) (*models.Product, error) {
	product.ID = id
	if err := validateStruct(s.validate, "catalog.update", product); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	s.log.Info("product updated", zap.String("product_id", id))
	return s.repo.GetByID(ctx, id)
}

// DeleteProduct deletes a product by its ID.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("product deleted", zap.String("product_id", id))
	return nil
}

// Export writes the whole catalog to w as a spreadsheet.
func (s *CatalogService) Export(ctx context.Context, w io.Writer) error {
	products, err := s.ListAll(ctx)
	if err != nil {
		return err
	}
	if err := export.WriteProducts(w, products); err != nil {
		return apperr.Wrap(apperr.Persistence, "catalog.export", err)
	}
	return nil
}

// SeedIfEmpty stores products when the catalog has none and reports how
// many were created.
func (s *CatalogService) SeedIfEmpty(ctx context.Context, products []models.Product) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	for i := range products {
		if err := s.CreateProduct(ctx, &products[i]); err != nil {
			return i, err
		}
	}
	return len(products), nil
}
