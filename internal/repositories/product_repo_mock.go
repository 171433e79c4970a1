package repositories

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/idalloc"
	"storefront/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	ceiling  int64
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
		ceiling:  idalloc.DefaultCeiling,
	}
}

// List returns the matching products ordered by ID.
func (r *MockProductRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.AvailableOnly && p.AvailableUnits <= 0 {
			continue
		}
		productList = append(productList, p)
	}
	slices.SortFunc(productList, func(a, b models.Product) int { return strings.Compare(a.ID, b.ID) })
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, apperr.Newf(apperr.NotFound, "products.get", "product with ID %s not found", id)
	}
	return &product, nil
}

// Create adds a new product under the next sequential ID.
func (r *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := idalloc.Next(ctx, mapSource[models.Product](r.products), r.ceiling)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	product.ID = id
	product.CreatedAt = now
	product.UpdatedAt = now
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return apperr.Newf(apperr.NotFound, "products.update", "product with ID %s not found for update", product.ID)
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now().UTC()
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return apperr.Newf(apperr.NotFound, "products.delete", "product with ID %s not found for deletion", id)
	}
	delete(r.products, id)
	return nil
}

func (r *MockProductRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.products)), nil
}

// reserve takes the units of every item out of stock, or none of them.
func (r *MockProductRepository) reserve(items []models.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	need := map[string]int{}
	for _, item := range items {
		need[item.ProductID] += item.Quantity
	}
	for id, quantity := range need {
		if p, ok := r.products[id]; !ok || p.AvailableUnits < quantity {
			return apperr.Newf(apperr.InsufficientStock, "orders.place", "not enough units of product %s", id)
		}
	}
	for id, quantity := range need {
		p := r.products[id]
		p.AvailableUnits -= quantity
		r.products[id] = p
	}
	return nil
}

// mapSource adapts an in-memory table keyed by ID to idalloc.Source.
type mapSource[T any] map[string]T

func (m mapSource[T]) MaxID(ctx context.Context) (int64, bool, error) {
	var max int64
	found := false
	for id := range m {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			continue
		}
		if !found || n > max {
			max, found = n, true
		}
	}
	return max, found, nil
}

func (m mapSource[T]) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := m[id]
	return ok, nil
}
