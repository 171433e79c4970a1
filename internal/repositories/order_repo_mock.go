package repositories

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/idalloc"
	"storefront/internal/models"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
// Stock is taken from the product repository it was built with.
type MockOrderRepository struct {
	orders   map[string]models.Order
	products *MockProductRepository
	limits   PlacementLimits
	nextItem uint
	mu       sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository(products *MockProductRepository, limits PlacementLimits) *MockOrderRepository {
	return &MockOrderRepository{
		orders:   make(map[string]models.Order),
		products: products,
		limits:   limits,
	}
}

// List returns all orders ordered by ID.
func (r *MockOrderRepository) List(ctx context.Context) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orderList = append(orderList, cloneOrder(order))
	}
	slices.SortFunc(orderList, func(a, b models.Order) int { return strings.Compare(a.ID, b.ID) })
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, apperr.Newf(apperr.NotFound, "orders.get", "order with ID %s not found", id)
	}
	order = cloneOrder(order)
	return &order, nil
}

// Place stores the order under the next sequential ID.
func (r *MockOrderRepository) Place(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if int64(len(r.orders)) >= r.limits.Capacity {
		return apperr.New(apperr.CapacityExceeded, "orders.place", "the store cannot take more orders")
	}
	id, err := idalloc.Next(ctx, mapSource[models.Order](r.orders), r.limits.Ceiling)
	if err != nil {
		return err
	}
	if err := r.products.reserve(order.Items); err != nil {
		return err
	}

	now := time.Now().UTC()
	order.ID = id
	order.CreatedAt = now
	order.UpdatedAt = now
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	for i := range order.Items {
		r.nextItem++
		order.Items[i].ID = r.nextItem
		order.Items[i].OrderID = id
	}
	r.orders[id] = cloneOrder(*order)
	return nil
}

// UpdateStatus updates the status of an order.
func (r *MockOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return apperr.Newf(apperr.NotFound, "orders.update_status", "order with ID %s not found for status update", id)
	}
	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	r.orders[id] = order
	return nil
}

// Delete removes an order and its items.
func (r *MockOrderRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return apperr.Newf(apperr.NotFound, "orders.delete", "order with ID %s not found for deletion", id)
	}
	delete(r.orders, id)
	return nil
}

func cloneOrder(o models.Order) models.Order {
	o.Items = slices.Clone(o.Items)
	return o
}
