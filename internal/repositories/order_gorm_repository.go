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

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db     *gorm.DB
	limits PlacementLimits
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB, limits PlacementLimits) *GORMOrderRepository {
	return &GORMOrderRepository{db: db, limits: limits}
}

// List returns every order with its items, oldest ID first.
func (r *GORMOrderRepository) List(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("order_id").
		Find(&orders).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, "orders.list", fmt.Errorf("failed to list orders: %w", err))
	}
	return orders, nil
}

// GetByID returns an order with its items.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&order, "order_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "orders.get", "order with ID %s not found", id)
		}
		return nil, apperr.Wrap(apperr.Persistence, "orders.get", fmt.Errorf("failed to get order by ID %s: %w", id, err))
	}
	return &order, nil
}

// Place checks capacity, allocates the order ID, decrements stock with one
// conditional UPDATE per item and inserts the order, in one transaction.
// A duplicate ID from a concurrent writer restarts the transaction.
func (r *GORMOrderRepository) Place(ctx context.Context, order *models.Order) error {
	return withIDRetry("orders.place", r.limits.MaxAttempts, func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.Order{}).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to count orders: %w", err)
			}
			if count >= r.limits.Capacity {
				return apperr.New(apperr.CapacityExceeded, "orders.place", "the store cannot take more orders")
			}

			id, err := idalloc.Next(ctx, idalloc.GORMSource{DB: tx, Table: "orders", Column: "order_id"}, r.limits.Ceiling)
			if err != nil {
				return err
			}
			order.ID = id
			for i := range order.Items {
				order.Items[i].ID = 0
				order.Items[i].OrderID = id
			}

			for _, item := range order.Items {
				res := tx.Model(&models.Product{}).
					Where("product_id = ? AND available_units >= ?", item.ProductID, item.Quantity).
					UpdateColumn("available_units", gorm.Expr("available_units - ?", item.Quantity))
				if res.Error != nil {
					return fmt.Errorf("failed to reserve stock for %s: %w", item.ProductID, res.Error)
				}
				if res.RowsAffected == 0 {
					return apperr.Newf(apperr.InsufficientStock, "orders.place", "not enough units of product %s", item.ProductID)
				}
			}

			return tx.Create(order).Error
		})
	})
}

// UpdateStatus stores a non-terminal status.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return apperr.Wrap(apperr.Persistence, "orders.update_status", fmt.Errorf("failed to update order status: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		return apperr.Newf(apperr.NotFound, "orders.update_status", "order with ID %s not found for status update", id)
	}
	return nil
}

// Delete removes the order and its items. Items are deleted explicitly so
// the result does not depend on the driver enforcing the cascade.
func (r *GORMOrderRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete order items: %w", err)
		}
		res := tx.Where("order_id = ?", id).Delete(&models.Order{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.Newf(apperr.NotFound, "orders.delete", "order with ID %s not found for deletion", id)
		}
		return nil
	})
	return classify("orders.delete", err)
}
