package services

import (
	"context"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/session"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// OrderPlacer turns a cart into an order.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, cart *models.Cart, buyer models.BuyerInfo) (*models.Order, error)
}

// AddItemRequest is one line to add to a cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

// CartService handles the cart of each session. Every operation works on a
// copy of the stored cart and saves it only on success.
type CartService struct {
	store    session.Store
	locks    *session.Locks
	products repositories.ProductRepository
	orders   OrderPlacer
	validate *validator.Validate
	log      *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(store session.Store, products repositories.ProductRepository, orders OrderPlacer, log *zap.Logger) *CartService {
	return &CartService{
		store:    store,
		locks:    session.NewLocks(),
		products: products,
		orders:   orders,
		validate: NewValidator(),
		log:      log,
	}
}

// GetCart returns the session's cart.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()
	return s.store.Load(ctx, sessionID)
}

// AddItem merges req into the session's cart at the product's current price.
// The product is read under the session lock so the stock check sees the
// latest units.
func (s *CartService) AddItem(ctx context.Context, sessionID string, req AddItemRequest) (*models.Cart, error) {
	if err := validateStruct(s.validate, "cart.add", req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, sessionID, func(cart *models.Cart) error {
		product, err := s.products.GetByID(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if !product.HasColor(req.Color) {
			return apperr.Newf(apperr.Validation, "cart.add", "color %q is not offered for %s", req.Color, product.Name)
		}
		if !product.HasSize(req.Size) {
			return apperr.Newf(apperr.Validation, "cart.add", "size %q is not offered for %s", req.Size, product.Name)
		}
		return cart.Add(models.CartItem{
			Item:      models.Item{ProductID: product.ID, Quantity: req.Quantity, Color: req.Color, Size: req.Size},
			UnitPrice: product.Price,
		}, product.AvailableUnits)
	})
}

// RemoveItem drops one line from the session's cart.
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, key models.ItemKey) (*models.Cart, error) {
	return s.mutate(ctx, sessionID, func(cart *models.Cart) error {
		return cart.Remove(key)
	})
}

// ChangeQuantity applies delta to one line, checked against current stock.
func (s *CartService) ChangeQuantity(ctx context.Context, sessionID string, key models.ItemKey, delta int) (*models.Cart, error) {
	return s.mutate(ctx, sessionID, func(cart *models.Cart) error {
		product, err := s.products.GetByID(ctx, key.ProductID)
		if err != nil {
			return err
		}
		if err := cart.ChangeQuantity(key, delta, product.AvailableUnits); err != nil {
			return err
		}
		cart.Reprice(key, product.Price)
		return nil
	})
}

// Clear empties the session's cart.
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()
	return s.store.Delete(ctx, sessionID)
}

// PlaceOrder checks out the session's cart. The cart is emptied only after
// the order is stored.
func (s *CartService) PlaceOrder(ctx context.Context, sessionID string, buyer models.BuyerInfo) (*models.Order, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.PlaceOrder(ctx, cart, buyer)
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, sessionID); err != nil {
		// The order is already committed.
		s.log.Error("failed to clear cart after checkout",
			zap.String("order_id", order.ID),
			zap.Error(err))
	}
	return order, nil
}

func (s *CartService) mutate(ctx context.Context, sessionID string, fn func(*models.Cart) error) (*models.Cart, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	next := cart.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sessionID, next); err != nil {
		return nil, err
	}
	return next, nil
}
