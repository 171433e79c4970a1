package services

import (
	"context"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FeeLookup prices delivery to a city.
type FeeLookup interface {
	Lookup(city string) (float64, error)
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orders   repositories.OrderRepository
	fees     FeeLookup
	events   EventPublisher
	validate *validator.Validate
	log      *zap.Logger
}

// NewOrderService creates a new OrderService. events may be nil.
func NewOrderService(orders repositories.OrderRepository, fees FeeLookup, events EventPublisher, log *zap.Logger) *OrderService {
	return &OrderService{
		orders:   orders,
		fees:     fees,
		events:   events,
		validate: NewValidator(),
		log:      log,
	}
}

// PlaceOrder turns cart into a stored pending order. The cart is only read.
func (s *OrderService) PlaceOrder(ctx context.Context, cart *models.Cart, buyer models.BuyerInfo) (*models.Order, error) {
	if cart == nil || cart.IsEmpty() {
		return nil, apperr.New(apperr.Validation, "orders.place", "the cart is empty")
	}
	if err := validateStruct(s.validate, "orders.place", buyer); err != nil {
		return nil, err
	}

	fee, err := s.fees.Lookup(buyer.ShipCity)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		items = append(items, models.OrderItem{Item: line.Item, UnitPrice: line.UnitPrice})
	}

	order := &models.Order{
		Total:       cart.Subtotal().Add(decimal.NewFromFloat(fee)).InexactFloat64(),
		DeliveryFee: fee,
		BuyerInfo:   buyer,
		Status:      models.OrderStatusPending,
		Items:       items,
	}
	if err := s.orders.Place(ctx, order); err != nil {
		s.log.Warn("order placement failed", zap.String("city", buyer.ShipCity), zap.Error(err))
		return nil, err
	}

	s.log.Info("order placed",
		zap.String("order_id", order.ID),
		zap.Float64("total", order.Total),
		zap.Int("lines", len(order.Items)))
	publishOrderEvent(ctx, s.events, s.log, EventOrderPlaced, order)
	return order, nil
}

// DeliveryFee returns the fee charged for shipping to city.
func (s *OrderService) DeliveryFee(city string) (float64, error) {
	return s.fees.Lookup(city)
}

// GetOrder retrieves a single order by its ID.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// ListOrders retrieves all orders.
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.orders.List(ctx)
}

// UpdateStatus moves an order to status. Delivered orders are removed; the
// returned order is then the last stored state with the delivered status.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*models.Order, error) {
	next, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if next.Terminal() {
		if err := s.orders.Delete(ctx, id); err != nil {
			return nil, err
		}
		order.Status = next
		s.log.Info("order delivered and removed", zap.String("order_id", id))
		publishOrderEvent(ctx, s.events, s.log, EventOrderDelivered, order)
		return order, nil
	}

	if err := s.orders.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	previous := order.Status
	order.Status = next
	s.log.Info("order status updated",
		zap.String("order_id", id),
		zap.String("from", string(previous)),
		zap.String("to", string(next)))
	publishOrderEvent(ctx, s.events, s.log, EventOrderStatusChanged, order)
	return order, nil
}
