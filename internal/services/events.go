package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/models"

	"go.uber.org/zap"
)

// Routing keys of order lifecycle events.
const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderDelivered     = "order.delivered"
)

// EventPublisher ships an encoded event to a broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// OrderEvent is the payload of every order lifecycle event.
type OrderEvent struct {
	Type        string             `json:"type"`
	OrderID     string             `json:"order_id"`
	Status      models.OrderStatus `json:"status"`
	Total       float64            `json:"total"`
	DeliveryFee float64            `json:"delivery_fee"`
	ShipCity    string             `json:"ship_city"`
	Units       int                `json:"units"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

func newOrderEvent(kind string, order *models.Order) OrderEvent {
	units := 0
	for _, item := range order.Items {
		units += item.Quantity
	}
	return OrderEvent{
		Type:        kind,
		OrderID:     order.ID,
		Status:      order.Status,
		Total:       order.Total,
		DeliveryFee: order.DeliveryFee,
		ShipCity:    order.ShipCity,
		Units:       units,
		OccurredAt:  time.Now().UTC(),
	}
}

// publishOrderEvent never fails the caller: a lost event is logged.
func publishOrderEvent(ctx context.Context, pub EventPublisher, log *zap.Logger, kind string, order *models.Order) {
	if pub == nil {
		return
	}
	body, err := json.Marshal(newOrderEvent(kind, order))
	if err != nil {
		log.Error("failed to encode order event", zap.String("event", kind), zap.Error(err))
		return
	}
	if err := pub.Publish(ctx, kind, body); err != nil {
		log.Warn("failed to publish order event",
			zap.String("event", kind),
			zap.String("order_id", order.ID),
			zap.Error(err))
		return
	}
	log.Debug("published order event", zap.String("event", kind), zap.String("order_id", order.ID))
}

// AuditOrderEvent returns a consumer callback that decodes an order event
// and records it in the log. Undecodable bodies are reported as errors.
func AuditOrderEvent(log *zap.Logger) func(body []byte) error {
	return func(body []byte) error {
		var event OrderEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return fmt.Errorf("failed to decode order event: %w", err)
		}
		if event.OrderID == "" {
			return fmt.Errorf("order event %q has no order_id", event.Type)
		}
		log.Info("order event received",
			zap.String("event", event.Type),
			zap.String("order_id", event.OrderID),
			zap.String("status", string(event.Status)),
			zap.Float64("total", event.Total),
			zap.Int("units", event.Units))
		return nil
	}
}
