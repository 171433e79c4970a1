package models

import (
	"strings"
	"time"

	"storefront/internal/apperr"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusApproved  OrderStatus = "approved"
	OrderStatusDenied    OrderStatus = "denied"
	OrderStatusDelivered OrderStatus = "delivered" // terminal: the order is deleted
)

// OrderStatuses lists the statuses in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusApproved,
	OrderStatusDenied,
	OrderStatusDelivered,
}

// ParseOrderStatus maps a case-insensitive status name to an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(strings.ToLower(strings.TrimSpace(s))) {
	case OrderStatusPending:
		return OrderStatusPending, nil
	case OrderStatusApproved:
		return OrderStatusApproved, nil
	case OrderStatusDenied:
		return OrderStatusDenied, nil
	case OrderStatusDelivered:
		return OrderStatusDelivered, nil
	default:
		return "", apperr.Newf(apperr.Validation, "order.status", "invalid order status: %s", s)
	}
}

// Terminal reports whether reaching s removes the order.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered
}

// BuyerInfo holds the contact and shipping fields captured at checkout.
type BuyerInfo struct {
	BuyerName      string `json:"buyer_name" gorm:"type:varchar(100);not null" validate:"required,max=100"`
	BuyerEmail     string `json:"buyer_email" gorm:"type:varchar(255);not null" validate:"required,email"`
	BuyerPhone     string `json:"buyer_phone" gorm:"type:varchar(30);not null" validate:"required,max=30"`
	ShipCity       string `json:"ship_city" gorm:"type:varchar(100);not null" validate:"required,max=100"`
	ShipDepartment string `json:"ship_department" gorm:"type:varchar(100)" validate:"required,max=100"`
	ShipAddress    string `json:"ship_address" gorm:"type:varchar(255);not null" validate:"required,max=255"`
	ShipZipcode    string `json:"ship_zipcode" gorm:"type:varchar(20)" validate:"omitempty,max=20"`
}

// Order represents a placed customer order.
type Order struct {
	ID          string      `json:"id" gorm:"column:order_id;primaryKey;type:varchar(12)"`
	Total       float64     `json:"total" gorm:"not null"`
	DeliveryFee float64     `json:"delivery_fee" gorm:"not null;default:0"`
	BuyerInfo   `gorm:"embedded"`
	Status      OrderStatus `json:"status" gorm:"type:varchar(16);not null;default:'pending'"`
	Items       []OrderItem `json:"items" gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// OrderItem is the persisted snapshot of a cart line. It carries its own
// key so identical lines in one order do not collide.
type OrderItem struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	OrderID   string  `json:"order_id" gorm:"type:varchar(12);not null;index"`
	Item      `gorm:"embedded"`
	UnitPrice float64 `json:"unit_price" gorm:"not null"`
}
