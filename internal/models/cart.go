package models

import (
	"slices"

	"storefront/internal/apperr"

	"github.com/shopspring/decimal"
)

// Item is a line item shape shared by carts and orders.
type Item struct {
	ProductID string `json:"product_id" gorm:"type:varchar(12);not null;index"`
	Quantity  int    `json:"quantity" gorm:"not null;check:quantity > 0"`
	Color     string `json:"color" gorm:"type:varchar(50)"`
	Size      string `json:"size" gorm:"type:varchar(50)"`
}

// ItemKey identifies a cart line. Quantity is not part of it.
type ItemKey struct {
	ProductID string `json:"product_id" validate:"required"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

// Key returns the identity of the item.
func (i Item) Key() ItemKey {
	return ItemKey{ProductID: i.ProductID, Color: i.Color, Size: i.Size}
}

// CartItem is an Item held in a session cart with the unit price seen when
// it was last added or changed.
type CartItem struct {
	Item
	UnitPrice float64 `json:"unit_price"`
}

// LineTotal is unit price times quantity.
func (ci CartItem) LineTotal() decimal.Decimal {
	return decimal.NewFromFloat(ci.UnitPrice).Mul(decimal.NewFromInt(int64(ci.Quantity)))
}

// Cart is the ordered set of lines of one session.
type Cart struct {
	Items []CartItem `json:"items"`
}

func (c *Cart) index(key ItemKey) int {
	return slices.IndexFunc(c.Items, func(ci CartItem) bool { return ci.Key() == key })
}

// Line returns the line identified by key.
func (c *Cart) Line(key ItemKey) (CartItem, bool) {
	if i := c.index(key); i >= 0 {
		return c.Items[i], true
	}
	return CartItem{}, false
}

// Add merges line into the cart. available is the related product's stock;
// the cart is left untouched when the resulting quantity would exceed it.
func (c *Cart) Add(line CartItem, available int) error {
	if line.Quantity <= 0 {
		return apperr.New(apperr.Validation, "cart.add", "quantity must be greater than zero")
	}
	if i := c.index(line.Key()); i >= 0 {
		// Compared without adding so a huge quantity cannot wrap around.
		if line.Quantity > available-c.Items[i].Quantity {
			return insufficientStock("cart.add", available)
		}
		c.Items[i].Quantity += line.Quantity
		c.Items[i].UnitPrice = line.UnitPrice
		return nil
	}
	if line.Quantity > available {
		return insufficientStock("cart.add", available)
	}
	c.Items = append(c.Items, line)
	return nil
}

// Remove drops the line identified by key.
func (c *Cart) Remove(key ItemKey) error {
	i := c.index(key)
	if i < 0 {
		return apperr.New(apperr.NotFound, "cart.remove", "item is not in the cart")
	}
	c.Items = slices.Delete(c.Items, i, i+1)
	return nil
}

// ChangeQuantity applies delta to the line identified by key. The line is
// unchanged when the result is not positive or exceeds available.
func (c *Cart) ChangeQuantity(key ItemKey, delta, available int) error {
	i := c.index(key)
	if i < 0 {
		return apperr.New(apperr.NotFound, "cart.change_quantity", "item is not in the cart")
	}
	current := c.Items[i].Quantity
	if delta > available-current {
		return insufficientStock("cart.change_quantity", available)
	}
	if delta <= -current {
		return apperr.New(apperr.Validation, "cart.change_quantity", "quantity must stay greater than zero")
	}
	c.Items[i].Quantity = current + delta
	return nil
}

// Reprice sets the unit price of the line identified by key.
func (c *Cart) Reprice(key ItemKey, price float64) {
	if i := c.index(key); i >= 0 {
		c.Items[i].UnitPrice = price
	}
}

// Subtotal is the decimal sum of all line totals.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, ci := range c.Items {
		total = total.Add(ci.LineTotal())
	}
	return total
}

// Total is Subtotal as a float; 0 for an empty cart.
func (c *Cart) Total() float64 {
	return c.Subtotal().InexactFloat64()
}

// TotalQuantity is the sum of all line quantities.
func (c *Cart) TotalQuantity() int {
	n := 0
	for _, ci := range c.Items {
		n += ci.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool { return len(c.Items) == 0 }

// Clear drops every line.
func (c *Cart) Clear() { c.Items = nil }

// Clone returns a deep copy so a failed operation can be discarded.
func (c *Cart) Clone() *Cart {
	return &Cart{Items: slices.Clone(c.Items)}
}

func insufficientStock(op string, available int) error {
	return apperr.Newf(apperr.InsufficientStock, op, "not enough units available (%d in stock)", available)
}
