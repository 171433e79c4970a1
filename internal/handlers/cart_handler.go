package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CartHandler serves the session cart and checkout.
type CartHandler struct {
	service *services.CartService
	log     *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, log *zap.Logger) *CartHandler {
	return &CartHandler{service: service, log: log}
}

// RegisterRoutes registers the cart routes behind the session middleware.
func (h *CartHandler) RegisterRoutes(router fiber.Router, session fiber.Handler) {
	cartRoutes := router.Group("/cart", session)
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items", h.HandleChangeQuantity)
	cartRoutes.Delete("/items", h.HandleRemoveItem)
	cartRoutes.Post("/checkout", h.HandleCheckout)
}

// ChangeQuantityRequest identifies a line and the signed amount to add.
type ChangeQuantityRequest struct {
	models.ItemKey
	Delta int `json:"delta"`
}

func cartView(sessionID string, cart *models.Cart) fiber.Map {
	items := cart.Items
	if items == nil {
		items = []models.CartItem{}
	}
	return fiber.Map{
		"session_id":     sessionID,
		"items":          items,
		"total":          cart.Total(),
		"total_quantity": cart.TotalQuantity(),
	}
}

// HandleGetCart returns the caller's cart.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	sessionID := middleware.SessionID(c)
	cart, err := h.service.GetCart(c.UserContext(), sessionID)
	if err != nil {
		return respondError(c, h.log, err, "Could not retrieve cart")
	}
	return c.JSON(cartView(sessionID, cart))
}

// HandleAddItem adds a product line or merges it into an identical one.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req services.AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	sessionID := middleware.SessionID(c)
	cart, err := h.service.AddItem(c.UserContext(), sessionID, req)
	if err != nil {
		return respondError(c, h.log, err, "Could not add item to cart")
	}
	return c.Status(fiber.StatusCreated).JSON(cartView(sessionID, cart))
}

// HandleChangeQuantity adds delta units to a line.
func (h *CartHandler) HandleChangeQuantity(c *fiber.Ctx) error {
	var req ChangeQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	sessionID := middleware.SessionID(c)
	cart, err := h.service.ChangeQuantity(c.UserContext(), sessionID, req.ItemKey, req.Delta)
	if err != nil {
		return respondError(c, h.log, err, "Could not change item quantity")
	}
	return c.JSON(cartView(sessionID, cart))
}

// HandleRemoveItem drops a line from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	var key models.ItemKey
	if err := c.BodyParser(&key); err != nil {
		return badBody(c, err)
	}

	sessionID := middleware.SessionID(c)
	cart, err := h.service.RemoveItem(c.UserContext(), sessionID, key)
	if err != nil {
		return respondError(c, h.log, err, "Could not remove item from cart")
	}
	return c.JSON(cartView(sessionID, cart))
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	if err := h.service.Clear(c.UserContext(), middleware.SessionID(c)); err != nil {
		return respondError(c, h.log, err, "Could not clear cart")
	}
	return c.JSON(fiber.Map{"message": "Cart cleared"})
}

// HandleCheckout places an order from the cart with the buyer in the body.
func (h *CartHandler) HandleCheckout(c *fiber.Ctx) error {
	var buyer models.BuyerInfo
	if err := c.BodyParser(&buyer); err != nil {
		return badBody(c, err)
	}

	order, err := h.service.PlaceOrder(c.UserContext(), middleware.SessionID(c), buyer)
	if err != nil {
		return respondError(c, h.log, err, "Could not place order")
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}
