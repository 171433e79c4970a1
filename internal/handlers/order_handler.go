package handlers

import (
	"fmt"

	"storefront/internal/delivery"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
	log     *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{service: service, log: log}
}

// RegisterRoutes registers order lookup and delivery quotes on public and
// order management on admin.
func (h *OrderHandler) RegisterRoutes(public, admin fiber.Router) {
	public.Get("/delivery-fee", h.HandleGetDeliveryFee)
	public.Get("/orders/:id", h.HandleGetOrderByID)

	orderRoutes := admin.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
}

// UpdateStatusRequest is the body of a status change.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// HandleGetDeliveryFee quotes the delivery fee for ?city=.
func (h *OrderHandler) HandleGetDeliveryFee(c *fiber.Ctx) error {
	city := c.Query("city")
	fee, err := h.service.DeliveryFee(city)
	if err != nil {
		return respondError(c, h.log, err, "Could not look up delivery fee")
	}
	return c.JSON(fiber.Map{
		"city": delivery.NormalizeCity(city),
		"fee":  fee,
	})
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err, "Could not retrieve order")
	}
	return c.JSON(order)
}

// HandleGetOrders retrieves all open orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleUpdateOrderStatus updates the status of an order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	order, err := h.service.UpdateStatus(c.UserContext(), orderID, req.Status)
	if err != nil {
		return respondError(c, h.log, err, "Could not update order status")
	}

	message := fmt.Sprintf("Order %s status updated successfully to %s", orderID, order.Status)
	if order.Status == models.OrderStatusDelivered {
		message = fmt.Sprintf("Order %s delivered and removed", orderID)
	}
	return c.JSON(fiber.Map{
		"message": message,
		"order":   order,
	})
}
