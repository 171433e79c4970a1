package handlers

import (
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ContentHandler serves the store profile and help pages.
type ContentHandler struct {
	service *services.ContentService
	log     *zap.Logger
}

func NewContentHandler(service *services.ContentService, log *zap.Logger) *ContentHandler {
	return &ContentHandler{service: service, log: log}
}

func (h *ContentHandler) RegisterRoutes(public, admin fiber.Router) {
	public.Get("/about", h.HandleAbout)
	public.Get("/help", h.HandleHelp)
	admin.Put("/profile", h.HandleUpdateProfile)
}

// UpdateProfileRequest names one profile field and its new value.
type UpdateProfileRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (h *ContentHandler) HandleAbout(c *fiber.Ctx) error {
	entries, err := h.service.About()
	if err != nil {
		return respondError(c, h.log, err, "Could not read store profile")
	}
	return c.JSON(entries)
}

func (h *ContentHandler) HandleHelp(c *fiber.Ctx) error {
	entries, err := h.service.Help()
	if err != nil {
		return respondError(c, h.log, err, "Could not read help")
	}
	return c.JSON(entries)
}

func (h *ContentHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.service.UpdateProfile(req.Field, req.Value); err != nil {
		return respondError(c, h.log, err, "Could not update store profile")
	}
	return c.JSON(fiber.Map{"message": "Profile updated successfully"})
}
