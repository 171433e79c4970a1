package handlers

import (
	"errors"

	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AdminHandler handles HTTP requests for administrator authentication.
type AdminHandler struct {
	service  *services.AdminService
	validate *validator.Validate
	log      *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *services.AdminService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		service:  service,
		validate: services.NewValidator(),
		log:      log,
	}
}

// RegisterRoutes registers the token-protected account routes. Login is
// mounted separately because it runs without a token.
func (h *AdminHandler) RegisterRoutes(admin fiber.Router) {
	admin.Put("/password", h.HandleChangePassword)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest represents the request body for a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

func (h *AdminHandler) invalid(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return badBody(c, err)
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  fieldErrors(validationErrors),
	})
}

// HandleLogin checks the administrator credentials and issues a JWT token.
func (h *AdminHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return h.invalid(c, err)
	}

	token, err := h.service.Login(req.Username, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		h.log.Info("admin login rejected", zap.String("username", req.Username))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication failed",
			"error":   err.Error(),
		})
	}
	if err != nil {
		return respondError(c, h.log, err, "Could not log in")
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}

// HandleChangePassword replaces the administrator password.
func (h *AdminHandler) HandleChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return h.invalid(c, err)
	}

	err := h.service.ChangePassword(req.CurrentPassword, req.NewPassword)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Current password is incorrect",
			"error":   err.Error(),
		})
	}
	if err != nil {
		return respondError(c, h.log, err, "Could not change password")
	}

	h.log.Info("admin password changed")
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}
