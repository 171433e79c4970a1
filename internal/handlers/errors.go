package handlers

import (
	"errors"
	"fmt"

	"storefront/internal/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var statusByKind = map[apperr.Kind]int{
	apperr.Validation:        fiber.StatusBadRequest,
	apperr.InsufficientStock: fiber.StatusConflict,
	apperr.NotFound:          fiber.StatusNotFound,
	apperr.CapacityExceeded:  fiber.StatusServiceUnavailable,
	apperr.Persistence:       fiber.StatusInternalServerError,
}

// respondError writes err as {"message", "error"} with the status of its
// kind. Validation failures also carry a per-field "errors" map.
func respondError(c *fiber.Ctx, log *zap.Logger, err error, fallback string) error {
	kind := apperr.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = fiber.StatusInternalServerError
	}

	body := fiber.Map{
		"message": apperr.MessageOf(err, fallback),
		"error":   kind.String(),
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		body["errors"] = fieldErrors(validationErrors)
	}

	if status >= fiber.StatusInternalServerError {
		log.Error(fallback, zap.String("path", c.Path()), zap.Error(err))
	} else {
		log.Debug(fallback, zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(status).JSON(body)
}

func fieldErrors(validationErrors validator.ValidationErrors) map[string]string {
	errorMessages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return errorMessages
}

func badBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}
