package services

import (
	"reflect"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/models"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator that reports JSON field names and knows
// the "category" tag.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	})
	return v
}

func validateStruct(v *validator.Validate, op string, s any) error {
	if err := v.Struct(s); err != nil {
		return &apperr.Error{Kind: apperr.Validation, Op: op, Message: "Validation failed", Err: err}
	}
	return nil
}
