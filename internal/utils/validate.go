package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator that also understands "notblank":
// the field must contain something other than whitespace.
func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return validate
}
