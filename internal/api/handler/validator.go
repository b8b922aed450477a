package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// requestValidator plugs go-playground/validator into echo's c.Validate.
type requestValidator struct {
	check *validator.Validate
}

func NewValidator() *requestValidator {
	return &requestValidator{check: validator.New()}
}

// Validate runs struct tag validation and flattens the failures into one
// readable error, joined with semicolons.
func (rv *requestValidator) Validate(i any) error {
	err := rv.check.Struct(i)
	if err == nil {
		return nil
	}

	var fails validator.ValidationErrors
	if !errors.As(err, &fails) {
		return err
	}

	parts := make([]string, len(fails))
	for i, f := range fails {
		field := strings.ToLower(f.Field())
		switch f.Tag() {
		case "required":
			parts[i] = field + " is required"
		case "email":
			parts[i] = field + " must be a valid email address"
		case "min":
			parts[i] = fmt.Sprintf("%s must be at least %s", field, f.Param())
		case "max":
			parts[i] = fmt.Sprintf("%s must be at most %s", field, f.Param())
		default:
			parts[i] = fmt.Sprintf("%s is invalid (%s)", field, f.Tag())
		}
	}
	return errors.New(strings.Join(parts, "; "))
}
