package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/estudia/server/domain"
)

// RequestValidator adapts go-playground/validator to Echo's Validator
// interface. Field names in messages come from json tags so the caller
// sees the name they actually sent.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates the validator used by all handlers.
func NewRequestValidator() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{validate: v}
}

// Validate implements echo.Validator. Failures come back as invalid-input
// errors naming the first offending field.
func (r *RequestValidator) Validate(i interface{}) error {
	err := r.validate.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		switch fe.Tag() {
		case "required", "min":
			return fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, fe.Field())
		default:
			return fmt.Errorf("%w: %s is invalid", domain.ErrInvalidInput, fe.Field())
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
}
