// Package validation runs struct-tag validation on request payloads and turns
// failures into field-level errors that can be returned to API clients as is.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one invalid field.
//
//	{ "field": "email", "error": "must be a valid email address" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// Errors is returned by Struct when at least one field is invalid.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+" "+fe.Error)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonFieldName)
	})
	return validate
}

// jsonFieldName reports fields by their JSON key so clients see the names
// they sent.
func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return strings.ToLower(f.Name)
	}
	return name
}

// Struct validates v against its `validate` tags. It returns nil, Errors, or
// the validator's own error when v is not a struct.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	out := make(Errors, 0, len(ve))
	for _, fe := range ve {
		out = append(out, FieldError{Field: fe.Field(), Error: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s:%s", fe.Tag(), fe.Param())
	}
	return fe.Tag()
}
