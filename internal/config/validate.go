package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their YAML names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError is a single field-level validation failure.
type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors holds every failed rule of a config.
type ValidationErrors struct {
	Errors []ValidationError
}

// Error implements the error interface for ValidationErrors.
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return "invalid config"
	}
	messages := make([]string, len(v.Errors))
	for i, e := range v.Errors {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(messages, "; "))
}

func validateStruct(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	out := &ValidationErrors{}
	for _, e := range fieldErrs {
		out.Errors = append(out.Errors, ValidationError{
			Field:   fieldPath(e),
			Message: formatMessage(e),
		})
	}
	return out
}

// fieldPath turns "Config.gpio.backend" into "gpio.backend".
func fieldPath(e validator.FieldError) string {
	_, path, ok := strings.Cut(e.Namespace(), ".")
	if !ok {
		return e.Namespace()
	}
	return path
}

func formatMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		if e.Kind().String() == "slice" {
			return fmt.Sprintf("must have at least %s entries", e.Param())
		}
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", e.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "unique":
		return "must not contain duplicates"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", e.Param())
	case "uri":
		return "must be a valid URI"
	default:
		return fmt.Sprintf("failed %q rule", e.Tag())
	}
}
