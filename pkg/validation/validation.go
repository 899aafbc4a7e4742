package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "brightpath/pkg/domain-errors"
	"brightpath/pkg/strutil"
)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Validate validates a struct using the default validator and returns a domain
// error carrying the first human-readable message.
func Validate(req any) error {
	if err := defaultValidator.Struct(req); err != nil {
		return dErrors.New(dErrors.CodeValidation, ErrorMessage(err))
	}
	return nil
}

// FieldErrors validates a struct and returns every failure as a
// field-name → message map. An empty map means the struct is valid.
// Field names are snake_cased so they match the JSON wire format.
func FieldErrors(req any) map[string]string {
	out := map[string]string{}
	err := defaultValidator.Struct(req)
	if err == nil {
		return out
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		out["request"] = "invalid request body"
		return out
	}
	for _, fe := range validationErrs {
		field := fieldName(fe)
		out[field] = messageFor(fe, field)
	}
	return out
}

// ErrorMessage converts a validator error into a single human-readable message.
func ErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "invalid request body"
	}
	fe := validationErrs[0]
	return messageFor(fe, fieldName(fe))
}

func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		name = fe.StructField()
	}
	return strutil.ToSnakeCase(name)
}

func messageFor(fe validator.FieldError, field string) string {
	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "eq":
		// Only booleans carry eq in this codebase: required consents.
		return fmt.Sprintf("%s must be accepted", field)
	default:
		if field == "" {
			return "invalid request body"
		}
		return fmt.Sprintf("%s is invalid", field)
	}
}
