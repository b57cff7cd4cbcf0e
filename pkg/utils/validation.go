package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their json/yaml name so messages match what callers sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "yaml"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// FieldProblem describes one failed validation rule.
type FieldProblem struct {
	Field  string
	Reason string
}

// ValidateStruct validates a struct based on its validation tags
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// FieldProblems validates s and returns every failed rule in field order.
// A nil result means s is valid.
func FieldProblems(s interface{}) []FieldProblem {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []FieldProblem{{Field: "", Reason: err.Error()}}
	}
	problems := make([]FieldProblem, 0, len(validationErrors))
	for _, e := range validationErrors {
		problems = append(problems, FieldProblem{Field: e.Field(), Reason: formatReason(e)})
	}
	return problems
}

// formatValidationError formats validation errors into readable messages
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, e.Field()+" "+formatReason(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

// formatReason formats a single field validation error without the field name
func formatReason(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", e.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "datetime":
		return fmt.Sprintf("must be a date in %s format", e.Param())
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}
