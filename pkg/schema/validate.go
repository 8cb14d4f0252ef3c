package schema

import (
	"strings"

	"github.com/aretw0/weave/pkg/expr"
)

// ValidateField checks a single value against its field definition.
// Returns nil when the value is acceptable.
func ValidateField(f Field, value string) *ValidationError {
	if strings.TrimSpace(value) == "" {
		if f.Required {
			return &ValidationError{Key: f.Name, Code: CodeRequired, Reason: f.Label + " is required"}
		}
		return nil
	}

	if expr.IsExpression(value) {
		if !expr.IsWellFormed(value) {
			return &ValidationError{Key: f.Name, Code: CodeInvalidExpression, Reason: "invalid expression", Value: value}
		}
		return nil
	}

	if err := checkLiteral(f.Type, value); err != nil {
		return &ValidationError{Key: f.Name, Code: CodeInvalidFormat, Reason: err.Error(), Value: value}
	}
	return nil
}

// Validate checks data against every field in order.
// Returns an *AggregateError with all failures found.
func Validate(fields []Field, data map[string]string) error {
	var errs []error
	for _, f := range fields {
		if fe := ValidateField(f, data[f.Name]); fe != nil {
			errs = append(errs, fe)
		}
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
