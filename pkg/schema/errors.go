package schema

import (
	"errors"
	"fmt"
)

// Code classifies a field validation failure.
type Code string

const (
	CodeRequired          Code = "required_field_missing"
	CodeInvalidExpression Code = "invalid_expression"
	CodeInvalidFormat     Code = "invalid_format"
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Key    string // Field name
	Code   Code
	Reason string // Human-readable reason for failure
	Value  string // The value that failed validation
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("field %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("field %q: %s (got %q)", e.Key, e.Reason, e.Value)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}

// Messages flattens err into a field name to reason map, the shape stored on a
// node for display next to each input.
func Messages(err error) map[string]string {
	errs := ValidationErrors(err)
	if len(errs) == 0 {
		return nil
	}
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		var ve *ValidationError
		if errors.As(e, &ve) {
			out[ve.Key] = ve.Reason
		}
	}
	return out
}
