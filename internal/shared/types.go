package shared

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Violation is a single field-level validation failure reported to clients.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violation found in a client payload.
// Handlers report it as InvalidInput with the violations as details.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// NewValidationError returns nil when there is nothing to report.
func NewValidationError(violations []Violation) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}

// SortViolations orders violations by field, then message, so responses are stable.
func SortViolations(v []Violation) {
	sort.Slice(v, func(i, j int) bool {
		if v[i].Field != v[j].Field {
			return v[i].Field < v[j].Field
		}
		return v[i].Message < v[j].Message
	})
}

// ViolationsFromValidation flattens an ozzo-validation result into violations.
// Nested validation.Errors are reported with dotted field names.
func ViolationsFromValidation(err error) []Violation {
	if err == nil {
		return nil
	}

	var out []Violation
	var errs validation.Errors
	if errors.As(err, &errs) {
		for field, fieldErr := range errs {
			var nested validation.Errors
			if errors.As(fieldErr, &nested) {
				for _, v := range ViolationsFromValidation(nested) {
					out = append(out, Violation{Field: field + "." + v.Field, Message: v.Message})
				}
				continue
			}
			out = append(out, Violation{Field: field, Message: fieldErr.Error()})
		}
	} else {
		out = append(out, Violation{Field: "body", Message: err.Error()})
	}

	SortViolations(out)
	return out
}
