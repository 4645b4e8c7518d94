package validation

import (
	"fmt"
	"strings"
)

// ErrorCode constants for machine-readable error identification
const (
	ErrCodeRequired = "required"
	ErrCodeType     = "type"
	ErrCodeEmpty    = "empty"
	ErrCodeMin      = "min"
	ErrCodeMax      = "max"
	ErrCodeMinItems = "min_items"
	ErrCodeSchema   = "schema"
	ErrCodeBody     = "invalid_body"
)

// ErrorLocation constants
const (
	LocationBody = "body"
	LocationPath = "path"
)

// MessageInvalidBody is reported when the payload is not a JSON object.
const MessageInvalidBody = "Invalid body format"

// FieldError represents a validation error for a single field.
type FieldError struct {
	// Field is the dotted path of the field that failed validation.
	Field string `json:"field,omitempty"`

	// Location indicates where the field is: body or path.
	Location string `json:"location"`

	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable error description including the field name.
	Message string `json:"message"`

	// Received is the value that was received.
	Received any `json:"received,omitempty"`
}

func (e *FieldError) Error() string {
	return e.Message
}

// Result contains the outcome of validation.
type Result struct {
	Valid  bool          `json:"valid"`
	Errors []*FieldError `json:"errors,omitempty"`
}

func newResult() *Result {
	return &Result{Valid: true}
}

// AddError adds a validation error to the result
func (r *Result) AddError(err *FieldError) {
	r.Valid = false
	r.Errors = append(r.Errors, err)
}

// HasErrors returns true if there are any validation errors
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Merge combines another result into this one
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	if !other.Valid {
		r.Valid = false
	}
	r.Errors = append(r.Errors, other.Errors...)
}

// Messages returns the error messages in the order they were found.
func (r *Result) Messages() []string {
	if r == nil {
		return nil
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return msgs
}

// Error joins all messages, so a failed Result can be returned as an error.
func (r *Result) Error() string {
	return strings.Join(r.Messages(), "; ")
}

// NewRequiredError creates an error for a missing required field
func NewRequiredError(field, location string) *FieldError {
	return &FieldError{
		Field:    field,
		Location: location,
		Code:     ErrCodeRequired,
		Message:  fmt.Sprintf("%q is required", field),
	}
}

// NewTypeError creates an error for a value of the wrong JSON type
func NewTypeError(field, location, expected string, received any) *FieldError {
	return &FieldError{
		Field:    field,
		Location: location,
		Code:     ErrCodeType,
		Message:  fmt.Sprintf("%q must be %s", field, article(expected)),
		Received: received,
	}
}

// NewEmptyError creates an error for an empty string in a required field
func NewEmptyError(field, location string) *FieldError {
	return &FieldError{
		Field:    field,
		Location: location,
		Code:     ErrCodeEmpty,
		Message:  fmt.Sprintf("%q must not be empty", field),
		Received: "",
	}
}

// NewMinError creates an error for a number below its lower bound
func NewMinError(field, location string, minVal float64, received any) *FieldError {
	return &FieldError{
		Field:    field,
		Location: location,
		Code:     ErrCodeMin,
		Message:  fmt.Sprintf("%q must be >= %v", field, minVal),
		Received: received,
	}
}

// NewMaxError creates an error for a number above its upper bound
func NewMaxError(field, location string, maxVal float64, received any) *FieldError {
	return &FieldError{
		Field:    field,
		Location: location,
		Code:     ErrCodeMax,
		Message:  fmt.Sprintf("%q must be <= %v", field, maxVal),
		Received: received,
	}
}

// NewMinItemsError creates an error for an array with too few elements
func NewMinItemsError(field, location string, minItems, actual int) *FieldError {
	noun := "items"
	if minItems == 1 {
		noun = "item"
	}
	return &FieldError{
		Field:    field,
		Location: location,
		Code:     ErrCodeMinItems,
		Message:  fmt.Sprintf("%q must contain at least %d %s", field, minItems, noun),
		Received: actual,
	}
}

// NewSchemaError creates an error reported by JSON Schema validation
func NewSchemaError(field, message string) *FieldError {
	msg := message
	if field != "" {
		msg = fmt.Sprintf("%s: %s", field, message)
	}
	return &FieldError{
		Field:    field,
		Location: LocationBody,
		Code:     ErrCodeSchema,
		Message:  msg,
	}
}

// NewBodyError creates an error for a payload that is not a JSON object
func NewBodyError() *FieldError {
	return &FieldError{
		Location: LocationBody,
		Code:     ErrCodeBody,
		Message:  MessageInvalidBody,
	}
}

func article(typ string) string {
	switch typ {
	case "array", "integer", "object":
		return "an " + typ
	default:
		return "a " + typ
	}
}
