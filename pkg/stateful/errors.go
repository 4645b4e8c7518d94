package stateful

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// MessageMalformedBody is the single message reported for unparseable JSON.
const MessageMalformedBody = "Invalid JSON payload"

// NotFoundError is returned when a resource or record does not exist.
type NotFoundError struct {
	// Resource is the collection name.
	Resource string
	// Label is the noun used in the message, e.g. "User".
	Label string
	// ID is the requested id as it appeared in the path.
	ID string
}

func (e *NotFoundError) Error() string {
	label := e.Label
	if label == "" {
		label = e.Resource
	}
	return label + " not found"
}

// StatusCode returns the HTTP status code for this error.
func (e *NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *NotFoundError) Hint() string {
	if e.ID != "" {
		return fmt.Sprintf("Check that id %s exists. Use GET /%s to list available records.", e.ID, e.Resource)
	}
	return fmt.Sprintf("Resource %q is not registered.", e.Resource)
}

// ValidationError carries every payload and reference violation found for
// one write. Nothing is mutated when it is returned.
type ValidationError struct {
	Resource string
	Messages []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s payload: %s", e.Resource, strings.Join(e.Messages, "; "))
}

// StatusCode returns the HTTP status code for this error.
func (e *ValidationError) StatusCode() int {
	return http.StatusBadRequest
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *ValidationError) Hint() string {
	return "Check your request body format and required fields."
}

// MalformedBodyError is returned when the request body is not valid JSON.
type MalformedBodyError struct {
	Err error
}

func (e *MalformedBodyError) Error() string {
	if e.Err != nil {
		return "malformed JSON body: " + e.Err.Error()
	}
	return "malformed JSON body"
}

func (e *MalformedBodyError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status code for this error.
func (e *MalformedBodyError) StatusCode() int {
	return http.StatusBadRequest
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *MalformedBodyError) Hint() string {
	return "Send a JSON object with Content-Type: application/json."
}

// PayloadTooLargeError is returned when request body exceeds size limits.
type PayloadTooLargeError struct {
	MaxSize int64
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("request body too large: max %d bytes allowed", e.MaxSize)
}

// StatusCode returns the HTTP status code for this error.
func (e *PayloadTooLargeError) StatusCode() int {
	return http.StatusRequestEntityTooLarge
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *PayloadTooLargeError) Hint() string {
	return fmt.Sprintf("Reduce request body size to under %d bytes.", e.MaxSize)
}

// StatusCodeError is an interface for errors that have an HTTP status code.
type StatusCodeError interface {
	error
	StatusCode() int
}

// HintError is an interface for errors that provide resolution hints.
type HintError interface {
	error
	Hint() string
}

// ErrorBody is the JSON body for an error. Exactly one of Error or Errors is set.
type ErrorBody struct {
	Error  string   `json:"error,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// ToErrorBody maps an error to its status code and response body:
// validation and malformed bodies use {"errors": [...]}, everything else
// uses {"error": "..."}. Errors without a status code are reported as 500
// and never leak their text.
func ToErrorBody(err error) (int, ErrorBody) {
	var sc StatusCodeError
	if !errors.As(err, &sc) {
		return http.StatusInternalServerError, ErrorBody{Error: "internal error"}
	}

	var (
		ve  *ValidationError
		mb  *MalformedBodyError
		big *PayloadTooLargeError
	)
	switch {
	case errors.As(err, &ve):
		return sc.StatusCode(), ErrorBody{Errors: ve.Messages}
	case errors.As(err, &mb):
		return sc.StatusCode(), ErrorBody{Errors: []string{MessageMalformedBody}}
	case errors.As(err, &big):
		return sc.StatusCode(), ErrorBody{Error: "Request body too large"}
	default:
		return sc.StatusCode(), ErrorBody{Error: sc.Error()}
	}
}

// HintFor returns the resolution hint carried by err, or "".
func HintFor(err error) string {
	var he HintError
	if errors.As(err, &he) {
		return he.Hint()
	}
	return ""
}
