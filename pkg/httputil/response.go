// Package httputil provides shared HTTP utilities for consistent response handling.
package httputil

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the envelope for single-message errors (404, 405, 413, 429, 500).
type ErrorBody struct {
	Error string `json:"error"`
}

// ErrorsBody is the envelope for validation failures (400).
type ErrorsBody struct {
	Errors []string `json:"errors"`
}

// Responder writes JSON responses, optionally indented with two spaces.
type Responder struct {
	Pretty bool
}

// JSON writes data with the given status code.
func (rs Responder) JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if rs.Pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(data)
}

// Error writes {"error": message}.
func (rs Responder) Error(w http.ResponseWriter, status int, message string) {
	rs.JSON(w, status, ErrorBody{Error: message})
}

// Errors writes {"errors": [...]}. A nil slice is written as an empty array.
func (rs Responder) Errors(w http.ResponseWriter, status int, messages []string) {
	if messages == nil {
		messages = []string{}
	}
	rs.JSON(w, status, ErrorsBody{Errors: messages})
}

// WriteNoContent writes a 204 No Content response.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteInternalError writes a compact 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	Responder{}.Error(w, http.StatusInternalServerError, message)
}

// WriteTooManyRequests writes a compact 429 Too Many Requests response.
func WriteTooManyRequests(w http.ResponseWriter, message string) {
	Responder{}.Error(w, http.StatusTooManyRequests, message)
}
