package mutation

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// statusError is a fixed message with an HTTP status.
type statusError struct {
	msg    string
	status int
}

func (e *statusError) Error() string   { return e.msg }
func (e *statusError) HTTPStatus() int { return e.status }

var (
	// ErrUnauthorized is returned by every mutation made without a session.
	ErrUnauthorized error = &statusError{"Unauthorized", http.StatusUnauthorized}
	ErrNotFound     error = &statusError{"Not found", http.StatusNotFound}
	ErrBadRequest   error = &statusError{"Invalid request body", http.StatusBadRequest}
)

// OpError reports a failed database operation as "Failed to <op>". The
// underlying error is kept for logs and errors.Is but never shown to clients.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string   { return "Failed to " + e.Op }
func (e *OpError) Unwrap() error   { return e.Err }
func (e *OpError) HTTPStatus() int { return http.StatusInternalServerError }

// ValidationError carries per-field messages keyed by the JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, e.Fields[k]))
	}
	return "Validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) HTTPStatus() int                { return http.StatusUnprocessableEntity }
func (e *ValidationError) FieldErrors() map[string]string { return e.Fields }

// Invalid builds a single-field validation error.
func Invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
