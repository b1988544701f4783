package store

import (
	"fmt"
	"net/http"
	"strings"
)

// NotFoundError is returned when a collection or item does not exist.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("resource %q item %q not found", e.Resource, e.Key)
	}
	return fmt.Sprintf("resource %q not found", e.Resource)
}

// StatusCode returns the HTTP status code for this error.
func (e *NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

// Hint returns a suggestion for resolving this error.
func (e *NotFoundError) Hint() string {
	if e.Key != "" {
		return fmt.Sprintf("Items are addressed by id, uuid or list index. Use GET /%s to list available items.", e.Resource)
	}
	return fmt.Sprintf("Resource %q is not served.", e.Resource)
}

// ConflictError is returned when an item with the same key already exists.
type ConflictError struct {
	Resource string
	Key      string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("resource %q item %q already exists", e.Resource, e.Key)
}

// StatusCode returns the HTTP status code for this error.
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Hint returns a suggestion for resolving this error.
func (e *ConflictError) Hint() string {
	return fmt.Sprintf("Item %q already exists. Use PUT to replace it or omit the key to have one assigned.", e.Key)
}

// FieldError describes one invalid field of a request body.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a request body does not match the
// schema.
type ValidationError struct {
	Resource string
	Fields   []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		if f.Field == "" {
			parts[i] = f.Message
			continue
		}
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// StatusCode returns the HTTP status code for this error.
func (e *ValidationError) StatusCode() int {
	return http.StatusUnprocessableEntity
}

// Hint returns a suggestion for resolving this error.
func (e *ValidationError) Hint() string {
	return fmt.Sprintf("See GET /openapi.json for the %s schema.", e.Resource)
}

// QueryError is returned for malformed list query parameters.
type QueryError struct {
	Param   string
	Message string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid query parameter %q: %s", e.Param, e.Message)
}

// StatusCode returns the HTTP status code for this error.
func (e *QueryError) StatusCode() int {
	return http.StatusBadRequest
}

// Hint returns a suggestion for resolving this error.
func (e *QueryError) Hint() string {
	if e.Param == "where" {
		return "where takes a boolean expr-lang expression over item fields, e.g. where=age > 30 && active."
	}
	return "limit and offset take non-negative integers; order takes asc or desc."
}

// PayloadTooLargeError is returned when a request body exceeds the limit.
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

// Hint returns a suggestion for resolving this error.
func (e *PayloadTooLargeError) Hint() string {
	return fmt.Sprintf("Reduce request body size to under %d bytes.", e.MaxSize)
}

// StatusCodeError is an error carrying an HTTP status code.
type StatusCodeError interface {
	error
	StatusCode() int
}

// HintError is an error carrying a resolution hint.
type HintError interface {
	error
	Hint() string
}

// ErrorResponse is the JSON body of an error reply.
type ErrorResponse struct {
	Error      string       `json:"error"`
	Detail     string       `json:"detail,omitempty"`
	Resource   string       `json:"resource,omitempty"`
	Key        string       `json:"key,omitempty"`
	Fields     []FieldError `json:"fields,omitempty"`
	Hint       string       `json:"hint,omitempty"`
	StatusCode int          `json:"-"`
}

// ToErrorResponse converts an error to an ErrorResponse.
func ToErrorResponse(err error) *ErrorResponse {
	resp := &ErrorResponse{}

	switch e := err.(type) {
	case *NotFoundError:
		resp.Error = "resource not found"
		resp.Resource = e.Resource
		resp.Key = e.Key
	case *ConflictError:
		resp.Error = "resource already exists"
		resp.Resource = e.Resource
		resp.Key = e.Key
	case *ValidationError:
		resp.Error = "invalid request"
		resp.Resource = e.Resource
		resp.Fields = e.Fields
	case *QueryError:
		resp.Error = "invalid query"
		resp.Detail = e.Error()
	case *PayloadTooLargeError:
		resp.Error = "payload too large"
		resp.Detail = e.Error()
	default:
		resp.Error = "internal error"
		resp.Detail = err.Error()
		resp.StatusCode = http.StatusInternalServerError
		return resp
	}

	if sc, ok := err.(StatusCodeError); ok {
		resp.StatusCode = sc.StatusCode()
	}
	if h, ok := err.(HintError); ok {
		resp.Hint = h.Hint()
	}
	return resp
}
