package commerce

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches any backend response with status 404.
var ErrNotFound = errors.New("commerce resource not found")

// ResponseError is the structured error envelope returned by the backend
// for any 4xx or 5xx response.
type ResponseError struct {
	StatusCode int    `json:"-"`
	Type       string `json:"type,omitempty"`
	Title      string `json:"title,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

func (e *ResponseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("commerce api: status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("commerce api: status %d: %s", e.StatusCode, e.Title)
}

// Is lets errors.Is(err, ErrNotFound) match 404 envelopes.
func (e *ResponseError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// NewResponseError builds an envelope with a standard title for status.
func NewResponseError(status int, detail string) *ResponseError {
	return &ResponseError{
		StatusCode: status,
		Title:      http.StatusText(status),
		Detail:     detail,
	}
}

// ErrorDetail returns the upstream detail carried by err, or fallback when
// err does not wrap an envelope with a detail.
func ErrorDetail(err error, fallback string) string {
	var respErr *ResponseError
	if errors.As(err, &respErr) && respErr.Detail != "" {
		return respErr.Detail
	}
	return fallback
}
