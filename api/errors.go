package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/teranos/jobtrack/errors"
)

// Error is a non-2xx response from the job API.
type Error struct {
	Method string
	Path   string
	Status int
	// Message is the body's "message" field, empty when the server sent none.
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.Status, http.StatusText(e.Status), e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// newError decodes the response body and marks the result with the
// sentinel matching its status, so errors.Is works across the codebase.
func newError(method, path string, status int, body []byte) error {
	apiErr := &Error{Method: method, Path: path, Status: status}

	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		apiErr.Message = payload.Message
	}

	switch {
	case status == http.StatusUnauthorized:
		return errors.Mark(apiErr, errors.ErrUnauthorized)
	case status == http.StatusNotFound:
		return errors.Mark(apiErr, errors.ErrNotFound)
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity, status == http.StatusConflict:
		return errors.Mark(apiErr, errors.ErrInvalidRequest)
	case status >= 500:
		return errors.Mark(apiErr, errors.ErrServiceUnavailable)
	}
	return apiErr
}

// ServerMessage returns the message the server attached to err, if any.
func ServerMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
