package openalex

import (
	"errors"
	"fmt"
)

// Common errors returned by the OpenAlex client.
var (
	// ErrNotFound indicates the work was not found.
	ErrNotFound = errors.New("not found in OpenAlex")

	// ErrInvalidID indicates the identifier matched no known format.
	ErrInvalidID = errors.New("invalid identifier format")

	// ErrNetworkError indicates a transport-level failure.
	ErrNetworkError = errors.New("network error communicating with OpenAlex")

	// ErrInvalidResponse indicates an unexpected API response body.
	ErrInvalidResponse = errors.New("invalid response from OpenAlex")
)

// APIError represents a non-200 response from the OpenAlex API.
type APIError struct {
	StatusCode int
	Code       string // Error field from the API body (e.g. "404 Not Found")
	Message    string
	UID        string // Identifier that triggered the error, for context
}

func (e *APIError) Error() string {
	if e.UID != "" {
		return fmt.Sprintf("OpenAlex API error (status %d): %s: %s (uid: %s)", e.StatusCode, e.Code, e.Message, e.UID)
	}
	return fmt.Sprintf("OpenAlex API error (status %d): %s: %s", e.StatusCode, e.Code, e.Message)
}

// IsNotFound returns true if the error indicates a missing work.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}
