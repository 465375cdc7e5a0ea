package authsdk

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the service. Message is the
// machine-readable error string from the response envelope.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auth service error (%d): %s", e.StatusCode, e.Message)
}

// IsError reports whether err is an APIError carrying the given message.
func IsError(err error, message string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Message == message
}

// IsUnauthorized reports whether err is a 401 from the service.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsConflict reports whether err is a 409, a taken username or email.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
