package types

import "fmt"

// APIError is a non-2xx response from the ESI API.
type APIError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("esi %s returned %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Retryable reports whether the request may succeed if repeated.
// 420 is ESI's error-limit response.
func (e *APIError) Retryable() bool {
	return e.StatusCode == 420 || e.StatusCode == 429 || e.StatusCode >= 500
}
