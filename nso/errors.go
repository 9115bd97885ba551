package nso

import (
	"errors"
	"fmt"
)

// ErrUnavailable indicates the NSO instance could not be reached at the
// transport level (connection refused, DNS failure, timeout).
var ErrUnavailable = errors.New("nso: backend unavailable")

// ErrInvalidResponse indicates NSO answered with a body that could not be
// parsed as the expected RESTCONF document.
var ErrInvalidResponse = errors.New("nso: invalid backend response")

// RequestError is returned when NSO answers with a non-success status code.
// The body is kept verbatim so callers can surface RESTCONF error details.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("nso: request failed with status %d: %s", e.StatusCode, e.Body)
}
