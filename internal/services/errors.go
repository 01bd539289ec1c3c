package services

import (
	"fmt"

	"github.com/desertthunder/spindle/internal/shared"
)

// APIError is returned for any non-2xx response from the upstream API. It
// carries the upstream status and error payload so write paths can surface a
// structured error to the caller.
type APIError struct {
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("spotify API error: status %d", e.Status)
	}
	return fmt.Sprintf("spotify API error: status %d: %s", e.Status, e.Body)
}

// Unwrap lets callers match with errors.Is(err, shared.ErrAPIRequest).
func (e *APIError) Unwrap() error {
	return shared.ErrAPIRequest
}
