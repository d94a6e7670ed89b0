package model

import (
	"errors"
	"fmt"
)

// HTTPError is returned by a Connector when the board answers with a
// non-success status.
type HTTPError struct {
	StatusCode int
	Board      string
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// StatusCode extracts the board status from err, or 0 when err did not come
// from a non-success response.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
