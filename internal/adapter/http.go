package adapter

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds a single board fetch.
const DefaultTimeout = 20 * time.Second

// NewHTTPClient returns the client shared by all connectors. A zero timeout
// falls back to DefaultTimeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
