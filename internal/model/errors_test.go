package model

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestStatusCode(t *testing.T) {
	wrapped := fmt.Errorf("crawling acme: %w", &HTTPError{StatusCode: 404, Board: "acme", Err: errors.New("not found")})

	if got := StatusCode(wrapped); got != 404 {
		t.Errorf("StatusCode() = %d, want 404", got)
	}
	if got := StatusCode(errors.New("dial tcp: timeout")); got != 0 {
		t.Errorf("StatusCode() = %d, want 0 for non-HTTP error", got)
	}
}

func TestPostedAtOf(t *testing.T) {
	created := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	updated := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	if got := PostedAtOf(RawPosting{}); got != nil {
		t.Errorf("PostedAtOf(empty) = %v, want nil", got)
	}
	if got := PostedAtOf(RawPosting{CreatedAt: &created}); got == nil || !got.Equal(created) {
		t.Errorf("PostedAtOf(created only) = %v, want %v", got, created)
	}
	if got := PostedAtOf(RawPosting{CreatedAt: &created, UpdatedAt: &updated}); got == nil || !got.Equal(updated) {
		t.Errorf("PostedAtOf(both) = %v, want updated %v", got, updated)
	}
}
