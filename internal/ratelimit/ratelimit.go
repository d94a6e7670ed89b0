package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/amishk599/ibwatch/internal/model"
)

// BoardRateLimiter spaces out requests to the same job-board backend. All
// companies on one connector type share a limiter.
type BoardRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter // key: connector type
	delayFor DelayFunc
}

// DelayFunc returns the minimum gap between requests to one connector type.
// A zero or negative delay disables limiting for that type.
type DelayFunc func(connectorType string) time.Duration

// FixedDelay is a DelayFunc that returns d for every connector type.
func FixedDelay(d time.Duration) DelayFunc {
	return func(string) time.Duration { return d }
}

// NewBoardRateLimiter creates a limiter that spaces requests to the same
// connector type by delayFor(connectorType). delayFor is consulted once per
// type, when its limiter is first needed.
func NewBoardRateLimiter(delayFor DelayFunc) *BoardRateLimiter {
	if delayFor == nil {
		delayFor = FixedDelay(0)
	}
	return &BoardRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		delayFor: delayFor,
	}
}

// Wait blocks until a request to connectorType may proceed.
// Returns an error if the context is cancelled while waiting.
func (r *BoardRateLimiter) Wait(ctx context.Context, connectorType string) error {
	if err := r.limiter(connectorType).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", connectorType, err)
	}
	return nil
}

func (r *BoardRateLimiter) limiter(connectorType string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters[connectorType]
	if !ok {
		delay := r.delayFor(connectorType)
		limit := rate.Inf
		if delay > 0 {
			limit = rate.Every(delay)
		}
		l = rate.NewLimiter(limit, 1)
		r.limiters[connectorType] = l
	}
	return l
}

// RateLimitedConnector is a decorator that waits on the shared limiter
// before delegating to the wrapped Connector.
type RateLimitedConnector struct {
	inner         model.Connector
	limiter       *BoardRateLimiter
	connectorType string
}

// NewRateLimitedConnector wraps a Connector with board-level rate limiting.
func NewRateLimitedConnector(inner model.Connector, limiter *BoardRateLimiter, connectorType string) *RateLimitedConnector {
	return &RateLimitedConnector{
		inner:         inner,
		limiter:       limiter,
		connectorType: connectorType,
	}
}

// Fetch waits for the rate limiter to allow a request, then delegates.
func (c *RateLimitedConnector) Fetch(ctx context.Context, board string) ([]model.RawPosting, error) {
	if err := c.limiter.Wait(ctx, c.connectorType); err != nil {
		return nil, err
	}
	return c.inner.Fetch(ctx, board)
}
