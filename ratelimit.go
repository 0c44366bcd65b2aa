package wayback

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// endpoint names the two logical endpoints a Session rate-limits
// independently.
type endpoint string

const (
	endpointSearch  endpoint = "search"
	endpointMemento endpoint = "memento"
)

// newLimiter builds a token-bucket limiter admitting ratePerSecond calls
// per second with a burst of 1, so the first call always passes
// immediately and subsequent calls are spaced at least 1/rate apart --
// matching spec's "monotonic-clock token computation" description, backed
// by the standard library's rate limiter instead of hand-rolled sleep
// math.
func newLimiter(ratePerSecond float64) *rate.Limiter {
	if ratePerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(ratePerSecond), 1)
}

// waitOn blocks until lim admits one call, honoring ctx cancellation, and
// reports how long the caller waited.
func waitOn(ctx context.Context, lim *rate.Limiter) (time.Duration, error) {
	start := time.Now()
	if err := lim.Wait(ctx); err != nil {
		return time.Since(start), err
	}
	return time.Since(start), nil
}
