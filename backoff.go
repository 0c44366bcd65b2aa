package wayback

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultBackoffBase = 2 * time.Second
	maxBackoff          = 60 * time.Second
	rateLimitFloor       = 60 * time.Second
)

// retryBackoff generates the delay-before-next-attempt sequence for one
// request's retry loop: the first attempt is always immediate; each
// subsequent retry doubles the prior delay, capped at maxBackoff. It
// reuses cenkalti/backoff's exponential curve for the doubling arithmetic
// instead of hand-rolling it, with randomization disabled so the sequence
// stays deterministic and testable.
type retryBackoff struct {
	b *backoff.ExponentialBackOff
}

func newRetryBackoff(base time.Duration) *retryBackoff {
	if base <= 0 {
		base = defaultBackoffBase
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = base
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = maxBackoff
	b.MaxElapsedTime = 0 // the Session tracks elapsed time itself
	b.Reset()
	return &retryBackoff{b: b}
}

// next returns the delay to wait before the next attempt. Call it once per
// retry (not for the initial attempt).
func (r *retryBackoff) next() time.Duration {
	d := r.b.NextBackOff()
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}

// rateLimitDelay applies spec's rate-limit floor: on a 429, the wait is
// never less than the computed backoff, the server's Retry-After, or 60
// seconds -- whichever is largest.
func rateLimitDelay(computed, retryAfter time.Duration) time.Duration {
	delay := computed
	if retryAfter > delay {
		delay = retryAfter
	}
	if rateLimitFloor > delay {
		delay = rateLimitFloor
	}
	return delay
}
