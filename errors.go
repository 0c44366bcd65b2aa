package wayback

import (
	"fmt"
	"time"
)

// RequestContext carries the context every error from this package is
// annotated with: the URL as the caller requested it, the timestamp
// involved (zero if none applies), and the archive URL that was resolved
// before the error occurred, if any.
type RequestContext struct {
	URL        string
	Timestamp  time.Time
	ArchiveURL string
}

func (c RequestContext) String() string {
	s := c.URL
	if !c.Timestamp.IsZero() {
		s = fmt.Sprintf("%s @ %s", s, c.Timestamp.Format(TimestampLayout))
	}
	if c.ArchiveURL != "" {
		s = fmt.Sprintf("%s (archive url: %s)", s, c.ArchiveURL)
	}
	return s
}

// WaybackError is the base of the error taxonomy. Each error type below
// embeds *WaybackError, so the request context it occurred in is available
// on the leaf value itself; the leaf types do not unwrap to *WaybackError.
type WaybackError struct {
	RequestContext
	Message string
}

func (e *WaybackError) Error() string {
	if e.URL == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.RequestContext.String())
}

func newError(ctx RequestContext, format string, args ...any) *WaybackError {
	return &WaybackError{RequestContext: ctx, Message: fmt.Sprintf(format, args...)}
}

// UnexpectedResponseFormatError is raised when data returned by the Wayback
// Machine is formatted in an unexpected or unparseable way, e.g. a malformed
// CDX line or memento headers that don't fit the expected shape.
type UnexpectedResponseFormatError struct{ *WaybackError }

func newUnexpectedResponseFormatError(ctx RequestContext, format string, args ...any) error {
	return &UnexpectedResponseFormatError{newError(ctx, format, args...)}
}

// NotAWaybackURLError is raised when a string that was expected to be a
// Wayback archive URL doesn't match the expected shape.
type NotAWaybackURLError struct{ *WaybackError }

func newNotAWaybackURLError(url string) error {
	return &NotAWaybackURLError{newError(RequestContext{URL: url}, "not a wayback archive url")}
}

// BlockedByRobotsError is raised when a URL can't be queried because the
// site's robots.txt excludes the Wayback Machine's crawler from serving it.
type BlockedByRobotsError struct{ *WaybackError }

func newBlockedByRobotsError(ctx RequestContext) error {
	return &BlockedByRobotsError{newError(ctx, "blocked by robots.txt")}
}

// BlockedSiteError is raised when a site's content has been excluded from
// the Wayback Machine at the site owner's request.
type BlockedSiteError struct{ *WaybackError }

func newBlockedSiteError(ctx RequestContext) error {
	return &BlockedSiteError{newError(ctx, "excluded from the archive")}
}

// NoMementoError is raised when the requested URL has no captures at all in
// the Wayback Machine.
type NoMementoError struct{ *WaybackError }

func newNoMementoError(ctx RequestContext) error {
	return &NoMementoError{newError(ctx, "no memento found")}
}

// MementoPlaybackError is raised when the Wayback Machine can't play back a
// specific memento: the redirect graph didn't resolve within the allowed
// tolerance or hop count, or the server refused to serve it for a reason
// that isn't one of the other, more specific conditions.
type MementoPlaybackError struct{ *WaybackError }

func newMementoPlaybackError(ctx RequestContext, format string, args ...any) error {
	return &MementoPlaybackError{newError(ctx, format, args...)}
}

// RateLimitError is raised when the Wayback Machine itself (not an archived
// origin server reflected in a memento) returns HTTP 429 and no more
// retries remain. Response bodies are not inspected for rate-limit text, so
// a rate-limit page served with another status does not raise it.
type RateLimitError struct {
	*WaybackError
	RetryAfter time.Duration
}

func newRateLimitError(ctx RequestContext, retryAfter time.Duration) error {
	return &RateLimitError{
		WaybackError: newError(ctx, "rate limited, retry after %s", retryAfter),
		RetryAfter:   retryAfter,
	}
}

// WaybackRetryError is raised when sending a request fails at the transport
// level and either the failure is not retryable or no more retries remain.
// Cause holds that transport error; Elapsed includes server response waits,
// not just sleeps. A response whose status is retryable (such as 503) is
// handed back to the caller once retries run out, not turned into this
// error.
type WaybackRetryError struct {
	*WaybackError
	Retries int
	Elapsed time.Duration
	Cause   error
}

func (e *WaybackRetryError) Unwrap() error { return e.Cause }

func newWaybackRetryError(ctx RequestContext, retries int, elapsed time.Duration, cause error) error {
	return &WaybackRetryError{
		WaybackError: newError(ctx, "retried %d times over %s (cause: %v)", retries, elapsed, cause),
		Retries:      retries,
		Elapsed:      elapsed,
		Cause:        cause,
	}
}

// SessionClosedError is raised when a Session is used after Close has been
// called on it.
type SessionClosedError struct{ *WaybackError }

func newSessionClosedError() error {
	return &SessionClosedError{newError(RequestContext{}, "session already closed")}
}
