package wayback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/edgi-govdata-archiving/wayback/waybackmetrics"
)

const defaultBaseURL = "https://web.archive.org"

var retryableStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Session owns the HTTP transport, retry policy, and per-endpoint rate
// limiters shared by every request a Client makes. It pools connections
// across requests, is not safe for concurrent use by more than one
// goroutine, and must be closed when no longer needed. Closing a Session
// closes its connection pool; any further use raises SessionClosedError.
type Session struct {
	client    *http.Client
	transport *http.Transport
	baseURL   string
	userAgent string

	retries     map[endpoint]int
	backoffBase time.Duration

	limiters map[endpoint]*rate.Limiter

	logger  *zerolog.Logger
	metrics waybackmetrics.Collector

	closed atomic.Bool
}

// SessionOption configures a Session at construction time.
type SessionOption func(*Session)

// WithUserAgent overrides the default User-Agent string.
func WithUserAgent(ua string) SessionOption {
	return func(s *Session) { s.userAgent = ua }
}

// WithTimeout sets the per-read timeout applied to the underlying socket
// (not a whole-request wall-clock timeout). Zero disables it.
func WithTimeout(d time.Duration) SessionOption {
	return func(s *Session) { s.transport.DialContext = dialWithReadTimeout(d) }
}

// WithRetries sets the maximum retry attempts for search and memento
// requests independently.
func WithRetries(search, memento int) SessionOption {
	return func(s *Session) {
		s.retries[endpointSearch] = search
		s.retries[endpointMemento] = memento
	}
}

// WithBackoffBase sets the base duration for exponential backoff between
// retries (default 2s).
func WithBackoffBase(d time.Duration) SessionOption {
	return func(s *Session) { s.backoffBase = d }
}

// WithRateLimits sets calls-per-second for the search and memento
// endpoints independently (defaults: 1/sec search, 30/sec memento).
func WithRateLimits(searchPerSecond, mementoPerSecond float64) SessionOption {
	return func(s *Session) {
		s.limiters[endpointSearch] = newLimiter(searchPerSecond)
		s.limiters[endpointMemento] = newLimiter(mementoPerSecond)
	}
}

// WithLogger sets the zerolog.Logger used when a request's context.Context
// doesn't already carry one via zerolog.Ctx.
func WithLogger(logger zerolog.Logger) SessionOption {
	return func(s *Session) { s.logger = &logger }
}

// WithMetrics sets the collector a Session reports request/retry/rate-limit
// observations into.
func WithMetrics(m waybackmetrics.Collector) SessionOption {
	return func(s *Session) { s.metrics = m }
}

// WithBaseURL overrides the archive host (default https://web.archive.org).
// Primarily useful for pointing a Session at a test server.
func WithBaseURL(base string) SessionOption {
	return func(s *Session) { s.baseURL = strings.TrimRight(base, "/") }
}

// WithMaxIdleConnsPerHost tunes the connection pool size (default 16).
func WithMaxIdleConnsPerHost(n int) SessionOption {
	return func(s *Session) { s.transport.MaxIdleConnsPerHost = n }
}

// NewSession builds a Session with sensible defaults: a 60s per-read
// timeout, 6 retries for search and 3 for memento requests, a 2s backoff
// base, and rate limits of 1/sec (search) and 30/sec (memento).
func NewSession(opts ...SessionOption) *Session {
	transport := &http.Transport{
		MaxIdleConnsPerHost: 16,
		DialContext:         dialWithReadTimeout(60 * time.Second),
	}

	s := &Session{
		transport: transport,
		client: &http.Client{
			Transport: transport,
			// Redirects are navigated by hand (see GetMemento): a 3xx from
			// Wayback can be either an archival-internal hop or a
			// historical fact about the archived page, and those are
			// distinguished by inspecting the response, not by following
			// it automatically.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		baseURL:     defaultBaseURL,
		backoffBase: defaultBackoffBase,
		retries: map[endpoint]int{
			endpointSearch:  6,
			endpointMemento: 3,
		},
		limiters: map[endpoint]*rate.Limiter{
			endpointSearch:  newLimiter(1),
			endpointMemento: newLimiter(30),
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.userAgent == "" {
		s.userAgent = "wayback/" + Version + " (+https://github.com/edgi-govdata-archiving/wayback)"
	}

	return s
}

// Close closes the Session's connection pool. Subsequent operations on the
// Session (or a Client wrapping it) raise SessionClosedError. Close is
// idempotent.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.transport.CloseIdleConnections()
	return nil
}

// WithSession runs fn with a freshly constructed Session, guaranteeing the
// Session is closed on every exit path (return, panic, or error). This is
// the scoped-acquisition helper spec.md calls for in languages without
// context-manager syntax.
func WithSession(opts []SessionOption, fn func(*Session) error) error {
	s := NewSession(opts...)
	defer s.Close()
	return fn(s)
}

// archiveURL builds the playback URL for targetURL at timestamp against
// this Session's configured base URL (https://web.archive.org by
// default, or a test server's URL when overridden via WithBaseURL).
func (s *Session) archiveURL(targetURL string, timestamp time.Time, mode PlaybackMode) string {
	return fmt.Sprintf("%s/web/%s%s/%s", s.baseURL, FormatTimestamp(timestamp), mode, targetURL)
}

func (s *Session) loggerFor(ctx context.Context) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return *l
	}
	if s.logger != nil {
		return *s.logger
	}
	return log.Logger
}

// do executes one logical request (including its own retry loop) against
// ep, returning the final response unclosed for the caller to consume, or
// an error. It honors ctx cancellation at every suspension point: the
// rate-limiter wait, between retries, and while the request is in flight.
func (s *Session) do(ctx context.Context, ep endpoint, req *http.Request) (*http.Response, error) {
	if s.closed.Load() {
		return nil, newSessionClosedError()
	}

	requestID := uuid.NewString()
	logger := s.loggerFor(ctx).With().
		Str("request_id", requestID).
		Str("endpoint", string(ep)).
		Str("url", req.URL.String()).
		Logger()

	wait, err := waitOn(ctx, s.limiters[ep])
	if err != nil {
		return nil, err
	}
	if wait > 0 {
		logger.Debug().Dur("wait", wait).Msg("rate limiter delayed request")
		if s.metrics != nil {
			s.metrics.ObserveRateLimitWait(string(ep), wait)
		}
	}

	maxRetries := s.retries[ep]
	bo := newRetryBackoff(s.backoffBase)
	reqCtx := RequestContext{URL: req.URL.String()}
	start := time.Now()

	for attempt := 0; ; attempt++ {
		attemptReq := req.Clone(ctx)
		resp, sendErr := s.client.Do(attemptReq)

		if sendErr != nil {
			if attempt >= maxRetries || !isRetryableTransportError(sendErr) {
				return nil, newWaybackRetryError(reqCtx, attempt, time.Since(start), sendErr)
			}
		} else {
			if attempt >= maxRetries || !shouldRetryResponse(resp) {
				if resp.StatusCode == http.StatusTooManyRequests && resp.Header.Get("Memento-Datetime") == "" {
					retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
					if closeErr := drainAndClose(resp); closeErr != nil {
						logger.Warn().Err(closeErr).Msg("error draining rate-limited response body")
					}
					return nil, newRateLimitError(reqCtx, retryAfter)
				}
				if s.metrics != nil {
					s.metrics.ObserveRequest(string(ep), resp.StatusCode, time.Since(start))
				}
				return resp, nil
			}
			if closeErr := drainAndClose(resp); closeErr != nil {
				logger.Warn().Err(closeErr).Msg("error draining retried response body")
			}
		}

		if s.metrics != nil {
			s.metrics.ObserveRetry(string(ep), attempt+1)
		}

		delay := bo.next()
		if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
			delay = rateLimitDelay(delay, parseRetryAfter(resp.Header.Get("Retry-After")))
		}

		logger.Warn().Err(sendErr).Dur("delay", delay).Int("attempt", attempt+1).Msg("retrying wayback request")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// shouldRetryResponse reports whether resp warrants another attempt. A
// memento response (one carrying Memento-Datetime) is never retried, even
// if its status is one of the normally-retryable ones: that status is a
// fact about the archived capture, not about our request to Wayback. See
// spec's critical nuance on archive 429s vs. archived 429s.
func shouldRetryResponse(resp *http.Response) bool {
	if resp.Header.Get("Memento-Datetime") != "" {
		return false
	}
	return retryableStatuses[resp.StatusCode]
}

func isRetryableTransportError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	return false
}

// drainAndClose fully reads and closes resp's body so the underlying
// connection can be reused (or the response safely discarded), combining
// any read and close errors instead of silently dropping one.
func drainAndClose(resp *http.Response) error {
	if resp == nil || resp.Body == nil {
		return nil
	}
	_, readErr := io.Copy(io.Discard, resp.Body)
	closeErr := resp.Body.Close()
	return multierror.Append(nil, readErr, closeErr).ErrorOrNil()
}

func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(value); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// dialWithReadTimeout returns a DialContext that wraps each connection so
// every Read resets a deadline timeout seconds out, implementing a
// per-read (not whole-request) timeout as spec's Session design requires.
func dialWithReadTimeout(timeout time.Duration) func(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if timeout <= 0 {
			return conn, nil
		}
		return &readTimeoutConn{Conn: conn, timeout: timeout}, nil
	}
}

type readTimeoutConn struct {
	net.Conn
	timeout time.Duration
}

func (c *readTimeoutConn) Read(b []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(b)
}
