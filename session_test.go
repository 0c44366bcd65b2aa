package wayback

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestSessionCloseIsIdempotentAndBlocksFurtherUse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	session := NewSession(WithBaseURL(srv.URL))
	if err := session.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	it := session.Search(context.Background(), "example.com", SearchOptions{})
	it.Next()
	if _, ok := it.Err().(*SessionClosedError); !ok {
		t.Fatalf("Err() = %v (%T), want *SessionClosedError", it.Err(), it.Err())
	}
}

func TestSessionRetriesTransientFailureThenSucceeds(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(cdxLine("com,example)/", "20200101000000", "https://example.com/", "text/html", 200, "AAA1") + "\n"))
	}))
	defer srv.Close()

	session := NewSession(WithBaseURL(srv.URL), WithRetries(3, 3), WithBackoffBase(time.Millisecond), WithRateLimits(1000, 1000))
	defer session.Close()

	it := session.Search(context.Background(), "example.com", SearchOptions{})
	if !it.Next() {
		t.Fatalf("Next() = false, Err() = %v", it.Err())
	}
	if attempts.Load() < 2 {
		t.Fatalf("attempts = %d, want at least 2", attempts.Load())
	}
}

func TestSessionRaisesRateLimitErrorAfterRetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	session := NewSession(WithBaseURL(srv.URL), WithRetries(1, 1), WithBackoffBase(time.Millisecond), WithRateLimits(1000, 1000))
	defer session.Close()

	it := session.Search(context.Background(), "example.com", SearchOptions{})
	if it.Next() {
		t.Fatal("expected no records")
	}
	if _, ok := it.Err().(*RateLimitError); !ok {
		t.Fatalf("Err() = %v (%T), want *RateLimitError", it.Err(), it.Err())
	}
}

func TestSessionDoesNotTreatArchived429AsRateLimit(t *testing.T) {
	ts := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Memento-Datetime", ts.Format(http.TimeFormat))
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	session := NewSession(WithBaseURL(srv.URL), WithRetries(1, 1), WithRateLimits(1000, 1000))
	defer session.Close()

	memento, err := session.GetMemento(context.Background(), "https://example.com/", ts, FetchOptions{})
	if err != nil {
		t.Fatalf("GetMemento: %v, want the archived 429 handed back, not an error", err)
	}
	defer memento.Close()

	if memento.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("StatusCode = %d, want 429", memento.StatusCode)
	}
}
