package wayback

import (
	"errors"
	"testing"
	"time"
)

func TestWaybackErrorIncludesRequestContext(t *testing.T) {
	ctx := RequestContext{URL: "https://example.com/", Timestamp: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
	err := newNoMementoError(ctx)

	msg := err.Error()
	if msg == "" {
		t.Fatal("Error() returned empty string")
	}
	var nm *NoMementoError
	if !errors.As(err, &nm) {
		t.Fatalf("errors.As failed for %v (%T)", err, err)
	}
	if nm.URL != ctx.URL {
		t.Fatalf("URL = %q, want %q", nm.URL, ctx.URL)
	}
}

func TestWaybackRetryErrorUnwrapsToCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := newWaybackRetryError(RequestContext{URL: "https://example.com/"}, 3, 5*time.Second, cause)

	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is(err, cause) = false, want true")
	}

	var retryErr *WaybackRetryError
	if !errors.As(err, &retryErr) {
		t.Fatalf("errors.As failed")
	}
	if retryErr.Retries != 3 {
		t.Fatalf("Retries = %d, want 3", retryErr.Retries)
	}
}

func TestRequestContextStringIncludesArchiveURL(t *testing.T) {
	ctx := RequestContext{
		URL:        "https://example.com/",
		Timestamp:  time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		ArchiveURL: "https://web.archive.org/web/20200101000000id_/https://example.com/",
	}
	s := ctx.String()
	if s == ctx.URL {
		t.Fatalf("String() did not include timestamp/archive url: %q", s)
	}
}
