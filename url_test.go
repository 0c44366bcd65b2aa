package wayback

import (
	"testing"
	"time"
)

func TestFormatArchiveURL(t *testing.T) {
	ts := time.Date(2020, 3, 4, 5, 6, 7, 0, time.UTC)
	got := FormatArchiveURL("https://example.com/page", ts, ModeOriginal)
	want := "https://web.archive.org/web/20200304050607id_/https://example.com/page"
	if got != want {
		t.Fatalf("FormatArchiveURL = %q, want %q", got, want)
	}
}

func TestParseArchiveURLRoundTrip(t *testing.T) {
	ts := time.Date(2020, 3, 4, 5, 6, 7, 0, time.UTC)
	archiveURL := FormatArchiveURL("https://example.com/page?x=1", ts, ModeIframe)

	target, gotTS, mode, err := ParseArchiveURL(archiveURL)
	if err != nil {
		t.Fatalf("ParseArchiveURL: %v", err)
	}
	if target != "https://example.com/page?x=1" {
		t.Fatalf("target = %q", target)
	}
	if !gotTS.Equal(ts) {
		t.Fatalf("timestamp = %v, want %v", gotTS, ts)
	}
	if mode != ModeIframe {
		t.Fatalf("mode = %q, want %q", mode, ModeIframe)
	}
}

func TestParseArchiveURLViewModeIsEmptyToken(t *testing.T) {
	ts := time.Date(2020, 3, 4, 5, 6, 7, 0, time.UTC)
	archiveURL := FormatArchiveURL("https://example.com/", ts, ModeView)
	_, _, mode, err := ParseArchiveURL(archiveURL)
	if err != nil {
		t.Fatalf("ParseArchiveURL: %v", err)
	}
	if mode != ModeView {
		t.Fatalf("mode = %q, want empty token shared by ModeView and ModeRaw", mode)
	}
	if mode != ModeRaw {
		t.Fatalf("mode = %q, want empty token shared by ModeView and ModeRaw", mode)
	}
}

func TestParseArchiveURLRejectsNonArchiveURL(t *testing.T) {
	_, _, _, err := ParseArchiveURL("https://example.com/not-an-archive-url")
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*NotAWaybackURLError); !ok {
		t.Fatalf("error type = %T, want *NotAWaybackURLError", err)
	}
}

func TestCleanMementoURLComponentDecodesEncodedTarget(t *testing.T) {
	got := cleanMementoURLComponent("http%3A%2F%2Fexample.com%2Fpage")
	if got != "http://example.com/page" {
		t.Fatalf("cleanMementoURLComponent = %q", got)
	}
}

func TestResolveRelativeURL(t *testing.T) {
	got := resolveRelativeURL("https://web.archive.org/web/20200304050607id_/https://example.com/a/b", "/a/c")
	want := "https://web.archive.org/a/c"
	if got != want {
		t.Fatalf("resolveRelativeURL = %q, want %q", got, want)
	}
}
