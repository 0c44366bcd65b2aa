package wayback

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// PlaybackMode is the token injected into an archive URL after the
// timestamp, instructing Wayback how to serve a memento. The empty string
// is a valid mode (it means "view").
type PlaybackMode string

const (
	// ModeOriginal requests the exact archived response, bytes unmodified.
	ModeOriginal PlaybackMode = "id_"
	// ModeView requests the browser-friendly rewrite with Wayback's
	// navigation decorations.
	ModeView PlaybackMode = ""
	// ModeRaw is an alias for ModeView's URL form, used in some legacy
	// links that predate the id_ convention.
	ModeRaw PlaybackMode = ModeView
	// ModeIframe requests the iframe-embeddable rewrite.
	ModeIframe PlaybackMode = "if_"
	// ModeImage requests the image-only rewrite.
	ModeImage PlaybackMode = "im_"
)

const archiveURLPrefix = "https://web.archive.org/web/"

// archiveURLPattern matches the "/web/<timestamp><mode>/<target>" path
// shape on any host, not just web.archive.org: a Session pointed at a
// different base URL (a test server, or a Wayback-compatible mirror)
// still produces URLs ParseArchiveURL can decode.
var archiveURLPattern = regexp.MustCompile(`^https?://[^/]+/web/(\d{14})([^/]*)/(.+)$`)

// FormatArchiveURL builds the Wayback playback URL for targetURL captured
// at timestamp, in the given mode. The result round-trips through
// ParseArchiveURL.
func FormatArchiveURL(targetURL string, timestamp time.Time, mode PlaybackMode) string {
	return fmt.Sprintf("%s%s%s/%s", archiveURLPrefix, FormatTimestamp(timestamp), mode, targetURL)
}

// ParseArchiveURL decomposes a Wayback playback URL of the form
// http[s]://web.archive.org/web/<timestamp><mode>/<target> into its target
// URL, timestamp, and playback mode. Unknown mode tokens are preserved
// verbatim. It returns a *NotAWaybackURLError if rawURL doesn't match the
// expected shape.
func ParseArchiveURL(rawURL string) (targetURL string, timestamp time.Time, mode PlaybackMode, err error) {
	match := archiveURLPattern.FindStringSubmatch(rawURL)
	if match == nil {
		return "", time.Time{}, "", newNotAWaybackURLError(rawURL)
	}

	timestamp, parseErr := ParseTimestamp(match[1])
	if parseErr != nil {
		return "", time.Time{}, "", newUnexpectedResponseFormatError(RequestContext{URL: rawURL}, "bad timestamp in archive url: %v", parseErr)
	}

	target := cleanMementoURLComponent(match[3])
	return target, timestamp, PlaybackMode(match[2]), nil
}

// resolveRelativeURL resolves ref against base, returning ref unmodified if
// either fails to parse.
func resolveRelativeURL(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

// cleanMementoURLComponent undoes percent-encoding applied to the target
// URL embedded in a memento URL, but only when the whole thing looks
// percent-encoded (so a query string of an otherwise-unencoded URL isn't
// mistakenly decoded).
func cleanMementoURLComponent(u string) string {
	lower := strings.ToLower(u)
	if strings.HasPrefix(lower, "http%3a") || strings.HasPrefix(lower, "https%3a") {
		if decoded, err := url.PathUnescape(u); err == nil {
			return decoded
		}
	}
	return u
}
