package wayback

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Link is one relation parsed out of a memento response's RFC 5988 Link
// header, e.g. the "prev memento" or "timemap" relation.
type Link struct {
	URL      string
	Rel      string
	Datetime time.Time
	HasDatetime bool
}

// wellKnownLinkRelations are the relations §6 says the client parses out of
// the Link header.
var wellKnownLinkRelations = map[string]bool{
	"original":      true,
	"timemap":       true,
	"memento":       true,
	"first memento": true,
	"prev memento":  true,
	"next memento":  true,
	"last memento":  true,
}

// Memento represents a successfully resolved archival capture, including
// its HTTP payload. It mirrors the archived origin response (status,
// headers, body) while also carrying metadata about how it was resolved
// (mode, history of redirects followed, debug history of every archive URL
// visited).
//
// A Memento holds a reference to an open HTTP response body until Close is
// called or Content/Text is read to completion. Use it as you would any
// other resource that needs explicit cleanup.
type Memento struct {
	// URL is the URL that was captured -- not the archive URL it was
	// served from.
	URL string
	// Timestamp is the UTC instant of this capture, as landed (which may
	// differ slightly from the timestamp requested).
	Timestamp time.Time
	// Mode is the playback mode token that produced this memento.
	Mode PlaybackMode
	// MementoURL is the archive URL that served this memento.
	MementoURL string
	// StatusCode is the archived origin response's HTTP status.
	StatusCode int
	// Headers mirrors the archived origin response's headers.
	Headers *Headers
	// Encoding is the text encoding used to decode Text, derived from the
	// archived Content-Type when present. EncodingUnknown is returned
	// when neither the archived nor the response-level Content-Type
	// specified a charset.
	Encoding string
	// Links holds the relations parsed from the Link response header,
	// keyed by relation name ("original", "first memento", etc).
	Links map[string]Link
	// History is the ordered sequence of prior Mementos traversed via
	// historical (archived-3xx) redirects to reach this one.
	History []*Memento
	// DebugHistory is the ordered sequence of every archive URL visited,
	// including archival-internal redirects that aren't historical facts.
	DebugHistory []string

	raw      *http.Response
	body     []byte
	bodyOnce sync.Once
	bodyErr  error
}

// EncodingUnknown is returned as Memento.Encoding when neither the
// archived origin's Content-Type nor the wrapping response's Content-Type
// specified a charset, per spec's note that guessing is undesirable.
const EncodingUnknown = ""

// OK reports whether the archived response had a non-error status
// (< 400).
func (m *Memento) OK() bool {
	return m.StatusCode < 400
}

// IsRedirect reports whether the archived response was itself a redirect
// (a 3xx status).
func (m *Memento) IsRedirect() bool {
	return m.OK() && m.StatusCode >= 300
}

// Content returns the archived response body, reading and caching it (and
// closing the underlying connection) on first call.
func (m *Memento) Content() ([]byte, error) {
	m.bodyOnce.Do(func() {
		if m.raw == nil {
			return
		}
		defer m.raw.Body.Close()
		m.body, m.bodyErr = io.ReadAll(m.raw.Body)
	})
	return m.body, m.bodyErr
}

// Text returns the archived response body decoded as a string.
func (m *Memento) Text() (string, error) {
	b, err := m.Content()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Close releases the Memento's underlying HTTP response body. It is always
// safe to call, including after Content/Text has already consumed the
// body.
func (m *Memento) Close() error {
	if m.raw == nil {
		return nil
	}
	return m.raw.Body.Close()
}

// parseMementoHeaders extracts the archived origin's headers from a
// memento HTTP response's raw headers. Archived headers are reproduced
// with an "x-archive-orig-" prefix; a handful of headers needed to render
// the memento (currently just Content-Type) are not prefixed and are
// copied over directly. The Location header, when present, is rewritten
// from a Wayback redirect URL back to the historical redirect target.
func parseMementoHeaders(raw http.Header, archiveURL string) *Headers {
	const prefix = "x-archive-orig-"
	headers := NewHeaders()

	for key, values := range raw {
		lower := strings.ToLower(key)
		if strings.HasPrefix(lower, prefix) && len(values) > 0 {
			headers.Set(lower[len(prefix):], values[0])
		}
	}

	if v := raw.Get("Content-Type"); v != "" {
		if _, ok := headers.Get("content-type"); !ok {
			headers.Set("content-type", v)
		}
	}

	if _, ok := headers.Get("location"); !ok {
		if loc := raw.Get("Location"); loc != "" {
			resolved := resolveRelativeURL(archiveURL, loc)
			if target, _, _, err := ParseArchiveURL(resolved); err == nil {
				headers.Set("location", target)
			}
		}
	}

	return headers
}

// encodingFromHeaders derives Memento.Encoding the way spec.md describes:
// from the archived Content-Type's charset parameter when present, falling
// back to the wrapping response's Content-Type, and EncodingUnknown if
// neither specifies one.
func encodingFromHeaders(archived *Headers, wrapping http.Header) string {
	if ct, ok := archived.Get("content-type"); ok {
		if enc := charsetFromContentType(ct); enc != "" {
			return enc
		}
	}
	if enc := charsetFromContentType(wrapping.Get("Content-Type")); enc != "" {
		return enc
	}
	return EncodingUnknown
}

func charsetFromContentType(contentType string) string {
	parts := strings.Split(contentType, ";")
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(strings.ToLower(part), "charset=") {
			return strings.Trim(part[len("charset="):], `"`)
		}
	}
	return ""
}
