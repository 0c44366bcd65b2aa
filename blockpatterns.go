package wayback

import "strings"

// BlockSignal names the condition a body-pattern match should be mapped to.
type BlockSignal int

const (
	// SignalNone means no blocking/rate-limit condition was detected.
	SignalNone BlockSignal = iota
	// SignalBlockedSite means the archived site was excluded from Wayback
	// at the owner's request.
	SignalBlockedSite
	// SignalBlockedRobots means the archived site's robots.txt excludes
	// Wayback's crawler.
	SignalBlockedRobots
	// SignalRateLimited means the response is Wayback's own rate-limit
	// response, not an archived 429.
	SignalRateLimited
)

// BlockPattern is one substring match rule used to classify an ambiguous
// non-2xx (or, for rate limits, sometimes 200) response from Wayback.
// Wayback's exact body/header text for these conditions isn't formally
// specified and has changed across versions, so the matcher table is kept
// here, as one exported value, rather than hardcoded inline -- operators
// can append to or replace it without forking the package.
type BlockPattern struct {
	Signal   BlockSignal
	Substring string
}

// BlockPatterns is the default, mutable table of body/header substring
// matchers. SearchIterator uses it to classify CDX search responses with a
// status of 400 or above as blocked; a SignalRateLimited match is not
// mapped to RateLimitError, and memento fetches do not consult the table.
// It is evaluated in order; the first match wins. Callers may append additional patterns or
// replace the slice entirely to tune detection for Wayback behavior
// changes without needing a new release of this package.
var BlockPatterns = []BlockPattern{
	{Signal: SignalBlockedSite, Substring: "AdministrativeAccessControlException"},
	{Signal: SignalBlockedSite, Substring: "URL has been excluded"},
	{Signal: SignalBlockedRobots, Substring: "RobotAccessControlException"},
	{Signal: SignalBlockedRobots, Substring: "robots.txt"},
	{Signal: SignalRateLimited, Substring: "Too Many Requests"},
	{Signal: SignalRateLimited, Substring: "rate limit"},
}

// ClassifyBody scans text (a response body, or a diagnostic header value
// like X-Archive-Wayback-Runtime-Error) against BlockPatterns and returns
// the first matching signal, or SignalNone if nothing matched.
func ClassifyBody(text string) BlockSignal {
	for _, p := range BlockPatterns {
		if strings.Contains(text, p.Substring) {
			return p.Signal
		}
	}
	return SignalNone
}
