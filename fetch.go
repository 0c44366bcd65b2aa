package wayback

import (
	"context"
	"net/http"
	"time"
)

const (
	defaultMaxRedirects  = 10
	defaultTargetWindow  = 24 * time.Hour
)

// FetchOptions configures how GetMemento resolves a URL and timestamp to an
// archived page, including how it navigates the chain of redirects a
// captured page may have gone through.
type FetchOptions struct {
	// Mode selects the playback form requested: the exact bytes
	// (ModeOriginal, the default) or an embeddable variant (ModeIframe,
	// ModeImage). The empty value, which ModeView and ModeRaw share, is
	// replaced by ModeOriginal, so the browser-rewritten view form cannot
	// be requested through GetMemento.
	Mode PlaybackMode
	// Exact requires the landed capture's timestamp to exactly match the
	// timestamp requested; otherwise MementoPlaybackError is raised instead
	// of silently returning the nearest capture.
	Exact bool
	// ExactRedirects applies the same exactness requirement to every hop
	// of a historical redirect chain, not just the initial request.
	ExactRedirects bool
	// TargetWindow bounds how far Wayback's nearest-capture resolution is
	// allowed to drift from the requested timestamp before it's treated
	// as no memento existing near that time (NoMementoError). Zero means
	// the default of 24h; a negative value disables the check.
	TargetWindow time.Duration
	// NoFollowRedirects stops at the first historical redirect instead of
	// walking the chain to its end.
	NoFollowRedirects bool
	// MaxRedirects caps how many redirect hops, historical and
	// archival-internal alike, are followed before MementoPlaybackError is
	// raised. Defaults to 10.
	MaxRedirects int
}

// GetMemento resolves targetURL as captured at timestamp to a Memento,
// walking the chain of historical (archived-3xx) redirects the page may
// have gone through at capture time. It distinguishes those from
// Wayback's own archival-internal redirects, which silently serve the
// nearest capture to the requested timestamp rather than recording a fact
// about the page: a 3xx hop is historical only if its Location resolves to
// a *different* original URL than the one just requested; a 3xx to the
// same URL at a different timestamp is archival-internal and is followed
// transparently, recorded in DebugHistory but not in History.
func (s *Session) GetMemento(ctx context.Context, targetURL string, timestamp time.Time, opts FetchOptions) (*Memento, error) {
	if opts.Mode == "" {
		opts.Mode = ModeOriginal
	}
	if opts.TargetWindow == 0 {
		opts.TargetWindow = defaultTargetWindow
	}
	maxRedirects := opts.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = defaultMaxRedirects
	}

	visited := make(map[string]bool)
	var history []*Memento
	var debugHistory []string

	currentURL := targetURL
	currentTimestamp := timestamp
	exact := opts.Exact

	for hop := 0; ; hop++ {
		if hop > maxRedirects {
			return nil, newMementoPlaybackError(RequestContext{URL: targetURL, Timestamp: timestamp}, "exceeded %d redirect hops", maxRedirects)
		}

		archiveURL := s.archiveURL(currentURL, currentTimestamp, opts.Mode)
		if visited[archiveURL] {
			return nil, newMementoPlaybackError(RequestContext{URL: targetURL, Timestamp: timestamp, ArchiveURL: archiveURL}, "circular redirect")
		}
		visited[archiveURL] = true
		debugHistory = append(debugHistory, archiveURL)

		resp, err := s.fetchMemento(ctx, archiveURL)
		if err != nil {
			return nil, err
		}

		reqCtx := RequestContext{URL: targetURL, Timestamp: timestamp, ArchiveURL: archiveURL}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			drainAndClose(resp)
			return nil, newNoMementoError(reqCtx)
		case resp.StatusCode == http.StatusUnavailableForLegalReasons:
			drainAndClose(resp)
			return nil, newBlockedSiteError(reqCtx)
		case resp.StatusCode >= 500:
			drainAndClose(resp)
			return nil, newMementoPlaybackError(reqCtx, "wayback returned %d", resp.StatusCode)
		}

		isRedirectStatus := resp.StatusCode >= 300 && resp.StatusCode < 400

		// A 3xx's Location tells us both where it points and, once
		// resolved back through ParseArchiveURL, what original URL and
		// timestamp it points to. We need that to tell a historical
		// redirect (the captured page itself returned a 3xx to a
		// different URL) apart from Wayback transparently serving the
		// nearest capture to a requested timestamp for the *same* URL.
		var resolvedTargetURL string
		var resolvedTargetTimestamp time.Time
		if isRedirectStatus {
			loc := resp.Header.Get("Location")
			if loc == "" {
				drainAndClose(resp)
				return nil, newMementoPlaybackError(reqCtx, "redirect had no location header")
			}
			target, ts, _, err := ParseArchiveURL(resolveRelativeURL(archiveURL, loc))
			if err != nil {
				drainAndClose(resp)
				return nil, newMementoPlaybackError(reqCtx, "redirect location %q did not resolve to an archive URL: %v", loc, err)
			}
			resolvedTargetURL, resolvedTargetTimestamp = target, ts
		}
		isHistoricalRedirect := isRedirectStatus && resolvedTargetURL != currentURL

		landedTimestamp := currentTimestamp
		switch {
		case resp.Header.Get("Memento-Datetime") != "":
			if t, parseErr := http.ParseTime(resp.Header.Get("Memento-Datetime")); parseErr == nil {
				landedTimestamp = t.UTC()
			}
		case isRedirectStatus:
			landedTimestamp = resolvedTargetTimestamp
		}

		drift := landedTimestamp.Sub(currentTimestamp)
		if drift < 0 {
			drift = -drift
		}
		if opts.TargetWindow > 0 && drift > opts.TargetWindow {
			drainAndClose(resp)
			return nil, newNoMementoError(reqCtx)
		}
		if exact && !landedTimestamp.Equal(currentTimestamp) {
			drainAndClose(resp)
			return nil, newMementoPlaybackError(reqCtx, "no exact capture at %s", FormatTimestamp(currentTimestamp))
		}

		if isRedirectStatus && !isHistoricalRedirect {
			// Archival-internal redirect: not a historical fact about the
			// page, just Wayback's own nearest-capture resolution. Follow
			// it transparently -- it's already in debugHistory -- without
			// recording a History entry.
			drainAndClose(resp)
			currentTimestamp = landedTimestamp
			continue
		}

		if !isRedirectStatus {
			return materializeMemento(resp, archiveURL, currentURL, landedTimestamp, opts.Mode, history, debugHistory, false)
		}

		hopMemento, err := materializeMemento(resp, archiveURL, currentURL, landedTimestamp, opts.Mode, history, debugHistory, true)
		if err != nil {
			return nil, err
		}

		if opts.NoFollowRedirects {
			return hopMemento, nil
		}

		history = append(history, hopMemento)
		currentURL = resolvedTargetURL
		currentTimestamp = landedTimestamp
		if !opts.ExactRedirects {
			exact = false
		}
	}
}

// fetchMemento issues one memento GET through the Session's shared retry,
// rate-limit, and logging machinery. The caller is responsible for
// draining and closing resp.Body (directly, or via materializeMemento).
func (s *Session) fetchMemento(ctx context.Context, archiveURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)
	return s.do(ctx, endpointMemento, req)
}

// materializeMemento builds a Memento from resp. For an intermediate
// redirect hop (eager == true) it reads and closes the body immediately,
// since the caller only needs Memento.Headers to find where to go next;
// the final Memento in a chain is left with its body open for the caller
// to read lazily via Content/Text.
func materializeMemento(resp *http.Response, archiveURL, targetURL string, timestamp time.Time, mode PlaybackMode, history []*Memento, debugHistory []string, eager bool) (*Memento, error) {
	headers := parseMementoHeaders(resp.Header, archiveURL)
	m := &Memento{
		URL:          targetURL,
		Timestamp:    timestamp,
		Mode:         mode,
		MementoURL:   archiveURL,
		StatusCode:   resp.StatusCode,
		Headers:      headers,
		Encoding:     encodingFromHeaders(headers, resp.Header),
		Links:        parseLinkHeader(resp.Header.Get("Link")),
		History:      history,
		DebugHistory: debugHistory,
		raw:          resp,
	}
	if eager {
		if _, err := m.Content(); err != nil {
			return nil, err
		}
	}
	return m, nil
}
