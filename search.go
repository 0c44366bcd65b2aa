package wayback

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// SearchOptions configures one capture-index search. The zero value
// searches with no date bounds, exact match, and the default page size.
type SearchOptions struct {
	// MatchType controls how the target URL is matched against the SURT
	// index. Left empty, it defaults to MatchExact unless the target URL
	// ends in "*", in which case MatchPrefix is inferred and the "*" is
	// stripped before the request is sent.
	MatchType MatchType
	// From and To bound the search by capture timestamp, inclusive. Zero
	// values leave that bound open.
	From, To time.Time
	// Limit caps how many records are requested per page from Wayback; it
	// does not cap the total number of records SearchIterator yields.
	// Defaults to 1000.
	Limit int
	// FilterField is passed through as one or more raw CDX "filter"
	// parameters, e.g. "statuscode:200" or "!mimetype:warc/revisit".
	FilterField []string
	// Collapse is passed through as one or more raw CDX "collapse"
	// parameters, e.g. "timestamp:10".
	Collapse []string
	// FastLatest trades completeness for a faster response when the
	// caller mainly wants recent captures.
	FastLatest bool
	// ResolveRevisits requests that the server resolve `warc/revisit`
	// records (captures that only reference a prior capture's content) to
	// the original record they point at, rather than returning the
	// revisit stub as-is.
	ResolveRevisits bool
}

const defaultSearchPageSize = 1000

var errSearchDone = errors.New("wayback: search exhausted")

// Search returns a lazily-paginated iterator over every capture matching
// targetURL. No network request is made until the first call to Next.
func (s *Session) Search(ctx context.Context, targetURL string, opts SearchOptions) *SearchIterator {
	if opts.MatchType == "" && strings.HasSuffix(targetURL, "*") {
		opts.MatchType = MatchPrefix
		targetURL = strings.TrimSuffix(targetURL, "*")
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultSearchPageSize
	}
	return &SearchIterator{
		session:   s,
		ctx:       ctx,
		query:     targetURL,
		opts:      opts,
		firstPage: true,
		seen:      make(map[fingerprint]bool),
	}
}

// SearchIterator walks a capture-index search result set one record at a
// time, fetching successive pages via Wayback's resume-key pagination only
// as the caller asks for more records. It deduplicates records that appear
// on the boundary between two pages.
//
// Use it as:
//
//	it := session.Search(ctx, url, opts)
//	for it.Next() {
//		record := it.Record()
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
type SearchIterator struct {
	session *Session
	ctx     context.Context
	query   string
	opts    SearchOptions

	resumeKey string
	exhausted bool
	firstPage bool

	pending []CDXRecord
	seen    map[fingerprint]bool

	current CDXRecord
	err     error
}

// Next advances the iterator and reports whether a record is available.
// Once it returns false, the iterator is done: check Err to distinguish a
// clean end of results from a failure.
func (it *SearchIterator) Next() bool {
	if it.err != nil {
		return false
	}
	for {
		if len(it.pending) > 0 {
			rec := it.pending[0]
			it.pending = it.pending[1:]
			if it.seen[rec.fingerprint()] {
				continue
			}
			it.seen[rec.fingerprint()] = true
			it.current = rec
			return true
		}
		if it.exhausted {
			return false
		}
		if err := it.fetchPage(); err != nil {
			if errors.Is(err, errSearchDone) {
				it.exhausted = true
				return false
			}
			it.err = err
			return false
		}
	}
}

// Record returns the record the most recent call to Next produced.
func (it *SearchIterator) Record() CDXRecord { return it.current }

// Err returns the first error that stopped iteration, or nil if the
// iterator ran to a clean end of results.
func (it *SearchIterator) Err() error { return it.err }

func (it *SearchIterator) fetchPage() error {
	reqURL, err := buildCDXQuery(it.session.baseURL, it.query, it.opts, it.resumeKey)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(it.ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", it.session.userAgent)

	resp, err := it.session.do(it.ctx, endpointSearch, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	reqCtx := RequestContext{URL: it.query}

	if resp.StatusCode == http.StatusNotFound {
		return errSearchDone
	}
	if resp.StatusCode >= 400 {
		switch ClassifyBody(string(body)) {
		case SignalBlockedRobots:
			if it.firstPage {
				return newBlockedByRobotsError(reqCtx)
			}
			return errSearchDone
		case SignalBlockedSite:
			if it.firstPage {
				return newBlockedSiteError(reqCtx)
			}
			return errSearchDone
		default:
			return newUnexpectedResponseFormatError(reqCtx, "cdx search returned status %d", resp.StatusCode)
		}
	}

	trimmed := strings.TrimRight(string(body), "\n")
	if trimmed == "" {
		return errSearchDone
	}
	lines := strings.Split(trimmed, "\n")

	it.resumeKey = ""
	if len(lines) >= 2 && lines[len(lines)-2] == "" {
		it.resumeKey = lines[len(lines)-1]
		lines = lines[:len(lines)-2]
	}

	records := make([]CDXRecord, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := parseCDXLine(it.query, line)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}

	it.pending = records
	it.firstPage = false
	if it.resumeKey == "" {
		it.exhausted = true
	}
	return nil
}

func buildCDXQuery(baseURL, targetURL string, opts SearchOptions, resumeKey string) (string, error) {
	u, err := url.Parse(baseURL + "/cdx/search/cdx")
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("url", targetURL)
	q.Set("output", "text")
	q.Set("showResumeKey", "true")
	if opts.MatchType != "" {
		q.Set("matchType", string(opts.MatchType))
	}
	if !opts.From.IsZero() {
		q.Set("from", FormatTimestamp(opts.From))
	}
	if !opts.To.IsZero() {
		q.Set("to", FormatTimestamp(opts.To))
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchPageSize
	}
	q.Set("limit", strconv.Itoa(limit))
	if resumeKey != "" {
		q.Set("resumeKey", resumeKey)
	}
	if opts.FastLatest {
		q.Set("fastLatest", "true")
	}
	if opts.ResolveRevisits {
		q.Set("resolveRevisits", "true")
	}
	for _, f := range opts.FilterField {
		q.Add("filter", f)
	}
	for _, c := range opts.Collapse {
		q.Add("collapse", c)
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}
