package wayback

import (
	"context"
	"time"
)

// Client is the package's primary entry point. It wraps a Session and
// accepts the several equivalent ways callers end up with a memento to
// look up: a CDXRecord from a search, a full Wayback archive URL, or a
// plain URL paired with a timestamp.
type Client struct {
	session *Session
	owned   bool
}

// NewClient wraps an existing Session. Client.Close is then a no-op; the
// caller keeps ownership of the Session and must close it itself.
func NewClient(session *Session) *Client {
	return &Client{session: session}
}

// Open builds a Client around a new, privately owned Session configured
// by opts. Closing the returned Client closes that Session.
func Open(opts ...SessionOption) *Client {
	return &Client{session: NewSession(opts...), owned: true}
}

// Close releases the Client's Session if Open created it.
func (c *Client) Close() error {
	if !c.owned {
		return nil
	}
	return c.session.Close()
}

// Search runs a capture-index search against targetURL. See Session.Search
// for pagination and matching details.
func (c *Client) Search(ctx context.Context, targetURL string, opts SearchOptions) *SearchIterator {
	return c.session.Search(ctx, targetURL, opts)
}

// MementoRef identifies an archived page to fetch: a plain URL paired with
// the timestamp it was captured at. Build one directly, or via
// RefFromRecord / RefFromArchiveURL for the other two shapes callers
// commonly have on hand.
type MementoRef struct {
	URL       string
	Timestamp time.Time
}

// RefFromRecord builds a MementoRef from a capture-index search result.
func RefFromRecord(rec CDXRecord) MementoRef {
	return MementoRef{URL: rec.URL, Timestamp: rec.Timestamp}
}

// RefFromArchiveURL builds a MementoRef by parsing a full Wayback archive
// URL, such as one returned by CDXRecord.RawURL, CDXRecord.ViewURL, or a
// Link header relation on a Memento.
func RefFromArchiveURL(archiveURL string) (MementoRef, error) {
	target, timestamp, _, err := ParseArchiveURL(archiveURL)
	if err != nil {
		return MementoRef{}, err
	}
	return MementoRef{URL: target, Timestamp: timestamp}, nil
}

// GetMemento resolves ref to an archived page, following the chain of
// historical redirects it may have gone through at capture time. See
// Session.GetMemento for the redirect-navigation semantics opts controls.
func (c *Client) GetMemento(ctx context.Context, ref MementoRef, opts FetchOptions) (*Memento, error) {
	return c.session.GetMemento(ctx, ref.URL, ref.Timestamp, opts)
}
