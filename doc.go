// Package wayback is a client for the Internet Archive's Wayback Machine.
//
// It exposes two operations: Client.Search, which pages through the CDX
// capture index for a URL, and Client.GetMemento, which fetches a single
// archived HTTP response (a "memento") and resolves Wayback's redirect
// graph on the caller's behalf. The package is read-only; it has no
// knowledge of how to submit URLs for capture.
//
// A Client wraps a Session, which owns the underlying connection pool,
// retry policy, and per-endpoint rate limiters. A Session is not safe for
// concurrent use by more than one goroutine at a time; callers needing
// parallelism should construct one Session per concurrent user.
package wayback

// Version is embedded in the default User-Agent string sent with every
// request.
const Version = "0.1.0"
