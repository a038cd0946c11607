package ossearch

import "context"

// FetchResult is the outcome of fetching one URL.
type FetchResult struct {
	// URL is the URL that was requested.
	URL string

	// FinalURL is the URL that ultimately served the response, after
	// following redirects. Equal to URL when no redirect occurred.
	FinalURL string

	// Body is the raw response body.
	Body []byte
}

// Fetcher retrieves page bodies over HTTP.
type Fetcher interface {
	// Fetch issues a GET for the URL, following redirects. The context
	// bounds the round trip.
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// PageCache stores compressed page bodies keyed by canonical id, bridging
// the crawler swarm (writer) and the indexer swarm (reader).
type PageCache interface {
	// Put stores compressed page data for an id, replacing any previous
	// entry.
	Put(ctx context.Context, id string, data []byte) error

	// Next atomically claims and removes one cached page. Returns
	// ENOTFOUND when the cache is empty.
	Next(ctx context.Context) (*CachedPage, error)
}

// CachedPage is one entry drained from the page cache.
type CachedPage struct {
	ID   string
	Data []byte
}
