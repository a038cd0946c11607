// Package http provides HTTP-based implementations of ossearch.Fetcher and
// ossearch.SuffixLoader, plus sitemap discovery for seeding the frontier.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ossearch/ossearch"
)

// UserAgent identifies the crawler to the sites it visits.
const UserAgent = "OS-SEARCH-ENGINE-CRAWLER"

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxBodyBytes caps how much of a response body is read.
const DefaultMaxBodyBytes = 10 << 20

// Ensure Fetcher implements ossearch.Fetcher at compile time.
var _ ossearch.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves page bodies using plain HTTP requests. It follows
// redirects and reports the URL that ultimately served the response.
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	maxBodyBytes int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxBodyBytes caps how many bytes of a response body are read.
// Defaults to DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodyBytes = n
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch issues a GET for the URL, following redirects.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*ossearch.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return nil, err
	}

	return &ossearch.FetchResult{
		URL:      url,
		FinalURL: resp.Request.URL.String(),
		Body:     body,
	}, nil
}
