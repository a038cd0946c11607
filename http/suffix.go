package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ossearch/ossearch"
)

// PublicSuffixURL is the published list of registrable domain suffixes.
const PublicSuffixURL = "https://publicsuffix.org/list/effective_tld_names.dat"

// Ensure SuffixLoader implements ossearch.SuffixLoader at compile time.
var _ ossearch.SuffixLoader = (*SuffixLoader)(nil)

// SuffixLoader fetches the public suffix list over HTTP. Each crawler
// worker loads its own copy at startup.
type SuffixLoader struct {
	client *http.Client
	url    string
}

// NewSuffixLoader creates a SuffixLoader fetching from PublicSuffixURL.
// If client is nil, http.DefaultClient is used.
func NewSuffixLoader(client *http.Client) *SuffixLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return &SuffixLoader{client: client, url: PublicSuffixURL}
}

// NewSuffixLoaderURL creates a SuffixLoader fetching from a custom URL.
func NewSuffixLoaderURL(client *http.Client, url string) *SuffixLoader {
	l := NewSuffixLoader(client)
	l.url = url
	return l
}

// Load fetches and parses the suffix list.
func (l *SuffixLoader) Load(ctx context.Context) (*ossearch.SuffixList, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, ossearch.Errorf(ossearch.EUNAVAILABLE, "fetching suffix list: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, l.url)
	}

	return ossearch.ParseSuffixList(resp.Body)
}
