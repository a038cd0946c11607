// Package zerolog provides logging decorators for the root interfaces.
// Services keep their logging at the edges by wrapping the real
// implementation rather than threading a logger through it.
package zerolog

import (
	"context"
	"time"

	"github.com/ossearch/ossearch"
	"github.com/rs/zerolog"
)

// Ensure Fetcher implements ossearch.Fetcher.
var _ ossearch.Fetcher = (*Fetcher)(nil)

// Fetcher wraps an ossearch.Fetcher with per-URL logging.
type Fetcher struct {
	next   ossearch.Fetcher
	logger zerolog.Logger
}

// NewFetcher creates a logging Fetcher decorator.
func NewFetcher(next ossearch.Fetcher, logger zerolog.Logger) *Fetcher {
	return &Fetcher{next: next, logger: logger}
}

// Fetch logs the URL being crawled and delegates.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*ossearch.FetchResult, error) {
	f.logger.Info().Msg("Crawling url: " + url)
	res, err := f.next.Fetch(ctx, url)
	if err != nil {
		f.logger.Debug().Err(err).Str("url", url).Msg("fetch failed")
	}
	return res, err
}

// Ensure Frontier implements ossearch.Frontier.
var _ ossearch.Frontier = (*Frontier)(nil)

// Frontier wraps an ossearch.Frontier with claim and discovery logging.
type Frontier struct {
	next   ossearch.Frontier
	logger zerolog.Logger
}

// NewFrontier creates a logging Frontier decorator.
func NewFrontier(next ossearch.Frontier, logger zerolog.Logger) *Frontier {
	return &Frontier{next: next, logger: logger}
}

// ClaimBatch logs how many URLs were claimed and how long the claim took.
func (f *Frontier) ClaimBatch(ctx context.Context, n int, now time.Time) ([]string, error) {
	begin := time.Now()
	urls, err := f.next.ClaimBatch(ctx, n, now)
	if err != nil {
		f.logger.Warn().Err(err).Msg("claim failed")
		return nil, err
	}
	f.logger.Debug().
		Int("claimed", len(urls)).
		Dur("duration", time.Since(begin)).
		Msg("claimed batch")
	return urls, nil
}

// AddAll delegates, logging the discovery count.
func (f *Frontier) AddAll(ctx context.Context, canonicalURLs []string) error {
	if len(canonicalURLs) == 0 {
		return nil
	}
	err := f.next.AddAll(ctx, canonicalURLs)
	if err != nil {
		f.logger.Warn().Err(err).Msg("frontier add failed")
		return err
	}
	f.logger.Debug().Int("discovered", len(canonicalURLs)).Msg("added discoveries")
	return nil
}
