package zerolog_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/ossearch/ossearch"
	"github.com/ossearch/ossearch/mock"
	osszerolog "github.com/ossearch/ossearch/zerolog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_LogsCrawledURL(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	inner := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (*ossearch.FetchResult, error) {
			return &ossearch.FetchResult{URL: url, FinalURL: url, Body: []byte("x")}, nil
		},
	}

	res, err := osszerolog.NewFetcher(inner, logger).Fetch(context.Background(), "http://example.com/a")

	require.NoError(t, err)
	assert.Equal(t, "http://example.com/a", res.URL)
	assert.Contains(t, buf.String(), "Crawling url: http://example.com/a")
}

func TestFrontier_LogsClaims(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	inner := &mock.Frontier{
		ClaimBatchFn: func(ctx context.Context, n int, now time.Time) ([]string, error) {
			return []string{"http://example.com/a", "http://example.com/b"}, nil
		},
		AddAllFn: func(ctx context.Context, urls []string) error {
			return nil
		},
	}
	frontier := osszerolog.NewFrontier(inner, logger)

	urls, err := frontier.ClaimBatch(context.Background(), 20, time.Now())
	require.NoError(t, err)
	assert.Len(t, urls, 2)
	assert.Contains(t, buf.String(), `"claimed":2`)

	require.NoError(t, frontier.AddAll(context.Background(), []string{"example.com/c"}))
	assert.Contains(t, buf.String(), `"discovered":1`)
}

func TestFrontier_EmptyAddIsSilent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	// Inner fn would panic if invoked.
	frontier := osszerolog.NewFrontier(&mock.Frontier{}, logger)

	require.NoError(t, frontier.AddAll(context.Background(), nil))
	assert.Empty(t, buf.String())
}
