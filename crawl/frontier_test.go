package crawl_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ossearch/ossearch"
	"github.com/ossearch/ossearch/crawl"
	"github.com/ossearch/ossearch/inmem"
	"github.com/ossearch/ossearch/netlock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var suffixes = ossearch.NewSuffixList("com", "co.uk", "org")

func newFrontier(t *testing.T) (*crawl.SolrFrontier, *inmem.Index) {
	t.Helper()
	idx := inmem.NewIndex()
	return &crawl.SolrFrontier{
		Index:    idx,
		Locker:   netlock.NewLocal(),
		Suffixes: suffixes,
	}, idx
}

func seed(t *testing.T, frontier *crawl.SolrFrontier, urls ...string) {
	t.Helper()
	require.NoError(t, frontier.AddAll(context.Background(), urls))
}

func TestSolrFrontier_AddAll(t *testing.T) {
	t.Parallel()

	t.Run("creates never-crawled records", func(t *testing.T) {
		t.Parallel()

		frontier, idx := newFrontier(t)
		seed(t, frontier, "http://www.example.com/page", "https://blog.example.co.uk")

		page := idx.Get(ossearch.Working, "www.example.com/page")
		require.NotNil(t, page)
		assert.Equal(t, int64(0), page.LastUpdate())
		assert.Equal(t, "example", page.Domain)
		assert.Equal(t, "www", page.Subdomain)
		assert.False(t, page.IsHTTPS)

		blog := idx.Get(ossearch.Working, "blog.example.co.uk")
		require.NotNil(t, blog)
		assert.True(t, blog.IsHTTPS)
		assert.Equal(t, "co.uk", blog.TLD)
	})

	t.Run("never overwrites existing records", func(t *testing.T) {
		t.Parallel()

		frontier, idx := newFrontier(t)
		seed(t, frontier, "http://example.com/a")

		crawled := idx.Get(ossearch.Working, "example.com/a")
		crawled.SetLastUpdate(12345)
		require.NoError(t, idx.Add(context.Background(), ossearch.Working, []*ossearch.Document{crawled}, ossearch.AddOptions{Overwrite: true}))

		seed(t, frontier, "http://example.com/a")
		assert.Equal(t, int64(12345), idx.Get(ossearch.Working, "example.com/a").LastUpdate())
	})

	t.Run("skips undecomposable urls", func(t *testing.T) {
		t.Parallel()

		frontier, _ := newFrontier(t)
		assert.NoError(t, frontier.AddAll(context.Background(), []string{"http://"}))
	})
}

func TestSolrFrontier_ClaimBatch(t *testing.T) {
	t.Parallel()

	t.Run("claims are disjoint", func(t *testing.T) {
		t.Parallel()

		frontier, _ := newFrontier(t)
		seed(t, frontier,
			"http://example.com/a", "http://example.com/b",
			"http://example.com/c", "http://example.com/d",
		)
		now := time.Now()

		first, err := frontier.ClaimBatch(context.Background(), 2, now)
		require.NoError(t, err)
		second, err := frontier.ClaimBatch(context.Background(), 2, now)
		require.NoError(t, err)

		assert.Len(t, first, 2)
		assert.Len(t, second, 2)
		for _, u := range second {
			assert.NotContains(t, first, u)
		}
	})

	t.Run("concurrent claims are disjoint", func(t *testing.T) {
		t.Parallel()

		frontier, _ := newFrontier(t)
		var urls []string
		for _, p := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
			urls = append(urls, "http://example.com/"+p)
		}
		seed(t, frontier, urls...)
		now := time.Now()

		var mu sync.Mutex
		claimed := make(map[string]int)
		var wg sync.WaitGroup
		for n := 0; n < 4; n++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				batch, err := frontier.ClaimBatch(context.Background(), 2, now)
				assert.NoError(t, err)
				mu.Lock()
				for _, u := range batch {
					claimed[u]++
				}
				mu.Unlock()
			}()
		}
		wg.Wait()

		assert.Len(t, claimed, 8)
		for u, n := range claimed {
			assert.Equal(t, 1, n, "url %s claimed %d times", u, n)
		}
	})

	t.Run("honors the cool-down window", func(t *testing.T) {
		t.Parallel()

		frontier, idx := newFrontier(t)
		now := time.Now()
		cooldown := int64(ossearch.CooldownWindow / time.Second)

		fresh := &ossearch.Document{ID: "example.com/fresh", Domain: "example", TLD: "com"}
		fresh.SetLastUpdate(now.Unix() - cooldown + 3600)
		stale := &ossearch.Document{ID: "example.com/stale", Domain: "example", TLD: "com"}
		stale.SetLastUpdate(now.Unix() - cooldown - 3600)
		never := &ossearch.Document{ID: "example.com/never", Domain: "example", TLD: "com"}
		never.SetLastUpdate(0)
		require.NoError(t, idx.Add(context.Background(), ossearch.Working,
			[]*ossearch.Document{fresh, stale, never}, ossearch.AddOptions{Overwrite: true}))

		urls, err := frontier.ClaimBatch(context.Background(), 20, now)
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{"http://example.com/stale", "http://example.com/never"}, urls)
	})

	t.Run("stamps claim receipts", func(t *testing.T) {
		t.Parallel()

		frontier, idx := newFrontier(t)
		seed(t, frontier, "http://example.com/a")
		now := time.Now()

		urls, err := frontier.ClaimBatch(context.Background(), 20, now)
		require.NoError(t, err)
		require.Len(t, urls, 1)

		assert.Equal(t, now.Unix(), idx.Get(ossearch.Working, "example.com/a").LastUpdate())

		// The receipt keeps the URL out of the next round.
		again, err := frontier.ClaimBatch(context.Background(), 20, now)
		require.NoError(t, err)
		assert.Empty(t, again)
	})

	t.Run("empty frontier claims nothing", func(t *testing.T) {
		t.Parallel()

		frontier, _ := newFrontier(t)
		urls, err := frontier.ClaimBatch(context.Background(), 20, time.Now())
		require.NoError(t, err)
		assert.Empty(t, urls)
	})
}
