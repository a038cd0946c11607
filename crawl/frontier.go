// Package crawl runs the crawler swarm: claiming URLs from the shared
// frontier, fetching and parsing pages, publishing crawled documents, and
// feeding discovered links back into the frontier.
package crawl

import (
	"context"
	"fmt"
	"time"

	"github.com/ossearch/ossearch"
)

// Ensure SolrFrontier implements ossearch.Frontier at compile time.
var _ ossearch.Frontier = (*SolrFrontier)(nil)

// SolrFrontier stores the frontier in the working collection. A claim round
// runs under the shared lock: search for eligible URLs, stamp claim
// receipts, commit, unlock. Because receipts are committed before the lock
// is released, concurrent claimers always observe disjoint batches.
type SolrFrontier struct {
	Index    ossearch.Index
	Locker   ossearch.Locker
	Suffixes *ossearch.SuffixList
}

// ClaimBatch claims up to n URLs whose last crawl is older than the
// cool-down window and returns them scheme-qualified.
func (f *SolrFrontier) ClaimBatch(ctx context.Context, n int, now time.Time) ([]string, error) {
	if err := f.Locker.Acquire(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = f.Locker.Release() }()

	cutoff := now.Unix() - int64(ossearch.CooldownWindow/time.Second)
	docs, err := f.Index.Search(ctx, ossearch.Working, ossearch.Query{
		Q:      "*:*",
		Filter: fmt.Sprintf("last_update_time:[0 TO %d]", cutoff),
		Rows:   n,
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	urls := make([]string, 0, len(docs))
	for _, doc := range docs {
		urls = append(urls, doc.URL())
		doc.SetLastUpdate(now.Unix())
		doc.Version = 0
	}

	// The committed receipts are what keeps the next claimer out of this
	// batch for the duration of the cool-down.
	if err := f.Index.Add(ctx, ossearch.Working, docs, ossearch.AddOptions{
		Overwrite: true,
		Commit:    true,
	}); err != nil {
		return nil, err
	}

	return urls, nil
}

// AddAll inserts never-crawled frontier records for canonical URLs.
// Existing records are left untouched, so a re-discovered URL never loses
// its crawl history. URLs that cannot be decomposed are skipped.
func (f *SolrFrontier) AddAll(ctx context.Context, canonicalURLs []string) error {
	docs := make([]*ossearch.Document, 0, len(canonicalURLs))
	for _, u := range canonicalURLs {
		doc, err := ossearch.NewURLRecord(u, f.Suffixes)
		if err != nil {
			continue
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil
	}

	// Visibility can wait for the next receipt commit.
	return f.Index.Add(ctx, ossearch.Working, docs, ossearch.AddOptions{
		Overwrite: false,
		Commit:    false,
	})
}
