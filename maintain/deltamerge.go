package maintain

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ossearch/ossearch"
)

// MergePageSize is how many working documents the merge reads per page.
const MergePageSize = 500

// DeltaMerge promotes crawled documents from the working collection into
// main. Only documents last touched at or before the snapshot cutoff are
// considered, so crawls that land mid-merge wait for the next run. Promoted
// documents get a fresh receipt in working; the main copies drop the
// last-crawl field entirely. A full merge ends with one rebooster pass.
type DeltaMerge struct {
	Index  ossearch.Index
	Logger zerolog.Logger

	// Now overrides the clock. Tests pin it.
	Now func() time.Time
}

// Run performs one full merge.
func (m *DeltaMerge) Run(ctx context.Context) error {
	cutoff := m.now().Unix()
	m.Logger.Info().Int64("cutoff", cutoff).Msg("delta merge starting")

	// Scan the whole window first, then write. Writing receipts while
	// paging would shift the pages under the scan.
	var candidates []*ossearch.Document
	for page := 0; ; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		docs, err := m.Index.Search(ctx, ossearch.Working, ossearch.Query{
			Q:      "*:*",
			Filter: fmt.Sprintf("last_update_time:[0 TO %d] AND domain:*", cutoff),
			Rows:   MergePageSize,
			Start:  page * MergePageSize,
		})
		if err != nil {
			return err
		}

		for _, doc := range docs {
			if doc.Promotable() {
				candidates = append(candidates, doc)
			}
		}
		if len(docs) < MergePageSize {
			break
		}
	}

	for start := 0; start < len(candidates); start += MergePageSize {
		end := min(start+MergePageSize, len(candidates))
		batch := candidates[start:end]

		promoted := make([]*ossearch.Document, 0, len(batch))
		receipts := make([]*ossearch.Document, 0, len(batch))
		// Receipts must land strictly after the cutoff; a merge finishing
		// within the snapshot second would otherwise leave them inside the
		// window it just merged.
		stamp := max(m.now().Unix(), cutoff+1)
		for _, doc := range batch {
			main := *doc
			main.Version = 0
			main.ClearLastUpdate()
			promoted = append(promoted, &main)

			receipt := doc
			receipt.Version = 0
			receipt.SetLastUpdate(stamp)
			receipts = append(receipts, receipt)
		}

		if err := m.Index.Add(ctx, ossearch.Main, promoted, ossearch.AddOptions{
			Overwrite: true,
		}); err != nil {
			return err
		}
		if err := m.Index.Add(ctx, ossearch.Working, receipts, ossearch.AddOptions{
			Overwrite: true,
			Commit:    true,
		}); err != nil {
			return err
		}
	}

	m.Logger.Info().Int("merged", len(candidates)).Msg("delta merge finished")

	rebooster := &Rebooster{Index: m.Index, Logger: m.Logger}
	return rebooster.Run(ctx)
}

func (m *DeltaMerge) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}
