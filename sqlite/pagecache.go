package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ossearch/ossearch"
)

// Ensure PageCache implements ossearch.PageCache at compile time.
var _ ossearch.PageCache = (*PageCache)(nil)

// PageCache stores compressed page bodies keyed by canonical id. Crawler
// workers put, indexer workers drain.
type PageCache struct {
	db *DB
}

// NewPageCache creates a PageCache backed by the given database.
func NewPageCache(db *DB) *PageCache {
	return &PageCache{db: db}
}

// Put stores compressed page data for an id, replacing any previous entry.
// Replacing moves the entry to the back of the drain order.
func (c *PageCache) Put(ctx context.Context, id string, data []byte) error {
	if id == "" {
		return ossearch.Errorf(ossearch.EINVALID, "page id is required")
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO pages (id, data) VALUES (?, ?)
	`, id, data)
	return err
}

// Next atomically claims and removes the oldest cached page. Returns
// ENOTFOUND when the cache is empty. The single-statement delete keeps
// concurrent drainers from claiming the same page.
func (c *PageCache) Next(ctx context.Context) (*ossearch.CachedPage, error) {
	var page ossearch.CachedPage
	err := c.db.QueryRowContext(ctx, `
		DELETE FROM pages
		WHERE rowid = (SELECT MIN(rowid) FROM pages)
		RETURNING id, data
	`).Scan(&page.ID, &page.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ossearch.Errorf(ossearch.ENOTFOUND, "page cache is empty")
	}
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// Len reports how many pages are waiting to be drained.
func (c *PageCache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
