// Package indexer runs the content-only worker variant: it drains
// compressed page bodies from the page cache and publishes content
// documents without performing any HTTP.
package indexer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"

	"github.com/ossearch/ossearch"
	"github.com/ossearch/ossearch/zlib"
)

// IdleDelay is how long a worker sleeps when the page cache is empty.
const IdleDelay = 10 * time.Second

// Worker drains the page cache one entry at a time.
type Worker struct {
	ID        int
	Cache     ossearch.PageCache
	Index     ossearch.Index
	Tokenizer ossearch.Tokenizer
	Suffixes  *ossearch.SuffixList
	Logger    zerolog.Logger

	// Idle overrides IdleDelay when positive. Tests shorten it.
	Idle time.Duration

	// Now overrides the clock. Tests pin it.
	Now func() time.Time
}

// Run loops until the context is done.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := w.Cache.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if ossearch.ErrorCode(err) != ossearch.ENOTFOUND {
				w.Logger.Warn().Err(err).Msg("page cache read failed")
			}
			if err := w.sleep(ctx); err != nil {
				return err
			}
			continue
		}

		if err := w.Process(ctx, page); err != nil {
			w.Logger.Warn().Err(err).Str("id", page.ID).Msg("indexing failed")
		}
	}
}

// Process decompresses, tokenizes, and publishes one cached page. Pages
// without both a title and content are dropped.
func (w *Worker) Process(ctx context.Context, page *ossearch.CachedPage) error {
	raw, err := zlib.Decompress(page.Data)
	if err != nil {
		return ossearch.Errorf(ossearch.EINVALID, "corrupt cached page %q: %v", page.ID, err)
	}

	var c collector
	if err := w.Tokenizer.Tokenize(raw, &c); err != nil {
		return err
	}

	title := c.pageTitle()
	content := ossearch.TokenizeContent(ossearch.CleanupString(c.text.String()))
	if title == "" || content == "" {
		return nil
	}

	// The cache key carries no scheme; reconstruct as plain http and let
	// the crawler's own upsert win for https sites.
	doc, err := ossearch.NewURLRecord("http://"+page.ID, w.Suffixes)
	if err != nil {
		return err
	}
	doc.SetLastUpdate(w.now().Unix())
	doc.Title = title
	doc.MetaDescription = c.metaDescription
	doc.MetaKeywords = c.metaKeywords
	doc.Content = content
	doc.ContentHash = fmt.Sprintf("%x", xxhash.Sum64String(content))

	return w.Index.Add(ctx, ossearch.Working, []*ossearch.Document{doc}, ossearch.AddOptions{
		Overwrite: true,
	})
}

func (w *Worker) sleep(ctx context.Context) error {
	idle := w.Idle
	if idle <= 0 {
		idle = IdleDelay
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(idle):
		return nil
	}
}

func (w *Worker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// collector accumulates field events. Link and image events are ignored;
// discovery is the crawler's job.
type collector struct {
	title           strings.Builder
	metaTitle       string
	metaDescription string
	metaKeywords    string
	text            strings.Builder
}

var _ ossearch.TokenSink = (*collector)(nil)

func (c *collector) FoundURL(string)   {}
func (c *collector) FoundImage(string) {}

func (c *collector) FoundMetaPair(name, content string) {
	switch strings.ToLower(name) {
	case "title":
		c.metaTitle = content
	case "description":
		c.metaDescription = content
	case "keywords":
		c.metaKeywords = content
	}
}

func (c *collector) FoundTitle(text string) {
	if c.title.Len() > 0 {
		c.title.WriteByte(' ')
	}
	c.title.WriteString(text)
}

func (c *collector) FoundContent(text string) {
	c.text.WriteString(text)
	c.text.WriteByte(' ')
}

func (c *collector) pageTitle() string {
	if c.metaTitle != "" {
		return strings.TrimSpace(ossearch.CleanupString(c.metaTitle))
	}
	return strings.TrimSpace(ossearch.CleanupString(c.title.String()))
}
