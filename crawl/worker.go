package crawl

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"

	"github.com/ossearch/ossearch"
	"github.com/ossearch/ossearch/bloom"
	"github.com/ossearch/ossearch/zlib"
)

// BackoffDelay is how long a worker sleeps when the frontier has no work.
const BackoffDelay = 10 * time.Second

// Worker drives one crawl loop: claim a batch, then for each URL fetch,
// parse, publish, and feed discoveries back. A worker that finds no work
// backs off before claiming again.
type Worker struct {
	ID        int
	Frontier  ossearch.Frontier
	Fetcher   ossearch.Fetcher
	Index     ossearch.Index
	Cache     ossearch.PageCache
	Tokenizer ossearch.Tokenizer
	Suffixes  *ossearch.SuffixList
	Seen      *bloom.SeenURLs
	Limiter   *HostLimiter
	Logger    zerolog.Logger

	// Backoff overrides BackoffDelay when positive. Tests shorten it.
	Backoff time.Duration

	// Now overrides the clock. Tests pin it.
	Now func() time.Time
}

// Run loops until the context is done.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		urls, err := w.Frontier.ClaimBatch(ctx, ossearch.ClaimRows, w.now())
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.Logger.Warn().Err(err).Msg("claim round failed")
			if err := w.sleep(ctx); err != nil {
				return err
			}
			continue
		}

		if len(urls) == 0 {
			if err := w.sleep(ctx); err != nil {
				return err
			}
			continue
		}

		for _, u := range urls {
			if err := ctx.Err(); err != nil {
				return err
			}
			w.Crawl(ctx, u)
		}
	}
}

// Crawl processes one claimed, scheme-qualified URL.
func (w *Worker) Crawl(ctx context.Context, claimURL string) {
	id, ok := idFromURL(claimURL)
	if !ok {
		w.Logger.Warn().Str("url", claimURL).Msg("claimed url has no identity")
		return
	}

	parsed, err := url.Parse(claimURL)
	if err != nil {
		w.fail(ctx, id)
		return
	}
	if w.Limiter != nil {
		if err := w.Limiter.Wait(ctx, parsed.Host); err != nil {
			return
		}
	}

	res, err := w.Fetcher.Fetch(ctx, claimURL)
	if err != nil {
		w.fail(ctx, id)
		return
	}

	// A redirected page lives at its final URL now; drop the records for
	// the claimed identity and let the final URL be discovered fresh.
	if res.FinalURL != claimURL {
		w.fail(ctx, id)
		w.discover(ctx, res.FinalURL, claimURL)
		return
	}

	acc := newAccumulator(claimURL)
	if err := w.Tokenizer.Tokenize(res.Body, acc); err != nil {
		w.fail(ctx, id)
		return
	}

	if w.Cache != nil {
		compressed, err := zlib.Compress(res.Body)
		if err == nil {
			if err := w.Cache.Put(ctx, id, compressed); err != nil {
				w.Logger.Warn().Err(err).Str("id", id).Msg("page cache put failed")
			}
		}
	}

	w.publish(ctx, claimURL, acc)
	w.enqueue(ctx, acc.urls())
}

// publish upserts the crawled document into the working collection. Pages
// without both a title and content leave only their claim receipt behind.
func (w *Worker) publish(ctx context.Context, claimURL string, acc *accumulator) {
	title := acc.pageTitle()
	content := ossearch.TokenizeContent(ossearch.CleanupString(acc.text.String()))
	if title == "" || content == "" {
		return
	}

	doc, err := ossearch.NewURLRecord(claimURL, w.Suffixes)
	if err != nil {
		return
	}
	doc.SetLastUpdate(w.now().Unix())
	doc.Title = title
	doc.MetaDescription = acc.metaDescription
	doc.MetaKeywords = acc.metaKeywords
	doc.Content = content
	doc.ContentHash = fmt.Sprintf("%x", xxhash.Sum64String(content))

	if err := w.Index.Add(ctx, ossearch.Working, []*ossearch.Document{doc}, ossearch.AddOptions{
		Overwrite: true,
	}); err != nil {
		w.Logger.Warn().Err(err).Str("id", doc.ID).Msg("publish failed")
	}
}

// fail removes the claimed identity from both collections.
func (w *Worker) fail(ctx context.Context, id string) {
	if err := w.Index.Delete(ctx, ossearch.Working, id, ossearch.DeleteOptions{}); err != nil {
		w.Logger.Warn().Err(err).Str("id", id).Msg("working delete failed")
	}
	if err := w.Index.Delete(ctx, ossearch.Main, id, ossearch.DeleteOptions{}); err != nil {
		w.Logger.Warn().Err(err).Str("id", id).Msg("main delete failed")
	}
}

// discover canonicalizes one raw URL and queues it if it is crawlable and
// new to this session.
func (w *Worker) discover(ctx context.Context, raw, page string) {
	canonical := ossearch.Canonicalize(raw, page)
	if canonical == "" || !ossearch.ValidateURL(canonical) {
		return
	}
	w.enqueue(ctx, []string{canonical})
}

// enqueue feeds canonical URLs into the frontier, skipping ones this
// session has already discovered.
func (w *Worker) enqueue(ctx context.Context, canonicalURLs []string) {
	fresh := canonicalURLs
	if w.Seen != nil {
		fresh = fresh[:0:0]
		for _, u := range canonicalURLs {
			if !w.Seen.Seen(u) {
				fresh = append(fresh, u)
			}
		}
	}
	if len(fresh) == 0 {
		return
	}
	if err := w.Frontier.AddAll(ctx, fresh); err != nil {
		w.Logger.Warn().Err(err).Int("count", len(fresh)).Msg("frontier add failed")
	}
}

func (w *Worker) sleep(ctx context.Context) error {
	backoff := w.Backoff
	if backoff <= 0 {
		backoff = BackoffDelay
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(backoff):
		return nil
	}
}

func (w *Worker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// idFromURL strips the scheme from a claimed URL, leaving the canonical
// identity.
func idFromURL(claimURL string) (string, bool) {
	_, id, ok := strings.Cut(claimURL, "://")
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// accumulator collects the token events of one page. It implements
// ossearch.TokenSink.
type accumulator struct {
	page string

	found           map[string]struct{}
	title           strings.Builder
	metaTitle       string
	metaDescription string
	metaKeywords    string
	text            strings.Builder
}

var _ ossearch.TokenSink = (*accumulator)(nil)

func newAccumulator(page string) *accumulator {
	return &accumulator{
		page:  page,
		found: make(map[string]struct{}),
	}
}

// FoundURL canonicalizes the href against the page and keeps it if it
// passes validation and the extension check.
func (a *accumulator) FoundURL(raw string) {
	canonical := ossearch.Canonicalize(raw, a.page)
	if canonical == "" || !ossearch.ValidateURL(canonical) {
		return
	}
	u, err := url.Parse(canonical)
	if err != nil || !ossearch.AllowedExtension(u.EscapedPath()) {
		return
	}
	a.found[canonical] = struct{}{}
}

// FoundImage is ignored; image crawling stays disabled.
func (a *accumulator) FoundImage(string) {}

func (a *accumulator) FoundMetaPair(name, content string) {
	switch strings.ToLower(name) {
	case "title":
		a.metaTitle = content
	case "description":
		a.metaDescription = content
	case "keywords":
		a.metaKeywords = content
	}
}

func (a *accumulator) FoundTitle(text string) {
	if a.title.Len() > 0 {
		a.title.WriteByte(' ')
	}
	a.title.WriteString(text)
}

func (a *accumulator) FoundContent(text string) {
	a.text.WriteString(text)
	a.text.WriteByte(' ')
}

// pageTitle prefers an explicit meta title over the <title> element.
func (a *accumulator) pageTitle() string {
	if a.metaTitle != "" {
		return strings.TrimSpace(ossearch.CleanupString(a.metaTitle))
	}
	return strings.TrimSpace(ossearch.CleanupString(a.title.String()))
}

// urls returns the discovered canonical URLs in no particular order.
func (a *accumulator) urls() []string {
	out := make([]string, 0, len(a.found))
	for u := range a.found {
		out = append(out, u)
	}
	return out
}
