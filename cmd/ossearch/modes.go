package main

import (
	"context"
	"fmt"
	"net"
	nethttp "net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ossearch/ossearch"
	"github.com/ossearch/ossearch/bloom"
	"github.com/ossearch/ossearch/crawl"
	"github.com/ossearch/ossearch/html"
	osshttp "github.com/ossearch/ossearch/http"
	"github.com/ossearch/ossearch/indexer"
	"github.com/ossearch/ossearch/maintain"
	"github.com/ossearch/ossearch/netlock"
	"github.com/ossearch/ossearch/solr"
	"github.com/ossearch/ossearch/sqlite"
	osslog "github.com/ossearch/ossearch/zerolog"
)

// newIndex builds a Solr client pinned to the node for the given worker.
func (m *Main) newIndex(cli *CLI, workerID int) (*solr.Client, error) {
	return solr.NewClient(cli.WorkingURLs, cli.MainURLs, solr.WithWorkerID(workerID))
}

func (m *Main) lockAddr(cli *CLI) string {
	return net.JoinHostPort(cli.Host, strconv.Itoa(cli.Port))
}

// runManager runs the frontier lock server until the context is done.
func (m *Main) runManager(ctx context.Context, cli *CLI, logger zerolog.Logger) error {
	srv := netlock.NewServer(cli.AuthKey, logger.With().Str("worker", "manager").Logger())
	if err := srv.Open(m.lockAddr(cli)); err != nil {
		return err
	}
	<-ctx.Done()
	return srv.Close()
}

// runWebcrawler runs a pool of crawler workers sharing the page cache and
// the per-host rate limiter. Each worker carries its own index handle,
// suffix list, frontier lock connection, and session bloom filter.
func (m *Main) runWebcrawler(ctx context.Context, cli *CLI, logger zerolog.Logger) error {
	db := sqlite.NewDB(cli.CacheDB)
	if err := db.Open(); err != nil {
		return err
	}
	defer db.Close()
	cache := sqlite.NewPageCache(db)

	limiter := crawl.NewHostLimiter(cli.Rate)
	loader := osshttp.NewSuffixLoader(nethttp.DefaultClient)

	pool := &crawl.Pool{
		Size: cli.Processes,
		Build: func(ctx context.Context, id int) (*crawl.Worker, error) {
			wlog := logger.With().Str("worker", fmt.Sprintf("wc/%d", id)).Logger()
			index, err := m.newIndex(cli, id)
			if err != nil {
				return nil, err
			}
			suffixes, err := loader.Load(ctx)
			if err != nil {
				return nil, err
			}
			frontier := &crawl.SolrFrontier{
				Index:    index,
				Locker:   netlock.NewClient(m.lockAddr(cli), cli.AuthKey, netlock.FrontierLock),
				Suffixes: suffixes,
			}
			return &crawl.Worker{
				ID:        id,
				Frontier:  osslog.NewFrontier(frontier, wlog),
				Fetcher:   osslog.NewFetcher(osshttp.NewFetcher(), wlog),
				Index:     index,
				Cache:     cache,
				Tokenizer: html.NewTokenizer(),
				Suffixes:  suffixes,
				Seen:      bloom.NewSessionSeenURLs(),
				Limiter:   limiter,
				Logger:    wlog,
			}, nil
		},
	}
	return pool.Run(ctx)
}

// runIndexer runs a pool of indexer workers draining the shared page cache.
func (m *Main) runIndexer(ctx context.Context, cli *CLI, logger zerolog.Logger) error {
	db := sqlite.NewDB(cli.CacheDB)
	if err := db.Open(); err != nil {
		return err
	}
	defer db.Close()
	cache := sqlite.NewPageCache(db)

	loader := osshttp.NewSuffixLoader(nethttp.DefaultClient)

	pool := &indexer.Pool{
		Size: cli.Processes,
		Build: func(ctx context.Context, id int) (*indexer.Worker, error) {
			wlog := logger.With().Str("worker", fmt.Sprintf("idx/%d", id)).Logger()
			index, err := m.newIndex(cli, id)
			if err != nil {
				return nil, err
			}
			suffixes, err := loader.Load(ctx)
			if err != nil {
				return nil, err
			}
			return &indexer.Worker{
				ID:        id,
				Cache:     cache,
				Index:     index,
				Tokenizer: html.NewTokenizer(),
				Suffixes:  suffixes,
				Logger:    wlog,
			}, nil
		},
	}
	return pool.Run(ctx)
}

func (m *Main) runOptimizer(ctx context.Context, cli *CLI, logger zerolog.Logger) error {
	opt := &maintain.Optimizer{
		NewIndex: func() (ossearch.Index, error) { return m.newIndex(cli, 0) },
		Logger:   logger.With().Str("worker", "optimizer").Logger(),
	}
	return opt.Run(ctx)
}

func (m *Main) runRebooster(ctx context.Context, cli *CLI, logger zerolog.Logger) error {
	index, err := m.newIndex(cli, 0)
	if err != nil {
		return err
	}
	rb := &maintain.Rebooster{
		Index:  index,
		Logger: logger.With().Str("worker", "rebooster").Logger(),
	}
	return rb.Run(ctx)
}

func (m *Main) runDeltamerge(ctx context.Context, cli *CLI, logger zerolog.Logger) error {
	index, err := m.newIndex(cli, 0)
	if err != nil {
		return err
	}
	dm := &maintain.DeltaMerge{
		Index:  index,
		Logger: logger.With().Str("worker", "deltamerge").Logger(),
	}
	return dm.Run(ctx)
}

// runSeed discovers a site's sitemap URLs, filters them the way the crawler
// filters discovered links, and inserts them into the frontier.
func (m *Main) runSeed(ctx context.Context, cli *CLI, logger zerolog.Logger) error {
	slog := logger.With().Str("worker", "seed").Logger()

	index, err := m.newIndex(cli, 0)
	if err != nil {
		return err
	}
	suffixes, err := osshttp.NewSuffixLoader(nethttp.DefaultClient).Load(ctx)
	if err != nil {
		return err
	}

	discovered, err := osshttp.NewSitemap(nethttp.DefaultClient).Discover(ctx, cli.Seed)
	if err != nil {
		return err
	}

	seeds := make([]string, 0, len(discovered)+1)
	for _, raw := range append([]string{cli.Seed}, discovered...) {
		canonical := ossearch.Canonicalize(raw, "")
		if canonical == "" || !ossearch.ValidateURL(canonical) {
			continue
		}
		u, err := url.Parse(canonical)
		if err != nil || !ossearch.AllowedExtension(u.EscapedPath()) {
			continue
		}
		seeds = append(seeds, canonical)
	}

	// Seeding is a one-shot local operation; no shared lock is needed
	// because AddAll never overwrites existing frontier records.
	frontier := osslog.NewFrontier(&crawl.SolrFrontier{
		Index:    index,
		Locker:   netlock.NewLocal(),
		Suffixes: suffixes,
	}, slog)
	if err := frontier.AddAll(ctx, seeds); err != nil {
		return err
	}
	if err := index.Commit(ctx, ossearch.Working); err != nil {
		return err
	}

	slog.Info().Int("seeded", len(seeds)).Str("site", cli.Seed).Msg("frontier seeded")
	return nil
}
