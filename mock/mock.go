// Package mock provides function-field mock implementations of the root
// interfaces for use in tests.
package mock

import (
	"context"
	"time"

	"github.com/ossearch/ossearch"
)

var _ ossearch.Index = (*Index)(nil)

// Index is a mock implementation of ossearch.Index.
type Index struct {
	AddFn      func(ctx context.Context, c ossearch.Collection, docs []*ossearch.Document, opts ossearch.AddOptions) error
	DeleteFn   func(ctx context.Context, c ossearch.Collection, id string, opts ossearch.DeleteOptions) error
	CommitFn   func(ctx context.Context, c ossearch.Collection) error
	OptimizeFn func(ctx context.Context, c ossearch.Collection) error
	SearchFn   func(ctx context.Context, c ossearch.Collection, q ossearch.Query) ([]*ossearch.Document, error)
}

func (i *Index) Add(ctx context.Context, c ossearch.Collection, docs []*ossearch.Document, opts ossearch.AddOptions) error {
	return i.AddFn(ctx, c, docs, opts)
}

func (i *Index) Delete(ctx context.Context, c ossearch.Collection, id string, opts ossearch.DeleteOptions) error {
	return i.DeleteFn(ctx, c, id, opts)
}

func (i *Index) Commit(ctx context.Context, c ossearch.Collection) error {
	return i.CommitFn(ctx, c)
}

func (i *Index) Optimize(ctx context.Context, c ossearch.Collection) error {
	return i.OptimizeFn(ctx, c)
}

func (i *Index) Search(ctx context.Context, c ossearch.Collection, q ossearch.Query) ([]*ossearch.Document, error) {
	return i.SearchFn(ctx, c, q)
}

var _ ossearch.Frontier = (*Frontier)(nil)

// Frontier is a mock implementation of ossearch.Frontier.
type Frontier struct {
	ClaimBatchFn func(ctx context.Context, n int, now time.Time) ([]string, error)
	AddAllFn     func(ctx context.Context, canonicalURLs []string) error
}

func (f *Frontier) ClaimBatch(ctx context.Context, n int, now time.Time) ([]string, error) {
	return f.ClaimBatchFn(ctx, n, now)
}

func (f *Frontier) AddAll(ctx context.Context, canonicalURLs []string) error {
	return f.AddAllFn(ctx, canonicalURLs)
}

var _ ossearch.Locker = (*Locker)(nil)

// Locker is a mock implementation of ossearch.Locker.
type Locker struct {
	AcquireFn func(ctx context.Context) error
	ReleaseFn func() error
}

func (l *Locker) Acquire(ctx context.Context) error {
	return l.AcquireFn(ctx)
}

func (l *Locker) Release() error {
	return l.ReleaseFn()
}

var _ ossearch.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of ossearch.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*ossearch.FetchResult, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*ossearch.FetchResult, error) {
	return f.FetchFn(ctx, url)
}

var _ ossearch.PageCache = (*PageCache)(nil)

// PageCache is a mock implementation of ossearch.PageCache.
type PageCache struct {
	PutFn  func(ctx context.Context, id string, data []byte) error
	NextFn func(ctx context.Context) (*ossearch.CachedPage, error)
}

func (c *PageCache) Put(ctx context.Context, id string, data []byte) error {
	return c.PutFn(ctx, id, data)
}

func (c *PageCache) Next(ctx context.Context) (*ossearch.CachedPage, error) {
	return c.NextFn(ctx)
}

var _ ossearch.SuffixLoader = (*SuffixLoader)(nil)

// SuffixLoader is a mock implementation of ossearch.SuffixLoader.
type SuffixLoader struct {
	LoadFn func(ctx context.Context) (*ossearch.SuffixList, error)
}

func (l *SuffixLoader) Load(ctx context.Context) (*ossearch.SuffixList, error) {
	return l.LoadFn(ctx)
}

var _ ossearch.Tokenizer = (*Tokenizer)(nil)

// Tokenizer is a mock implementation of ossearch.Tokenizer.
type Tokenizer struct {
	TokenizeFn func(data []byte, sink ossearch.TokenSink) error
}

func (t *Tokenizer) Tokenize(data []byte, sink ossearch.TokenSink) error {
	return t.TokenizeFn(data, sink)
}
