package indexer

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultPoolSize is the number of indexer workers started when none is
// configured.
const DefaultPoolSize = 10

// Pool runs a fixed set of indexer workers until the context is done.
type Pool struct {
	Size  int
	Build func(ctx context.Context, id int) (*Worker, error)
}

// Run builds and runs the workers, returning the first error that is not a
// context cancellation.
func (p *Pool) Run(ctx context.Context) error {
	size := p.Size
	if size <= 0 {
		size = DefaultPoolSize
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < size; i++ {
		i := i
		g.Go(func() error {
			worker, err := p.Build(gctx, i)
			if err != nil {
				return err
			}
			err = worker.Run(gctx)
			if gctx.Err() != nil {
				return nil
			}
			return err
		})
	}
	return g.Wait()
}
