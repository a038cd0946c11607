// Package maintain runs the background index maintenance jobs: the
// periodic commit-and-optimize loop, the boost rewriter, and the merge of
// crawled documents from the working collection into main.
package maintain

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ossearch/ossearch"
)

// OptimizeInterval is the pause between successful optimizer rounds.
const OptimizeInterval = 5 * time.Minute

// OptimizeBackoff is the pause after a failed round, during which the index
// handle is discarded and reacquired.
const OptimizeBackoff = 10 * time.Minute

// Optimizer periodically commits and optimizes the main collection. A
// failed round discards the index handle; the next round starts from a
// fresh one.
type Optimizer struct {
	NewIndex func() (ossearch.Index, error)
	Logger   zerolog.Logger

	// Interval and Backoff override the defaults when positive.
	Interval time.Duration
	Backoff  time.Duration
}

// Run loops until the context is done.
func (o *Optimizer) Run(ctx context.Context) error {
	var index ossearch.Index
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if index == nil {
			var err error
			index, err = o.NewIndex()
			if err != nil {
				o.Logger.Warn().Err(err).Msg("index handle unavailable")
				if err := sleep(ctx, o.backoff()); err != nil {
					return err
				}
				continue
			}
		}

		o.Logger.Info().Msg("Optimizing...")
		err := index.Commit(ctx, ossearch.Main)
		if err == nil {
			err = index.Optimize(ctx, ossearch.Main)
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			o.Logger.Warn().Err(err).Msg("Disconnected.")
			index = nil
			if err := sleep(ctx, o.backoff()); err != nil {
				return err
			}
			continue
		}

		o.Logger.Info().Msg("Done.")
		if err := sleep(ctx, o.interval()); err != nil {
			return err
		}
	}
}

func (o *Optimizer) interval() time.Duration {
	if o.Interval > 0 {
		return o.Interval
	}
	return OptimizeInterval
}

func (o *Optimizer) backoff() time.Duration {
	if o.Backoff > 0 {
		return o.Backoff
	}
	return OptimizeBackoff
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
