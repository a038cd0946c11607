package netlock

import (
	"context"

	"github.com/ossearch/ossearch"
)

// Ensure Local implements ossearch.Locker at compile time.
var _ ossearch.Locker = (*Local)(nil)

// Local is the in-process lock for single-machine deployments. All workers
// in the process share one Local value.
type Local struct {
	ch chan struct{}
}

// NewLocal creates an unheld in-process lock.
func NewLocal() *Local {
	return &Local{ch: make(chan struct{}, 1)}
}

// Acquire blocks until the lock is granted or the context is done.
func (l *Local) Acquire(ctx context.Context) error {
	select {
	case l.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release gives the lock back.
func (l *Local) Release() error {
	select {
	case <-l.ch:
		return nil
	default:
		return ossearch.Errorf(ossearch.ECONFLICT, "lock not held")
	}
}
