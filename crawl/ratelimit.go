package crawl

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter provides per-host politeness using token buckets. Each host
// gets its own limiter, so the swarm stays fast across hosts while a single
// host is never hit faster than the configured rate.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewHostLimiter creates a HostLimiter allowing rps requests per second per
// host, with a burst of 1.
func NewHostLimiter(rps float64) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until the rate limit allows a request to the host.
// Returns an error if the context is canceled before the wait completes.
func (h *HostLimiter) Wait(ctx context.Context, host string) error {
	h.mu.Lock()
	limiter, ok := h.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(h.rps), 1)
		h.limiters[host] = limiter
	}
	h.mu.Unlock()

	return limiter.Wait(ctx)
}
