package ossearch

import (
	"context"
	"time"
)

// CooldownWindow is the per-URL re-crawl cool-down: a claimed or freshly
// crawled URL is not eligible again for seven days.
const CooldownWindow = 7 * 86400 * time.Second

// ClaimRows is the number of URLs requested per claim round.
const ClaimRows = 20

// Frontier is the shared, deduplicated, time-gated URL catalog stored in
// the working collection.
type Frontier interface {
	// ClaimBatch atomically claims up to n URLs whose last crawl is older
	// than the cool-down window, marks them claimed as of now, and returns
	// them scheme-qualified. An empty batch means no work is available.
	//
	// Any two successful claims, from any number of concurrent claimers,
	// observe disjoint URL sets.
	ClaimBatch(ctx context.Context, n int, now time.Time) ([]string, error)

	// AddAll inserts frontier records for canonical URLs with a last-crawl
	// time of zero, never overwriting records that already exist.
	AddAll(ctx context.Context, canonicalURLs []string) error
}

// Locker is a named exclusive mutex serializing claim rounds across worker
// goroutines, processes, or hosts. Deployment chooses the backend; callers
// must not depend on which one they hold.
type Locker interface {
	// Acquire blocks until the mutex is held or ctx is done.
	Acquire(ctx context.Context) error

	// Release releases the mutex. Implementations guarantee release on any
	// exit path, including a dropped connection of a crashed holder.
	Release() error
}
