// Package bloom tracks URLs a crawler session has already discovered, so a
// repeat discovery skips the frontier round trip. False positives only cost
// a page that is never re-queued within the session; the frontier itself is
// still the durable record.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// DefaultCapacity sizes the filter for a long crawler session.
const DefaultCapacity = 1_000_000

// DefaultFalsePositiveRate keeps accidental drops rare.
const DefaultFalsePositiveRate = 0.001

// SeenURLs remembers which canonical URLs a session has discovered.
type SeenURLs struct {
	f *bloom.BloomFilter
}

// NewSeenURLs creates a filter sized for n expected URLs with the given
// false positive rate.
func NewSeenURLs(n uint, fpRate float64) *SeenURLs {
	return &SeenURLs{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// NewSessionSeenURLs creates a filter with the default sizing.
func NewSessionSeenURLs() *SeenURLs {
	return NewSeenURLs(DefaultCapacity, DefaultFalsePositiveRate)
}

// Seen records the URL and reports whether it had been recorded before.
// A false return is authoritative; a true return may rarely be a false
// positive.
func (s *SeenURLs) Seen(url string) bool {
	return s.f.TestAndAddString(url)
}

// Count returns the approximate number of URLs recorded.
func (s *SeenURLs) Count() uint {
	return uint(s.f.ApproximatedSize())
}
