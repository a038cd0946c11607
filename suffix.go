package ossearch

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// SuffixList is a set of public suffixes: dotted suffixes under which
// independent parties may register names. It drives the decomposition of a
// hostname into (subdomain, registrable domain, tld).
type SuffixList struct {
	set map[string]struct{}
}

// SuffixLoader retrieves the public-suffix list. Implementations cache is
// the caller's concern: each worker loads the list once at start and keeps
// it for its lifetime.
type SuffixLoader interface {
	Load(ctx context.Context) (*SuffixList, error)
}

// NewSuffixList builds a list from explicit suffixes. Mostly used in tests.
func NewSuffixList(suffixes ...string) *SuffixList {
	l := &SuffixList{set: make(map[string]struct{}, len(suffixes))}
	for _, s := range suffixes {
		l.set[s] = struct{}{}
	}
	return l
}

// ParseSuffixList reads the effective_tld_names.dat format: one suffix per
// line; empty lines and lines starting with "//" or "*" are ignored.
func ParseSuffixList(r io.Reader) (*SuffixList, error) {
	l := &SuffixList{set: make(map[string]struct{})}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "*") {
			continue
		}
		l.set[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(l.set) == 0 {
		return nil, Errorf(EINVALID, "suffix list is empty")
	}
	return l, nil
}

// Len returns the number of suffixes in the list.
func (l *SuffixList) Len() int {
	return len(l.set)
}

// Contains reports whether the exact suffix is a member of the list.
func (l *SuffixList) Contains(suffix string) bool {
	_, ok := l.set[suffix]
	return ok
}

// SplitHost decomposes a hostname into (subdomain, domain, tld) by picking
// the longest label-sequence suffix of host that is a member of the list.
// Of the labels remaining in front of the suffix, the last becomes the
// registrable domain and the rest join into the subdomain (possibly empty).
// When no suffix matches, the final label alone is treated as the tld.
func (l *SuffixList) SplitHost(host string) (subdomain, domain, tld string) {
	labels := strings.Split(host, ".")

	cut := len(labels) - 1 // fallback: final label is the tld
	for i := 0; i < len(labels)-1; i++ {
		if l.Contains(strings.Join(labels[i:], ".")) {
			cut = i
			break
		}
	}

	tld = strings.Join(labels[cut:], ".")
	if cut > 0 {
		domain = labels[cut-1]
	}
	if cut > 1 {
		subdomain = strings.Join(labels[:cut-1], ".")
	}
	return subdomain, domain, tld
}
