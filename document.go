package ossearch

import (
	"net/url"
	"strings"
)

// Collection identifies a logical index partition.
type Collection string

// The two index partitions of the pipeline. Working stores frontier state
// and freshly crawled content pending promotion; Main serves queries.
const (
	Working Collection = "working"
	Main    Collection = "main"
)

// Document is a record in an index collection. In the working collection a
// document doubles as a frontier entry: identity plus host decomposition
// plus last-crawl time, with content fields populated only after a
// successful crawl. In the main collection the same shape appears without
// LastUpdateTime.
type Document struct {
	// ID is the canonical identity: host + path, no scheme, no trailing
	// slash. Unique per collection.
	ID string `json:"id"`

	IsHTTPS   bool   `json:"is_https"`
	Subdomain string `json:"subdomain,omitempty"`
	Domain    string `json:"domain,omitempty"`
	TLD       string `json:"tld,omitempty"`
	Path      string `json:"path,omitempty"`

	Title           string `json:"title,omitempty"`
	MetaDescription string `json:"meta_description,omitempty"`
	MetaKeywords    string `json:"meta_keywords,omitempty"`

	// Content is a space-joined sequence of lowercase word tokens.
	Content string `json:"content,omitempty"`

	// ContentHash is an xxHash of Content, stamped at publish time.
	ContentHash string `json:"content_hash,omitempty"`

	// LastUpdateTime is the last-crawl (or claim) time in epoch seconds.
	// Zero means never crawled. Nil means the field is absent, which is the
	// required state for every document in the main collection.
	LastUpdateTime *int64 `json:"last_update_time,omitempty"`

	// Version is the index-assigned optimistic-concurrency field. It must
	// be stripped before re-adding a document.
	Version int64 `json:"_version_,omitempty"`
}

// LastUpdate returns the last-crawl time in epoch seconds, or 0 when the
// field is absent.
func (d *Document) LastUpdate() int64 {
	if d.LastUpdateTime == nil {
		return 0
	}
	return *d.LastUpdateTime
}

// SetLastUpdate sets the last-crawl time in epoch seconds.
func (d *Document) SetLastUpdate(epoch int64) {
	d.LastUpdateTime = &epoch
}

// ClearLastUpdate removes the last-crawl field entirely, as required for
// documents promoted to the main collection.
func (d *Document) ClearLastUpdate() {
	d.LastUpdateTime = nil
}

// URL reconstructs the scheme-qualified URL for the document.
func (d *Document) URL() string {
	scheme := "http"
	if d.IsHTTPS {
		scheme = "https"
	}
	return scheme + "://" + d.ID
}

// Promotable reports whether the document is eligible to appear in the main
// collection: it must carry both a registrable domain and content.
func (d *Document) Promotable() bool {
	return d.Domain != "" && d.Content != ""
}

// Validate returns an error if the document cannot be stored.
func (d *Document) Validate() error {
	if d.ID == "" {
		return Errorf(EINVALID, "document id required")
	}
	return nil
}

// NewURLRecord builds a frontier entry for a canonical URL: identity, host
// decomposition against the suffix list, and LastUpdateTime = 0 (never
// crawled). The canonical URL must already be scheme-qualified with no
// fragment and no trailing slash.
func NewURLRecord(canonical string, suffixes *SuffixList) (*Document, error) {
	u, err := url.Parse(canonical)
	if err != nil {
		return nil, Errorf(EINVALID, "unparseable url %q", canonical)
	}
	host := u.Hostname()
	if host == "" {
		return nil, Errorf(EINVALID, "url %q has no host", canonical)
	}
	path := u.EscapedPath()
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	sub, dom, tld := suffixes.SplitHost(strings.ToLower(host))

	doc := &Document{
		ID:        strings.ToLower(host) + path,
		IsHTTPS:   u.Scheme == "https",
		Subdomain: sub,
		Domain:    dom,
		TLD:       tld,
		Path:      path,
	}
	doc.SetLastUpdate(0)
	return doc, nil
}
