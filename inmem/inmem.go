// Package inmem provides an in-memory ossearch.Index for tests. It
// understands only the filter clauses the system actually issues: the
// last_update_time range, field presence terms, and their negations.
package inmem

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/ossearch/ossearch"
)

// Ensure Index implements ossearch.Index at compile time.
var _ ossearch.Index = (*Index)(nil)

// Index stores one collection's documents per map entry, keyed by id.
type Index struct {
	mu      sync.Mutex
	docs    map[ossearch.Collection]map[string]*ossearch.Document
	boosts  map[ossearch.Collection]map[string]ossearch.Boosts
	version int64

	commits   map[ossearch.Collection]int
	optimizes map[ossearch.Collection]int
}

// NewIndex creates an empty index with working and main collections.
func NewIndex() *Index {
	return &Index{
		docs: map[ossearch.Collection]map[string]*ossearch.Document{
			ossearch.Working: {},
			ossearch.Main:    {},
		},
		boosts: map[ossearch.Collection]map[string]ossearch.Boosts{
			ossearch.Working: {},
			ossearch.Main:    {},
		},
		commits:   map[ossearch.Collection]int{},
		optimizes: map[ossearch.Collection]int{},
	}
}

// Add inserts documents, honoring the overwrite option and recording any
// boosts applied.
func (x *Index) Add(ctx context.Context, c ossearch.Collection, docs []*ossearch.Document, opts ossearch.AddOptions) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	coll, ok := x.docs[c]
	if !ok {
		return ossearch.Errorf(ossearch.EINVALID, "unknown collection %q", c)
	}
	for _, doc := range docs {
		if _, exists := coll[doc.ID]; exists && !opts.Overwrite {
			continue
		}
		x.version++
		stored := clone(doc)
		stored.Version = x.version
		coll[doc.ID] = stored
		if opts.Boosts != nil {
			x.boosts[c][doc.ID] = opts.Boosts
		}
	}
	return nil
}

// Delete removes a document. Absent ids are ignored.
func (x *Index) Delete(ctx context.Context, c ossearch.Collection, id string, opts ossearch.DeleteOptions) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	coll, ok := x.docs[c]
	if !ok {
		return ossearch.Errorf(ossearch.EINVALID, "unknown collection %q", c)
	}
	delete(coll, id)
	delete(x.boosts[c], id)
	return nil
}

// Commit records the call; all writes are immediately visible anyway.
func (x *Index) Commit(ctx context.Context, c ossearch.Collection) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.commits[c]++
	return nil
}

// Optimize records the call.
func (x *Index) Optimize(ctx context.Context, c ossearch.Collection) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.optimizes[c]++
	return nil
}

// Search evaluates the filter over all documents, ordered by id.
func (x *Index) Search(ctx context.Context, c ossearch.Collection, q ossearch.Query) ([]*ossearch.Document, error) {
	if q.Q != "" && q.Q != "*:*" {
		return nil, ossearch.Errorf(ossearch.EINVALID, "unsupported query %q", q.Q)
	}
	match, err := compileFilter(q.Filter)
	if err != nil {
		return nil, err
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	coll, ok := x.docs[c]
	if !ok {
		return nil, ossearch.Errorf(ossearch.EINVALID, "unknown collection %q", c)
	}

	ids := make([]string, 0, len(coll))
	for id, doc := range coll {
		if match(doc) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	start := q.Start
	if start > len(ids) {
		start = len(ids)
	}
	end := len(ids)
	if q.Rows > 0 && start+q.Rows < end {
		end = start + q.Rows
	}

	out := make([]*ossearch.Document, 0, end-start)
	for _, id := range ids[start:end] {
		out = append(out, clone(coll[id]))
	}
	return out, nil
}

// Get returns a copy of one stored document, or nil.
func (x *Index) Get(c ossearch.Collection, id string) *ossearch.Document {
	x.mu.Lock()
	defer x.mu.Unlock()
	doc, ok := x.docs[c][id]
	if !ok {
		return nil
	}
	return clone(doc)
}

// AppliedBoosts returns the boosts recorded by the last boosted add of id.
func (x *Index) AppliedBoosts(c ossearch.Collection, id string) ossearch.Boosts {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.boosts[c][id]
}

// Commits returns how many commits a collection has seen.
func (x *Index) Commits(c ossearch.Collection) int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.commits[c]
}

// Optimizes returns how many optimize calls a collection has seen.
func (x *Index) Optimizes(c ossearch.Collection) int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.optimizes[c]
}

func clone(doc *ossearch.Document) *ossearch.Document {
	copied := *doc
	if doc.LastUpdateTime != nil {
		v := *doc.LastUpdateTime
		copied.LastUpdateTime = &v
	}
	return &copied
}

// compileFilter parses clauses joined by " AND ". Supported forms:
//
//	last_update_time:[A TO B]   numeric range, inclusive
//	field:['' TO *]             field present and non-empty
//	-field:['' TO *]            field absent
//	field:*                     field present and non-empty
func compileFilter(filter string) (func(*ossearch.Document) bool, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return func(*ossearch.Document) bool { return true }, nil
	}

	var preds []func(*ossearch.Document) bool
	for _, clause := range strings.Split(filter, " AND ") {
		pred, err := compileClause(strings.TrimSpace(clause))
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
	}
	return func(doc *ossearch.Document) bool {
		for _, pred := range preds {
			if !pred(doc) {
				return false
			}
		}
		return true
	}, nil
}

func compileClause(clause string) (func(*ossearch.Document) bool, error) {
	negated := strings.HasPrefix(clause, "-")
	clause = strings.TrimPrefix(clause, "-")

	field, expr, ok := strings.Cut(clause, ":")
	if !ok {
		return nil, ossearch.Errorf(ossearch.EINVALID, "unsupported filter clause %q", clause)
	}

	if field == "last_update_time" {
		lo, hi, err := parseRange(expr)
		if err != nil {
			return nil, err
		}
		pred := func(doc *ossearch.Document) bool {
			if doc.LastUpdateTime == nil {
				return false
			}
			v := *doc.LastUpdateTime
			return v >= lo && v <= hi
		}
		return negate(pred, negated), nil
	}

	value := func(doc *ossearch.Document) string {
		switch field {
		case "path":
			return doc.Path
		case "content":
			return doc.Content
		case "title":
			return doc.Title
		case "domain":
			return doc.Domain
		case "subdomain":
			return doc.Subdomain
		}
		return ""
	}

	switch expr {
	case "*", "['' TO *]":
		return negate(func(doc *ossearch.Document) bool { return value(doc) != "" }, negated), nil
	}
	return nil, ossearch.Errorf(ossearch.EINVALID, "unsupported filter expression %q", clause)
}

func negate(pred func(*ossearch.Document) bool, negated bool) func(*ossearch.Document) bool {
	if !negated {
		return pred
	}
	return func(doc *ossearch.Document) bool { return !pred(doc) }
}

func parseRange(expr string) (int64, int64, error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(expr, "["), "]")
	loStr, hiStr, ok := strings.Cut(inner, " TO ")
	if !ok {
		return 0, 0, ossearch.Errorf(ossearch.EINVALID, "unsupported range %q", expr)
	}
	lo, err := strconv.ParseInt(strings.TrimSpace(loStr), 10, 64)
	if err != nil {
		return 0, 0, ossearch.Errorf(ossearch.EINVALID, "unsupported range %q", expr)
	}
	hi, err := strconv.ParseInt(strings.TrimSpace(hiStr), 10, 64)
	if err != nil {
		return 0, 0, ossearch.Errorf(ossearch.EINVALID, "unsupported range %q", expr)
	}
	return lo, hi, nil
}
