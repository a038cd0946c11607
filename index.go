package ossearch

import (
	"context"
	"time"
)

// AddOptions control document insertion.
type AddOptions struct {
	// Overwrite upserts documents over existing ids. When false, documents
	// whose id already exists are left untouched.
	Overwrite bool

	// Commit makes the addition immediately visible to searches.
	Commit bool

	// Boosts apply index-time field boosts to the added documents.
	Boosts Boosts
}

// DeleteOptions control document deletion.
type DeleteOptions struct {
	Commit bool
}

// Query describes a search against one collection.
type Query struct {
	// Q is the main query string; "*:*" matches everything.
	Q string

	// Filter restricts results without affecting scoring.
	Filter string

	// Rows and Start page through results.
	Rows  int
	Start int

	// Timeout bounds the round trip.
	Timeout time.Duration
}

// Index is a thin façade over the external full-text document store. Each
// logical collection is replicated across a static list of node URLs; a
// handle constructed for worker i talks to node i mod len(nodes).
//
// Transient connection failures surface as EUNAVAILABLE; the caller is
// expected to discard its handle and retry on the next cycle.
type Index interface {
	// Add inserts documents into a collection.
	Add(ctx context.Context, c Collection, docs []*Document, opts AddOptions) error

	// Delete removes the document with the given id. Deleting an id that
	// does not exist is not an error.
	Delete(ctx context.Context, c Collection, id string, opts DeleteOptions) error

	// Commit makes pending changes visible.
	Commit(ctx context.Context, c Collection) error

	// Optimize compacts the collection's segments.
	Optimize(ctx context.Context, c Collection) error

	// Search returns one page of matching documents.
	Search(ctx context.Context, c Collection, q Query) ([]*Document, error)
}
