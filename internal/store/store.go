// Package store implements the Feature Store: versioned CRUD over
// geo features and the transactional apply_changeset algorithm that
// groups feature changes into Delta Log entries (spec.md §4.1).
package store

import (
	"context"
	"time"

	"github.com/paulmach/orb"

	"github.com/hecate-project/hecate/internal/geo"
)

// HistoryEntry is one delta that touched a given feature, newest
// first, per spec.md §4.2's history(id) operation.
type HistoryEntry struct {
	DeltaID        int64
	CreatedAt      time.Time
	AuthorUID      int64
	AuthorUsername string
	Version        int64
	Message        *string
}

// Enqueuer is the Worker Queue's inbound edge as seen by the store: a
// successful ApplyChangeset enqueues a Delta(id) job for webhook
// dispatch and tile invalidation (spec.md §4.1 step 6). Defined here,
// not imported from package queue, so store never depends on queue.
type Enqueuer interface {
	EnqueueDelta(id int64)
}

// Store is the Feature Store's contract: versioned reads plus the
// single mutating entry point, ApplyChangeset.
type Store interface {
	// Get returns a feature by id, including deleted ones (callers
	// decide whether a deleted feature is an error).
	Get(ctx context.Context, id int64) (*geo.Feature, error)

	// GetByKey returns a live feature by its unique key.
	GetByKey(ctx context.Context, key string) (*geo.Feature, error)

	// GetHistory returns the deltas that touched a feature, newest first.
	GetHistory(ctx context.Context, id int64) ([]HistoryEntry, error)

	// ListInBBox returns live features intersecting bbox, capped at limit.
	ListInBBox(ctx context.Context, bbox orb.Bound, limit int) ([]*geo.Feature, error)

	// ApplyChangeset validates and applies a batch of feature changes
	// as a single atomic delta, per spec.md §4.1. On success it
	// returns the finalized delta's id.
	ApplyChangeset(ctx context.Context, changes []*geo.FeatureChange, authorUID int64, message *string) (int64, error)
}
