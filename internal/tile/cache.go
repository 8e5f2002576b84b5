package tile

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/hecate-project/hecate/internal/gateway"
	"github.com/hecate-project/hecate/internal/herr"
)

// Meta is a cached tile's metadata without its encoded bytes, spec.md
// §4.4's `meta` operation.
type Meta struct {
	Key       string
	CreatedAt time.Time
	Size      int
}

func (e *Engine) cacheGet(ctx context.Context, k string) ([]byte, time.Time, bool, error) {
	db := e.gw.DB(gateway.Replica)
	var data []byte
	var createdAt time.Time
	err := db.QueryRowContext(ctx, `SELECT data, created_at FROM tiles WHERE key = $1`, k).Scan(&data, &createdAt)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, herr.FromPQ(err)
	}
	return data, createdAt, true, nil
}

// cacheUpsert writes a tile's bytes with a single atomic
// insert-or-replace, Postgres's `INSERT ... ON CONFLICT DO UPDATE`
// giving the no-partial-write guarantee spec.md §4.4 requires.
func (e *Engine) cacheUpsert(ctx context.Context, k string, data []byte) error {
	db := e.gw.DB(gateway.Primary)
	_, err := db.ExecContext(ctx,
		`INSERT INTO tiles (key, data, created_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, created_at = EXCLUDED.created_at`,
		k, data)
	if err != nil {
		return herr.FromPQ(err)
	}
	return nil
}

func (e *Engine) cacheDelete(ctx context.Context, k string) error {
	db := e.gw.DB(gateway.Primary)
	_, err := db.ExecContext(ctx, `DELETE FROM tiles WHERE key = $1`, k)
	if err != nil {
		return herr.FromPQ(err)
	}
	return nil
}

func (e *Engine) cacheDeleteAll(ctx context.Context) error {
	db := e.gw.DB(gateway.Primary)
	_, err := db.ExecContext(ctx, `DELETE FROM tiles`)
	if err != nil {
		return herr.FromPQ(err)
	}
	return nil
}

func (e *Engine) cacheMeta(ctx context.Context, k string) (*Meta, error) {
	db := e.gw.DB(gateway.Replica)
	var createdAt time.Time
	var size int
	err := db.QueryRowContext(ctx, `SELECT created_at, length(data) FROM tiles WHERE key = $1`, k).Scan(&createdAt, &size)
	if err == sql.ErrNoRows {
		return nil, herr.New(herr.NotFound, "tile %q is not cached", k)
	}
	if err != nil {
		return nil, herr.FromPQ(err)
	}
	return &Meta{Key: k, CreatedAt: createdAt, Size: size}, nil
}

// InvalidateTiles deletes every cache entry for the given tile set, the
// delta-driven invalidation path: InvalidateForDelta (which
// internal/queue's worker calls) passes it the keys of the coordinates
// internal/delta.Tiles computed for a delta.
func (e *Engine) InvalidateTiles(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	db := e.gw.DB(gateway.Primary)
	_, err := db.ExecContext(ctx, `DELETE FROM tiles WHERE key = ANY($1)`, pq.Array(keys))
	if err != nil {
		return herr.FromPQ(err)
	}
	return nil
}
