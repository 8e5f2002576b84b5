package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/hecate-project/hecate/internal/gateway"
	"github.com/hecate-project/hecate/internal/herr"
)

// MetaRepo is the server-wide `meta` key/value table's CRUD surface
// (spec.md §3's persisted-state list), distinct from a User's own
// opaque `meta` JSON column.
type MetaRepo struct {
	gw *gateway.Gateway
}

func NewMetaRepo(gw *gateway.Gateway) *MetaRepo {
	return &MetaRepo{gw: gw}
}

func (m *MetaRepo) Get(ctx context.Context, key string) (json.RawMessage, error) {
	db := m.gw.DB(gateway.Replica)
	var value []byte
	err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, herr.New(herr.NotFound, "meta key %q not found", key)
	}
	if err != nil {
		return nil, herr.FromPQ(err)
	}
	return json.RawMessage(value), nil
}

func (m *MetaRepo) List(ctx context.Context) (map[string]json.RawMessage, error) {
	db := m.gw.DB(gateway.Replica)
	rows, err := db.QueryContext(ctx, `SELECT key, value FROM meta ORDER BY key`)
	if err != nil {
		return nil, herr.FromPQ(err)
	}
	defer rows.Close()

	out := map[string]json.RawMessage{}
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, herr.FromPQ(err)
		}
		out[key] = json.RawMessage(value)
	}
	return out, rows.Err()
}

// Set upserts a key's value.
func (m *MetaRepo) Set(ctx context.Context, key string, value json.RawMessage) error {
	db := m.gw.DB(gateway.Primary)
	_, err := db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = $2`,
		key, []byte(value),
	)
	if err != nil {
		return herr.FromPQ(err)
	}
	return nil
}

func (m *MetaRepo) Delete(ctx context.Context, key string) error {
	db := m.gw.DB(gateway.Primary)
	_, err := db.ExecContext(ctx, `DELETE FROM meta WHERE key = $1`, key)
	if err != nil {
		return herr.FromPQ(err)
	}
	return nil
}
