package store

import (
	"context"
	"database/sql"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/hecate-project/hecate/internal/gateway"
	"github.com/hecate-project/hecate/internal/herr"
)

// Bound is a named polygon filter (spec.md §3's Bound entity),
// supplementing the core spec with the `bounds` CRUD surface
// original_source's clone tests exercise.
type Bound struct {
	ID       int64
	Name     string
	Geometry orb.Geometry
}

// BoundsRepo is the `bounds` table's CRUD surface, used by the
// clone/export endpoint to scope a clone to a named region.
type BoundsRepo struct {
	gw *gateway.Gateway
}

// NewBoundsRepo wires a BoundsRepo to the Gateway.
func NewBoundsRepo(gw *gateway.Gateway) *BoundsRepo {
	return &BoundsRepo{gw: gw}
}

// GetByName returns a bound by its unique name.
func (b *BoundsRepo) GetByName(ctx context.Context, name string) (*Bound, error) {
	db := b.gw.DB(gateway.Replica)
	row := db.QueryRowContext(ctx, `SELECT id, name, ST_AsGeoJSON(geometry) FROM bounds WHERE name = $1`, name)
	return scanBound(row)
}

// List returns every configured bound.
func (b *BoundsRepo) List(ctx context.Context) ([]*Bound, error) {
	db := b.gw.DB(gateway.Replica)
	rows, err := db.QueryContext(ctx, `SELECT id, name, ST_AsGeoJSON(geometry) FROM bounds ORDER BY name`)
	if err != nil {
		return nil, herr.FromPQ(err)
	}
	defer rows.Close()

	var out []*Bound
	for rows.Next() {
		bound, err := scanBound(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, bound)
	}
	return out, rows.Err()
}

// Create inserts a new named bound, returning its id.
func (b *BoundsRepo) Create(ctx context.Context, name string, geom orb.Geometry) (int64, error) {
	geomJSON, err := marshalGeometry(geom)
	if err != nil {
		return 0, err
	}

	db := b.gw.DB(gateway.Primary)
	var id int64
	err = db.QueryRowContext(ctx,
		`INSERT INTO bounds (name, geometry) VALUES ($1, ST_SetSRID(ST_GeomFromGeoJSON($2), 4326)) RETURNING id`,
		name, string(geomJSON),
	).Scan(&id)
	if err != nil {
		return 0, herr.FromPQ(err)
	}
	return id, nil
}

// Delete removes a bound by id.
func (b *BoundsRepo) Delete(ctx context.Context, id int64) error {
	db := b.gw.DB(gateway.Primary)
	_, err := db.ExecContext(ctx, `DELETE FROM bounds WHERE id = $1`, id)
	if err != nil {
		return herr.FromPQ(err)
	}
	return nil
}

func scanBound(row rowScanner) (*Bound, error) {
	b := &Bound{}
	var geomJSON string
	if err := row.Scan(&b.ID, &b.Name, &geomJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, herr.New(herr.NotFound, "bound not found")
		}
		return nil, herr.FromPQ(err)
	}
	g, err := geojson.UnmarshalGeometry([]byte(geomJSON))
	if err != nil {
		return nil, err
	}
	b.Geometry = g.Geometry()
	return b, nil
}
