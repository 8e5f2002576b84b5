// Package tile implements the Tile Engine: rendering live features
// into Mapbox Vector Tiles, backed by a write-through Postgres cache
// (spec.md §4.4).
package tile

import (
	"context"
	"fmt"

	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"

	"github.com/hecate-project/hecate/internal/delta"
	"github.com/hecate-project/hecate/internal/gateway"
	"github.com/hecate-project/hecate/internal/store"
)

// invalidationZoomRange bounds the zoom levels considered when a
// delta invalidates cached tiles: spec.md §4.4 names this range
// explicitly via `Delta.tiles(id, 14, 17)`.
const (
	invalidationMinZoom maptile.Zoom = 14
	invalidationMaxZoom maptile.Zoom = 17
)

// Engine renders and caches tiles, generalizing the teacher's upsert
// idiom (insert-or-update a row) into a write-through MVT cache keyed
// by "z/x/y".
type Engine struct {
	gw    *gateway.Gateway
	store store.Store
}

// NewEngine wires a feature Store (queried for the tile's extent) to
// the Gateway's primary pool (the tiles table's cache storage).
func NewEngine(gw *gateway.Gateway, st store.Store) *Engine {
	return &Engine{gw: gw, store: st}
}

func key(z, x, y uint32) string {
	return fmt.Sprintf("%d/%d/%d", z, x, y)
}

// Get returns a tile's encoded MVT bytes, serving from cache when
// present and rendering (then caching) on a miss — spec.md §4.4's
// `get` operation.
func (e *Engine) Get(ctx context.Context, z, x, y uint32) ([]byte, error) {
	k := key(z, x, y)
	if data, _, ok, err := e.cacheGet(ctx, k); err != nil {
		return nil, err
	} else if ok {
		return data, nil
	}
	return e.Regen(ctx, z, x, y)
}

// Regen re-renders a tile unconditionally and replaces its cache
// entry, spec.md §4.4's `regen` operation.
func (e *Engine) Regen(ctx context.Context, z, x, y uint32) ([]byte, error) {
	t := maptile.New(x, y, maptile.Zoom(z))
	data, err := e.render(ctx, t)
	if err != nil {
		return nil, err
	}
	if err := e.cacheUpsert(ctx, key(z, x, y), data); err != nil {
		return nil, err
	}
	return data, nil
}

// Delete evicts a single tile's cache entry, spec.md §4.4's `delete`
// operation.
func (e *Engine) Delete(ctx context.Context, z, x, y uint32) error {
	return e.cacheDelete(ctx, key(z, x, y))
}

// DeleteAll evicts every cached tile, spec.md §4.4's `delete_all`
// operation (admin-only per the Policy Matrix).
func (e *Engine) DeleteAll(ctx context.Context) error {
	return e.cacheDeleteAll(ctx)
}

// Meta reports a cached tile's metadata without its bytes, spec.md
// §4.4's `meta` operation.
func (e *Engine) Meta(ctx context.Context, z, x, y uint32) (*Meta, error) {
	return e.cacheMeta(ctx, key(z, x, y))
}

// InvalidateForDelta evicts every cached tile a delta's geometries
// touch, at every zoom in invalidationMinZoom..invalidationMaxZoom.
// internal/queue's worker calls this for every Delta job it processes.
func (e *Engine) InvalidateForDelta(ctx context.Context, deltaID int64) error {
	tiles, err := delta.Tiles(ctx, e.gw.DB(gateway.Replica), deltaID, invalidationMinZoom, invalidationMaxZoom)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(tiles))
	for t := range tiles {
		keys = append(keys, key(uint32(t.Z), t.X, t.Y))
	}
	return e.InvalidateTiles(ctx, keys)
}

// render queries the feature store for t's geographic extent, groups
// results by geometry dimension into MVT layers, and encodes them at
// the standard 4096 tile extent.
func (e *Engine) render(ctx context.Context, t maptile.Tile) ([]byte, error) {
	features, err := e.store.ListInBBox(ctx, t.Bound(), 50000)
	if err != nil {
		return nil, err
	}

	points := geojson.NewFeatureCollection()
	lines := geojson.NewFeatureCollection()
	polygons := geojson.NewFeatureCollection()

	for _, f := range features {
		if f.Geometry == nil {
			continue
		}
		gf := geojson.NewFeature(f.Geometry)
		gf.ID = f.ID
		if f.Properties != nil {
			gf.Properties = geojson.Properties(f.Properties)
		}
		gf.Properties["version"] = f.Version

		switch f.Geometry.GeoJSONType() {
		case "Point", "MultiPoint":
			points.Append(gf)
		case "LineString", "MultiLineString":
			lines.Append(gf)
		case "Polygon", "MultiPolygon":
			polygons.Append(gf)
		}
	}

	layers := mvt.NewLayers(map[string]*geojson.FeatureCollection{
		"points":   points,
		"lines":    lines,
		"polygons": polygons,
	})
	layers.ProjectToTile(t)
	layers.Clip(mvt.MapboxGLDefaultExtentBound)
	layers = layers.RemoveEmpty(1.0, 1.0)

	return mvt.Marshal(layers)
}
