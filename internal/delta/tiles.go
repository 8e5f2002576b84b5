package delta

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/maptile/tilecover"
)

// wireFeatureCollection is enough of the embedded FeatureCollection
// shape to pull geometries back out for tile fanout; the full change
// semantics live in package geo.
type wireFeatureCollection struct {
	Features []struct {
		Geometry json.RawMessage `json:"geometry"`
	} `json:"features"`
}

// Tiles computes, for each geometry touched by delta id, the set of
// tile coordinates at each zoom in [minZoom, maxZoom], per spec.md
// §4.2. Geometries are covered in WGS84 directly: orb's tilecover
// package reprojects internally to the Web Mercator tiling scheme and
// enumerates every (z,x,y) intersecting the geometry, which is exactly
// the "reproject to EPSG:3857, clip to the zoom's world extent,
// enumerate every intersecting tile" algorithm spec.md describes.
// Duplicates collapse naturally because the result is a maptile.Set.
func Tiles(ctx context.Context, db *sql.DB, id int64, minZoom, maxZoom maptile.Zoom) (maptile.Set, error) {
	var raw []byte
	if err := db.QueryRowContext(ctx, `SELECT features FROM deltas WHERE id = $1`, id).Scan(&raw); err != nil {
		return nil, fmt.Errorf("load delta %d features: %w", id, err)
	}

	var fc wireFeatureCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("unmarshal delta %d features: %w", id, err)
	}

	out := make(maptile.Set)
	for _, f := range fc.Features {
		if len(f.Geometry) == 0 || string(f.Geometry) == "null" {
			continue
		}
		geom, err := geojson.UnmarshalGeometry(f.Geometry)
		if err != nil {
			continue
		}

		for z := minZoom; z <= maxZoom; z++ {
			set, err := coverAtZoom(geom.Geometry(), z)
			if err != nil {
				continue
			}
			for t := range set {
				out[t] = true
			}
		}
	}

	return out, nil
}

func coverAtZoom(g orb.Geometry, z maptile.Zoom) (maptile.Set, error) {
	return tilecover.Geometry(g, z)
}
