// Package wfs implements the WFS 2.0 GetFeature/DescribeFeatureType
// surface spec.md §6 names, generalizing original_source's
// src/wfs/{get_feature,describe_feature_type}.rs into Go: the same
// per-geometry-type "HecateXData" feature types, streamed as GML
// members through internal/stream rather than materialized in memory.
package wfs

import "github.com/hecate-project/hecate/internal/herr"

// typeNames maps a WFS typenames value to the PostGIS GeometryType()
// string it must match, exactly the six layers original_source's
// get_feature.rs enumerates.
var typeNames = map[string]string{
	"HecatePointData":           "POINT",
	"HecateMultiPointData":      "MULTIPOINT",
	"HecateLineStringData":      "LINESTRING",
	"HecateMultiLineStringData": "MULTILINESTRING",
	"HecatePolygonData":         "POLYGON",
	"HecateMultiPolygonData":    "MULTIPOLYGON",
}

// resolveGeomFilter validates a typenames query parameter and returns
// the PostGIS geometry type it filters to.
func resolveGeomFilter(typeName string) (string, error) {
	if typeName == "" {
		return "", herr.New(herr.Validation, "typenames param required")
	}
	geomType, ok := typeNames[typeName]
	if !ok {
		return "", herr.New(herr.Validation, "unknown typenames layer %q", typeName)
	}
	return geomType, nil
}
