// Package geo holds Hecate's core feature and geometry types: the
// versioned Feature record, the per-feature Change entry embedded in
// a delta, and the GeoJSON codec tying them to orb's geometry types.
package geo

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Feature is a versioned, server-identified GeoJSON feature.
//
// Invariants (spec.md §3):
//   - Version is strictly increasing per ID.
//   - a deleted feature retains its last Version and has Geometry == nil.
//   - Key, if set, is unique among live (non-deleted) features.
type Feature struct {
	ID         int64
	Version    int64
	Geometry   orb.Geometry // nil when Deleted
	Properties map[string]interface{}
	Key        *string
	Deltas     []int64 // ordered delta ids that touched this feature
	Deleted    bool
}

// Action names the kind of change a FeatureChange describes.
type Action string

const (
	ActionCreate  Action = "create"
	ActionModify  Action = "modify"
	ActionDelete  Action = "delete"
	ActionRestore Action = "restore"
)

// FeatureChange is the per-feature entry inside a delta's embedded
// FeatureCollection (spec.md §3, §4.1).
type FeatureChange struct {
	Action     Action
	ID         *int64
	Version    *int64
	Geometry   orb.Geometry
	Properties map[string]interface{}
	Message    *string
}

// Validate enforces the action-shape invariants from spec.md §4.1,
// ahead of any SQL round-trip.
func (c *FeatureChange) Validate() error {
	switch c.Action {
	case ActionCreate:
		if c.ID != nil || c.Version != nil {
			return fmt.Errorf("create forbids id/version")
		}
	case ActionModify, ActionDelete, ActionRestore:
		if c.ID == nil || c.Version == nil {
			return fmt.Errorf("%s requires both id and version", c.Action)
		}
	default:
		return fmt.Errorf("unknown action %q", c.Action)
	}
	return nil
}

// wireChange is the GeoJSON-ish wire representation of a FeatureChange,
// generalizing the teacher's loader.Exercise wire struct (tagged JSON
// fields decoded straight off the HTTP body).
type wireChange struct {
	Type       string                 `json:"type"`
	Action     Action                 `json:"action"`
	ID         *int64                 `json:"id,omitempty"`
	Version    *int64                 `json:"version,omitempty"`
	Geometry   json.RawMessage        `json:"geometry"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Message    *string                `json:"message,omitempty"`
}

// DecodeChange parses a single GeoJSON Feature-shaped change from the
// wire, as POSTed to /api/data/feature.
func DecodeChange(data []byte) (*FeatureChange, error) {
	var w wireChange
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	c := &FeatureChange{
		Action:     w.Action,
		ID:         w.ID,
		Version:    w.Version,
		Properties: w.Properties,
		Message:    w.Message,
	}

	if len(w.Geometry) > 0 && string(w.Geometry) != "null" {
		geom, err := geojson.UnmarshalGeometry(w.Geometry)
		if err != nil {
			return nil, fmt.Errorf("invalid geometry: %w", err)
		}
		c.Geometry = geom.Geometry()
	}

	return c, nil
}

// EncodeFeature renders a Feature as a RFC 7946 GeoJSON Feature.
func EncodeFeature(f *Feature) ([]byte, error) {
	gf := geojson.NewFeature(f.Geometry)
	gf.ID = f.ID
	if f.Properties != nil {
		gf.Properties = geojson.Properties(f.Properties)
	}
	gf.Properties["version"] = f.Version
	if f.Key != nil {
		gf.Properties["key"] = *f.Key
	}
	return gf.MarshalJSON()
}

// EncodeFeatureCollection renders a slice of Features as a GeoJSON
// FeatureCollection, the shape every list endpoint in spec.md §6
// returns.
func EncodeFeatureCollection(features []*Feature) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		gf := geojson.NewFeature(f.Geometry)
		gf.ID = f.ID
		if f.Properties != nil {
			gf.Properties = geojson.Properties(f.Properties)
		}
		gf.Properties["version"] = f.Version
		fc.Append(gf)
	}
	return fc.MarshalJSON()
}
