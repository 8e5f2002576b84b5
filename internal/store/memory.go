package store

import (
	"context"
	"sync"

	"github.com/paulmach/orb"

	"github.com/hecate-project/hecate/internal/geo"
	"github.com/hecate-project/hecate/internal/herr"
)

// tombstone preserves a deleted feature's last geometry/properties
// (spec.md §4.1: delete "preserves prior state," restore "reinstates
// its last non-null geometry and properties") without exposing them
// through the public Feature struct, whose Geometry is nil for any
// Deleted feature.
type tombstone struct {
	geometry   orb.Geometry
	properties map[string]interface{}
}

// MemoryStore is an in-process Store, generalizing the teacher's
// MemoryRepository (a mutex-guarded map) for use in httpapi/auth/tile
// tests that don't need a live Postgres connection.
type MemoryStore struct {
	mu       sync.Mutex
	schema   *SchemaValidator
	enqueuer Enqueuer

	nextID     int64
	nextDelta  int64
	features   map[int64]*geo.Feature
	history    map[int64][]HistoryEntry
	tombstones map[int64]tombstone
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore(schema *SchemaValidator, enqueuer Enqueuer) *MemoryStore {
	return &MemoryStore{
		schema:     schema,
		enqueuer:   enqueuer,
		features:   make(map[int64]*geo.Feature),
		history:    make(map[int64][]HistoryEntry),
		tombstones: make(map[int64]tombstone),
	}
}

func (m *MemoryStore) Get(_ context.Context, id int64) (*geo.Feature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.features[id]
	if !ok {
		return nil, herr.New(herr.NotFound, "feature not found")
	}
	cp := *f
	return &cp, nil
}

func (m *MemoryStore) GetByKey(_ context.Context, key string) (*geo.Feature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.features {
		if !f.Deleted && f.Key != nil && *f.Key == key {
			cp := *f
			return &cp, nil
		}
	}
	return nil, herr.New(herr.NotFound, "feature not found")
}

func (m *MemoryStore) GetHistory(_ context.Context, id int64) ([]HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]HistoryEntry(nil), m.history[id]...), nil
}

func (m *MemoryStore) ListInBBox(_ context.Context, bbox orb.Bound, limit int) ([]*geo.Feature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*geo.Feature
	for _, f := range m.features {
		if f.Deleted || f.Geometry == nil {
			continue
		}
		if !bbox.Intersects(f.Geometry.Bound()) {
			continue
		}
		cp := *f
		out = append(out, &cp)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryStore) ApplyChangeset(_ context.Context, changes []*geo.FeatureChange, authorUID int64, message *string) (int64, error) {
	if len(changes) == 0 {
		return 0, herr.New(herr.Validation, "changeset must contain at least one change")
	}
	if err := preflightChangeset(changes, m.schema); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	affected := make([]int64, 0, len(changes))
	for _, c := range changes {
		switch c.Action {
		case geo.ActionCreate:
			m.nextID++
			id := m.nextID
			m.features[id] = &geo.Feature{ID: id, Version: 1, Geometry: c.Geometry, Properties: c.Properties}
			affected = append(affected, id)
		case geo.ActionModify:
			f, ok := m.features[*c.ID]
			if !ok {
				return 0, herr.New(herr.NotFound, "feature %d not found", *c.ID)
			}
			if f.Deleted {
				return 0, herr.New(herr.Validation, "cannot modify deleted feature %d", *c.ID)
			}
			if f.Version != *c.Version {
				return 0, herr.New(herr.VersionMismatch, "feature %d is at version %d, not %d", *c.ID, f.Version, *c.Version)
			}
			f.Version++
			f.Geometry = c.Geometry
			f.Properties = c.Properties
			affected = append(affected, f.ID)
		case geo.ActionDelete:
			f, ok := m.features[*c.ID]
			if !ok {
				return 0, herr.New(herr.NotFound, "feature %d not found", *c.ID)
			}
			if f.Deleted {
				return 0, herr.New(herr.Validation, "feature %d is already deleted", *c.ID)
			}
			if f.Version != *c.Version {
				return 0, herr.New(herr.VersionMismatch, "feature %d is at version %d, not %d", *c.ID, f.Version, *c.Version)
			}
			f.Version++
			m.tombstones[f.ID] = tombstone{geometry: f.Geometry, properties: f.Properties}
			f.Geometry = nil
			f.Deleted = true
			affected = append(affected, f.ID)
		case geo.ActionRestore:
			f, ok := m.features[*c.ID]
			if !ok {
				return 0, herr.New(herr.NotFound, "feature %d not found", *c.ID)
			}
			if !f.Deleted {
				return 0, herr.New(herr.Validation, "feature %d is not deleted", *c.ID)
			}
			if f.Version != *c.Version {
				return 0, herr.New(herr.VersionMismatch, "feature %d is at version %d, not %d", *c.ID, f.Version, *c.Version)
			}
			if c.Geometry != nil {
				f.Geometry = c.Geometry
				f.Properties = c.Properties
			} else {
				tomb, ok := m.tombstones[f.ID]
				if !ok || tomb.geometry == nil {
					return 0, herr.New(herr.Validation, "feature %d has no preserved geometry to restore", *c.ID)
				}
				f.Geometry = tomb.geometry
				f.Properties = tomb.properties
			}
			f.Version++
			f.Deleted = false
			delete(m.tombstones, f.ID)
			affected = append(affected, f.ID)
		}
	}

	m.nextDelta++
	deltaID := m.nextDelta
	for _, id := range affected {
		m.features[id].Deltas = append(m.features[id].Deltas, deltaID)
		m.history[id] = append([]HistoryEntry{{DeltaID: deltaID, AuthorUID: authorUID, Version: m.features[id].Version, Message: message}}, m.history[id]...)
	}

	if m.enqueuer != nil {
		m.enqueuer.EnqueueDelta(deltaID)
	}
	return deltaID, nil
}
