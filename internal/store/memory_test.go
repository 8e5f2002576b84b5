package store

import (
	"context"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hecate-project/hecate/internal/geo"
	"github.com/hecate-project/hecate/internal/herr"
)

func TestMemoryStoreApplyChangeset(t *testing.T) {
	ctx := context.Background()

	t.Run("create assigns id and version 1", func(t *testing.T) {
		s := NewMemoryStore(nil, nil)
		id, err := s.ApplyChangeset(ctx, []*geo.FeatureChange{
			{Action: geo.ActionCreate, Geometry: orb.Point{1, 2}, Properties: map[string]interface{}{"name": "a"}},
		}, 1, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), id)

		f, err := s.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), f.Version)
		assert.False(t, f.Deleted)
	})

	t.Run("modify with stale version is rejected", func(t *testing.T) {
		s := NewMemoryStore(nil, nil)
		_, err := s.ApplyChangeset(ctx, []*geo.FeatureChange{
			{Action: geo.ActionCreate, Geometry: orb.Point{0, 0}},
		}, 1, nil)
		require.NoError(t, err)

		staleVersion := int64(99)
		id := int64(1)
		_, err = s.ApplyChangeset(ctx, []*geo.FeatureChange{
			{Action: geo.ActionModify, ID: &id, Version: &staleVersion, Geometry: orb.Point{5, 5}},
		}, 1, nil)
		require.Error(t, err)
		assert.True(t, herr.As(err, herr.VersionMismatch))
	})

	t.Run("delete then restore round-trips", func(t *testing.T) {
		s := NewMemoryStore(nil, nil)
		_, err := s.ApplyChangeset(ctx, []*geo.FeatureChange{
			{Action: geo.ActionCreate, Geometry: orb.Point{0, 0}},
		}, 1, nil)
		require.NoError(t, err)

		id := int64(1)
		v1 := int64(1)
		_, err = s.ApplyChangeset(ctx, []*geo.FeatureChange{
			{Action: geo.ActionDelete, ID: &id, Version: &v1},
		}, 1, nil)
		require.NoError(t, err)

		f, err := s.Get(ctx, id)
		require.NoError(t, err)
		assert.True(t, f.Deleted)

		v2 := int64(2)
		_, err = s.ApplyChangeset(ctx, []*geo.FeatureChange{
			{Action: geo.ActionRestore, ID: &id, Version: &v2, Geometry: orb.Point{0, 0}},
		}, 1, nil)
		require.NoError(t, err)

		f, err = s.Get(ctx, id)
		require.NoError(t, err)
		assert.False(t, f.Deleted)
		assert.Equal(t, int64(3), f.Version)
	})

	t.Run("duplicate id in changeset is rejected before any mutation", func(t *testing.T) {
		s := NewMemoryStore(nil, nil)
		id := int64(1)
		v1 := int64(1)
		_, err := s.ApplyChangeset(ctx, []*geo.FeatureChange{
			{Action: geo.ActionModify, ID: &id, Version: &v1, Geometry: orb.Point{0, 0}},
			{Action: geo.ActionDelete, ID: &id, Version: &v1},
		}, 1, nil)
		require.Error(t, err)
		assert.True(t, herr.As(err, herr.Validation))
	})

	t.Run("restore of an id deleted earlier in the same changeset is rejected", func(t *testing.T) {
		s := NewMemoryStore(nil, nil)
		_, err := s.ApplyChangeset(ctx, []*geo.FeatureChange{
			{Action: geo.ActionCreate, Geometry: orb.Point{0, 0}},
		}, 1, nil)
		require.NoError(t, err)

		id := int64(1)
		v1 := int64(1)
		_, err = s.ApplyChangeset(ctx, []*geo.FeatureChange{
			{Action: geo.ActionDelete, ID: &id, Version: &v1},
			{Action: geo.ActionRestore, ID: &id, Version: &v1, Geometry: orb.Point{0, 0}},
		}, 1, nil)
		require.Error(t, err)
		assert.True(t, herr.As(err, herr.Validation))
	})

	t.Run("schema violation is rejected before mutation", func(t *testing.T) {
		schema, err := LoadSchema([]byte(`{
			"type": "object",
			"required": ["name"],
			"properties": {"name": {"type": "string"}}
		}`))
		require.NoError(t, err)

		s := NewMemoryStore(schema, nil)
		_, err = s.ApplyChangeset(ctx, []*geo.FeatureChange{
			{Action: geo.ActionCreate, Geometry: orb.Point{0, 0}, Properties: map[string]interface{}{}},
		}, 1, nil)
		require.Error(t, err)
		assert.True(t, herr.As(err, herr.SchemaViolation))
	})
}

type countingEnqueuer struct{ n int }

func (c *countingEnqueuer) EnqueueDelta(int64) { c.n++ }

func TestMemoryStoreEnqueuesDeltaOnSuccess(t *testing.T) {
	enq := &countingEnqueuer{}
	s := NewMemoryStore(nil, enq)
	_, err := s.ApplyChangeset(context.Background(), []*geo.FeatureChange{
		{Action: geo.ActionCreate, Geometry: orb.Point{0, 0}},
	}, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, enq.n)
}
