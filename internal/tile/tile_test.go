package tile

import (
	"context"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hecate-project/hecate/internal/geo"
	"github.com/hecate-project/hecate/internal/store"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "4/1/2", key(4, 1, 2))
}

func TestRenderProducesNonEmptyTileForCoveredPoint(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore(nil, nil)

	_, err := st.ApplyChangeset(ctx, []*geo.FeatureChange{
		{Action: geo.ActionCreate, Geometry: orb.Point{-97.734375, 56.55948}, Properties: map[string]interface{}{"name": "x"}},
	}, 1, nil)
	require.NoError(t, err)

	e := &Engine{store: st}
	data, err := e.render(ctx, maptile.New(0, 0, 1))
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRenderEmptyAreaYieldsEmptyLayers(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore(nil, nil)

	e := &Engine{store: st}
	data, err := e.render(ctx, maptile.New(0, 0, 1))
	require.NoError(t, err)
	assert.NotNil(t, data)
}
