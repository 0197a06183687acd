package geocoding

import (
	"context"
	"testing"

	"ecofix/backend/go/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingGeocoder struct {
	calls int
}

func (g *countingGeocoder) Geocode(_ context.Context, address string) (*Location, error) {
	g.calls++
	if address == "nowhere" {
		return nil, ErrNotFound
	}
	return &Location{Latitude: 48.8566, Longitude: 2.3522, FormattedAddress: "Paris, France"}, nil
}

func TestCachedGeocoder(t *testing.T) {
	upstream := &countingGeocoder{}
	g, err := NewCached(upstream, cache.Config{Capacity: 8})
	require.NoError(t, err)
	ctx := context.Background()

	first, err := g.Geocode(ctx, "Paris")
	require.NoError(t, err)
	second, err := g.Geocode(ctx, "  paris ")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, upstream.calls)

	for i := 0; i < 2; i++ {
		_, err = g.Geocode(ctx, "nowhere")
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, 3, upstream.calls, "misses are not cached")
}
