package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ecofix/backend/go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGeocoder(t *testing.T, handler http.HandlerFunc) *Google {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := NewGoogle(config.MapsConfig{APIKey: "AIzaTestKey", BaseURL: srv.URL}, srv.Client())
	require.NoError(t, err)
	return g
}

func TestGeocodeFirstResult(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/geocode/json", r.URL.Path)
		assert.Equal(t, "Alexanderplatz, Berlin", r.URL.Query().Get("address"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","results":[
			{"formatted_address":"Alexanderplatz, 10178 Berlin, Germany","geometry":{"location":{"lat":52.5219,"lng":13.4132}}},
			{"formatted_address":"Somewhere else","geometry":{"location":{"lat":1,"lng":2}}}
		]}`))
	})

	loc, err := g.Geocode(context.Background(), "  Alexanderplatz, Berlin ")
	require.NoError(t, err)
	assert.InDelta(t, 52.5219, loc.Latitude, 1e-9)
	assert.InDelta(t, 13.4132, loc.Longitude, 1e-9)
	assert.Equal(t, "Alexanderplatz, 10178 Berlin, Germany", loc.FormattedAddress)
}

func TestGeocodeZeroResults(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	})

	_, err := g.Geocode(context.Background(), "nowhere at all")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGeocodeEmptyAddressSkipsRequest(t *testing.T) {
	called := false
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := g.Geocode(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, called)
}

func TestGeocodeUpstreamError(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid.","results":[]}`))
	})

	_, err := g.Geocode(context.Background(), "Berlin")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestUnavailable(t *testing.T) {
	_, err := Unavailable{}.Geocode(context.Background(), "Berlin")
	assert.ErrorIs(t, err, ErrUnavailable)
}
