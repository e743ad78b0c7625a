package location

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

type fakeGeolocator struct {
	req  *maps.GeolocationRequest
	resp *maps.GeolocationResult
	err  error
}

func (f *fakeGeolocator) Geolocate(_ context.Context, r *maps.GeolocationRequest) (*maps.GeolocationResult, error) {
	f.req = r
	return f.resp, f.err
}

func newTestGoogleProvider(g geolocator) *GoogleGeolocationProvider {
	return &GoogleGeolocationProvider{
		client: g,
		scanWiFi: func(context.Context) ([]maps.WiFiAccessPoint, error) {
			return []maps.WiFiAccessPoint{{MACAddress: "00:14:22:01:23:45", SignalStrength: 60}}, nil
		},
		scanCells: func(context.Context, int) ([]maps.CellTower, error) {
			return nil, errors.New("mmcli not found")
		},
	}
}

func TestGoogleGeolocationProvider_GetLocation(t *testing.T) {
	g := &fakeGeolocator{resp: &maps.GeolocationResult{
		Location: maps.LatLng{Lat: 52.52, Lng: 13.405},
		Accuracy: 35,
	}}
	p := newTestGoogleProvider(g)

	loc, err := p.GetLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 52.52, loc.Latitude)
	assert.Equal(t, 13.405, loc.Longitude)
	assert.Equal(t, 35.0, loc.Accuracy)

	require.NotNil(t, g.req)
	assert.True(t, g.req.ConsiderIP)
	assert.Len(t, g.req.WiFiAccessPoints, 1)
	assert.Empty(t, g.req.CellTowers, "failed cell scan should not block the request")
}

func TestGoogleGeolocationProvider_Errors(t *testing.T) {
	p := newTestGoogleProvider(&fakeGeolocator{err: errors.New("maps: REQUEST_DENIED - API key invalid")})
	_, err := p.GetLocation(context.Background())
	assert.ErrorIs(t, err, ErrPermissionDenied)

	p = newTestGoogleProvider(&fakeGeolocator{err: errors.New("maps: ZERO_RESULTS")})
	_, err = p.GetLocation(context.Background())
	assert.ErrorIs(t, err, ErrPositionUnavailable)

	assert.NoError(t, p.Close())
}
