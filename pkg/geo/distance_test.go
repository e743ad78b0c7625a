package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceMeters_SamePoint(t *testing.T) {
	points := []Coordinate{
		{0, 0},
		{52.520008, 13.404954},
		{-33.8688, 151.2093},
		{90, 0},
		{-90, 180},
	}
	for _, p := range points {
		assert.InDelta(t, 0, DistanceMeters(p, p), 1e-6, "point %s", p)
	}
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	pairs := [][2]Coordinate{
		{{0, 0}, {0, 1}},
		{{51.5074, -0.1278}, {48.8566, 2.3522}},
		{{-33.8688, 151.2093}, {40.7128, -74.0060}},
		{{10, 179.9}, {10, -179.9}},
	}
	for _, p := range pairs {
		assert.Equal(t, DistanceMeters(p[0], p[1]), DistanceMeters(p[1], p[0]))
	}
}

func TestDistanceMeters_KnownValues(t *testing.T) {
	// One degree of arc on the equator.
	oneDegree := 2 * math.Pi * EarthRadiusMeters / 360
	assert.InDelta(t, oneDegree, DistanceMeters(Coordinate{0, 0}, Coordinate{0, 1}), 1e-6)
	assert.InDelta(t, oneDegree, DistanceMeters(Coordinate{0, 0}, Coordinate{1, 0}), 1e-6)

	// London to Paris is roughly 343.5 km.
	d := DistanceMeters(Coordinate{51.5074, -0.1278}, Coordinate{48.8566, 2.3522})
	assert.InDelta(t, 343_500, d, 1_000)

	// Across the antimeridian the short way round.
	d = DistanceMeters(Coordinate{0, 179.5}, Coordinate{0, -179.5})
	assert.InDelta(t, oneDegree, d, 1e-6)
}

func TestDistanceMeters_Antipodal(t *testing.T) {
	d := DistanceMeters(Coordinate{0, 0}, Coordinate{0, 180})
	require.False(t, math.IsNaN(d))
	assert.InDelta(t, math.Pi*EarthRadiusMeters, d, 1e-3)

	d = DistanceMeters(Coordinate{90, 0}, Coordinate{-90, 0})
	require.False(t, math.IsNaN(d))
	assert.InDelta(t, math.Pi*EarthRadiusMeters, d, 1e-3)
}

func TestDistanceMeters_MonotonicWithSeparation(t *testing.T) {
	origin := Coordinate{0, 0}
	prev := 0.0
	for lat := 0.001; lat < 90; lat *= 2 {
		d := DistanceMeters(origin, Coordinate{lat, 0})
		assert.Greater(t, d, prev)
		prev = d
	}
}

func TestCoordinate_Validate(t *testing.T) {
	assert.NoError(t, Coordinate{90, 180}.Validate())
	assert.NoError(t, Coordinate{-90, -180}.Validate())

	for _, c := range []Coordinate{{90.1, 0}, {-91, 0}, {0, 180.5}, {0, -181}, {math.NaN(), 0}} {
		err := c.Validate()
		assert.ErrorIs(t, err, ErrInvalidCoordinate)
	}
}
