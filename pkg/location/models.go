package location

import (
	"time"

	"github.com/benmeehan/geo-alarm/pkg/geo"
)

// Location represents the geographical coordinates of a device
type Location struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64   // Estimated accuracy in meters (HDOP for sensor fixes)
	Timestamp time.Time // When the fix was taken
}

// Coordinate returns the latitude/longitude pair of the location.
func (l Location) Coordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: l.Latitude, Longitude: l.Longitude}
}

// Options controls how a reading is obtained.
type Options struct {
	HighAccuracy bool          // Prefer the precise (sensor) provider
	Timeout      time.Duration // Upper bound for a single reading; 0 means no limit
	MaxCachedAge time.Duration // Reuse a cached reading younger than this; 0 always reads fresh
}

// DefaultOptions mirrors the defaults used for interactive detection and tracking.
func DefaultOptions() Options {
	return Options{
		HighAccuracy: true,
		Timeout:      10 * time.Second,
		MaxCachedAge: 0,
	}
}
