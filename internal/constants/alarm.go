package constants

import "time"

// Alarm radius bounds in meters.
const (
	MinRadiusMeters     = 50
	MaxRadiusMeters     = 1000
	DefaultRadiusMeters = 100
	RadiusStepMeters    = 50
)

const (
	// SuspendedWatchMemoKey is the fixed key under which the "was watching when suspended" flag is stored.
	SuspendedWatchMemoKey = "wasWatchingLocation"

	// DefaultReadingTimeout bounds a single position request.
	DefaultReadingTimeout = 10 * time.Second

	// DefaultPollInterval is how often a watch polls the location provider.
	DefaultPollInterval = 5 * time.Second

	// DefaultSoundTimeout bounds the alarm sound command.
	DefaultSoundTimeout = 30 * time.Second
)
