package monitor

import (
	"time"

	"github.com/benmeehan/geo-alarm/pkg/geo"
	"github.com/benmeehan/geo-alarm/pkg/location"
)

// State is the alarm state owned by the Monitor.
type State int

const (
	Idle State = iota
	Armed
	Triggered
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Triggered:
		return "triggered"
	}
	return "unknown"
}

// TargetLocation is the named point the alarm fires on.
type TargetLocation struct {
	Name       string         `json:"name"`
	Coordinate geo.Coordinate `json:"coordinate"`
}

// EventKind identifies what happened.
type EventKind string

const (
	EventLocationDetected EventKind = "location_detected"
	EventTargetSet        EventKind = "target_set"
	EventRadiusChanged    EventKind = "radius_changed"
	EventAlarmStarted     EventKind = "alarm_started"
	EventAlarmStopped     EventKind = "alarm_stopped"
	EventReached          EventKind = "reached"
	EventLeft             EventKind = "left"
	EventWatchError       EventKind = "watch_error"
)

// Event is emitted to the Notifier on every observable change.
type Event struct {
	Kind       EventKind
	Time       time.Time
	State      State // State after the event was applied
	Radius     int
	Target     *TargetLocation
	Coordinate *geo.Coordinate
	Distance   float64 // Meters from target; set on Reached and Left
	ErrorKind  location.ErrorKind
	Err        error
}

// Notifier renders events to the user. Notify is called while the monitor
// holds its lock, so implementations must not block or call back into the monitor.
type Notifier interface {
	Notify(evt Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(evt Event)

// Notify calls f(evt).
func (f NotifierFunc) Notify(evt Event) {
	f(evt)
}
