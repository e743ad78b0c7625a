package models

import (
	"time"

	"github.com/benmeehan/geo-alarm/internal/monitor"
)

// Position is a latitude/longitude pair on the wire.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Target is the named alarm location on the wire.
type Target struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AlarmEvent represents a monitor event published to the broker.
type AlarmEvent struct {
	DeviceID  string    `json:"device_id"`
	Timestamp time.Time `json:"timestamp"`
	Event     string    `json:"event"`
	State     string    `json:"state"`
	Radius    int       `json:"radius"`

	// Alert marks events that warrant a system notification.
	Alert bool `json:"alert"`

	Target    *Target   `json:"target,omitempty"`
	Position  *Position `json:"position,omitempty"`
	Distance  *float64  `json:"distance,omitempty"`
	ErrorKind string    `json:"error_kind,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// NewAlarmEvent converts a monitor event into its wire form.
func NewAlarmEvent(deviceID string, evt monitor.Event) AlarmEvent {
	out := AlarmEvent{
		DeviceID:  deviceID,
		Timestamp: evt.Time,
		Event:     string(evt.Kind),
		State:     evt.State.String(),
		Radius:    evt.Radius,
		Alert:     evt.Kind == monitor.EventReached,
		Target:    NewTarget(evt.Target),
		ErrorKind: string(evt.ErrorKind),
	}
	if evt.Coordinate != nil {
		out.Position = &Position{Latitude: evt.Coordinate.Latitude, Longitude: evt.Coordinate.Longitude}
	}
	if evt.Kind == monitor.EventReached || evt.Kind == monitor.EventLeft {
		d := evt.Distance
		out.Distance = &d
	}
	if evt.Err != nil {
		out.Error = evt.Err.Error()
	}
	return out
}

// NewTarget converts a monitor target; nil stays nil.
func NewTarget(t *monitor.TargetLocation) *Target {
	if t == nil {
		return nil
	}
	return &Target{Name: t.Name, Latitude: t.Coordinate.Latitude, Longitude: t.Coordinate.Longitude}
}
