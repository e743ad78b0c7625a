package models

import (
	"time"

	"github.com/benmeehan/geo-alarm/internal/monitor"
)

// Status represents a periodic snapshot of the alarm.
type Status struct {
	DeviceID  string    `json:"device_id"`
	Timestamp time.Time `json:"timestamp"`
	State     string    `json:"state"`
	Radius    int       `json:"radius"`
	Watching  bool      `json:"watching"`
	Suspended bool      `json:"suspended"`
	Target    *Target   `json:"target,omitempty"`
	Position  *Position `json:"position,omitempty"`
	Distance  *float64  `json:"distance,omitempty"`
}

// NewStatus converts a monitor snapshot into its wire form.
func NewStatus(deviceID string, st monitor.Status) Status {
	out := Status{
		DeviceID:  deviceID,
		Timestamp: time.Now(),
		State:     st.State.String(),
		Radius:    st.Radius,
		Watching:  st.Watching,
		Suspended: st.Suspended,
		Target:    NewTarget(st.Target),
		Distance:  st.Distance,
	}
	if st.Current != nil {
		out.Position = &Position{Latitude: st.Current.Latitude, Longitude: st.Current.Longitude}
	}
	return out
}
