package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/benmeehan/geo-alarm/internal/monitor"
	"github.com/benmeehan/geo-alarm/pkg/geo"
	"github.com/benmeehan/geo-alarm/pkg/location"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAlarmEvent_Reached(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)
	evt := monitor.Event{
		Kind:       monitor.EventReached,
		Time:       now,
		State:      monitor.Triggered,
		Radius:     100,
		Target:     &monitor.TargetLocation{Name: "Home", Coordinate: geo.Coordinate{Latitude: 1, Longitude: 2}},
		Coordinate: &geo.Coordinate{Latitude: 1.0001, Longitude: 2},
		Distance:   11.1,
	}

	out := NewAlarmEvent("dev-1", evt)
	assert.True(t, out.Alert)
	assert.Equal(t, "reached", out.Event)
	assert.Equal(t, "triggered", out.State)
	require.NotNil(t, out.Distance)
	assert.Equal(t, 11.1, *out.Distance)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"device_id": "dev-1",
		"timestamp": "2026-10-19T08:30:00Z",
		"event": "reached",
		"state": "triggered",
		"radius": 100,
		"alert": true,
		"target": {"name": "Home", "latitude": 1, "longitude": 2},
		"position": {"latitude": 1.0001, "longitude": 2},
		"distance": 11.1
	}`, string(data))
}

func TestNewAlarmEvent_WatchError(t *testing.T) {
	evt := monitor.Event{
		Kind:      monitor.EventWatchError,
		State:     monitor.Armed,
		ErrorKind: location.KindPermissionDenied,
		Err:       errors.New("denied"),
	}

	out := NewAlarmEvent("dev-1", evt)
	assert.False(t, out.Alert)
	assert.Nil(t, out.Distance)
	assert.Nil(t, out.Target)
	assert.Equal(t, "permission_denied", out.ErrorKind)
	assert.Equal(t, "denied", out.Error)
}

func TestNewStatus(t *testing.T) {
	d := 42.0
	st := monitor.Status{
		State:    monitor.Armed,
		Radius:   200,
		Watching: true,
		Current:  &geo.Coordinate{Latitude: 3, Longitude: 4},
		Distance: &d,
	}

	out := NewStatus("dev-1", st)
	assert.Equal(t, "armed", out.State)
	assert.True(t, out.Watching)
	require.NotNil(t, out.Position)
	assert.Equal(t, 3.0, out.Position.Latitude)
	assert.Equal(t, &d, out.Distance)
	assert.Nil(t, out.Target)
}
