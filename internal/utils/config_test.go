package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benmeehan/geo-alarm/internal/constants"
	"github.com/benmeehan/geo-alarm/pkg/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
location:
  sensor_based: true
  gps_device_port: /dev/ttyUSB0
`)
	cfg, err := LoadConfig(path, file.NewFileService())
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultRadiusMeters, cfg.Alarm.Radius)
	assert.Equal(t, 9600, cfg.Location.GPSDeviceBaudRate)
	assert.Equal(t, constants.DefaultPollInterval, cfg.Location.PollInterval)
	assert.Equal(t, constants.DefaultReadingTimeout, cfg.Location.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.UsesMQTT())

	watch := cfg.WatchOptions()
	assert.True(t, watch.HighAccuracy, "without a network provider the sensor is the only option")
	assert.Equal(t, 10*time.Second, watch.Timeout)

	detect := cfg.DetectOptions()
	assert.True(t, detect.HighAccuracy)
	assert.Zero(t, detect.MaxCachedAge)
}

func TestLoadConfig_Full(t *testing.T) {
	path := writeConfig(t, `
mqtt:
  broker: tcp://localhost:1883
  client_id: tracker
location:
  maps_api_key: key
  poll_interval: 2s
  max_cached_age: 30s
alarm:
  radius: 250
  sound_command: ["paplay", "/usr/share/sounds/alarm.oga"]
  target:
    name: Home
    latitude: 52.52
    longitude: 13.405
  auto_start: true
services:
  events:
    enabled: true
    topic: geo-alarm/events
    qos: 1
  status:
    enabled: true
    interval: 30s
`)
	cfg, err := LoadConfig(path, file.NewFileService())
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.Alarm.Radius)
	assert.Equal(t, "Home", cfg.Alarm.Target.Name)
	assert.Equal(t, []string{"paplay", "/usr/share/sounds/alarm.oga"}, cfg.Alarm.SoundCommand)
	assert.Equal(t, 2*time.Second, cfg.Location.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.Services.Status.Interval)
	assert.True(t, cfg.UsesMQTT())

	watch := cfg.WatchOptions()
	assert.False(t, watch.HighAccuracy)
	assert.Equal(t, 30*time.Second, watch.MaxCachedAge)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"radius too small": `
location: {sensor_based: true, gps_device_port: /dev/ttyUSB0}
alarm: {radius: 10}
`,
		"no provider": `
alarm: {radius: 100}
`,
		"mqtt without broker": `
location: {maps_api_key: key}
services: {control: {enabled: true}}
`,
		"auto start without target": `
location: {maps_api_key: key}
alarm: {auto_start: true}
`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, content), file.NewFileService())
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), file.NewFileService())
	assert.Error(t, err)
}
