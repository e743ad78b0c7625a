package app

import (
	"bytes"
	"testing"

	"github.com/benmeehan/geo-alarm/internal/mocks"
	"github.com/benmeehan/geo-alarm/internal/monitor"
	"github.com/benmeehan/geo-alarm/internal/utils"
	"github.com/benmeehan/geo-alarm/pkg/location"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger("warn", "json", &buf)
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)

	_, err = NewLogger("loud", "json", &buf)
	assert.Error(t, err)
	_, err = NewLogger("info", "xml", &buf)
	assert.Error(t, err)
}

func newTestMonitor(t *testing.T) (*monitor.Monitor, *mocks.MockSource) {
	t.Helper()
	src := new(mocks.MockSource)
	src.On("Watch", mock.Anything, mock.Anything, mock.Anything).Return(location.WatchHandle("w"), nil)
	m, err := monitor.New(src, nil, monitor.Options{}, zerolog.Nop())
	require.NoError(t, err)
	return m, src
}

func TestApplyInitialTarget(t *testing.T) {
	cfg := &utils.Config{}
	m, src := newTestMonitor(t)
	require.NoError(t, applyInitialTarget(cfg, m))
	assert.Nil(t, m.Status().Target)

	cfg.Alarm.Target.Name = "Station"
	cfg.Alarm.Target.Latitude = 52.5251
	cfg.Alarm.Target.Longitude = 13.3694
	require.NoError(t, applyInitialTarget(cfg, m))
	assert.Equal(t, "Station", m.Status().Target.Name)
	assert.Equal(t, monitor.Idle, m.State())

	cfg.Alarm.AutoStart = true
	require.NoError(t, applyInitialTarget(cfg, m))
	assert.Equal(t, monitor.Armed, m.State())
	src.AssertNumberOfCalls(t, "Watch", 1)
}

func TestApplyInitialTargetInvalid(t *testing.T) {
	cfg := &utils.Config{}
	cfg.Alarm.Target.Name = "Nowhere"
	cfg.Alarm.Target.Latitude = 91
	m, _ := newTestMonitor(t)

	assert.Error(t, applyInitialTarget(cfg, m))
}

func TestNewSource(t *testing.T) {
	cfg := &utils.Config{}
	cfg.Location.SensorBased = true
	cfg.Location.GPSDevicePort = "/dev/null"
	cfg.ApplyDefaults()

	src, err := newSource(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 0, src.ActiveWatches())
	assert.NoError(t, src.Close())
}
