package service_registry

import (
	"errors"
	"testing"
	"time"

	"github.com/benmeehan/geo-alarm/internal/metrics"
	"github.com/benmeehan/geo-alarm/internal/mocks"
	"github.com/benmeehan/geo-alarm/internal/monitor"
	"github.com/benmeehan/geo-alarm/internal/notifier"
	"github.com/benmeehan/geo-alarm/internal/state_managers"
	"github.com/benmeehan/geo-alarm/internal/utils"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	name     string
	startErr error
	stopErr  error
	log      *[]string
}

func (f *fakeService) Start() error {
	*f.log = append(*f.log, "start "+f.name)
	return f.startErr
}

func (f *fakeService) Stop() error {
	*f.log = append(*f.log, "stop "+f.name)
	return f.stopErr
}

func TestServiceRegistry_StartStopOrder(t *testing.T) {
	var log []string
	sr := NewServiceRegistry(zerolog.Nop())
	sr.RegisterService("a", &fakeService{name: "a", log: &log})
	sr.RegisterService("b", &fakeService{name: "b", log: &log})
	sr.RegisterService("a", &fakeService{name: "dup", log: &log})

	require.NoError(t, sr.StartServices())
	require.NoError(t, sr.StopServices())
	assert.Equal(t, []string{"start a", "start b", "stop b", "stop a"}, log)
}

func TestServiceRegistry_RollbackOnStartFailure(t *testing.T) {
	var log []string
	sr := NewServiceRegistry(zerolog.Nop())
	sr.RegisterService("a", &fakeService{name: "a", log: &log})
	sr.RegisterService("b", &fakeService{name: "b", log: &log})
	sr.RegisterService("c", &fakeService{name: "c", startErr: errors.New("boom"), log: &log})

	err := sr.StartServices()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start c")
	assert.Equal(t, []string{"start a", "start b", "start c", "stop b", "stop a"}, log)
}

func TestServiceRegistry_StopJoinsErrors(t *testing.T) {
	var log []string
	errA, errB := errors.New("a failed"), errors.New("b failed")
	sr := NewServiceRegistry(zerolog.Nop())
	sr.RegisterService("a", &fakeService{name: "a", stopErr: errA, log: &log})
	sr.RegisterService("b", &fakeService{name: "b", stopErr: errB, log: &log})

	err := sr.StopServices()
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestServiceRegistry_RegisterServicesFromConfig(t *testing.T) {
	cfg := &utils.Config{}
	cfg.Location.MapsAPIKey = "key"
	cfg.ApplyDefaults()
	cfg.Services.Metrics.Enabled = true
	cfg.Services.Control.Enabled = true
	cfg.Services.Status.Enabled = true
	cfg.Services.Lifecycle.Enabled = true

	m, err := monitor.New(new(mocks.MockSource), nil, monitor.Options{}, zerolog.Nop())
	require.NoError(t, err)

	sr := NewServiceRegistry(zerolog.Nop())
	err = sr.RegisterServices(cfg, Dependencies{
		MQTTClient: new(mocks.MockMQTTClient),
		DeviceInfo: &mocks.StaticDeviceInfo{ID: "dev-1"},
		Monitor:    m,
		Policy:     monitor.NewSuspensionPolicy(m, state_managers.NewMemoryMemoStore(), zerolog.Nop()),
		Collector:  metrics.NewCollector(),
		Sound:      notifier.NewCommandNotifier(nil, time.Second, zerolog.Nop()),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"metrics", "control", "status", "lifecycle"}, sr.Names())
}

func TestServiceRegistry_RegisterServicesMissingClient(t *testing.T) {
	cfg := &utils.Config{}
	cfg.ApplyDefaults()
	cfg.Services.Control.Enabled = true

	sr := NewServiceRegistry(zerolog.Nop())
	assert.Error(t, sr.RegisterServices(cfg, Dependencies{}))
	assert.Empty(t, sr.Names())
}
