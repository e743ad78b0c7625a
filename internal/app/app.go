package app

import (
	"context"
	"fmt"
	"os"

	"github.com/benmeehan/geo-alarm/internal/metrics"
	"github.com/benmeehan/geo-alarm/internal/monitor"
	"github.com/benmeehan/geo-alarm/internal/notifier"
	"github.com/benmeehan/geo-alarm/internal/service_registry"
	"github.com/benmeehan/geo-alarm/internal/state_managers"
	"github.com/benmeehan/geo-alarm/internal/utils"
	"github.com/benmeehan/geo-alarm/pkg/file"
	"github.com/benmeehan/geo-alarm/pkg/geo"
	"github.com/benmeehan/geo-alarm/pkg/identity"
	"github.com/benmeehan/geo-alarm/pkg/location"
	"github.com/benmeehan/geo-alarm/pkg/mqtt"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Run loads the configuration, wires the alarm and blocks until ctx is done.
func Run(ctx context.Context, configPath string) error {
	fileClient := file.NewFileService()

	config, err := utils.LoadConfig(configPath, fileClient)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := NewLogger(config.Log.Level, config.Log.Format, os.Stdout)
	if err != nil {
		return err
	}

	deviceInfo := identity.NewDeviceInfo(config.Identity.DeviceFile, fileClient)
	if err := deviceInfo.LoadDeviceInfo(); err != nil {
		return fmt.Errorf("failed to load device information: %w", err)
	}
	logger = logger.With().Str("device_id", deviceInfo.GetDeviceID()).Logger()

	var mqttClient mqtt.MQTTClient
	if config.UsesMQTT() {
		clientID := config.MQTT.ClientID + "-" + uuid.NewString()
		logger.Info().Str("client_id", clientID).Msg("Using MQTT client ID")

		svc := mqtt.NewMqttService(fileClient, logger)
		err := svc.Initialize(mqtt.Settings{
			Broker:         config.MQTT.Broker,
			ClientID:       clientID,
			CACertificate:  config.MQTT.CACertificate,
			Username:       config.MQTT.Username,
			Password:       config.MQTT.Password,
			ConnectTimeout: config.MQTT.Timeout,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize MQTT connection: %w", err)
		}
		defer svc.Disconnect(250)
		mqttClient = svc
	}

	source, err := newSource(config, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := source.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close location providers")
		}
	}()

	collector := metrics.NewCollector()
	sound := notifier.NewCommandNotifier(config.Alarm.SoundCommand, config.Alarm.SoundTimeout, logger)
	async := notifier.Multi{sound}
	if config.Services.Events.Enabled {
		async = append(async, notifier.NewMQTTNotifier(
			config.Services.Events.Topic,
			config.Services.Events.QOS,
			deviceInfo.GetDeviceID(),
			mqttClient,
			logger,
		))
	}
	dispatcher := notifier.NewDispatcher(async, logger)
	defer func() {
		dispatcher.Close()
		sound.Wait()
	}()

	m, err := monitor.New(source, notifier.Multi{notifier.NewLogNotifier(logger), collector, dispatcher}, monitor.Options{
		Radius:     config.Alarm.Radius,
		WatchOpts:  config.WatchOptions(),
		DetectOpts: config.DetectOptions(),
	}, logger)
	if err != nil {
		return err
	}
	defer m.Stop()

	var memo monitor.MemoStore = state_managers.NewMemoryMemoStore()
	if config.Alarm.MemoFile != "" {
		memo = state_managers.NewFileMemoStore(config.Alarm.MemoFile, fileClient, logger)
	}
	policy := monitor.NewSuspensionPolicy(m, memo, logger)

	if err := applyInitialTarget(config, m); err != nil {
		return err
	}

	registry := service_registry.NewServiceRegistry(logger)
	err = registry.RegisterServices(config, service_registry.Dependencies{
		MQTTClient: mqttClient,
		DeviceInfo: deviceInfo,
		Monitor:    m,
		Policy:     policy,
		Collector:  collector,
		Sound:      sound,
	})
	if err != nil {
		return err
	}
	if err := registry.StartServices(); err != nil {
		return err
	}
	logger.Info().Msg("All services started successfully")

	// Consume a suspension memo left behind by a previous run.
	policy.OnVisibilityChange(false)

	<-ctx.Done()
	logger.Info().Msg("Shutting down gracefully...")
	return registry.StopServices()
}

func newSource(config *utils.Config, logger zerolog.Logger) (*location.PollingSource, error) {
	var precise, coarse location.Provider
	if config.Location.SensorBased {
		precise = location.NewDeviceSensorProvider(config.Location.GPSDevicePort, config.Location.GPSDeviceBaudRate)
	}
	if config.Location.MapsAPIKey != "" {
		google, err := location.NewGoogleGeolocationProvider(config.Location.MapsAPIKey, config.Location.ModemIndex)
		if err != nil {
			return nil, fmt.Errorf("failed to create Google Geolocation provider: %w", err)
		}
		coarse = google
	}
	return location.NewPollingSource(precise, coarse, config.Location.PollInterval, logger), nil
}

func applyInitialTarget(config *utils.Config, m *monitor.Monitor) error {
	target := config.Alarm.Target
	if target.Name == "" {
		return nil
	}

	err := m.SetTarget(target.Name, geo.Coordinate{Latitude: target.Latitude, Longitude: target.Longitude})
	if err != nil {
		return fmt.Errorf("invalid alarm.target: %w", err)
	}
	if config.Alarm.AutoStart {
		return m.Start()
	}
	return nil
}
