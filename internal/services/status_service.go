package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/benmeehan/geo-alarm/internal/models"
	"github.com/benmeehan/geo-alarm/internal/monitor"
	"github.com/benmeehan/geo-alarm/pkg/identity"
	"github.com/benmeehan/geo-alarm/pkg/mqtt"
	"github.com/rs/zerolog"
)

// StatusReporter provides alarm snapshots.
type StatusReporter interface {
	Status() monitor.Status
}

// StatusService publishes the alarm status at a fixed interval.
type StatusService struct {
	PubTopic   string
	Interval   time.Duration
	QOS        int
	Reporter   StatusReporter
	DeviceInfo identity.DeviceInfoInterface
	MqttClient mqtt.MQTTClient
	Logger     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStatusService initializes a new StatusService.
func NewStatusService(pubTopic string, interval time.Duration, qos int, reporter StatusReporter,
	deviceInfo identity.DeviceInfoInterface, mqttClient mqtt.MQTTClient, logger zerolog.Logger) *StatusService {
	return &StatusService{
		PubTopic:   pubTopic,
		Interval:   interval,
		QOS:        qos,
		Reporter:   reporter,
		DeviceInfo: deviceInfo,
		MqttClient: mqttClient,
		Logger:     logger,
	}
}

// Start launches the status loop in a separate goroutine.
func (s *StatusService) Start() error {
	if s.ctx != nil {
		s.Logger.Warn().Msg("StatusService is already running")
		return errors.New("status service is already running")
	}
	if s.Interval <= 0 {
		return errors.New("status interval must be positive")
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runStatusLoop()
	}()

	s.Logger.Info().Str("topic", s.PubTopic).Dur("interval", s.Interval).Msg("StatusService started")
	return nil
}

// Stop gracefully stops the status loop.
func (s *StatusService) Stop() error {
	if s.ctx == nil {
		s.Logger.Warn().Msg("StatusService is not running")
		return errors.New("status service is not running")
	}

	s.cancel()
	s.wg.Wait()

	s.ctx = nil
	s.cancel = nil

	s.Logger.Info().Msg("StatusService stopped")
	return nil
}

func (s *StatusService) runStatusLoop() {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.publish()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *StatusService) publish() {
	deviceID := s.DeviceInfo.GetDeviceID()
	payload, err := json.Marshal(models.NewStatus(deviceID, s.Reporter.Status()))
	if err != nil {
		s.Logger.Error().Err(err).Msg("Failed to serialize status message")
		return
	}

	token := s.MqttClient.Publish(s.PubTopic+"/"+deviceID, byte(s.QOS), false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		s.Logger.Error().Err(err).Msg("Failed to publish status message")
		return
	}
	s.Logger.Debug().Msg("Status published")
}
