package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/benmeehan/geo-alarm/internal/constants"
	"github.com/benmeehan/geo-alarm/internal/models"
	"github.com/benmeehan/geo-alarm/internal/monitor"
	"github.com/benmeehan/geo-alarm/pkg/geo"
	"github.com/benmeehan/geo-alarm/pkg/identity"
	"github.com/benmeehan/geo-alarm/pkg/mqtt"
	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

var (
	errUnknownAction     = errors.New("unknown action")
	errPartialCoordinate = errors.New("latitude and longitude must be given together")
)

// AlarmController is the set of monitor operations exposed over MQTT.
type AlarmController interface {
	DetectLocation(ctx context.Context) (geo.Coordinate, error)
	SetTarget(name string, coord geo.Coordinate) error
	SetTargetFromCurrent(name string) error
	SetRadius(radius int) error
	Start() error
	Stop()
	Status() monitor.Status
}

// VisibilityHandler receives foreground/background transitions.
type VisibilityHandler interface {
	OnVisibilityChange(hidden bool)
}

// Silencer stops an audible alarm without changing the alarm state.
type Silencer interface {
	Silence()
}

// ControlService applies alarm commands received via MQTT
// and publishes a response for each of them.
type ControlService struct {
	subTopic string
	qos      int

	alarm      AlarmController
	visibility VisibilityHandler
	silencer   Silencer
	mqttClient mqtt.MQTTClient
	deviceInfo identity.DeviceInfoInterface
	logger     zerolog.Logger

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
}

// NewControlService initializes a new ControlService.
func NewControlService(subTopic string, qos int, alarm AlarmController, visibility VisibilityHandler, silencer Silencer,
	mqttClient mqtt.MQTTClient, deviceInfo identity.DeviceInfoInterface, logger zerolog.Logger) *ControlService {
	ctx, cancel := context.WithCancel(context.Background())

	return &ControlService{
		subTopic:   subTopic,
		qos:        qos,
		alarm:      alarm,
		visibility: visibility,
		silencer:   silencer,
		mqttClient: mqttClient,
		deviceInfo: deviceInfo,
		logger:     logger,
		stopChan:   make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (cs *ControlService) topic() string {
	return cs.subTopic + "/" + cs.deviceInfo.GetDeviceID()
}

// Start subscribes to the device's control topic.
func (cs *ControlService) Start() error {
	topic := cs.topic()
	token := cs.mqttClient.Subscribe(topic, byte(cs.qos), cs.HandleCommand)
	token.Wait()
	if err := token.Error(); err != nil {
		cs.logger.Error().Err(err).Str("topic", topic).Msg("Failed to subscribe to MQTT topic")
		return err
	}

	cs.logger.Info().Str("topic", topic).Msg("ControlService started")
	return nil
}

// Stop unsubscribes and waits for in-flight commands. Only the first call has an effect.
func (cs *ControlService) Stop() error {
	stopped := false
	cs.stopOnce.Do(func() {
		cs.mu.Lock()
		cs.cancel()
		close(cs.stopChan)
		cs.mu.Unlock()
		stopped = true
	})
	if !stopped {
		return errors.New("control service is already stopped")
	}
	cs.wg.Wait()

	topic := cs.topic()
	token := cs.mqttClient.Unsubscribe(topic)
	token.Wait()
	if err := token.Error(); err != nil {
		cs.logger.Error().Err(err).Str("topic", topic).Msg("Failed to unsubscribe from MQTT topic")
		return err
	}

	cs.logger.Info().Msg("ControlService stopped")
	return nil
}

// HandleCommand decodes one command, applies it and publishes the response.
func (cs *ControlService) HandleCommand(_ MQTT.Client, msg MQTT.Message) {
	cs.mu.Lock()
	select {
	case <-cs.stopChan:
		cs.mu.Unlock()
		cs.logger.Warn().Msg("Received command but service is stopping, ignoring command")
		return
	default:
		cs.wg.Add(1)
		cs.mu.Unlock()
	}
	defer cs.wg.Done()

	var cmd models.ControlCommand
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		cs.logger.Error().Err(err).Str("topic", msg.Topic()).Msg("Failed to decode control command")
		cs.publishResponse(models.ControlResponse{
			Status: constants.ControlStatusError,
			Error:  fmt.Sprintf("invalid command: %v", err),
		})
		return
	}

	cs.logger.Info().Str("action", cmd.Action).Str("request_id", cmd.RequestID).Msg("Received control command")
	cs.publishResponse(cs.Execute(cs.ctx, cmd))
}

// Execute applies cmd to the alarm and builds the response.
func (cs *ControlService) Execute(ctx context.Context, cmd models.ControlCommand) models.ControlResponse {
	resp := models.ControlResponse{
		RequestID: cmd.RequestID,
		Action:    cmd.Action,
		Status:    constants.ControlStatusOK,
	}

	var err error
	switch cmd.Action {
	case constants.ActionDetect:
		var coord geo.Coordinate
		coord, err = cs.alarm.DetectLocation(ctx)
		if err == nil {
			resp.Position = &models.Position{Latitude: coord.Latitude, Longitude: coord.Longitude}
		}
	case constants.ActionSetTarget:
		err = cs.setTarget(cmd)
	case constants.ActionSetRadius:
		err = cs.alarm.SetRadius(cmd.Radius)
	case constants.ActionStart:
		err = cs.alarm.Start()
	case constants.ActionStop:
		cs.alarm.Stop()
	case constants.ActionSilence:
		if cs.silencer == nil {
			err = errors.New("alarm sound is not configured")
			break
		}
		cs.silencer.Silence()
	case constants.ActionBackground, constants.ActionForeground:
		if cs.visibility == nil {
			err = errors.New("lifecycle handling is not configured")
			break
		}
		cs.visibility.OnVisibilityChange(cmd.Action == constants.ActionBackground)
	case constants.ActionStatus:
	default:
		err = fmt.Errorf("%w: %q", errUnknownAction, cmd.Action)
	}

	if err != nil {
		cs.logger.Warn().Err(err).Str("action", cmd.Action).Msg("Control command rejected")
		resp.Status = constants.ControlStatusError
		resp.Error = err.Error()
		return resp
	}

	status := models.NewStatus(cs.deviceInfo.GetDeviceID(), cs.alarm.Status())
	resp.Result = &status
	return resp
}

func (cs *ControlService) setTarget(cmd models.ControlCommand) error {
	switch {
	case cmd.Latitude == nil && cmd.Longitude == nil:
		return cs.alarm.SetTargetFromCurrent(cmd.Name)
	case cmd.Latitude == nil || cmd.Longitude == nil:
		return errPartialCoordinate
	default:
		return cs.alarm.SetTarget(cmd.Name, geo.Coordinate{Latitude: *cmd.Latitude, Longitude: *cmd.Longitude})
	}
}

func (cs *ControlService) publishResponse(resp models.ControlResponse) {
	topic := cs.topic() + constants.ResponseTopicSuffix

	payload, err := json.Marshal(resp)
	if err != nil {
		cs.logger.Error().Err(err).Msg("Failed to serialize control response")
		return
	}

	token := cs.mqttClient.Publish(topic, byte(cs.qos), false, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			cs.logger.Error().Err(err).Str("topic", topic).Msg("Failed to publish control response")
		}
	case <-cs.ctx.Done():
		cs.logger.Warn().Str("topic", topic).Msg("Publish operation cancelled")
	}
}
