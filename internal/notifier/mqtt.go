package notifier

import (
	"encoding/json"
	"time"

	"github.com/benmeehan/geo-alarm/internal/models"
	"github.com/benmeehan/geo-alarm/internal/monitor"
	"github.com/benmeehan/geo-alarm/pkg/mqtt"
	"github.com/rs/zerolog"
)

const publishTimeout = 5 * time.Second

// MQTTNotifier publishes events as JSON to <topic>/<device_id>.
// Publishing waits for the broker, so wrap it in a Dispatcher.
type MQTTNotifier struct {
	topic      string
	qos        int
	deviceID   string
	mqttClient mqtt.MQTTClient
	logger     zerolog.Logger
}

// NewMQTTNotifier creates an MQTTNotifier.
func NewMQTTNotifier(topic string, qos int, deviceID string, mqttClient mqtt.MQTTClient, logger zerolog.Logger) *MQTTNotifier {
	return &MQTTNotifier{
		topic:      topic,
		qos:        qos,
		deviceID:   deviceID,
		mqttClient: mqttClient,
		logger:     logger,
	}
}

// Notify publishes evt. Failures are logged, never returned.
func (n *MQTTNotifier) Notify(evt monitor.Event) {
	message := models.NewAlarmEvent(n.deviceID, evt)

	payload, err := json.Marshal(message)
	if err != nil {
		n.logger.Error().Err(err).Msg("Failed to serialize alarm event")
		return
	}

	topic := n.topic + "/" + n.deviceID
	token := n.mqttClient.Publish(topic, byte(n.qos), false, payload)
	if !token.WaitTimeout(publishTimeout) {
		n.logger.Error().Str("topic", topic).Str("event", message.Event).Msg("Timed out publishing alarm event")
		return
	}
	if err := token.Error(); err != nil {
		n.logger.Error().Err(err).Str("topic", topic).Msg("Failed to publish alarm event")
		return
	}

	n.logger.Debug().Str("topic", topic).Str("event", message.Event).Msg("Alarm event published")
}
