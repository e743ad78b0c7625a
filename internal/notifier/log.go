package notifier

import (
	"github.com/benmeehan/geo-alarm/internal/monitor"
	"github.com/rs/zerolog"
)

// LogNotifier renders events as structured log lines.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs evt at a level matching its importance.
func (n *LogNotifier) Notify(evt monitor.Event) {
	var e *zerolog.Event
	switch evt.Kind {
	case monitor.EventWatchError:
		e = n.logger.Warn().Str("error_kind", string(evt.ErrorKind)).Err(evt.Err)
	case monitor.EventLeft, monitor.EventRadiusChanged:
		e = n.logger.Debug()
	default:
		e = n.logger.Info()
	}

	e = e.Str("event", string(evt.Kind)).
		Str("state", evt.State.String()).
		Int("radius", evt.Radius)
	if evt.Target != nil {
		e = e.Str("target", evt.Target.Name)
	}
	if evt.Coordinate != nil {
		e = e.Str("position", evt.Coordinate.String())
	}
	if evt.Kind == monitor.EventReached || evt.Kind == monitor.EventLeft {
		e = e.Float64("distance", evt.Distance)
	}
	e.Msg(message(evt))
}

func message(evt monitor.Event) string {
	switch evt.Kind {
	case monitor.EventLocationDetected:
		return "Your current location has been detected"
	case monitor.EventTargetSet:
		return "Target location saved"
	case monitor.EventRadiusChanged:
		return "Alarm radius changed"
	case monitor.EventAlarmStarted:
		return "Alarm activated"
	case monitor.EventAlarmStopped:
		return "Alarm deactivated"
	case monitor.EventReached:
		return "Destination reached"
	case monitor.EventLeft:
		return "Left destination radius"
	case monitor.EventWatchError:
		return "Location tracking error"
	}
	return "Alarm event"
}
