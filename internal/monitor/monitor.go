package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/benmeehan/geo-alarm/internal/constants"
	"github.com/benmeehan/geo-alarm/pkg/geo"
	"github.com/benmeehan/geo-alarm/pkg/location"
	"github.com/rs/zerolog"
)

var (
	ErrNoTargetSet       = errors.New("no target location set")
	ErrInvalidName       = errors.New("target name must not be empty")
	ErrInvalidRadius     = fmt.Errorf("radius must be between %d and %d meters", constants.MinRadiusMeters, constants.MaxRadiusMeters)
	ErrNoCurrentLocation = errors.New("current location has not been detected")
)

// Options configures a Monitor.
type Options struct {
	Radius     int              // Initial alarm radius in meters; 0 selects the default
	WatchOpts  location.Options // Options for the continuous watch
	DetectOpts location.Options // Options for single-shot detection
}

// Status is a point-in-time snapshot of the monitor.
type Status struct {
	State     State
	Radius    int
	Watching  bool
	Suspended bool // Host is in the background
	Target    *TargetLocation
	Current   *geo.Coordinate
	Distance  *float64 // Distance from Current to Target when both are known
}

// Monitor is the proximity-monitoring state machine. It owns the target,
// the radius, the alarm state and the single watch on the reading source.
type Monitor struct {
	source   location.Source
	notifier Notifier
	logger   zerolog.Logger

	watchOpts  location.Options
	detectOpts location.Options

	mu      sync.Mutex
	state   State
	radius  int
	target  *TargetLocation
	current *geo.Coordinate
	sub     *subscription

	// Set while the host is in the background. Start then arms without
	// subscribing and records the pending watch through deferWatch.
	suspended  bool
	deferWatch func() error
}

// subscription binds watch callbacks to the watch they were registered for.
type subscription struct {
	handle location.WatchHandle
}

// New creates an idle Monitor.
func New(source location.Source, notifier Notifier, opts Options, logger zerolog.Logger) (*Monitor, error) {
	if opts.Radius == 0 {
		opts.Radius = constants.DefaultRadiusMeters
	}
	if err := validateRadius(opts.Radius); err != nil {
		return nil, err
	}

	return &Monitor{
		source:     source,
		notifier:   notifier,
		logger:     logger,
		watchOpts:  opts.WatchOpts,
		detectOpts: opts.DetectOpts,
		state:      Idle,
		radius:     opts.Radius,
	}, nil
}

// DetectLocation requests a single reading and remembers it as the current position.
// The monitor lock is not held while waiting for the reading.
func (m *Monitor) DetectLocation(ctx context.Context) (geo.Coordinate, error) {
	loc, err := m.source.GetCurrentReading(ctx, m.detectOpts)
	if err != nil {
		rerr := location.NewReadingError(err)
		m.logger.Warn().Err(rerr).Str("kind", string(rerr.Kind)).Msg("Failed to detect current location")
		return geo.Coordinate{}, rerr
	}

	coord := loc.Coordinate()
	if err := coord.Validate(); err != nil {
		return geo.Coordinate{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = &coord
	m.logger.Info().Str("coordinate", coord.String()).Float64("accuracy", loc.Accuracy).Msg("Current location detected")
	m.emitLocked(Event{Kind: EventLocationDetected, Coordinate: &coord})
	return coord, nil
}

// SetTarget replaces the target location. It does not change the alarm state.
func (m *Monitor) SetTarget(name string, coord geo.Coordinate) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	if err := coord.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.setTargetLocked(name, coord)
	return nil
}

// SetTargetFromCurrent uses the last detected position as the target.
func (m *Monitor) SetTargetFromCurrent(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return ErrNoCurrentLocation
	}
	m.setTargetLocked(name, *m.current)
	return nil
}

func (m *Monitor) setTargetLocked(name string, coord geo.Coordinate) {
	m.target = &TargetLocation{Name: name, Coordinate: coord}
	m.logger.Info().Str("name", name).Str("coordinate", coord.String()).Msg("Target location set")
	m.emitLocked(Event{Kind: EventTargetSet, Target: m.targetCopyLocked()})
}

// SetRadius changes the alarm radius. It applies from the next reading on.
func (m *Monitor) SetRadius(radius int) error {
	if err := validateRadius(radius); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.radius == radius {
		return nil
	}
	m.radius = radius
	m.logger.Info().Int("radius", radius).Msg("Alarm radius changed")
	m.emitLocked(Event{Kind: EventRadiusChanged, Target: m.targetCopyLocked()})
	return nil
}

// Start arms the alarm and subscribes to the reading source. Calling Start on an
// armed monitor is a no-op, except that a watch lost to an error is re-established.
// While the host is suspended the watch is deferred until it returns to the foreground.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.target == nil {
		return ErrNoTargetSet
	}

	if m.state == Idle {
		m.state = Armed
		m.logger.Info().Str("target", m.target.Name).Int("radius", m.radius).Msg("Alarm started")
		m.emitLocked(Event{Kind: EventAlarmStarted, Target: m.targetCopyLocked()})
	}
	if m.sub != nil {
		return nil
	}
	if m.suspended && m.deferWatch != nil {
		err := m.deferWatch()
		if err == nil {
			m.logger.Info().Msg("Host is suspended, location watch deferred")
			return nil
		}
		m.logger.Error().Err(err).Msg("Failed to record deferred watch, subscribing now")
	}
	m.subscribeLocked()
	return nil
}

// Stop disarms the alarm and releases the watch. It always succeeds.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.releaseLocked()
	m.state = Idle
	m.logger.Info().Msg("Alarm stopped")
	m.emitLocked(Event{Kind: EventAlarmStopped, Target: m.targetCopyLocked()})
}

// OnReading applies one position reading and returns the transition it caused, if any.
func (m *Monitor) OnReading(coord geo.Coordinate) (Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.applyReadingLocked(coord)
}

// State returns the current alarm state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Status returns a snapshot of the monitor.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Status{
		State:     m.state,
		Radius:    m.radius,
		Watching:  m.sub != nil,
		Suspended: m.suspended,
		Target:    m.targetCopyLocked(),
	}
	if m.current != nil {
		c := *m.current
		st.Current = &c
		if m.target != nil {
			d := geo.DistanceMeters(c, m.target.Coordinate)
			st.Distance = &d
		}
	}
	return st
}

// suspendWatch marks the host as backgrounded and releases the watch while the
// alarm stays logically active. It reports whether a watch was released.
func (m *Monitor) suspendWatch() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.suspended = true
	if m.state == Idle || m.sub == nil {
		return false
	}
	m.releaseLocked()
	m.logger.Info().Str("state", m.state.String()).Msg("Location watch suspended")
	return true
}

// setSuspended records whether the host is in the background.
func (m *Monitor) setSuspended(suspended bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suspended = suspended
}

// setDeferWatch installs the callback Start uses while suspended. It runs
// under the monitor lock and must not call back into the monitor.
func (m *Monitor) setDeferWatch(fn func() error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deferWatch = fn
}

// resumeWatch re-subscribes when the alarm is active and no watch is held.
// It reports whether a new watch was acquired.
func (m *Monitor) resumeWatch() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == Idle || m.sub != nil {
		return false
	}
	m.subscribeLocked()
	if m.sub == nil {
		return false
	}
	m.logger.Info().Str("state", m.state.String()).Msg("Location watch resumed")
	return true
}

func (m *Monitor) applyReadingLocked(coord geo.Coordinate) (Event, bool) {
	if m.state == Idle || m.target == nil {
		return Event{}, false
	}
	if err := coord.Validate(); err != nil {
		m.logger.Warn().Err(err).Msg("Ignoring invalid reading")
		return Event{}, false
	}

	c := coord
	m.current = &c

	distance := geo.DistanceMeters(coord, m.target.Coordinate)
	within := distance <= float64(m.radius)

	var kind EventKind
	switch {
	case within && m.state == Armed:
		m.state = Triggered
		kind = EventReached
		m.logger.Info().
			Str("target", m.target.Name).
			Float64("distance", distance).
			Int("radius", m.radius).
			Msg("Target reached")
	case !within && m.state == Triggered:
		m.state = Armed
		kind = EventLeft
		m.logger.Info().
			Str("target", m.target.Name).
			Float64("distance", distance).
			Msg("Left target radius, alarm re-armed")
	default:
		return Event{}, false
	}

	evt := Event{Kind: kind, Target: m.targetCopyLocked(), Coordinate: &c, Distance: distance}
	return m.emitLocked(evt), true
}

func (m *Monitor) subscribeLocked() {
	sub := &subscription{}
	handle, err := m.source.Watch(m.watchOpts,
		func(loc location.Location) { m.onWatchReading(sub, loc) },
		func(rerr *location.ReadingError) { m.onWatchError(sub, rerr) },
	)
	if err != nil {
		rerr := location.NewReadingError(err)
		m.logger.Error().Err(rerr).Msg("Failed to start location watch")
		m.emitLocked(Event{Kind: EventWatchError, Target: m.targetCopyLocked(), ErrorKind: rerr.Kind, Err: rerr})
		return
	}
	sub.handle = handle
	m.sub = sub
	m.logger.Debug().Str("handle", string(handle)).Msg("Location watch acquired")
}

func (m *Monitor) releaseLocked() {
	if m.sub == nil {
		return
	}
	m.source.Unwatch(m.sub.handle)
	m.logger.Debug().Str("handle", string(m.sub.handle)).Msg("Location watch released")
	m.sub = nil
}

func (m *Monitor) onWatchReading(sub *subscription, loc location.Location) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sub != sub {
		m.logger.Debug().Msg("Dropping reading from released watch")
		return
	}
	m.applyReadingLocked(loc.Coordinate())
}

func (m *Monitor) onWatchError(sub *subscription, rerr *location.ReadingError) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sub != sub || m.state == Idle {
		return
	}

	m.releaseLocked()
	m.state = Armed
	m.logger.Warn().Err(rerr).Str("kind", string(rerr.Kind)).Msg("Location watch failed, tracking stopped")
	m.emitLocked(Event{Kind: EventWatchError, Target: m.targetCopyLocked(), ErrorKind: rerr.Kind, Err: rerr})
}

func (m *Monitor) emitLocked(evt Event) Event {
	evt.Time = time.Now()
	evt.State = m.state
	evt.Radius = m.radius
	if m.notifier != nil {
		m.notifier.Notify(evt)
	}
	return evt
}

func (m *Monitor) targetCopyLocked() *TargetLocation {
	if m.target == nil {
		return nil
	}
	t := *m.target
	return &t
}

func validateRadius(radius int) error {
	if radius < constants.MinRadiusMeters || radius > constants.MaxRadiusMeters {
		return fmt.Errorf("%w: got %d", ErrInvalidRadius, radius)
	}
	return nil
}
