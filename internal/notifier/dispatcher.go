package notifier

import (
	"sync"

	"github.com/benmeehan/geo-alarm/internal/monitor"
	"github.com/benmeehan/geo-alarm/internal/utils"
	"github.com/rs/zerolog"
)

// defaultQueueSize is the number of events buffered before Notify starts dropping.
const defaultQueueSize = 64

// Dispatcher hands events to the next notifier on a single background worker,
// so delivery happens in emission order without blocking the monitor.
type Dispatcher struct {
	next   monitor.Notifier
	pool   *utils.WorkerPool
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts a Dispatcher in front of next.
func NewDispatcher(next monitor.Notifier, logger zerolog.Logger) *Dispatcher {
	return newDispatcher(next, defaultQueueSize, logger)
}

func newDispatcher(next monitor.Notifier, queueSize int, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		next:   next,
		pool:   utils.NewWorkerPoolWithQueue(1, queueSize),
		logger: logger,
	}
}

// Notify queues evt for delivery without blocking. Events are dropped after
// Close or while the queue is full.
func (d *Dispatcher) Notify(evt monitor.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn().Str("event", string(evt.Kind)).Msg("Dispatcher closed, dropping event")
		return
	}
	if !d.pool.TrySubmit(func() { d.next.Notify(evt) }) {
		d.logger.Warn().Str("event", string(evt.Kind)).Msg("Dispatcher queue full, dropping event")
	}
}

// Close delivers the queued events and stops the worker.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.pool.Shutdown()
}
