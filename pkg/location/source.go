package location

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"
)

// WatchHandle identifies a continuous reading subscription. The zero value means "no watch".
type WatchHandle string

// ReadingFunc receives readings from a watch.
type ReadingFunc func(Location)

// ErrorFunc receives failures from a watch.
type ErrorFunc func(*ReadingError)

// ErrSourceClosed is returned by Watch after the source has been closed.
var ErrSourceClosed = errors.New("reading source is closed")

// Source delivers single-shot and continuous position readings.
type Source interface {
	GetCurrentReading(ctx context.Context, opts Options) (Location, error)
	Watch(opts Options, onReading ReadingFunc, onError ErrorFunc) (WatchHandle, error)
	Unwatch(handle WatchHandle)
}

// PollingSource implements Source by polling location providers at a fixed interval.
type PollingSource struct {
	precise  Provider // Sensor backed provider used for high accuracy requests
	coarse   Provider // Optional network provider for low accuracy requests
	interval time.Duration
	logger   zerolog.Logger

	watches cmap.ConcurrentMap[string, *watch]
	wg      sync.WaitGroup

	// Guards closed and the registration of new watches against Close.
	mu     sync.Mutex
	closed bool

	cacheMu   sync.Mutex
	cached    Location
	hasCached bool
}

type watch struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewPollingSource creates a PollingSource. coarse may be nil.
func NewPollingSource(precise, coarse Provider, interval time.Duration, logger zerolog.Logger) *PollingSource {
	if precise == nil {
		precise = coarse
	}
	return &PollingSource{
		precise:  precise,
		coarse:   coarse,
		interval: interval,
		logger:   logger,
		watches:  cmap.New[*watch](),
	}
}

// GetCurrentReading performs a single reading honouring the timeout and cache age in opts.
func (s *PollingSource) GetCurrentReading(ctx context.Context, opts Options) (Location, error) {
	loc, err := s.read(ctx, opts)
	if err != nil {
		return Location{}, err
	}
	return loc, nil
}

// Watch starts polling in the background. The first reading is taken immediately.
func (s *PollingSource) Watch(opts Options, onReading ReadingFunc, onError ErrorFunc) (WatchHandle, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrSourceClosed
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &watch{ctx: ctx, cancel: cancel}
	handle := WatchHandle(uuid.NewString())
	s.watches.Set(string(handle), w)
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.runWatchLoop(w, opts, onReading, onError)
	}()

	s.logger.Debug().Str("handle", string(handle)).Dur("interval", s.interval).Msg("Watch started")
	return handle, nil
}

// Unwatch cancels a watch. It does not wait for an in-flight reading; callbacks
// of a cancelled watch are dropped.
func (s *PollingSource) Unwatch(handle WatchHandle) {
	w, ok := s.watches.Pop(string(handle))
	if !ok {
		return
	}
	w.cancel()
	s.logger.Debug().Str("handle", string(handle)).Msg("Watch cancelled")
}

// ActiveWatches returns the number of live subscriptions.
func (s *PollingSource) ActiveWatches() int {
	return s.watches.Count()
}

// Close cancels every watch, waits for the polling goroutines and closes the providers.
func (s *PollingSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for item := range s.watches.IterBuffered() {
		item.Val.cancel()
	}
	s.watches.Clear()
	s.mu.Unlock()

	s.wg.Wait()

	var errs []error
	if s.precise != nil {
		errs = append(errs, s.precise.Close())
	}
	if s.coarse != nil && s.coarse != s.precise {
		errs = append(errs, s.coarse.Close())
	}
	return errors.Join(errs...)
}

func (s *PollingSource) runWatchLoop(w *watch, opts Options, onReading ReadingFunc, onError ErrorFunc) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		loc, err := s.read(w.ctx, opts)
		if w.ctx.Err() != nil {
			return
		}
		if err != nil {
			onError(NewReadingError(err))
		} else {
			onReading(loc)
		}

		select {
		case <-ticker.C:
		case <-w.ctx.Done():
			return
		}
	}
}

func (s *PollingSource) read(ctx context.Context, opts Options) (Location, error) {
	if loc, ok := s.cachedReading(opts.MaxCachedAge); ok {
		return loc, nil
	}

	provider := s.providerFor(opts)
	if provider == nil {
		return Location{}, &ReadingError{Kind: KindPositionUnavailable, Err: errors.New("no location provider configured")}
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	loc, err := provider.GetLocation(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Location{}, &ReadingError{Kind: KindTimeout, Err: err}
		}
		return Location{}, NewReadingError(err)
	}
	if loc.Timestamp.IsZero() {
		loc.Timestamp = time.Now()
	}

	s.cacheMu.Lock()
	s.cached = loc
	s.hasCached = true
	s.cacheMu.Unlock()

	return loc, nil
}

func (s *PollingSource) cachedReading(maxAge time.Duration) (Location, bool) {
	if maxAge <= 0 {
		return Location{}, false
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if !s.hasCached || time.Since(s.cached.Timestamp) > maxAge {
		return Location{}, false
	}
	return s.cached, true
}

func (s *PollingSource) providerFor(opts Options) Provider {
	if opts.HighAccuracy || s.coarse == nil {
		return s.precise
	}
	return s.coarse
}
