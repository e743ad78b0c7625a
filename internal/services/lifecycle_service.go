package services

import (
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
)

// LifecycleService turns SIGUSR1 into a background transition and SIGUSR2
// into a foreground transition.
type LifecycleService struct {
	handler VisibilityHandler
	logger  zerolog.Logger

	signals chan os.Signal
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewLifecycleService initializes a new LifecycleService.
func NewLifecycleService(handler VisibilityHandler, logger zerolog.Logger) *LifecycleService {
	return &LifecycleService{
		handler: handler,
		logger:  logger,
	}
}

// Start begins listening for lifecycle signals.
func (ls *LifecycleService) Start() error {
	if ls.signals != nil {
		return errors.New("lifecycle service is already running")
	}

	ls.signals = make(chan os.Signal, 4)
	ls.done = make(chan struct{})
	signal.Notify(ls.signals, syscall.SIGUSR1, syscall.SIGUSR2)

	ls.wg.Add(1)
	go func() {
		defer ls.wg.Done()
		ls.run(ls.signals, ls.done)
	}()

	ls.logger.Info().Msg("LifecycleService started")
	return nil
}

// Stop stops listening and waits for the handler to return.
func (ls *LifecycleService) Stop() error {
	if ls.signals == nil {
		return errors.New("lifecycle service is not running")
	}

	signal.Stop(ls.signals)
	close(ls.done)
	ls.wg.Wait()
	ls.signals = nil

	ls.logger.Info().Msg("LifecycleService stopped")
	return nil
}

func (ls *LifecycleService) run(signals <-chan os.Signal, done <-chan struct{}) {
	for {
		select {
		case sig := <-signals:
			hidden := sig == syscall.SIGUSR1
			ls.logger.Info().Str("signal", sig.String()).Bool("hidden", hidden).Msg("Visibility changed")
			ls.handler.OnVisibilityChange(hidden)
		case <-done:
			return
		}
	}
}
