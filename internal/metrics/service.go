package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Service serves the collector's registry on /metrics.
type Service struct {
	address   string
	collector *Collector
	logger    zerolog.Logger

	server *http.Server
	addr   string
	wg     sync.WaitGroup
}

// NewService creates a metrics HTTP service.
func NewService(address string, collector *Collector, logger zerolog.Logger) *Service {
	return &Service{
		address:   address,
		collector: collector,
		logger:    logger,
	}
}

// Start binds the listener and serves in the background.
func (s *Service) Start() error {
	if s.server != nil {
		return errors.New("metrics service is already running")
	}

	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		s.logger.Error().Err(err).Str("address", s.address).Msg("Failed to bind metrics listener")
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.collector.Registry(), promhttp.HandlerOpts{}))
	s.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	s.addr = listener.Addr().String()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Metrics server stopped unexpectedly")
		}
	}()

	s.logger.Info().Str("address", s.addr).Msg("MetricsService started")
	return nil
}

// Addr returns the bound listen address while the service runs.
func (s *Service) Addr() string {
	return s.addr
}

// Stop shuts the server down.
func (s *Service) Stop() error {
	if s.server == nil {
		return errors.New("metrics service is not running")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	s.wg.Wait()
	s.server = nil

	s.logger.Info().Msg("MetricsService stopped")
	return err
}
