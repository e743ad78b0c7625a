package service_registry

import (
	"errors"
	"fmt"

	"github.com/benmeehan/geo-alarm/internal/metrics"
	"github.com/benmeehan/geo-alarm/internal/monitor"
	"github.com/benmeehan/geo-alarm/internal/notifier"
	"github.com/benmeehan/geo-alarm/internal/services"
	"github.com/benmeehan/geo-alarm/internal/utils"
	"github.com/benmeehan/geo-alarm/pkg/identity"
	"github.com/benmeehan/geo-alarm/pkg/mqtt"
	"github.com/rs/zerolog"
)

// Service is the interface for all plug-in services
type Service interface {
	Start() error
	Stop() error
}

// Dependencies are the shared components services are built from.
type Dependencies struct {
	MQTTClient mqtt.MQTTClient
	DeviceInfo identity.DeviceInfoInterface
	Monitor    *monitor.Monitor
	Policy     *monitor.SuspensionPolicy
	Collector  *metrics.Collector
	Sound      *notifier.CommandNotifier
}

// ServiceRegistry manages the lifecycle of various services in the system.
type ServiceRegistry struct {
	services    map[string]Service // Stores registered services
	serviceKeys []string           // Maintains order of service registration
	Logger      zerolog.Logger
}

// NewServiceRegistry initializes an empty service registry.
func NewServiceRegistry(logger zerolog.Logger) *ServiceRegistry {
	return &ServiceRegistry{
		services: make(map[string]Service),
		Logger:   logger,
	}
}

// RegisterService adds a new service to the registry.
func (sr *ServiceRegistry) RegisterService(name string, svc Service) {
	if _, exists := sr.services[name]; exists {
		sr.Logger.Warn().Msgf("Service %s is already registered", name)
		return
	}
	sr.services[name] = svc
	sr.serviceKeys = append(sr.serviceKeys, name)
	sr.Logger.Info().Msgf("Registered service: %s", name)
}

// Names returns the registered service names in start order.
func (sr *ServiceRegistry) Names() []string {
	return append([]string(nil), sr.serviceKeys...)
}

// StartServices initiates all registered services in order.
// If a service fails to start, it stops already started services.
func (sr *ServiceRegistry) StartServices() error {
	startedServices := []string{}

	for _, name := range sr.serviceKeys {
		svc := sr.services[name]
		sr.Logger.Info().Msgf("Starting service: %s", name)
		if err := svc.Start(); err != nil {
			sr.Logger.Error().Err(err).Msgf("Failed to start service: %s", name)

			sr.Logger.Warn().Msg("Stopping already started services due to startup failure...")
			for i := len(startedServices) - 1; i >= 0; i-- {
				_ = sr.services[startedServices[i]].Stop()
			}
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		startedServices = append(startedServices, name)
	}

	return nil
}

// StopServices stops all services in reverse order.
func (sr *ServiceRegistry) StopServices() error {
	var stopErrors []error
	for i := len(sr.serviceKeys) - 1; i >= 0; i-- {
		name := sr.serviceKeys[i]
		if err := sr.services[name].Stop(); err != nil {
			stopErrors = append(stopErrors, fmt.Errorf("failed to stop %s: %w", name, err))
		}
	}
	if len(stopErrors) > 0 {
		for _, e := range stopErrors {
			sr.Logger.Error().Err(e).Msg("Service stop failure")
		}
		return errors.Join(stopErrors...)
	}
	return nil
}

// RegisterServices initializes and registers enabled services based on configuration.
func (sr *ServiceRegistry) RegisterServices(config *utils.Config, deps Dependencies) error {
	servicesInOrder := []struct {
		name        string
		enabled     bool
		constructor func() (Service, error)
	}{
		{
			name:    "metrics",
			enabled: config.Services.Metrics.Enabled,
			constructor: func() (Service, error) {
				if deps.Collector == nil {
					return nil, errors.New("metrics collector is not configured")
				}
				return metrics.NewService(config.Services.Metrics.Address, deps.Collector, sr.Logger), nil
			},
		},
		{
			name:    "control",
			enabled: config.Services.Control.Enabled,
			constructor: func() (Service, error) {
				if deps.MQTTClient == nil {
					return nil, errors.New("control service requires an MQTT client")
				}
				var visibility services.VisibilityHandler
				if deps.Policy != nil {
					visibility = deps.Policy
				}
				var silencer services.Silencer
				if deps.Sound != nil {
					silencer = deps.Sound
				}
				return services.NewControlService(
					config.Services.Control.Topic,
					config.Services.Control.QOS,
					deps.Monitor,
					visibility,
					silencer,
					deps.MQTTClient,
					deps.DeviceInfo,
					sr.Logger,
				), nil
			},
		},
		{
			name:    "status",
			enabled: config.Services.Status.Enabled,
			constructor: func() (Service, error) {
				if deps.MQTTClient == nil {
					return nil, errors.New("status service requires an MQTT client")
				}
				return services.NewStatusService(
					config.Services.Status.Topic,
					config.Services.Status.Interval,
					config.Services.Status.QOS,
					deps.Monitor,
					deps.DeviceInfo,
					deps.MQTTClient,
					sr.Logger,
				), nil
			},
		},
		{
			name:    "lifecycle",
			enabled: config.Services.Lifecycle.Enabled,
			constructor: func() (Service, error) {
				if deps.Policy == nil {
					return nil, errors.New("lifecycle service requires a suspension policy")
				}
				return services.NewLifecycleService(deps.Policy, sr.Logger), nil
			},
		},
	}

	registeredServices := []string{}
	for _, svc := range servicesInOrder {
		if svc.enabled {
			serviceInstance, err := svc.constructor()
			if err != nil {
				sr.Logger.Error().Err(err).Msgf("Failed to create %s service", svc.name)
				return err
			}
			sr.RegisterService(svc.name, serviceInstance)
			registeredServices = append(registeredServices, svc.name)
		}
	}

	sr.Logger.Info().Msgf("Registered services in order: %v", registeredServices)
	return nil
}
