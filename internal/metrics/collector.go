package metrics

import (
	"github.com/benmeehan/geo-alarm/internal/monitor"
	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"
)

// Collector counts monitor events and exposes the alarm state.
type Collector struct {
	registry *prom.Registry

	events      *prom.CounterVec
	watchErrors *prom.CounterVec
	state       prom.Gauge
	radius      prom.Gauge
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prom.NewRegistry(),
		events: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "geoalarm",
			Name:      "events_total",
			Help:      "Alarm events emitted by the proximity monitor",
		}, []string{"event"}),
		watchErrors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "geoalarm",
			Name:      "watch_errors_total",
			Help:      "Location watch failures by kind",
		}, []string{"kind"}),
		state: prom.NewGauge(prom.GaugeOpts{
			Namespace: "geoalarm",
			Name:      "state",
			Help:      "Alarm state after the last event (0 idle, 1 armed, 2 triggered)",
		}),
		radius: prom.NewGauge(prom.GaugeOpts{
			Namespace: "geoalarm",
			Name:      "radius_meters",
			Help:      "Current alarm radius",
		}),
	}

	c.registry.MustRegister(c.events, c.watchErrors, c.radius, c.state)
	c.registry.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
	return c
}

// Notify records evt.
func (c *Collector) Notify(evt monitor.Event) {
	c.events.WithLabelValues(string(evt.Kind)).Inc()
	c.state.Set(float64(evt.State))
	if evt.Kind == monitor.EventWatchError {
		c.watchErrors.WithLabelValues(string(evt.ErrorKind)).Inc()
	}
	if evt.Radius > 0 {
		c.radius.Set(float64(evt.Radius))
	}
}

// Registry returns the registry backing the collector.
func (c *Collector) Registry() *prom.Registry {
	return c.registry
}
