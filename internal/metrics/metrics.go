package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters for the workshop engine.
type Metrics struct {
	registry            *prometheus.Registry
	mutationsTotal      prometheus.Counter
	autosavesTotal      prometheus.Counter
	autosaveErrorsTotal prometheus.Counter
	refillEventsTotal   prometheus.Counter
	dirty               prometheus.Gauge
}

// New creates and registers the workshop metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	mutationsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "workshop_mutations_total",
		Help: "Total number of dirtying slot store mutations",
	})
	autosavesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "workshop_autosaves_total",
		Help: "Total number of successful auto-save persistence calls",
	})
	autosaveErrorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "workshop_autosave_errors_total",
		Help: "Total number of failed auto-save persistence calls",
	})
	refillEventsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "workshop_refill_events_total",
		Help: "Total number of applied refill stream events",
	})
	dirty := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "workshop_dirty",
		Help: "Whether the workshop state has unsaved edits (0 or 1)",
	})

	registry.MustRegister(mutationsTotal, autosavesTotal, autosaveErrorsTotal, refillEventsTotal, dirty)

	return &Metrics{
		registry:            registry,
		mutationsTotal:      mutationsTotal,
		autosavesTotal:      autosavesTotal,
		autosaveErrorsTotal: autosaveErrorsTotal,
		refillEventsTotal:   refillEventsTotal,
		dirty:               dirty,
	}
}

// IncMutations increments the mutation counter.
func (m *Metrics) IncMutations() { m.mutationsTotal.Inc() }

// IncAutosaves increments the successful autosave counter.
func (m *Metrics) IncAutosaves() { m.autosavesTotal.Inc() }

// IncAutosaveErrors increments the failed autosave counter.
func (m *Metrics) IncAutosaveErrors() { m.autosaveErrorsTotal.Inc() }

// IncRefillEvents increments the applied refill event counter.
func (m *Metrics) IncRefillEvents() { m.refillEventsTotal.Inc() }

// SetDirty reflects the dirty flag.
func (m *Metrics) SetDirty(dirty bool) {
	if dirty {
		m.dirty.Set(1)
	} else {
		m.dirty.Set(0)
	}
}

// Handler serves the registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
