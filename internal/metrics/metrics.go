// Package metrics exposes Prometheus collectors for the notification core.
// The global instance is optional; library code records through nil-safe
// helpers so embedding applications can run without metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	global   *Metrics
	globalMu sync.RWMutex
)

// Metrics holds all Prometheus metrics for notification processing
type Metrics struct {
	// Rendering counters
	RendersTotal        prometheus.Counter
	RenderFailuresTotal prometheus.Counter

	// State machine counters
	TransitionsTotal         *prometheus.CounterVec
	TransitionsRejectedTotal *prometheus.CounterVec

	// Recipient discovery
	RecipientsDiscoveredTotal prometheus.Counter

	registry *prometheus.Registry
}

// New creates a Metrics instance with all collectors registered on a fresh
// registry
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RendersTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "notices_renders_total",
				Help: "Total number of successful template renders",
			},
		),
		RenderFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "notices_render_failures_total",
				Help: "Total number of failed template renders",
			},
		),
		TransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notices_transitions_total",
				Help: "Total number of committed notification status transitions",
			},
			[]string{"from", "to"},
		),
		TransitionsRejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notices_transitions_rejected_total",
				Help: "Total number of rejected notification status transitions",
			},
			[]string{"reason"},
		),
		RecipientsDiscoveredTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "notices_recipients_discovered_total",
				Help: "Total number of recipient contacts discovered",
			},
		),
		registry: reg,
	}

	reg.MustRegister(
		m.RendersTotal,
		m.RenderFailuresTotal,
		m.TransitionsTotal,
		m.TransitionsRejectedTotal,
		m.RecipientsDiscoveredTotal,
	)
	return m
}

// Registry returns the registry holding this instance's collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// SetGlobal installs m as the instance the package helpers record to
func SetGlobal(m *Metrics) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = m
}

// Global returns the installed instance, or nil when metrics are disabled
func Global() *Metrics {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

// Rendered records a successful render
func Rendered() {
	if m := Global(); m != nil {
		m.RendersTotal.Inc()
	}
}

// RenderFailed records a failed render
func RenderFailed() {
	if m := Global(); m != nil {
		m.RenderFailuresTotal.Inc()
	}
}

// Transition records a committed status transition
func Transition(from, to string) {
	if m := Global(); m != nil {
		m.TransitionsTotal.WithLabelValues(from, to).Inc()
	}
}

// TransitionRejected records a rejected status transition
func TransitionRejected(reason string) {
	if m := Global(); m != nil {
		m.TransitionsRejectedTotal.WithLabelValues(reason).Inc()
	}
}

// RecipientsDiscovered records discovered recipient contacts
func RecipientsDiscovered(count int) {
	if m := Global(); m != nil {
		m.RecipientsDiscoveredTotal.Add(float64(count))
	}
}
