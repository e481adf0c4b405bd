package metrics

import "github.com/prometheus/client_golang/prometheus"

// initEventBusMetrics registers the counters/gauge backing the
// eventbus.Telemetry interface: publish outcomes, retries, and
// degraded-mode transitions for the bus/pubsub dispatch adapters'
// transport.
func (m *Manager) initEventBusMetrics() {
	m.eventBusPublish = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_bus_publish_total",
			Help: "Total event bus publish attempts by status",
		},
		[]string{"status"},
	)

	m.eventBusRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "event_bus_publish_retries_total",
			Help: "Total number of event-bus publish retries",
		},
	)

	m.eventBusDegraded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "event_bus_degraded",
			Help: "Whether the event-bus transport is currently in degraded mode (1=degraded)",
		},
	)

	m.eventBusOutages = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "event_bus_outages_total",
			Help: "Total event-bus outage transitions",
		},
	)

	m.eventBusRecoveries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "event_bus_recoveries_total",
			Help: "Total event-bus recovery transitions",
		},
	)

	m.registry.MustRegister(m.eventBusPublish)
	m.registry.MustRegister(m.eventBusRetries)
	m.registry.MustRegister(m.eventBusDegraded)
	m.registry.MustRegister(m.eventBusOutages)
	m.registry.MustRegister(m.eventBusRecoveries)
}

// RecordPublish records event-bus publish status. Satisfies eventbus.Telemetry.
func (m *Manager) RecordPublish(status string) {
	if !m.enabled {
		return
	}
	m.eventBusPublish.WithLabelValues(status).Inc()
}

// RecordRetry records an event-bus publish retry. Satisfies eventbus.Telemetry.
func (m *Manager) RecordRetry() {
	if !m.enabled {
		return
	}
	m.eventBusRetries.Inc()
}

// SetDegradedMode sets the event-bus degraded state gauge. Satisfies eventbus.Telemetry.
func (m *Manager) SetDegradedMode(active bool) {
	if !m.enabled {
		return
	}
	if active {
		m.eventBusDegraded.Set(1)
		return
	}
	m.eventBusDegraded.Set(0)
}

// RecordOutage records a degraded-mode transition into outage state. Satisfies eventbus.Telemetry.
func (m *Manager) RecordOutage() {
	if !m.enabled {
		return
	}
	m.eventBusOutages.Inc()
}

// RecordRecovery records a degraded-mode recovery transition. Satisfies eventbus.Telemetry.
func (m *Manager) RecordRecovery() {
	if !m.enabled {
		return
	}
	m.eventBusRecoveries.Inc()
}
