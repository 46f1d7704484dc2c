package events

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "recordhub_events"

// Metrics is a prometheus.Collector describing bus traffic.
type Metrics struct {
	published *prometheus.CounterVec
	dropped   *prometheus.CounterVec
	active    *prometheus.GaugeVec
}

// NewMetrics returns an unregistered collector.
func NewMetrics() *Metrics {
	return &Metrics{
		published: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "published_total",
				Help:      "Events published per topic.",
			}, []string{"topic"},
		),
		dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "dropped_total",
				Help:      "Deliveries dropped because the subscriber was gone.",
			}, []string{"topic"},
		),
		active: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "subscribers",
				Help:      "Active subscriptions per topic.",
			}, []string{"topic"},
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.published.Describe(ch)
	m.dropped.Describe(ch)
	m.active.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.published.Collect(ch)
	m.dropped.Collect(ch)
	m.active.Collect(ch)
}
