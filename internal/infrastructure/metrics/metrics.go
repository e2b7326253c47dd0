package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the gateway's Prometheus collectors. It uses its own
// registry so repeated construction (tests, embedded use) never trips the
// default registry's duplicate registration panic.
type Metrics struct {
	registry *prometheus.Registry

	ActiveConnections   *prometheus.GaugeVec
	RejectedConnections *prometheus.CounterVec
	PublishedEvents     *prometheus.CounterVec
	DroppedEvents       *prometheus.CounterVec
	StoreCallDuration   *prometheus.HistogramVec
	HTTPRequestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		ActiveConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gateway",
			Name:      "active_connections",
			Help:      "Currently joined connections per room kind.",
		}, []string{"kind"}),
		RejectedConnections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gateway",
			Name:      "rejected_connections_total",
			Help:      "Connection attempts rejected during join.",
		}, []string{"kind", "reason"}),
		PublishedEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gateway",
			Name:      "published_events_total",
			Help:      "Events published into rooms.",
		}, []string{"kind"}),
		DroppedEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gateway",
			Name:      "dropped_events_total",
			Help:      "Events dropped because a subscriber buffer was full.",
		}, []string{"kind"}),
		StoreCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gateway",
			Name:      "store_call_duration_seconds",
			Help:      "Latency of persistence adapter calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gateway",
			Name:      "http_request_duration_seconds",
			Help:      "Latency of plain HTTP requests (health, metrics, swagger).",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ActiveConnections,
		m.RejectedConnections,
		m.PublishedEvents,
		m.DroppedEvents,
		m.StoreCallDuration,
		m.HTTPRequestDuration,
	)

	return m
}

// Handler exposes the registry for the /metrics route.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
