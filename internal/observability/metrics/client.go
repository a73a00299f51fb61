package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ClientMetrics instruments the outbound API boundary and the batch poller.
// All methods are nil-safe so instrumentation stays optional.
type ClientMetrics struct {
	registry *prometheus.Registry

	requestTotal      *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	unauthorizedTotal prometheus.Counter
	pollTicksTotal    *prometheus.CounterVec
	uploadsTotal      *prometheus.CounterVec
}

func NewClientMetrics(service string) *ClientMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "barema",
			Subsystem:   "api",
			Name:        "requests_total",
			Help:        "Total API requests issued.",
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{"operation", "method", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "barema",
			Subsystem:   "api",
			Name:        "request_duration_seconds",
			Help:        "API request duration in seconds.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{"operation", "method"},
	)
	unauthorizedTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   "barema",
			Subsystem:   "api",
			Name:        "unauthorized_total",
			Help:        "Responses that forced a session reset.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	pollTicksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "barema",
			Subsystem:   "batch",
			Name:        "poll_ticks_total",
			Help:        "Batch status poll ticks by outcome.",
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{"outcome"},
	)
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "barema",
			Subsystem:   "upload",
			Name:        "files_total",
			Help:        "Files submitted by kind and outcome.",
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{"kind", "outcome"},
	)

	registry.MustRegister(requestTotal, requestDuration, unauthorizedTotal, pollTicksTotal, uploadsTotal)

	return &ClientMetrics{
		registry:          registry,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		unauthorizedTotal: unauthorizedTotal,
		pollTicksTotal:    pollTicksTotal,
		uploadsTotal:      uploadsTotal,
	}
}

func (m *ClientMetrics) ObserveRequest(operation, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.WithLabelValues(operation, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(operation, method).Observe(elapsed.Seconds())
}

func (m *ClientMetrics) RecordUnauthorized() {
	if m == nil {
		return
	}
	m.unauthorizedTotal.Inc()
}

func (m *ClientMetrics) RecordPollTick(outcome string) {
	if m == nil {
		return
	}
	m.pollTicksTotal.WithLabelValues(outcome).Inc()
}

func (m *ClientMetrics) RecordUpload(kind, outcome string) {
	if m == nil {
		return
	}
	m.uploadsTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *ClientMetrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
