package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespacePrefix = "nowdrop"

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Namespace metrics
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	UploadBytes       prometheus.Counter

	// Account metrics
	Logins       *prometheus.CounterVec
	ChatMessages prometheus.Counter

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time
}

// NewMetrics creates a metrics collector on its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespacePrefix,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespacePrefix,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespacePrefix,
				Name:      "http_request_size_bytes",
				Help:      "HTTP request size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespacePrefix,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),

		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespacePrefix,
				Name:      "namespace_operations_total",
				Help:      "Total number of file namespace operations",
			},
			[]string{"op", "outcome"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespacePrefix,
				Name:      "namespace_operation_duration_seconds",
				Help:      "File namespace operation duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5, 30, 120},
			},
			[]string{"op"},
		),
		UploadBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespacePrefix,
				Name:      "upload_bytes_total",
				Help:      "Total number of bytes stored by uploads",
			},
		),

		Logins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespacePrefix,
				Name:      "logins_total",
				Help:      "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		ChatMessages: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespacePrefix,
				Name:      "chat_messages_total",
				Help:      "Total number of chat messages posted",
			},
		),
	}

	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespacePrefix,
			Name:      "uptime_seconds",
			Help:      "Seconds since the server started",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
}

// RecordNamespaceOperation records one file namespace operation.
func (m *Metrics) RecordNamespaceOperation(op, outcome string, d time.Duration) {
	m.OperationsTotal.WithLabelValues(op, outcome).Inc()
	m.OperationDuration.WithLabelValues(op).Observe(d.Seconds())
}

// RecordUploadBytes adds n stored bytes.
func (m *Metrics) RecordUploadBytes(n int64) {
	m.UploadBytes.Add(float64(n))
}

// RecordLogin counts a login attempt.
func (m *Metrics) RecordLogin(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

// IncChatMessages counts a posted chat message.
func (m *Metrics) IncChatMessages() {
	m.ChatMessages.Inc()
}
