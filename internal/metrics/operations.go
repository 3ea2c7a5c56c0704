package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OperationMetrics tracks latency and count of store operations, labelled by
// operation and status. One instance exists per subsystem ("docstore", "kv").
type OperationMetrics struct {
	// LatencyHistogram tracks operation latencies.
	// Labels: operation, status (success, failure)
	LatencyHistogram *prometheus.HistogramVec

	// RequestsTotal counts operations by operation and status.
	RequestsTotal *prometheus.CounterVec
}

// DefaultStoreLatencyBuckets suit database round trips, from sub-millisecond
// local calls to multi-second cloud queries.
var DefaultStoreLatencyBuckets = []float64{
	0.0005, // 0.5ms
	0.001,  // 1ms
	0.005,  // 5ms
	0.01,   // 10ms
	0.025,  // 25ms
	0.05,   // 50ms
	0.1,    // 100ms
	0.25,   // 250ms
	0.5,    // 500ms
	1.0,    // 1s
	2.5,    // 2.5s
	5.0,    // 5s
	10.0,   // 10s
}

func operationOpts(subsystem, what string) (prometheus.HistogramOpts, prometheus.CounterOpts) {
	return prometheus.HistogramOpts{
			Namespace: "housekeeper",
			Subsystem: subsystem,
			Name:      "operation_latency_seconds",
			Help:      what + " operation latency in seconds, broken down by operation and status.",
			Buckets:   DefaultStoreLatencyBuckets,
		}, prometheus.CounterOpts{
			Namespace: "housekeeper",
			Subsystem: subsystem,
			Name:      "operations_total",
			Help:      "Total number of " + what + " operations, broken down by operation and status.",
		}
}

// NewDocStoreMetrics creates and registers document store metrics.
func NewDocStoreMetrics() *OperationMetrics {
	hist, counter := operationOpts("docstore", "Document store")
	return &OperationMetrics{
		LatencyHistogram: promauto.NewHistogramVec(hist, []string{"operation", "status"}),
		RequestsTotal:    promauto.NewCounterVec(counter, []string{"operation", "status"}),
	}
}

// NewDocStoreMetricsWithRegistry creates document store metrics registered
// with a custom registry.
func NewDocStoreMetricsWithRegistry(reg prometheus.Registerer) *OperationMetrics {
	return newOperationMetricsWithRegistry(reg, "docstore", "Document store")
}

// NewKVMetrics creates and registers kv backend metrics.
func NewKVMetrics() *OperationMetrics {
	hist, counter := operationOpts("kv", "Key-value")
	return &OperationMetrics{
		LatencyHistogram: promauto.NewHistogramVec(hist, []string{"operation", "status"}),
		RequestsTotal:    promauto.NewCounterVec(counter, []string{"operation", "status"}),
	}
}

// NewKVMetricsWithRegistry creates kv metrics registered with a custom registry.
func NewKVMetricsWithRegistry(reg prometheus.Registerer) *OperationMetrics {
	return newOperationMetricsWithRegistry(reg, "kv", "Key-value")
}

func newOperationMetricsWithRegistry(reg prometheus.Registerer, subsystem, what string) *OperationMetrics {
	hist, counter := operationOpts(subsystem, what)
	latencyHist := prometheus.NewHistogramVec(hist, []string{"operation", "status"})
	requestsTotal := prometheus.NewCounterVec(counter, []string{"operation", "status"})

	reg.MustRegister(latencyHist)
	reg.MustRegister(requestsTotal)

	return &OperationMetrics{
		LatencyHistogram: latencyHist,
		RequestsTotal:    requestsTotal,
	}
}

// RecordOperation records an operation latency and increments the request counter.
func (m *OperationMetrics) RecordOperation(operation string, durationSeconds float64, success bool) {
	status := statusLabel(success)
	m.LatencyHistogram.WithLabelValues(operation, status).Observe(durationSeconds)
	m.RequestsTotal.WithLabelValues(operation, status).Inc()
}
