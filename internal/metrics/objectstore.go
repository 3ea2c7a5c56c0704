package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ObjectStoreMetrics holds metrics related to object store operations.
type ObjectStoreMetrics struct {
	// LatencyHistogram tracks object store operation latencies broken down by operation and status.
	// Labels: operation (delete, list), status (success, failure)
	LatencyHistogram *prometheus.HistogramVec

	// RequestsTotal tracks total object store operations by operation and status.
	RequestsTotal *prometheus.CounterVec

	// ObjectsListed counts objects returned by successful List calls.
	ObjectsListed prometheus.Counter
}

// Object store operation label values.
const (
	OpObjDelete = "delete"
	OpObjList   = "list"
)

// DefaultObjectStoreLatencyBuckets are latency buckets for object store operations.
// Listing a large prefix pages through many responses, hence the long tail.
var DefaultObjectStoreLatencyBuckets = []float64{
	0.005, // 5ms
	0.01,  // 10ms
	0.025, // 25ms
	0.05,  // 50ms
	0.1,   // 100ms
	0.25,  // 250ms
	0.5,   // 500ms
	1.0,   // 1s
	2.5,   // 2.5s
	5.0,   // 5s
	10.0,  // 10s
	30.0,  // 30s
	60.0,  // 60s
	300.0, // 5m
}

func objectStoreOpts() (prometheus.HistogramOpts, prometheus.CounterOpts, prometheus.CounterOpts) {
	return prometheus.HistogramOpts{
			Namespace: "housekeeper",
			Subsystem: "objectstore",
			Name:      "operation_latency_seconds",
			Help:      "Object store operation latency in seconds, broken down by operation and status.",
			Buckets:   DefaultObjectStoreLatencyBuckets,
		}, prometheus.CounterOpts{
			Namespace: "housekeeper",
			Subsystem: "objectstore",
			Name:      "operations_total",
			Help:      "Total number of object store operations, broken down by operation and status.",
		}, prometheus.CounterOpts{
			Namespace: "housekeeper",
			Subsystem: "objectstore",
			Name:      "objects_listed_total",
			Help:      "Total number of objects returned by list operations.",
		}
}

// NewObjectStoreMetrics creates and registers object store metrics.
// Uses promauto for automatic registration with the default registry.
func NewObjectStoreMetrics() *ObjectStoreMetrics {
	hist, requests, listed := objectStoreOpts()
	return &ObjectStoreMetrics{
		LatencyHistogram: promauto.NewHistogramVec(hist, []string{"operation", "status"}),
		RequestsTotal:    promauto.NewCounterVec(requests, []string{"operation", "status"}),
		ObjectsListed:    promauto.NewCounter(listed),
	}
}

// NewObjectStoreMetricsWithRegistry creates object store metrics registered with a custom registry.
// Useful for testing to avoid conflicts with the default registry.
func NewObjectStoreMetricsWithRegistry(reg prometheus.Registerer) *ObjectStoreMetrics {
	hist, requests, listed := objectStoreOpts()
	latencyHist := prometheus.NewHistogramVec(hist, []string{"operation", "status"})
	requestsTotal := prometheus.NewCounterVec(requests, []string{"operation", "status"})
	objectsListed := prometheus.NewCounter(listed)

	reg.MustRegister(latencyHist)
	reg.MustRegister(requestsTotal)
	reg.MustRegister(objectsListed)

	return &ObjectStoreMetrics{
		LatencyHistogram: latencyHist,
		RequestsTotal:    requestsTotal,
		ObjectsListed:    objectsListed,
	}
}

// RecordOperation records an object store operation latency and increments the request counter.
func (m *ObjectStoreMetrics) RecordOperation(operation string, durationSeconds float64, success bool) {
	status := statusLabel(success)
	m.LatencyHistogram.WithLabelValues(operation, status).Observe(durationSeconds)
	m.RequestsTotal.WithLabelValues(operation, status).Inc()
}

// RecordDelete records a Delete operation.
func (m *ObjectStoreMetrics) RecordDelete(durationSeconds float64, success bool) {
	m.RecordOperation(OpObjDelete, durationSeconds, success)
}

// RecordList records a List operation and the number of objects it returned.
func (m *ObjectStoreMetrics) RecordList(durationSeconds float64, success bool, objects int) {
	m.RecordOperation(OpObjList, durationSeconds, success)
	if success && objects > 0 {
		m.ObjectsListed.Add(float64(objects))
	}
}
