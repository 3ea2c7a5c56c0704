// Package metrics provides Prometheus metrics for the housekeeping jobs.
//
// This package exposes:
//   - Job runs by job and outcome, run duration, time of last success
//   - Expiry scan counters: streams matched, purged, failed, children
//     deleted per collection, blob deletions that failed
//   - Storage usage gauges: bytes, GB, files, over-threshold flag
//   - Operation latency for the document store, the kv backend and the
//     object store
//
// Every constructor has a WithRegistry variant for tests. The metrics are
// served on /metrics by the HTTP server.
//
// Usage:
//
//	jobMetrics := metrics.NewJobMetrics()
//	expiryMetrics := metrics.NewExpiryMetrics()
//
//	scanner := gc.NewExpiryScanner(streamStore, purger, gc.ExpiryConfig{Metrics: expiryMetrics})
//	sched := scheduler.New(loc, logger, scheduler.WithMetrics(jobMetrics))
package metrics

// Status label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

func statusLabel(success bool) string {
	if success {
		return StatusSuccess
	}
	return StatusFailure
}
