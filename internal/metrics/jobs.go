package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// JobMetrics holds metrics about scheduled job runs.
type JobMetrics struct {
	// RunsTotal counts runs by job and status.
	RunsTotal *prometheus.CounterVec

	// RunDuration tracks run durations by job.
	RunDuration *prometheus.HistogramVec

	// LastSuccess is the Unix time of the last successful run of each job.
	LastSuccess *prometheus.GaugeVec
}

// DefaultJobDurationBuckets span quick storage scans to long purges.
var DefaultJobDurationBuckets = []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600}

func jobOpts() (prometheus.CounterOpts, prometheus.HistogramOpts, prometheus.GaugeOpts) {
	return prometheus.CounterOpts{
			Namespace: "housekeeper",
			Subsystem: "job",
			Name:      "runs_total",
			Help:      "Total number of job runs, broken down by job and status.",
		}, prometheus.HistogramOpts{
			Namespace: "housekeeper",
			Subsystem: "job",
			Name:      "run_duration_seconds",
			Help:      "Job run duration in seconds.",
			Buckets:   DefaultJobDurationBuckets,
		}, prometheus.GaugeOpts{
			Namespace: "housekeeper",
			Subsystem: "job",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run of each job.",
		}
}

// NewJobMetrics creates and registers job metrics.
func NewJobMetrics() *JobMetrics {
	runs, duration, last := jobOpts()
	return &JobMetrics{
		RunsTotal:   promauto.NewCounterVec(runs, []string{"job", "status"}),
		RunDuration: promauto.NewHistogramVec(duration, []string{"job"}),
		LastSuccess: promauto.NewGaugeVec(last, []string{"job"}),
	}
}

// NewJobMetricsWithRegistry creates job metrics registered with a custom registry.
func NewJobMetricsWithRegistry(reg prometheus.Registerer) *JobMetrics {
	runs, duration, last := jobOpts()
	m := &JobMetrics{
		RunsTotal:   prometheus.NewCounterVec(runs, []string{"job", "status"}),
		RunDuration: prometheus.NewHistogramVec(duration, []string{"job"}),
		LastSuccess: prometheus.NewGaugeVec(last, []string{"job"}),
	}
	reg.MustRegister(m.RunsTotal, m.RunDuration, m.LastSuccess)
	return m
}

// RecordRun records one finished run.
func (m *JobMetrics) RecordRun(job string, durationSeconds float64, success bool) {
	m.RunsTotal.WithLabelValues(job, statusLabel(success)).Inc()
	m.RunDuration.WithLabelValues(job).Observe(durationSeconds)
	if success {
		m.LastSuccess.WithLabelValues(job).Set(float64(time.Now().Unix()))
	}
}
