package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ExpiryMetrics holds metrics of the expired-stream purge.
type ExpiryMetrics struct {
	// StreamsMatched counts streams selected for purge.
	StreamsMatched prometheus.Counter

	// StreamsPurged counts streams tombstoned successfully.
	StreamsPurged prometheus.Counter

	// PurgeErrors counts streams whose purge failed; they are retried next run.
	PurgeErrors prometheus.Counter

	// ChildrenDeleted counts deleted child documents.
	// Labels: collection (comments, viewers, likes)
	ChildrenDeleted *prometheus.CounterVec

	// BlobDeleteFailures counts recorded videos that could not be deleted.
	BlobDeleteFailures prometheus.Counter
}

func expiryCounter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: "housekeeper",
		Subsystem: "expiry",
		Name:      name,
		Help:      help,
	}
}

var (
	streamsMatchedOpts  = expiryCounter("streams_matched_total", "Total number of expired streams selected for purge.")
	streamsPurgedOpts   = expiryCounter("streams_purged_total", "Total number of streams purged and marked deleted.")
	purgeErrorsOpts     = expiryCounter("purge_errors_total", "Total number of stream purges that failed.")
	childrenDeletedOpts = expiryCounter("children_deleted_total", "Total number of child documents deleted, by collection.")
	blobFailuresOpts    = expiryCounter("blob_delete_failures_total", "Total number of recorded video deletions that failed.")
)

// NewExpiryMetrics creates and registers expiry metrics.
// Uses promauto for automatic registration with the default registry.
func NewExpiryMetrics() *ExpiryMetrics {
	return &ExpiryMetrics{
		StreamsMatched:     promauto.NewCounter(streamsMatchedOpts),
		StreamsPurged:      promauto.NewCounter(streamsPurgedOpts),
		PurgeErrors:        promauto.NewCounter(purgeErrorsOpts),
		ChildrenDeleted:    promauto.NewCounterVec(childrenDeletedOpts, []string{"collection"}),
		BlobDeleteFailures: promauto.NewCounter(blobFailuresOpts),
	}
}

// NewExpiryMetricsWithRegistry creates expiry metrics registered with a custom registry.
// Useful for testing to avoid conflicts with the default registry.
func NewExpiryMetricsWithRegistry(reg prometheus.Registerer) *ExpiryMetrics {
	m := &ExpiryMetrics{
		StreamsMatched:     prometheus.NewCounter(streamsMatchedOpts),
		StreamsPurged:      prometheus.NewCounter(streamsPurgedOpts),
		PurgeErrors:        prometheus.NewCounter(purgeErrorsOpts),
		ChildrenDeleted:    prometheus.NewCounterVec(childrenDeletedOpts, []string{"collection"}),
		BlobDeleteFailures: prometheus.NewCounter(blobFailuresOpts),
	}

	reg.MustRegister(m.StreamsMatched)
	reg.MustRegister(m.StreamsPurged)
	reg.MustRegister(m.PurgeErrors)
	reg.MustRegister(m.ChildrenDeleted)
	reg.MustRegister(m.BlobDeleteFailures)

	return m
}

// RecordMatched adds n streams selected by a scan.
func (m *ExpiryMetrics) RecordMatched(n int) {
	m.StreamsMatched.Add(float64(n))
}

// RecordPurged records a successful purge.
func (m *ExpiryMetrics) RecordPurged() {
	m.StreamsPurged.Inc()
}

// RecordPurgeError records a failed purge.
func (m *ExpiryMetrics) RecordPurgeError() {
	m.PurgeErrors.Inc()
}

// RecordChildrenDeleted adds n deleted documents of a child collection.
func (m *ExpiryMetrics) RecordChildrenDeleted(collection string, n int) {
	m.ChildrenDeleted.WithLabelValues(collection).Add(float64(n))
}

// RecordBlobFailure records a recorded video that could not be deleted.
func (m *ExpiryMetrics) RecordBlobFailure() {
	m.BlobDeleteFailures.Inc()
}

// StorageMetrics holds the latest storage usage measurement.
type StorageMetrics struct {
	// TotalBytes is the summed size of objects under the monitored prefix.
	TotalBytes prometheus.Gauge

	// TotalGB is TotalBytes in GiB, rounded to two decimals.
	TotalGB prometheus.Gauge

	// FileCount is the number of objects under the monitored prefix.
	FileCount prometheus.Gauge

	// OverThreshold is 1 when usage exceeds the warning threshold.
	OverThreshold prometheus.Gauge
}

func storageGauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: "housekeeper",
		Subsystem: "storage",
		Name:      name,
		Help:      help,
	}
}

var (
	totalBytesOpts    = storageGauge("total_bytes", "Total size in bytes of objects under the monitored prefix.")
	totalGBOpts       = storageGauge("total_gb", "Total size in GiB of objects under the monitored prefix, rounded to two decimals.")
	fileCountOpts     = storageGauge("file_count", "Number of objects under the monitored prefix.")
	overThresholdOpts = storageGauge("over_threshold", "1 when storage usage exceeds the warning threshold, else 0.")
)

// NewStorageMetrics creates and registers storage usage metrics.
func NewStorageMetrics() *StorageMetrics {
	return &StorageMetrics{
		TotalBytes:    promauto.NewGauge(totalBytesOpts),
		TotalGB:       promauto.NewGauge(totalGBOpts),
		FileCount:     promauto.NewGauge(fileCountOpts),
		OverThreshold: promauto.NewGauge(overThresholdOpts),
	}
}

// NewStorageMetricsWithRegistry creates storage metrics registered with a custom registry.
func NewStorageMetricsWithRegistry(reg prometheus.Registerer) *StorageMetrics {
	m := &StorageMetrics{
		TotalBytes:    prometheus.NewGauge(totalBytesOpts),
		TotalGB:       prometheus.NewGauge(totalGBOpts),
		FileCount:     prometheus.NewGauge(fileCountOpts),
		OverThreshold: prometheus.NewGauge(overThresholdOpts),
	}
	reg.MustRegister(m.TotalBytes, m.TotalGB, m.FileCount, m.OverThreshold)
	return m
}

// RecordUsage updates the gauges from one measurement.
func (m *StorageMetrics) RecordUsage(totalBytes int64, totalGB float64, files int, overThreshold bool) {
	m.TotalBytes.Set(float64(totalBytes))
	m.TotalGB.Set(totalGB)
	m.FileCount.Set(float64(files))
	if overThreshold {
		m.OverThreshold.Set(1)
	} else {
		m.OverThreshold.Set(0)
	}
}
