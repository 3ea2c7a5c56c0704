package gc

import (
	"context"

	"github.com/livecart/housekeeper/internal/logging"
	"github.com/livecart/housekeeper/internal/objectstore"
	"github.com/livecart/housekeeper/internal/usage"
)

// StorageConfig configures a StorageSizeMonitor.
type StorageConfig struct {
	// Prefix is the object prefix to measure. Default: "live_streams/".
	Prefix string

	// WarnThresholdBytes triggers a warning when exceeded. Default: 4.5 GiB.
	WarnThresholdBytes int64

	// Metrics receives usage gauges. Optional.
	Metrics StorageMetricsRecorder

	// Logger is used when the context carries no logger. Optional.
	Logger *logging.Logger
}

// UsageResult is the outcome of one storage measurement.
type UsageResult struct {
	Success        bool    `json:"success"`
	TotalSizeBytes int64   `json:"totalSizeBytes"`
	TotalSizeGB    float64 `json:"totalSizeGB"`
	FileCount      int     `json:"fileCount"`
	OverThreshold  bool    `json:"overThreshold"`
}

// StorageSizeMonitor measures recorded video storage and records snapshots.
type StorageSizeMonitor struct {
	obj    objectstore.Store
	stats  *usage.Store
	config StorageConfig
}

// NewStorageSizeMonitor creates a StorageSizeMonitor.
func NewStorageSizeMonitor(obj objectstore.Store, stats *usage.Store, config StorageConfig) *StorageSizeMonitor {
	if config.Prefix == "" {
		config.Prefix = usage.DefaultPrefix
	}
	if config.WarnThresholdBytes <= 0 {
		config.WarnThresholdBytes = usage.DefaultWarnThresholdBytes
	}
	if config.Metrics == nil {
		config.Metrics = nopStorageMetrics{}
	}
	return &StorageSizeMonitor{
		obj:    obj,
		stats:  stats,
		config: config,
	}
}

// Run lists the prefix, sums sizes and appends a snapshot. Any failure is
// logged and returned; a listing failure writes no snapshot.
func (m *StorageSizeMonitor) Run(ctx context.Context) (UsageResult, error) {
	log := logging.FromCtx(ctx, m.config.Logger)
	log.Infof("monitoring storage size", map[string]any{"prefix": m.config.Prefix})

	objects, err := m.obj.List(ctx, m.config.Prefix)
	if err != nil {
		log.Errorf("error monitoring storage", map[string]any{"error": err.Error()})
		return UsageResult{}, err
	}

	snap := usage.Summarize(objects)
	over := snap.Over(m.config.WarnThresholdBytes)
	m.config.Metrics.RecordUsage(snap.TotalSizeBytes, snap.TotalSizeGB, snap.FileCount, over)

	log.Infof("total live streams storage", map[string]any{
		"totalSizeGB": snap.TotalSizeGB,
		"fileCount":   snap.FileCount,
	})
	if over {
		log.Warnf("storage usage over threshold", map[string]any{
			"totalSizeBytes": snap.TotalSizeBytes,
			"thresholdBytes": m.config.WarnThresholdBytes,
		})
	}

	result := UsageResult{
		TotalSizeBytes: snap.TotalSizeBytes,
		TotalSizeGB:    snap.TotalSizeGB,
		FileCount:      snap.FileCount,
		OverThreshold:  over,
	}

	if _, err := m.stats.Append(ctx, snap); err != nil {
		log.Errorf("error monitoring storage", map[string]any{"error": err.Error()})
		return result, err
	}

	result.Success = true
	return result, nil
}
