// Package usage computes storage usage snapshots and records them in the
// storage_stats collection.
package usage

import (
	"context"
	"fmt"
	"math"

	"github.com/livecart/housekeeper/internal/docstore"
	"github.com/livecart/housekeeper/internal/objectstore"
)

// Collection holds the append-only usage snapshots.
const Collection = "storage_stats"

// DefaultPrefix is the blob prefix whose usage is measured.
const DefaultPrefix = "live_streams/"

// GiB is 2^30 bytes.
const GiB = 1 << 30

// DefaultWarnThresholdBytes is 4.5 GiB.
const DefaultWarnThresholdBytes int64 = 9 * GiB / 2

// Snapshot is one usage measurement.
type Snapshot struct {
	TotalSizeBytes int64
	TotalSizeGB    float64
	FileCount      int
}

// BytesToGB converts bytes to GiB rounded to two decimals.
func BytesToGB(bytes int64) float64 {
	return math.Round(float64(bytes)/GiB*100) / 100
}

// Summarize totals the sizes of objects. Objects reporting no size count as 0.
func Summarize(objects []objectstore.ObjectMeta) Snapshot {
	var total int64
	for _, obj := range objects {
		if obj.Size > 0 {
			total += obj.Size
		}
	}
	return NewSnapshot(total, len(objects))
}

// NewSnapshot builds a snapshot; TotalSizeGB is always derived from bytes.
func NewSnapshot(totalBytes int64, files int) Snapshot {
	return Snapshot{
		TotalSizeBytes: totalBytes,
		TotalSizeGB:    BytesToGB(totalBytes),
		FileCount:      files,
	}
}

// Over reports whether the snapshot exceeds threshold bytes.
func (s Snapshot) Over(threshold int64) bool {
	return s.TotalSizeBytes > threshold
}

// Fields returns the document written to storage_stats. The timestamp is
// assigned by the document store.
func (s Snapshot) Fields() map[string]any {
	return map[string]any{
		"totalSizeBytes": s.TotalSizeBytes,
		"totalSizeGB":    s.TotalSizeGB,
		"fileCount":      s.FileCount,
		"timestamp":      docstore.ServerTimestamp,
	}
}

// Store appends snapshots to storage_stats.
type Store struct {
	docs docstore.Store
}

// NewStore wraps a document store.
func NewStore(docs docstore.Store) *Store {
	return &Store{docs: docs}
}

// Append writes a snapshot and returns the new document path.
func (s *Store) Append(ctx context.Context, snap Snapshot) (string, error) {
	path, err := s.docs.Add(ctx, Collection, snap.Fields())
	if err != nil {
		return "", fmt.Errorf("usage: append snapshot: %w", err)
	}
	return path, nil
}
