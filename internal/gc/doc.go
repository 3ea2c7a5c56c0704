// Package gc implements the housekeeping jobs that remove expired live
// streams and account for recorded video storage.
//
// # Expired streams
//
// [ExpiryScanner] selects streams that have ended, have auto-delete enabled
// and whose deleteAt has passed, and hands each one to [StreamPurger]. A
// failed purge is logged and counted; the stream keeps its status and is
// picked up again by the next run.
//
// [StreamPurger] works through one stream in three steps:
//
//  1. Delete the recorded video named by recordedVideoUrl. Failures are
//     logged and never stop the purge.
//  2. Drain the comments, viewers and likes subcollections in batches of at
//     most 500 documents until a fetch returns nothing.
//  3. Mark the stream deleted: status "deleted", recordedVideoUrl removed,
//     deletedAt set by the server.
//
// Every step is idempotent, so a purge interrupted halfway is finished by a
// later run.
//
// # Storage usage
//
// [StorageSizeMonitor] sums the sizes of objects under live_streams/,
// appends a snapshot to storage_stats and warns above 4.5 GiB.
//
// # Usage
//
//	purger := gc.NewStreamPurger(streamStore, objStore, gc.PurgerConfig{Logger: logger})
//	scanner := gc.NewExpiryScanner(streamStore, purger, gc.ExpiryConfig{Logger: logger})
//	result, err := scanner.Run(ctx)
package gc

import "time"

// ExpiryMetricsRecorder records expiry job metrics.
// This keeps the gc package decoupled from the metrics package.
type ExpiryMetricsRecorder interface {
	RecordMatched(n int)
	RecordPurged()
	RecordPurgeError()
	RecordChildrenDeleted(collection string, n int)
	RecordBlobFailure()
}

// StorageMetricsRecorder records storage usage metrics.
type StorageMetricsRecorder interface {
	RecordUsage(totalBytes int64, totalGB float64, files int, overThreshold bool)
}

type nopExpiryMetrics struct{}

func (nopExpiryMetrics) RecordMatched(int) {}
func (nopExpiryMetrics) RecordPurged() {}
func (nopExpiryMetrics) RecordPurgeError() {}
func (nopExpiryMetrics) RecordChildrenDeleted(string, int) {}
func (nopExpiryMetrics) RecordBlobFailure() {}

type nopStorageMetrics struct{}

func (nopStorageMetrics) RecordUsage(int64, float64, int, bool) {}

func defaultNow(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}
