package gc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livecart/housekeeper/internal/docstore"
	"github.com/livecart/housekeeper/internal/logging"
	"github.com/livecart/housekeeper/internal/usage"
)

type fakeStorageMetrics struct {
	calls      int
	totalBytes int64
	totalGB    float64
	files      int
	over       bool
}

func (m *fakeStorageMetrics) RecordUsage(totalBytes int64, totalGB float64, files int, over bool) {
	m.calls++
	m.totalBytes = totalBytes
	m.totalGB = totalGB
	m.files = files
	m.over = over
}

func newMonitor(env *testEnv, m *fakeStorageMetrics) *StorageSizeMonitor {
	return NewStorageSizeMonitor(env.objects, usage.NewStore(env.docs), StorageConfig{
		Metrics: m,
		Logger:  logging.Nop(),
	})
}

func (e *testEnv) snapshots(t *testing.T) []docstore.Document {
	t.Helper()
	docs, err := e.docs.Query(context.Background(), usage.Collection, docstore.Query{})
	require.NoError(t, err)
	return docs
}

// putFiles stores n objects under prefix totalling total bytes.
func putFiles(env *testEnv, prefix string, n int, total int64) {
	each := total / int64(n)
	for i := 0; i < n; i++ {
		size := each
		if i == n-1 {
			size = total - each*int64(n-1)
		}
		env.objects.Put(prefix+string(rune('a'+i))+".mp4", size, "video/mp4")
	}
}

func TestStorageMonitorUnderThreshold(t *testing.T) {
	env := newTestEnv(t)
	putFiles(env, "live_streams/", 10, 3*usage.GiB)
	env.objects.Put("products/p1.jpg", 4*usage.GiB, "image/jpeg")

	m := &fakeStorageMetrics{}
	result, err := newMonitor(env, m).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, UsageResult{
		Success:        true,
		TotalSizeBytes: 3 * usage.GiB,
		TotalSizeGB:    3.00,
		FileCount:      10,
	}, result)

	snaps := env.snapshots(t)
	require.Len(t, snaps, 1)
	assert.Equal(t, int64(3*usage.GiB), snaps[0].Data["totalSizeBytes"])
	assert.Equal(t, 3.0, snaps[0].Data["totalSizeGB"])
	assert.Equal(t, int64(10), snaps[0].Data["fileCount"])
	assert.Equal(t, testNow, snaps[0].Data["timestamp"])

	assert.Equal(t, 1, m.calls)
	assert.False(t, m.over)
}

func TestStorageMonitorOverThreshold(t *testing.T) {
	env := newTestEnv(t)
	putFiles(env, "live_streams/", 4, 5*usage.GiB)

	m := &fakeStorageMetrics{}
	result, err := newMonitor(env, m).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.OverThreshold)
	assert.Equal(t, 5.00, result.TotalSizeGB)
	assert.Equal(t, 4, result.FileCount)
	assert.True(t, m.over)
	require.Len(t, env.snapshots(t), 1)
}

func TestStorageMonitorEmpty(t *testing.T) {
	env := newTestEnv(t)

	result, err := newMonitor(env, &fakeStorageMetrics{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, UsageResult{Success: true}, result)

	snaps := env.snapshots(t)
	require.Len(t, snaps, 1)
	assert.Equal(t, int64(0), snaps[0].Data["fileCount"])
}

func TestStorageMonitorListFailure(t *testing.T) {
	env := newTestEnv(t)
	listErr := errors.New("bucket unavailable")
	env.objects.FailList(listErr)

	m := &fakeStorageMetrics{}
	result, err := newMonitor(env, m).Run(context.Background())
	assert.ErrorIs(t, err, listErr)
	assert.False(t, result.Success)
	assert.Empty(t, env.snapshots(t))
	assert.Zero(t, m.calls)
}

func TestStorageMonitorSnapshotFailure(t *testing.T) {
	env := newTestEnv(t)
	putFiles(env, "live_streams/", 2, usage.GiB)
	addErr := errors.New("write refused")

	monitor := NewStorageSizeMonitor(env.objects,
		usage.NewStore(&failingAddStore{Store: env.docs, err: addErr}),
		StorageConfig{Logger: logging.Nop()})

	result, err := monitor.Run(context.Background())
	assert.ErrorIs(t, err, addErr)
	assert.False(t, result.Success)
	assert.Equal(t, 2, result.FileCount)
}

func TestStorageMonitorCustomPrefixAndThreshold(t *testing.T) {
	env := newTestEnv(t)
	putFiles(env, "recordings/", 3, 2*usage.GiB)
	putFiles(env, "live_streams/", 1, 100)

	monitor := NewStorageSizeMonitor(env.objects, usage.NewStore(env.docs), StorageConfig{
		Prefix:             "recordings/",
		WarnThresholdBytes: usage.GiB,
		Logger:             logging.Nop(),
	})
	result, err := monitor.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.FileCount)
	assert.Equal(t, 2.00, result.TotalSizeGB)
	assert.True(t, result.OverThreshold)
}
