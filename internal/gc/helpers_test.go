package gc

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/livecart/housekeeper/internal/docstore"
	"github.com/livecart/housekeeper/internal/docstore/kvdoc"
	"github.com/livecart/housekeeper/internal/kv"
	"github.com/livecart/housekeeper/internal/logging"
	"github.com/livecart/housekeeper/internal/objectstore"
	"github.com/livecart/housekeeper/internal/streams"
)

var testNow = time.Date(2026, 3, 8, 20, 0, 0, 0, time.UTC)

const testVideoURL = "https://firebasestorage.googleapis.com/v0/b/shop.appspot.com/o/live_streams%2Fs1.mp4?alt=media&token=abc"

type testEnv struct {
	docs    *kvdoc.Store
	objects *objectstore.MemoryStore
	streams *streams.Store
	metrics *fakeExpiryMetrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	docs := kvdoc.New(kv.NewMemoryStore(), kvdoc.WithClock(func() time.Time { return testNow }))
	return &testEnv{
		docs:    docs,
		objects: objectstore.NewMemoryStore(),
		streams: streams.NewStore(docs),
		metrics: &fakeExpiryMetrics{children: make(map[string]int)},
	}
}

func (e *testEnv) purger(batchSize int) *StreamPurger {
	return NewStreamPurger(e.streams, e.objects, PurgerConfig{
		BatchSize: batchSize,
		Metrics:   e.metrics,
		Logger:    logging.Nop(),
	})
}

func (e *testEnv) scanner(p Purger) *ExpiryScanner {
	return NewExpiryScanner(e.streams, p, ExpiryConfig{
		Now:     func() time.Time { return testNow },
		Metrics: e.metrics,
		Logger:  logging.Nop(),
	})
}

// addStream writes a stream document and returns its path.
func (e *testEnv) addStream(t *testing.T, data map[string]any) string {
	t.Helper()
	path, err := e.docs.Add(context.Background(), streams.Collection, data)
	require.NoError(t, err)
	return path
}

// expiredStream returns the fields of a stream due for purge at testNow.
func expiredStream() map[string]any {
	return map[string]any{
		streams.FieldStatus:            string(streams.StatusEnded),
		streams.FieldAutoDeleteEnabled: true,
		streams.FieldDeleteAt:          testNow.Add(-24 * time.Hour),
		streams.FieldCreatedAt:         testNow.Add(-8 * 24 * time.Hour),
	}
}

func (e *testEnv) addChildren(t *testing.T, streamPath, child string, n int) {
	t.Helper()
	coll := docstore.ChildCollection(streamPath, child)
	for i := 0; i < n; i++ {
		_, err := e.docs.Add(context.Background(), coll, map[string]any{"n": i})
		require.NoError(t, err)
	}
}

func (e *testEnv) countChildren(t *testing.T, streamPath, child string) int {
	t.Helper()
	docs, err := e.docs.Query(context.Background(), docstore.ChildCollection(streamPath, child), docstore.Query{})
	require.NoError(t, err)
	return len(docs)
}

func (e *testEnv) load(t *testing.T, path string) map[string]any {
	t.Helper()
	docs, err := e.docs.Query(context.Background(), streams.Collection, docstore.Query{})
	require.NoError(t, err)
	for _, d := range docs {
		if d.Path == path {
			return d.Data
		}
	}
	t.Fatalf("document %s not found", path)
	return nil
}

func (e *testEnv) record(t *testing.T, path string) streams.Record {
	t.Helper()
	return streams.FromDocument(docstore.Document{ID: docstore.ID(path), Path: path, Data: e.load(t, path)})
}

type fakeExpiryMetrics struct {
	mu           sync.Mutex
	matched      int
	purged       int
	purgeErrors  int
	blobFailures int
	children     map[string]int
}

func (m *fakeExpiryMetrics) RecordMatched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matched += n
}

func (m *fakeExpiryMetrics) RecordPurged() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purged++
}

func (m *fakeExpiryMetrics) RecordPurgeError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purgeErrors++
}

func (m *fakeExpiryMetrics) RecordChildrenDeleted(collection string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.children[collection] += n
}

func (m *fakeExpiryMetrics) RecordBlobFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobFailures++
}

// failingPurger fails for selected stream IDs and delegates otherwise.
type failingPurger struct {
	next Purger
	fail map[string]bool

	mu    sync.Mutex
	calls []string
}

func (p *failingPurger) Purge(ctx context.Context, r streams.Record) (PurgeResult, error) {
	p.mu.Lock()
	p.calls = append(p.calls, r.ID)
	p.mu.Unlock()

	if p.fail[r.ID] {
		return PurgeResult{StreamID: r.ID}, fmt.Errorf("purge %s: simulated failure", r.ID)
	}
	return p.next.Purge(ctx, r)
}

// failingQueryStore fails every Query.
type failingQueryStore struct {
	docstore.Store
	err error
}

func (s *failingQueryStore) Query(context.Context, string, docstore.Query) ([]docstore.Document, error) {
	return nil, s.err
}

// failingAddStore fails every Add.
type failingAddStore struct {
	docstore.Store
	err error
}

func (s *failingAddStore) Add(context.Context, string, map[string]any) (string, error) {
	return "", s.err
}
