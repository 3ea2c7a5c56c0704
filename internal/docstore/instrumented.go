package docstore

import (
	"context"
	"time"
)

// MetricsRecorder records document store operation metrics.
type MetricsRecorder interface {
	RecordOperation(op string, durationSeconds float64, success bool)
}

// Operation names passed to MetricsRecorder.
const (
	OpNameQuery       = "query"
	OpNameAdd         = "add"
	OpNameUpdate      = "update"
	OpNameDeleteBatch = "delete_batch"
)

// InstrumentedStore wraps a Store and records latency for each operation.
type InstrumentedStore struct {
	store   Store
	metrics MetricsRecorder
}

// NewInstrumentedStore wraps store. A nil recorder passes calls through.
func NewInstrumentedStore(store Store, metrics MetricsRecorder) *InstrumentedStore {
	return &InstrumentedStore{store: store, metrics: metrics}
}

func (s *InstrumentedStore) record(op string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.RecordOperation(op, time.Since(start).Seconds(), err == nil)
	}
}

func (s *InstrumentedStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	start := time.Now()
	docs, err := s.store.Query(ctx, collection, q)
	s.record(OpNameQuery, start, err)
	return docs, err
}

func (s *InstrumentedStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	start := time.Now()
	path, err := s.store.Add(ctx, collection, data)
	s.record(OpNameAdd, start, err)
	return path, err
}

func (s *InstrumentedStore) Update(ctx context.Context, docPath string, updates ...Update) error {
	start := time.Now()
	err := s.store.Update(ctx, docPath, updates...)
	s.record(OpNameUpdate, start, err)
	return err
}

func (s *InstrumentedStore) DeleteBatch(ctx context.Context, docPaths []string) error {
	start := time.Now()
	err := s.store.DeleteBatch(ctx, docPaths)
	s.record(OpNameDeleteBatch, start, err)
	return err
}

func (s *InstrumentedStore) Close() error {
	return s.store.Close()
}

var _ Store = (*InstrumentedStore)(nil)
