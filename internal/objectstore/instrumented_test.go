package objectstore

import (
	"context"
	"errors"
	"testing"
)

type deleteCall struct {
	duration float64
	success  bool
}

type listCall struct {
	duration float64
	success  bool
	objects  int
}

// mockMetrics records all metric calls for testing.
type mockMetrics struct {
	deletes []deleteCall
	lists   []listCall
}

func (m *mockMetrics) RecordDelete(duration float64, success bool) {
	m.deletes = append(m.deletes, deleteCall{duration, success})
}

func (m *mockMetrics) RecordList(duration float64, success bool, objects int) {
	m.lists = append(m.lists, listCall{duration, success, objects})
}

func TestInstrumentedStore_Delete(t *testing.T) {
	mem := NewMemoryStore()
	mem.Put("live_streams/s1.mp4", 10, "video/mp4")
	mem.FailDelete("live_streams/bad.mp4", ErrAccessDenied)
	metrics := &mockMetrics{}
	store := NewInstrumentedStore(mem, metrics)

	if err := store.Delete(context.Background(), "live_streams/s1.mp4"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(context.Background(), "live_streams/bad.mp4"); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}

	if len(metrics.deletes) != 2 {
		t.Fatalf("expected 2 delete calls, got %d", len(metrics.deletes))
	}
	if !metrics.deletes[0].success {
		t.Error("expected first delete success=true")
	}
	if metrics.deletes[1].success {
		t.Error("expected second delete success=false")
	}
	if metrics.deletes[0].duration < 0 {
		t.Error("expected non-negative duration")
	}
}

func TestInstrumentedStore_List(t *testing.T) {
	mem := NewMemoryStore()
	mem.Put("live_streams/a.mp4", 1, "video/mp4")
	mem.Put("live_streams/b.mp4", 2, "video/mp4")
	metrics := &mockMetrics{}
	store := NewInstrumentedStore(mem, metrics)

	objects, err := store.List(context.Background(), "live_streams/")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(objects))
	}

	mem.FailList(errors.New("unavailable"))
	if _, err := store.List(context.Background(), "live_streams/"); err == nil {
		t.Fatal("expected list error")
	}

	if len(metrics.lists) != 2 {
		t.Fatalf("expected 2 list calls, got %d", len(metrics.lists))
	}
	if !metrics.lists[0].success || metrics.lists[0].objects != 2 {
		t.Errorf("unexpected first list call: %+v", metrics.lists[0])
	}
	if metrics.lists[1].success || metrics.lists[1].objects != 0 {
		t.Errorf("unexpected second list call: %+v", metrics.lists[1])
	}
}

func TestInstrumentedStore_NilMetrics(t *testing.T) {
	mem := NewMemoryStore()
	store := NewInstrumentedStore(mem, nil)

	if err := store.Delete(context.Background(), "missing"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.List(context.Background(), ""); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}
