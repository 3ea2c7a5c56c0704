package server

import (
	"context"
	"errors"
	"testing"

	"github.com/livecart/housekeeper/internal/docstore"
	"github.com/livecart/housekeeper/internal/docstore/kvdoc"
	"github.com/livecart/housekeeper/internal/kv"
	"github.com/livecart/housekeeper/internal/objectstore"
)

type failingDocStore struct {
	docstore.Store
}

func (failingDocStore) Query(context.Context, string, docstore.Query) ([]docstore.Document, error) {
	return nil, errors.New("unavailable")
}

func TestDocStoreChecker(t *testing.T) {
	ctx := context.Background()

	c := NewDocStoreChecker(kvdoc.New(kv.NewMemoryStore()))
	if c.Name() != "document_store" {
		t.Errorf("unexpected name %q", c.Name())
	}
	if err := c.CheckReady(ctx); err != nil {
		t.Errorf("expected ready, got %v", err)
	}

	if err := NewDocStoreChecker(failingDocStore{}).CheckReady(ctx); err == nil {
		t.Error("expected error from failing store")
	}
	if err := NewDocStoreChecker(nil).CheckReady(ctx); err == nil {
		t.Error("expected error for nil store")
	}
}

func TestObjectStoreChecker(t *testing.T) {
	ctx := context.Background()

	mem := objectstore.NewMemoryStore()
	c := NewObjectStoreChecker(mem)
	if c.Name() != "object_store" {
		t.Errorf("unexpected name %q", c.Name())
	}
	if err := c.CheckReady(ctx); err != nil {
		t.Errorf("expected ready, got %v", err)
	}

	mem.FailList(objectstore.ErrNotFound)
	if err := c.CheckReady(ctx); err != nil {
		t.Errorf("expected not-found listing to count as ready, got %v", err)
	}

	mem.FailList(objectstore.ErrAccessDenied)
	if err := c.CheckReady(ctx); !errors.Is(err, objectstore.ErrAccessDenied) {
		t.Errorf("expected access denied, got %v", err)
	}

	mem.FailList(objectstore.ErrBucketNotFound)
	if err := c.CheckReady(ctx); !errors.Is(err, objectstore.ErrBucketNotFound) {
		t.Errorf("expected bucket not found, got %v", err)
	}

	if err := NewObjectStoreChecker(nil).CheckReady(ctx); err == nil {
		t.Error("expected error for nil store")
	}
}

func TestFuncChecker(t *testing.T) {
	c := NewFuncChecker("custom", nil)
	if c.Name() != "custom" {
		t.Errorf("unexpected name %q", c.Name())
	}
	if err := c.CheckReady(context.Background()); err != nil {
		t.Errorf("nil check should pass, got %v", err)
	}
}
