package server

import (
	"context"
	"errors"

	"github.com/livecart/housekeeper/internal/docstore"
	"github.com/livecart/housekeeper/internal/objectstore"
)

// healthCollection is queried by DocStoreChecker. It normally holds nothing.
const healthCollection = "housekeeper_health"

// DocStoreChecker implements ReadinessChecker for the document store.
// It runs a one-document query against an empty collection.
type DocStoreChecker struct {
	store docstore.Store
}

// NewDocStoreChecker creates a new DocStoreChecker.
func NewDocStoreChecker(store docstore.Store) *DocStoreChecker {
	return &DocStoreChecker{store: store}
}

// Name returns the name of this component for health status display.
func (c *DocStoreChecker) Name() string {
	return "document_store"
}

// CheckReady verifies the document store responds.
func (c *DocStoreChecker) CheckReady(ctx context.Context) error {
	if c.store == nil {
		return errors.New("document store not configured")
	}
	_, err := c.store.Query(ctx, healthCollection, docstore.Query{Limit: 1})
	return err
}

// ObjectStoreChecker implements ReadinessChecker for the object store.
// It lists a prefix that holds no objects.
type ObjectStoreChecker struct {
	store objectstore.Store
}

// NewObjectStoreChecker creates a new ObjectStoreChecker.
func NewObjectStoreChecker(store objectstore.Store) *ObjectStoreChecker {
	return &ObjectStoreChecker{store: store}
}

// Name returns the name of this component for health status display.
func (c *ObjectStoreChecker) Name() string {
	return "object_store"
}

// CheckReady verifies the bucket is reachable and readable.
// An empty listing is fine; a missing bucket or denied access is not.
func (c *ObjectStoreChecker) CheckReady(ctx context.Context) error {
	if c.store == nil {
		return errors.New("object store not configured")
	}

	_, err := c.store.List(ctx, "housekeeper-health-check-nonexistent/")
	if err != nil && errors.Is(err, objectstore.ErrNotFound) {
		return nil
	}
	return err
}

// FuncChecker is a simple ReadinessChecker that wraps a function.
type FuncChecker struct {
	name  string
	check func(context.Context) error
}

// NewFuncChecker creates a new FuncChecker with the given name and check function.
func NewFuncChecker(name string, check func(context.Context) error) *FuncChecker {
	return &FuncChecker{name: name, check: check}
}

// Name returns the name of this component.
func (c *FuncChecker) Name() string {
	return c.name
}

// CheckReady calls the wrapped function.
func (c *FuncChecker) CheckReady(ctx context.Context) error {
	if c.check == nil {
		return nil
	}
	return c.check(ctx)
}
