// Package kv defines the key-value Store used as a document backend when
// Firestore is not available. Keys are ordered lexicographically and every
// value carries a version for compare-and-set updates.
//
// The production implementation lives in kv/oxia; MemoryStore backs local
// runs and tests.
package kv

import (
	"context"
	"errors"
)

// Common errors returned by Store operations.
var (
	// ErrVersionMismatch is returned when the expected version does not match
	// the current version during a compare-and-set.
	ErrVersionMismatch = errors.New("kv: version mismatch")

	// ErrStoreClosed is returned when operations are attempted on a closed store.
	ErrStoreClosed = errors.New("kv: store closed")
)

// Version is a key's version. Zero means the key has never been written.
type Version int64

// KV represents a key-value pair with its version.
type KV struct {
	Key     string
	Value   []byte
	Version Version
}

// GetResult is the result of a Get operation.
type GetResult struct {
	Value   []byte
	Version Version
	Exists  bool
}

// PutOption configures a Put operation.
type PutOption func(*putOptions)

type putOptions struct {
	expectedVersion *Version
}

// WithExpectedVersion makes Put fail with ErrVersionMismatch unless the key's
// current version is v. Version 0 requires the key to be absent.
func WithExpectedVersion(v Version) PutOption {
	return func(o *putOptions) {
		o.expectedVersion = &v
	}
}

// ExtractExpectedVersion returns the expected version set by opts, or nil.
func ExtractExpectedVersion(opts []PutOption) *Version {
	var o putOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o.expectedVersion
}

// Store is the interface for versioned key-value operations.
//
// All operations accept a context.Context for cancellation and timeouts.
type Store interface {
	// Get retrieves a value by key.
	// Returns GetResult with Exists=false if the key does not exist (not an error).
	Get(ctx context.Context, key string) (GetResult, error)

	// Put stores a value and returns the new version.
	Put(ctx context.Context, key string, value []byte, opts ...PutOption) (Version, error)

	// Delete removes a key. Deleting a missing key succeeds.
	Delete(ctx context.Context, key string) error

	// List returns keys starting with prefix, in lexicographic order.
	// When prefix ends with "/", an implementation may return only the
	// direct children of that level (Oxia's hierarchical scan does).
	// If limit is 0 or negative, all matching keys are returned.
	List(ctx context.Context, prefix string, limit int) ([]KV, error)

	// Close releases resources held by the store.
	Close() error
}
