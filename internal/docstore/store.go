// Package docstore defines the document database interface used by the
// housekeeping jobs.
//
// Documents live in collections addressed by slash-separated paths in the
// Firestore style: "live_streams" is a collection, "live_streams/s1" a
// document in it, and "live_streams/s1/comments" a subcollection of that
// document. Field values are limited to strings, booleans, integers,
// floats, time.Time, nil and nested maps or slices of those.
//
// Implementations:
//   - docstore/firestore talks to Cloud Firestore (or its emulator).
//   - docstore/kv stores JSON documents in a kv.Store (Oxia or memory).
package docstore

import (
	"context"
	"errors"
	"fmt"
)

// MaxBatchSize is the largest number of writes one DeleteBatch may commit.
const MaxBatchSize = 500

// Common errors returned by Store implementations.
var (
	// ErrNotFound is returned when an update targets a missing document.
	ErrNotFound = errors.New("document not found")

	// ErrBatchTooLarge is returned when DeleteBatch receives more than
	// MaxBatchSize paths.
	ErrBatchTooLarge = errors.New("batch too large")

	// ErrInvalidPath is returned for malformed collection or document paths.
	ErrInvalidPath = errors.New("invalid path")

	// ErrStoreClosed is returned when operations are attempted on a closed store.
	ErrStoreClosed = errors.New("store closed")
)

// DocumentError wraps an error with the document or collection path.
type DocumentError struct {
	Op   string // Operation that failed (e.g., "Query", "Update")
	Path string // Collection or document path
	Err  error  // Underlying error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("docstore: %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Document is a single document returned by a query.
type Document struct {
	// ID is the last segment of Path.
	ID string

	// Path is the full document path, e.g. "live_streams/s1".
	Path string

	// Data holds the document fields.
	Data map[string]any
}

// Sentinel is a special field value resolved by the store at write time.
type Sentinel int

const (
	// DeleteField removes the field from the document.
	DeleteField Sentinel = iota + 1

	// ServerTimestamp sets the field to the store's clock at commit.
	ServerTimestamp
)

func (s Sentinel) String() string {
	switch s {
	case DeleteField:
		return "DeleteField"
	case ServerTimestamp:
		return "ServerTimestamp"
	default:
		return fmt.Sprintf("Sentinel(%d)", int(s))
	}
}

// Update sets one top-level field. Value may be a Sentinel.
type Update struct {
	Field string
	Value any
}

// Store is the interface for document database operations.
//
// Thread Safety: Implementations must be safe for concurrent use.
type Store interface {
	// Query returns the documents of a collection matching every filter,
	// up to q.Limit documents (0 means no limit). Only direct members of the
	// collection are returned, never documents of its subcollections.
	// Order is implementation defined.
	Query(ctx context.Context, collection string, q Query) ([]Document, error)

	// Add creates a document with a generated ID and returns its path.
	// ServerTimestamp values are resolved; DeleteField values are dropped.
	Add(ctx context.Context, collection string, data map[string]any) (string, error)

	// Update applies field updates to an existing document.
	// Returns ErrNotFound if the document does not exist.
	Update(ctx context.Context, docPath string, updates ...Update) error

	// DeleteBatch deletes up to MaxBatchSize documents in one commit.
	// Missing documents are ignored.
	DeleteBatch(ctx context.Context, docPaths []string) error

	// Close releases resources held by the store.
	Close() error
}
