// Package objectstore defines the Store interface for blob storage.
//
// The housekeeping jobs only enumerate and delete objects: the storage
// monitor lists everything under a prefix to sum sizes, and the stream purger
// deletes one recorded video per stream. Backends live in subpackages:
// gcs (Cloud Storage for Firebase), s3 and minio.
//
//	store, err := gcs.New(ctx, gcs.Config{Bucket: "shop.appspot.com"})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	objects, err := store.List(ctx, "live_streams/")
package objectstore

import (
	"context"
	"errors"
	"fmt"
)

// Common errors returned by Store implementations.
var (
	// ErrNotFound is returned when the requested object does not exist.
	ErrNotFound = errors.New("object not found")

	// ErrBucketNotFound is returned when the configured bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")

	// ErrAccessDenied is returned when the credentials lack permission for the operation.
	ErrAccessDenied = errors.New("access denied")

	// ErrStoreClosed is returned when operations are attempted on a closed store.
	ErrStoreClosed = errors.New("store closed")
)

// ObjectError wraps an error with the object key for context.
type ObjectError struct {
	Op  string // Operation that failed (e.g., "List", "Delete")
	Key string // Object key or list prefix
	Err error  // Underlying error
}

func (e *ObjectError) Error() string {
	return fmt.Sprintf("objectstore: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *ObjectError) Unwrap() error {
	return e.Err
}

// ObjectMeta contains metadata about an object.
type ObjectMeta struct {
	// Key is the object's key (path) in the bucket.
	Key string

	// Size is the object's size in bytes. Zero when the backend reports none.
	Size int64

	// ContentType is the MIME type of the object, if known.
	ContentType string

	// LastModified is the Unix timestamp (milliseconds) when the object was last modified.
	LastModified int64
}

// Store is the interface for object storage operations.
//
// Thread Safety: Implementations must be safe for concurrent use.
type Store interface {
	// Delete removes an object.
	//
	// Delete is idempotent: deleting a non-existent object succeeds silently.
	// Returns an error only for actual failures:
	//   - ErrAccessDenied: insufficient permissions
	//   - ErrBucketNotFound: bucket doesn't exist
	Delete(ctx context.Context, key string) error

	// List returns every object whose key starts with prefix, in
	// lexicographic order. Pagination is handled internally.
	List(ctx context.Context, prefix string) ([]ObjectMeta, error)

	// Close releases resources associated with the store.
	Close() error
}
