// Package gcs implements objectstore.Store on Google Cloud Storage, the
// bucket behind Cloud Storage for Firebase.
//
// Setting STORAGE_EMULATOR_HOST points the client at a local emulator.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/livecart/housekeeper/internal/objectstore"
)

// Config configures a GCS store.
type Config struct {
	// Bucket is the bucket name, e.g. "shop.appspot.com".
	Bucket string

	// CredentialsFile is an optional service account key file. When empty,
	// application default credentials are used.
	CredentialsFile string
}

// Store implements objectstore.Store using Cloud Storage.
type Store struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string

	mu     sync.RWMutex
	closed bool
}

// New creates a new GCS store.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("gcs: bucket name is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: failed to create client: %w", err)
	}

	return &Store{
		client: client,
		bucket: client.Bucket(cfg.Bucket),
		name:   cfg.Bucket,
	}, nil
}

func (s *Store) checkClosed() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return objectstore.ErrStoreClosed
	}
	return nil
}

// Delete removes an object. A missing object is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.checkClosed(); err != nil {
		return err
	}

	if err := s.bucket.Object(key).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil
		}
		return wrapError("Delete", key, err)
	}
	return nil
}

// List returns every object under prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]objectstore.ObjectMeta, error) {
	if err := s.checkClosed(); err != nil {
		return nil, err
	}

	query := &storage.Query{Prefix: prefix}
	if err := query.SetAttrSelection([]string{"Name", "Size", "ContentType", "Updated"}); err != nil {
		return nil, wrapError("List", prefix, err)
	}

	var results []objectstore.ObjectMeta
	it := s.bucket.Objects(ctx, query)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, wrapError("List", prefix, err)
		}

		meta := objectstore.ObjectMeta{
			Key:         attrs.Name,
			Size:        attrs.Size,
			ContentType: attrs.ContentType,
		}
		if !attrs.Updated.IsZero() {
			meta.LastModified = attrs.Updated.UnixMilli()
		}
		results = append(results, meta)
	}
	return results, nil
}

// Close closes the storage client.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}

func wrapError(op, key string, err error) error {
	switch {
	case errors.Is(err, storage.ErrBucketNotExist):
		return &objectstore.ObjectError{Op: op, Key: key, Err: objectstore.ErrBucketNotFound}
	case errors.Is(err, storage.ErrObjectNotExist):
		return &objectstore.ObjectError{Op: op, Key: key, Err: objectstore.ErrNotFound}
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusForbidden, http.StatusUnauthorized:
			return &objectstore.ObjectError{Op: op, Key: key, Err: objectstore.ErrAccessDenied}
		case http.StatusNotFound:
			return &objectstore.ObjectError{Op: op, Key: key, Err: objectstore.ErrBucketNotFound}
		}
	}

	return &objectstore.ObjectError{Op: op, Key: key, Err: err}
}

var _ objectstore.Store = (*Store)(nil)
