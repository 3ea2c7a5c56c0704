// Package minio implements objectstore.Store with the MinIO client, for
// MinIO deployments and other S3-compatible services.
package minio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/livecart/housekeeper/internal/objectstore"
)

// Config configures a MinIO store.
type Config struct {
	// Endpoint is host:port without scheme, e.g. "localhost:9000".
	Endpoint string

	// Bucket is the bucket name.
	Bucket string

	AccessKeyID     string
	SecretAccessKey string

	// Region is optional for MinIO.
	Region string

	// UseSSL selects https.
	UseSSL bool
}

// Store implements objectstore.Store using minio-go.
type Store struct {
	client *minio.Client
	bucket string

	mu     sync.RWMutex
	closed bool
}

// New creates a MinIO store. No request is made until the first operation.
func New(cfg Config) (*Store, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("minio: endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("minio: bucket name is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: failed to create client: %w", err)
	}

	return &Store{client: client, bucket: cfg.Bucket}, nil
}

func (s *Store) checkClosed() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return objectstore.ErrStoreClosed
	}
	return nil
}

// Delete removes an object. RemoveObject already succeeds on missing keys.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.checkClosed(); err != nil {
		return err
	}

	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		wrapped := wrapError("Delete", key, err)
		if errors.Is(wrapped, objectstore.ErrNotFound) {
			return nil
		}
		return wrapped
	}
	return nil
}

// List returns every object under prefix, recursively.
func (s *Store) List(ctx context.Context, prefix string) ([]objectstore.ObjectMeta, error) {
	if err := s.checkClosed(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var results []objectstore.ObjectMeta
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, wrapError("List", prefix, obj.Err)
		}
		meta := objectstore.ObjectMeta{
			Key:         obj.Key,
			Size:        obj.Size,
			ContentType: obj.ContentType,
		}
		if !obj.LastModified.IsZero() {
			meta.LastModified = obj.LastModified.UnixMilli()
		}
		results = append(results, meta)
	}
	return results, nil
}

// Close marks the store closed. The MinIO client holds no resources.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func wrapError(op, key string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey":
		return &objectstore.ObjectError{Op: op, Key: key, Err: objectstore.ErrNotFound}
	case "NoSuchBucket":
		return &objectstore.ObjectError{Op: op, Key: key, Err: objectstore.ErrBucketNotFound}
	case "AccessDenied":
		return &objectstore.ObjectError{Op: op, Key: key, Err: objectstore.ErrAccessDenied}
	}
	return &objectstore.ObjectError{Op: op, Key: key, Err: err}
}

var _ objectstore.Store = (*Store)(nil)
