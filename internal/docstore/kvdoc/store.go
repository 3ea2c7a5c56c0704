// Package kvdoc implements docstore.Store on top of a kv.Store.
//
// Each document is one key holding its fields as JSON:
//
//	/housekeeper/v1/docs/live_streams/s1
//	/housekeeper/v1/docs/live_streams/s1/comments/c1
//
// Queries list the collection's direct children and filter them in process,
// so this backend suits small deployments, local runs and tests. Updates use
// compare-and-set on the key version. DeleteBatch deletes keys one by one:
// it is idempotent but not atomic.
package kvdoc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/livecart/housekeeper/internal/docstore"
	"github.com/livecart/housekeeper/internal/kv"
)

// DefaultRoot is the key prefix under which documents are stored.
const DefaultRoot = "/housekeeper/v1/docs"

// maxUpdateAttempts bounds compare-and-set retries in Update.
const maxUpdateAttempts = 5

// Store implements docstore.Store over a kv.Store.
type Store struct {
	kv    kv.Store
	root  string
	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithRoot sets the key prefix. The default is DefaultRoot.
func WithRoot(root string) Option {
	return func(s *Store) {
		s.root = strings.TrimSuffix(root, "/")
	}
}

// WithClock sets the clock used to resolve docstore.ServerTimestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a document store backed by store. Close closes store.
func New(store kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:    store,
		root:  DefaultRoot,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(path string) string {
	return s.root + "/" + path
}

// Query lists the direct members of collection and filters them.
func (s *Store) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	if err := docstore.ValidateCollectionPath(collection); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, &docstore.DocumentError{Op: "Query", Path: collection, Err: err}
	}

	prefix := s.key(collection) + "/"
	kvs, err := s.kv.List(ctx, prefix, 0)
	if err != nil {
		return nil, &docstore.DocumentError{Op: "Query", Path: collection, Err: err}
	}

	var docs []docstore.Document
	for _, entry := range kvs {
		id := strings.TrimPrefix(entry.Key, prefix)
		if id == "" || strings.Contains(id, "/") {
			continue
		}

		data, err := decode(entry.Value)
		if err != nil {
			return nil, &docstore.DocumentError{Op: "Query", Path: collection + "/" + id, Err: err}
		}
		if !docstore.Match(data, q.Filters) {
			continue
		}

		docs = append(docs, docstore.Document{
			ID:   id,
			Path: collection + "/" + id,
			Data: data,
		})
		if q.Limit > 0 && len(docs) >= q.Limit {
			break
		}
	}
	return docs, nil
}

// Add writes a new document with a random ID.
func (s *Store) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	if err := docstore.ValidateCollectionPath(collection); err != nil {
		return "", err
	}

	path := collection + "/" + s.newID()
	doc := make(map[string]any, len(data))
	for k, v := range data {
		doc[k] = v
	}
	s.resolveSentinels(doc)

	value, err := encode(doc)
	if err != nil {
		return "", &docstore.DocumentError{Op: "Add", Path: path, Err: err}
	}
	if _, err := s.kv.Put(ctx, s.key(path), value, kv.WithExpectedVersion(0)); err != nil {
		return "", &docstore.DocumentError{Op: "Add", Path: path, Err: err}
	}
	return path, nil
}

// Update applies updates with compare-and-set, retrying on concurrent writes.
func (s *Store) Update(ctx context.Context, docPath string, updates ...docstore.Update) error {
	if err := docstore.ValidateDocumentPath(docPath); err != nil {
		return err
	}

	key := s.key(docPath)
	var lastErr error
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		res, err := s.kv.Get(ctx, key)
		if err != nil {
			return &docstore.DocumentError{Op: "Update", Path: docPath, Err: err}
		}
		if !res.Exists {
			return &docstore.DocumentError{Op: "Update", Path: docPath, Err: docstore.ErrNotFound}
		}

		data, err := decode(res.Value)
		if err != nil {
			return &docstore.DocumentError{Op: "Update", Path: docPath, Err: err}
		}
		for _, u := range updates {
			data[u.Field] = u.Value
		}
		s.resolveSentinels(data)

		value, err := encode(data)
		if err != nil {
			return &docstore.DocumentError{Op: "Update", Path: docPath, Err: err}
		}

		_, err = s.kv.Put(ctx, key, value, kv.WithExpectedVersion(res.Version))
		if err == nil {
			return nil
		}
		if !errors.Is(err, kv.ErrVersionMismatch) {
			return &docstore.DocumentError{Op: "Update", Path: docPath, Err: err}
		}
		lastErr = err
	}
	return &docstore.DocumentError{
		Op:   "Update",
		Path: docPath,
		Err:  fmt.Errorf("gave up after %d attempts: %w", maxUpdateAttempts, lastErr),
	}
}

// DeleteBatch deletes each document in turn.
func (s *Store) DeleteBatch(ctx context.Context, docPaths []string) error {
	if len(docPaths) > docstore.MaxBatchSize {
		return fmt.Errorf("docstore: %w: %d paths", docstore.ErrBatchTooLarge, len(docPaths))
	}
	for _, p := range docPaths {
		if err := docstore.ValidateDocumentPath(p); err != nil {
			return err
		}
	}

	for _, p := range docPaths {
		if err := s.kv.Delete(ctx, s.key(p)); err != nil {
			return &docstore.DocumentError{Op: "DeleteBatch", Path: p, Err: err}
		}
	}
	return nil
}

// Close closes the underlying kv.Store.
func (s *Store) Close() error {
	return s.kv.Close()
}

func (s *Store) resolveSentinels(data map[string]any) {
	now := s.now().UTC()
	for k, v := range data {
		sentinel, ok := v.(docstore.Sentinel)
		if !ok {
			continue
		}
		switch sentinel {
		case docstore.DeleteField:
			delete(data, k)
		case docstore.ServerTimestamp:
			data[k] = now
		}
	}
}

var _ docstore.Store = (*Store)(nil)
