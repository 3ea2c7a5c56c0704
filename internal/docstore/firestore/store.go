// Package firestore implements docstore.Store using Cloud Firestore.
//
// The client honors FIRESTORE_EMULATOR_HOST, which is how the integration
// tests in this package run against the local emulator.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/livecart/housekeeper/internal/docstore"
)

// Config holds the configuration for the Firestore store.
type Config struct {
	// ProjectID is the Google Cloud project that owns the database.
	ProjectID string

	// DatabaseID selects a named database. Empty means "(default)".
	DatabaseID string

	// CredentialsFile is an optional service account key file. When empty,
	// application default credentials are used.
	CredentialsFile string
}

// Store implements docstore.Store using Firestore.
type Store struct {
	client *firestore.Client

	mu     sync.RWMutex
	closed bool
}

// New creates a new Firestore-backed store.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("firestore: project ID is required")
	}
	databaseID := cfg.DatabaseID
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := firestore.NewClientWithDatabase(ctx, cfg.ProjectID, databaseID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore: failed to create client: %w", err)
	}
	return &Store{client: client}, nil
}

func (s *Store) checkClosed() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return docstore.ErrStoreClosed
	}
	return nil
}

// Query runs a filtered query against a collection.
func (s *Store) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	if err := s.checkClosed(); err != nil {
		return nil, err
	}
	if err := docstore.ValidateCollectionPath(collection); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, &docstore.DocumentError{Op: "Query", Path: collection, Err: err}
	}

	query := s.client.Collection(collection).Query
	for _, f := range q.Filters {
		query = query.Where(f.Field, string(f.Op), f.Value)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, &docstore.DocumentError{Op: "Query", Path: collection, Err: wrapError(err)}
	}

	docs := make([]docstore.Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, docstore.Document{
			ID:   snap.Ref.ID,
			Path: collection + "/" + snap.Ref.ID,
			Data: snap.Data(),
		})
	}
	return docs, nil
}

// Add creates a document with a Firestore-generated ID.
func (s *Store) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	if err := s.checkClosed(); err != nil {
		return "", err
	}
	if err := docstore.ValidateCollectionPath(collection); err != nil {
		return "", err
	}

	doc := make(map[string]any, len(data))
	for k, v := range data {
		if v == docstore.DeleteField {
			continue
		}
		doc[k] = toFirestoreValue(v)
	}

	ref, _, err := s.client.Collection(collection).Add(ctx, doc)
	if err != nil {
		return "", &docstore.DocumentError{Op: "Add", Path: collection, Err: wrapError(err)}
	}
	return collection + "/" + ref.ID, nil
}

// Update applies field updates to an existing document.
func (s *Store) Update(ctx context.Context, docPath string, updates ...docstore.Update) error {
	if err := s.checkClosed(); err != nil {
		return err
	}
	if err := docstore.ValidateDocumentPath(docPath); err != nil {
		return err
	}

	fsUpdates := make([]firestore.Update, 0, len(updates))
	for _, u := range updates {
		fsUpdates = append(fsUpdates, firestore.Update{Path: u.Field, Value: toFirestoreValue(u.Value)})
	}

	if _, err := s.client.Doc(docPath).Update(ctx, fsUpdates); err != nil {
		return &docstore.DocumentError{Op: "Update", Path: docPath, Err: wrapError(err)}
	}
	return nil
}

// DeleteBatch deletes documents in a single transaction.
func (s *Store) DeleteBatch(ctx context.Context, docPaths []string) error {
	if err := s.checkClosed(); err != nil {
		return err
	}
	if len(docPaths) == 0 {
		return nil
	}
	if len(docPaths) > docstore.MaxBatchSize {
		return fmt.Errorf("docstore: %w: %d paths", docstore.ErrBatchTooLarge, len(docPaths))
	}

	refs := make([]*firestore.DocumentRef, 0, len(docPaths))
	for _, p := range docPaths {
		if err := docstore.ValidateDocumentPath(p); err != nil {
			return err
		}
		refs = append(refs, s.client.Doc(p))
	}

	err := s.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		for _, ref := range refs {
			if err := tx.Delete(ref); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &docstore.DocumentError{Op: "DeleteBatch", Path: docPaths[0], Err: wrapError(err)}
	}
	return nil
}

// Close closes the Firestore client.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}

func toFirestoreValue(v any) any {
	switch v {
	case docstore.DeleteField:
		return firestore.Delete
	case docstore.ServerTimestamp:
		return firestore.ServerTimestamp
	}
	return v
}

// wrapError maps gRPC status codes onto docstore errors.
func wrapError(err error) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %v", docstore.ErrNotFound, err)
	}
	return err
}

var _ docstore.Store = (*Store)(nil)
