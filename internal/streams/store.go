package streams

import (
	"context"
	"fmt"
	"time"

	"github.com/livecart/housekeeper/internal/docstore"
)

// Store reads and tombstones stream records.
type Store struct {
	docs docstore.Store
}

// NewStore wraps a document store.
func NewStore(docs docstore.Store) *Store {
	return &Store{docs: docs}
}

// ListExpired returns streams that are ended, have auto-delete enabled and a
// deleteAt at or before now.
func (s *Store) ListExpired(ctx context.Context, now time.Time) ([]Record, error) {
	docs, err := s.docs.Query(ctx, Collection, docstore.Query{Filters: ExpiredFilters(now)})
	if err != nil {
		return nil, fmt.Errorf("streams: list expired: %w", err)
	}

	records := make([]Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, FromDocument(doc))
	}
	return records, nil
}

// NextChildBatch returns the paths of up to limit documents in one of the
// stream's child collections.
func (s *Store) NextChildBatch(ctx context.Context, r Record, child string, limit int) ([]string, error) {
	coll := docstore.ChildCollection(r.Path, child)
	docs, err := s.docs.Query(ctx, coll, docstore.Query{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("streams: fetch %s: %w", coll, err)
	}

	paths := make([]string, len(docs))
	for i, doc := range docs {
		paths[i] = doc.Path
	}
	return paths, nil
}

// DeleteDocuments removes child documents in one batch commit.
func (s *Store) DeleteDocuments(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	if err := s.docs.DeleteBatch(ctx, paths); err != nil {
		return fmt.Errorf("streams: delete batch: %w", err)
	}
	return nil
}

// MarkDeleted tombstones a stream: status becomes deleted, the recorded
// video reference is removed and deletedAt is set by the server.
func (s *Store) MarkDeleted(ctx context.Context, r Record) error {
	err := s.docs.Update(ctx, r.Path,
		docstore.Update{Field: FieldStatus, Value: string(StatusDeleted)},
		docstore.Update{Field: FieldRecordedVideoURL, Value: docstore.DeleteField},
		docstore.Update{Field: FieldDeletedAt, Value: docstore.ServerTimestamp},
	)
	if err != nil {
		return fmt.Errorf("streams: mark %s deleted: %w", r.ID, err)
	}
	return nil
}
