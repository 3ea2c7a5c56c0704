package gc

import (
	"context"
	"fmt"

	"github.com/livecart/housekeeper/internal/logging"
	"github.com/livecart/housekeeper/internal/objectstore"
	"github.com/livecart/housekeeper/internal/streams"
)

// MaxChildBatchSize is the largest child batch committed at once.
const MaxChildBatchSize = 500

// PurgerConfig configures a StreamPurger.
type PurgerConfig struct {
	// BatchSize is the number of child documents fetched and deleted per
	// batch. Default and maximum: 500.
	BatchSize int

	// Metrics receives purge counters. Optional.
	Metrics ExpiryMetricsRecorder

	// Logger is used when the context carries no logger. Optional.
	Logger *logging.Logger
}

// BlobOutcome describes the recorded video deletion of one purge. It is
// reported, never acted upon.
type BlobOutcome struct {
	// Path is the object key derived from recordedVideoUrl, if any.
	Path string `json:"path,omitempty"`

	// Attempted is true when a delete was issued.
	Attempted bool `json:"attempted"`

	// Err is the delete or URL decoding failure, if any.
	Err error `json:"-"`
}

// Deleted reports whether the blob delete was issued and succeeded.
func (o BlobOutcome) Deleted() bool {
	return o.Attempted && o.Err == nil
}

// PurgeResult summarizes the purge of one stream.
type PurgeResult struct {
	StreamID        string         `json:"streamId"`
	Blob            BlobOutcome    `json:"blob"`
	ChildrenDeleted map[string]int `json:"childrenDeleted"`
}

// StreamPurger deletes a stream's recording and children and tombstones it.
type StreamPurger struct {
	streams *streams.Store
	obj     objectstore.Store
	config  PurgerConfig
}

// NewStreamPurger creates a StreamPurger.
func NewStreamPurger(st *streams.Store, obj objectstore.Store, config PurgerConfig) *StreamPurger {
	if config.BatchSize <= 0 || config.BatchSize > MaxChildBatchSize {
		config.BatchSize = MaxChildBatchSize
	}
	if config.Metrics == nil {
		config.Metrics = nopExpiryMetrics{}
	}
	return &StreamPurger{
		streams: st,
		obj:     obj,
		config:  config,
	}
}

// Purge removes the recording and child documents of r, then marks r
// deleted. Child and update failures are returned; the stream then keeps its
// status and a later run repeats the purge.
func (p *StreamPurger) Purge(ctx context.Context, r streams.Record) (PurgeResult, error) {
	log := logging.FromCtx(ctx, p.config.Logger).With(map[string]any{"streamId": r.ID})
	result := PurgeResult{
		StreamID:        r.ID,
		ChildrenDeleted: make(map[string]int, len(streams.ChildCollections)),
	}

	result.Blob = p.deleteRecording(ctx, r)
	if result.Blob.Err != nil {
		p.config.Metrics.RecordBlobFailure()
		log.Warnf("could not delete recorded video", map[string]any{
			"path":  result.Blob.Path,
			"error": result.Blob.Err.Error(),
		})
	}

	for _, child := range streams.ChildCollections {
		n, err := p.drain(ctx, r, child)
		result.ChildrenDeleted[child] = n
		if err != nil {
			return result, err
		}
	}

	if err := p.streams.MarkDeleted(ctx, r); err != nil {
		return result, err
	}

	log.Debugf("stream purged", map[string]any{
		"blobDeleted":     result.Blob.Deleted(),
		"childrenDeleted": result.ChildrenDeleted,
	})
	return result, nil
}

func (p *StreamPurger) deleteRecording(ctx context.Context, r streams.Record) BlobOutcome {
	if !r.HasRecording() {
		return BlobOutcome{}
	}

	path, ok, err := objectstore.PathFromDownloadURL(r.RecordedVideoURL)
	if err != nil {
		return BlobOutcome{Err: err}
	}
	if !ok {
		return BlobOutcome{}
	}

	outcome := BlobOutcome{Path: path, Attempted: true}
	if err := p.obj.Delete(ctx, path); err != nil {
		outcome.Err = err
	}
	return outcome
}

// drain deletes one child collection batch by batch until it is empty.
// The next batch is fetched only after the previous one has committed.
func (p *StreamPurger) drain(ctx context.Context, r streams.Record, child string) (int, error) {
	deleted := 0
	for {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}

		paths, err := p.streams.NextChildBatch(ctx, r, child, p.config.BatchSize)
		if err != nil {
			return deleted, err
		}
		if len(paths) == 0 {
			return deleted, nil
		}

		if err := p.streams.DeleteDocuments(ctx, paths); err != nil {
			return deleted, fmt.Errorf("purge %s/%s: %w", r.ID, child, err)
		}
		deleted += len(paths)
		p.config.Metrics.RecordChildrenDeleted(child, len(paths))
	}
}
