// Package streams maps live-stream documents to typed records and wraps the
// document store operations the purge job needs.
package streams

import (
	"time"

	"github.com/livecart/housekeeper/internal/docstore"
)

// Collection holds the stream documents.
const Collection = "live_streams"

// Child collections drained when a stream is purged, in purge order.
const (
	CommentsCollection = "comments"
	ViewersCollection  = "viewers"
	LikesCollection    = "likes"
)

// ChildCollections lists the subcollections removed with a stream.
var ChildCollections = []string{CommentsCollection, ViewersCollection, LikesCollection}

// Field names of a stream document.
const (
	FieldStatus            = "status"
	FieldAutoDeleteEnabled = "autoDeleteEnabled"
	FieldDeleteAt          = "deleteAt"
	FieldRecordedVideoURL  = "recordedVideoUrl"
	FieldCreatedAt         = "createdAt"
	FieldApprovedAt        = "approvedAt"
	FieldDeletedAt         = "deletedAt"
)

// Status is the lifecycle state of a stream.
type Status string

const (
	StatusActive   Status = "active"
	StatusEnded    Status = "ended"
	StatusArchived Status = "archived"
	StatusDeleted  Status = "deleted"
)

// Record is a snapshot of a stream document.
type Record struct {
	ID                string
	Path              string
	Status            Status
	AutoDeleteEnabled bool
	DeleteAt          time.Time
	RecordedVideoURL  string
	CreatedAt         time.Time
	ApprovedAt        time.Time
	DeletedAt         time.Time
}

// HasRecording reports whether the record references a recorded video.
func (r Record) HasRecording() bool {
	return r.RecordedVideoURL != ""
}

// FromDocument converts a document into a Record. Missing or mistyped
// fields keep their zero values.
func FromDocument(doc docstore.Document) Record {
	r := Record{ID: doc.ID, Path: doc.Path}
	if r.Path == "" {
		r.Path = docstore.Join(Collection, doc.ID)
	}

	if s, ok := doc.Data[FieldStatus].(string); ok {
		r.Status = Status(s)
	}
	if b, ok := doc.Data[FieldAutoDeleteEnabled].(bool); ok {
		r.AutoDeleteEnabled = b
	}
	if s, ok := doc.Data[FieldRecordedVideoURL].(string); ok {
		r.RecordedVideoURL = s
	}
	r.DeleteAt = timeField(doc.Data, FieldDeleteAt)
	r.CreatedAt = timeField(doc.Data, FieldCreatedAt)
	r.ApprovedAt = timeField(doc.Data, FieldApprovedAt)
	r.DeletedAt = timeField(doc.Data, FieldDeletedAt)
	return r
}

func timeField(data map[string]any, field string) time.Time {
	if t, ok := data[field].(time.Time); ok {
		return t
	}
	return time.Time{}
}

// ExpiredFilters selects streams due for purge at now.
func ExpiredFilters(now time.Time) []docstore.Filter {
	return []docstore.Filter{
		docstore.Where(FieldAutoDeleteEnabled, docstore.OpEqual, true),
		docstore.Where(FieldDeleteAt, docstore.OpLessEqual, now),
		docstore.Where(FieldStatus, docstore.OpEqual, string(StatusEnded)),
	}
}
