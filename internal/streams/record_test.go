package streams

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/livecart/housekeeper/internal/docstore"
)

func TestFromDocument(t *testing.T) {
	deleteAt := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	doc := docstore.Document{
		ID:   "s1",
		Path: "live_streams/s1",
		Data: map[string]any{
			"status":            "ended",
			"autoDeleteEnabled": true,
			"deleteAt":          deleteAt,
			"recordedVideoUrl":  "https://host/o/live_streams%2Fs1.mp4",
			"createdAt":         "not a time",
		},
	}

	r := FromDocument(doc)
	assert.Equal(t, "s1", r.ID)
	assert.Equal(t, StatusEnded, r.Status)
	assert.True(t, r.AutoDeleteEnabled)
	assert.Equal(t, deleteAt, r.DeleteAt)
	assert.True(t, r.HasRecording())
	assert.True(t, r.CreatedAt.IsZero())
}

func TestFromDocumentDefaultsPath(t *testing.T) {
	r := FromDocument(docstore.Document{ID: "s9", Data: map[string]any{}})
	assert.Equal(t, "live_streams/s9", r.Path)
	assert.False(t, r.HasRecording())
	assert.Equal(t, Status(""), r.Status)
}

func TestExpiredFilters(t *testing.T) {
	now := time.Date(2026, 2, 2, 3, 0, 0, 0, time.UTC)
	filters := ExpiredFilters(now)

	due := map[string]any{"autoDeleteEnabled": true, "deleteAt": now.Add(-time.Minute), "status": "ended"}
	assert.True(t, docstore.Match(due, filters))

	for name, data := range map[string]map[string]any{
		"auto delete off": {"autoDeleteEnabled": false, "deleteAt": now.Add(-time.Minute), "status": "ended"},
		"not yet due":     {"autoDeleteEnabled": true, "deleteAt": now.Add(time.Minute), "status": "ended"},
		"still active":    {"autoDeleteEnabled": true, "deleteAt": now.Add(-time.Minute), "status": "active"},
		"already deleted": {"autoDeleteEnabled": true, "deleteAt": now.Add(-time.Minute), "status": "deleted"},
		"no deleteAt":     {"autoDeleteEnabled": true, "status": "ended"},
	} {
		assert.False(t, docstore.Match(data, filters), name)
	}
}
