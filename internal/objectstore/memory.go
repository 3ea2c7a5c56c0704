package objectstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store. It backs the "memory" backend and
// tests, which can inject failures with FailList and FailDelete.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]ObjectMeta
	closed  bool

	listErr    error
	deleteErrs map[string]error
	deleted    []string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects:    make(map[string]ObjectMeta),
		deleteErrs: make(map[string]error),
	}
}

// Put records an object of the given size.
func (s *MemoryStore) Put(key string, size int64, contentType string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[key] = ObjectMeta{
		Key:          key,
		Size:         size,
		ContentType:  contentType,
		LastModified: time.Now().UnixMilli(),
	}
}

// Exists reports whether key is stored.
func (s *MemoryStore) Exists(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok
}

// FailList makes every subsequent List return err. A nil err clears it.
func (s *MemoryStore) FailList(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = err
}

// FailDelete makes Delete of key return err. A nil err clears it.
func (s *MemoryStore) FailDelete(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.deleteErrs, key)
		return
	}
	s.deleteErrs[key] = err
}

// DeleteCalls returns the keys passed to Delete, in call order, including
// failed and no-op calls.
func (s *MemoryStore) DeleteCalls() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.deleted...)
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	s.deleted = append(s.deleted, key)
	if err, ok := s.deleteErrs[key]; ok {
		return &ObjectError{Op: "Delete", Key: key, Err: err}
	}
	delete(s.objects, key)
	return nil
}

func (s *MemoryStore) List(_ context.Context, prefix string) ([]ObjectMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if s.listErr != nil {
		return nil, &ObjectError{Op: "List", Key: prefix, Err: s.listErr}
	}

	var result []ObjectMeta
	for key, meta := range s.objects {
		if strings.HasPrefix(key, prefix) {
			result = append(result, meta)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return result, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ Store = (*MemoryStore)(nil)
