package oxia

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	oxiaclient "github.com/oxia-db/oxia/oxia"

	"github.com/livecart/housekeeper/internal/kv"
)

// Config configures the Oxia store.
type Config struct {
	// ServiceAddress is the Oxia service endpoint (e.g., "localhost:6648").
	ServiceAddress string

	// Namespace is the Oxia namespace that scopes every key.
	Namespace string

	// RequestTimeout is the timeout for individual requests.
	// Zero keeps the client default.
	RequestTimeout time.Duration
}

// Store implements kv.Store using Oxia.
type Store struct {
	client oxiaclient.SyncClient
	config Config

	mu     sync.RWMutex
	closed bool
}

// New creates a new Oxia-backed store.
func New(_ context.Context, cfg Config) (*Store, error) {
	if cfg.ServiceAddress == "" {
		return nil, errors.New("oxia: service address is required")
	}
	if cfg.Namespace == "" {
		return nil, errors.New("oxia: namespace is required")
	}

	opts := []oxiaclient.ClientOption{
		oxiaclient.WithNamespace(cfg.Namespace),
	}
	if cfg.RequestTimeout > 0 {
		opts = append(opts, oxiaclient.WithRequestTimeout(cfg.RequestTimeout))
	}

	client, err := oxiaclient.NewSyncClient(cfg.ServiceAddress, opts...)
	if err != nil {
		return nil, fmt.Errorf("oxia: failed to create client: %w", err)
	}

	return &Store{client: client, config: cfg}, nil
}

// Oxia versions start at 0, but kv uses 0 to mean "key doesn't exist".
func toKVVersion(oxiaVersion int64) kv.Version {
	return kv.Version(oxiaVersion + 1)
}

func toOxiaVersion(v kv.Version) int64 {
	return int64(v - 1)
}

func (s *Store) checkClosed() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return kv.ErrStoreClosed
	}
	return nil
}

// Get retrieves a value by key.
func (s *Store) Get(ctx context.Context, key string) (kv.GetResult, error) {
	if err := s.checkClosed(); err != nil {
		return kv.GetResult{}, err
	}

	_, value, version, err := s.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, oxiaclient.ErrKeyNotFound) {
			return kv.GetResult{Exists: false}, nil
		}
		return kv.GetResult{}, fmt.Errorf("oxia: get failed: %w", err)
	}

	return kv.GetResult{
		Value:   value,
		Version: toKVVersion(version.VersionId),
		Exists:  true,
	}, nil
}

// Put stores a value with optional compare-and-set.
func (s *Store) Put(ctx context.Context, key string, value []byte, opts ...kv.PutOption) (kv.Version, error) {
	if err := s.checkClosed(); err != nil {
		return 0, err
	}

	var oxiaOpts []oxiaclient.PutOption
	if expected := kv.ExtractExpectedVersion(opts); expected != nil {
		if *expected == 0 {
			oxiaOpts = append(oxiaOpts, oxiaclient.ExpectedRecordNotExists())
		} else {
			oxiaOpts = append(oxiaOpts, oxiaclient.ExpectedVersionId(toOxiaVersion(*expected)))
		}
	}

	_, version, err := s.client.Put(ctx, key, value, oxiaOpts...)
	if err != nil {
		if errors.Is(err, oxiaclient.ErrUnexpectedVersionId) {
			return 0, kv.ErrVersionMismatch
		}
		return 0, fmt.Errorf("oxia: put failed: %w", err)
	}

	return toKVVersion(version.VersionId), nil
}

// Delete removes a key. A missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.checkClosed(); err != nil {
		return err
	}

	if err := s.client.Delete(ctx, key); err != nil {
		if errors.Is(err, oxiaclient.ErrKeyNotFound) {
			return nil
		}
		return fmt.Errorf("oxia: delete failed: %w", err)
	}
	return nil
}

// List returns keys under prefix in Oxia's key order.
func (s *Store) List(ctx context.Context, prefix string, limit int) ([]kv.KV, error) {
	if err := s.checkClosed(); err != nil {
		return nil, err
	}

	endKey := prefixEnd(prefix)
	if len(prefix) > 0 && prefix[len(prefix)-1] == '/' {
		endKey = prefix + "/"
	}

	results := s.client.RangeScan(ctx, prefix, endKey)

	var kvs []kv.KV
	for result := range results {
		if result.Err != nil {
			go drainRangeScan(results)
			return nil, fmt.Errorf("oxia: list failed: %w", result.Err)
		}

		kvs = append(kvs, kv.KV{
			Key:     result.Key,
			Value:   result.Value,
			Version: toKVVersion(result.Version.VersionId),
		})

		if limit > 0 && len(kvs) >= limit {
			go drainRangeScan(results)
			return kvs, nil
		}
	}

	return kvs, nil
}

// Close releases the Oxia client.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}

// prefixEnd returns the key that is lexicographically greater than all keys
// with the given prefix.
func prefixEnd(prefix string) string {
	if prefix == "" {
		return ""
	}

	b := []byte(prefix)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 0xFF {
			b[i]++
			return string(b[:i+1])
		}
	}
	return ""
}

func drainRangeScan(results <-chan oxiaclient.GetResult) {
	for range results {
	}
}

var _ kv.Store = (*Store)(nil)
