package kv

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	v1, err := s.Put(ctx, "/a", []byte("one"))
	require.NoError(t, err)

	res, err := s.Get(ctx, "/a")
	require.NoError(t, err)
	assert.True(t, res.Exists)
	assert.Equal(t, []byte("one"), res.Value)
	assert.Equal(t, v1, res.Version)

	missing, err := s.Get(ctx, "/b")
	require.NoError(t, err)
	assert.False(t, missing.Exists)
}

func TestMemoryStoreCompareAndSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	v1, err := s.Put(ctx, "/doc", []byte("v1"), WithExpectedVersion(0))
	require.NoError(t, err)

	_, err = s.Put(ctx, "/doc", []byte("dup"), WithExpectedVersion(0))
	assert.True(t, errors.Is(err, ErrVersionMismatch), "create over existing key must fail")

	v2, err := s.Put(ctx, "/doc", []byte("v2"), WithExpectedVersion(v1))
	require.NoError(t, err)
	assert.Greater(t, int64(v2), int64(v1))

	_, err = s.Put(ctx, "/doc", []byte("stale"), WithExpectedVersion(v1))
	assert.ErrorIs(t, err, ErrVersionMismatch)
}

func TestMemoryStoreListPrefixAndLimit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, k := range []string{"/c/3", "/c/1", "/c/2", "/d/1"} {
		_, err := s.Put(ctx, k, []byte(k))
		require.NoError(t, err)
	}

	all, err := s.List(ctx, "/c/", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "/c/1", all[0].Key)
	assert.Equal(t, "/c/3", all[2].Key)

	limited, err := s.List(ctx, "/c/", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestMemoryStoreDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Put(ctx, "/x", []byte("x"))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "/x"))
	require.NoError(t, s.Delete(ctx, "/x"))
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStoreClosed(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Close())

	_, err := s.Get(ctx, "/a")
	assert.ErrorIs(t, err, ErrStoreClosed)
	_, err = s.List(ctx, "/", 0)
	assert.ErrorIs(t, err, ErrStoreClosed)
}

type recordedOp struct {
	op      string
	success bool
}

type fakeRecorder struct {
	ops []recordedOp
}

func (r *fakeRecorder) RecordOperation(op string, _ float64, success bool) {
	r.ops = append(r.ops, recordedOp{op: op, success: success})
}

func TestInstrumentedStoreRecordsOperations(t *testing.T) {
	ctx := context.Background()
	rec := &fakeRecorder{}
	s := NewInstrumentedStore(NewMemoryStore(), rec)

	_, _ = s.Put(ctx, "/k", []byte("v"))
	_, _ = s.Get(ctx, "/k")
	_, _ = s.List(ctx, "/", 0)
	_ = s.Delete(ctx, "/k")
	_, _ = s.Put(ctx, "/k", []byte("v"), WithExpectedVersion(42))

	require.Len(t, rec.ops, 5)
	assert.Equal(t, recordedOp{OpPut, true}, rec.ops[0])
	assert.Equal(t, recordedOp{OpGet, true}, rec.ops[1])
	assert.Equal(t, recordedOp{OpList, true}, rec.ops[2])
	assert.Equal(t, recordedOp{OpDelete, true}, rec.ops[3])
	assert.Equal(t, recordedOp{OpPut, false}, rec.ops[4])
}
