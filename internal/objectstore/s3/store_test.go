package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/livecart/housekeeper/internal/objectstore"
	"github.com/livecart/housekeeper/internal/objectstore/miniotest"
)

var (
	testServer       *miniotest.Server
	minioSkipMessage string
)

func TestMain(m *testing.M) {
	server, err := miniotest.Start("19000")
	if err != nil {
		minioSkipMessage = fmt.Sprintf("MinIO not available: %v", err)
	}
	testServer = server

	code := m.Run()
	if testServer != nil {
		testServer.Close()
	}
	os.Exit(code)
}

func skipIfMinioUnavailable(t *testing.T) {
	t.Helper()
	if testServer == nil {
		t.Skip(minioSkipMessage)
	}
}

func testStore(t *testing.T, bucket string) *Store {
	t.Helper()
	skipIfMinioUnavailable(t)
	ctx := context.Background()

	store, err := New(ctx, Config{
		Bucket:          bucket,
		Endpoint:        testServer.Endpoint(),
		Region:          miniotest.Region,
		AccessKeyID:     miniotest.AccessKey,
		SecretAccessKey: miniotest.SecretKey,
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	_, err = store.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
	if err != nil && !strings.Contains(err.Error(), "BucketAlreadyOwnedByYou") {
		t.Fatalf("Failed to create bucket: %v", err)
	}

	t.Cleanup(func() {
		objects, _ := store.List(ctx, "")
		for _, obj := range objects {
			store.Delete(ctx, obj.Key)
		}
		store.client.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucket)})
		store.Close()
	})

	return store
}

func putObject(t *testing.T, store *Store, key string, size int) {
	t.Helper()
	_, err := store.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:        aws.String(store.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(make([]byte, size)),
		ContentLength: aws.Int64(int64(size)),
		ContentType:   aws.String("video/mp4"),
	})
	if err != nil {
		t.Fatalf("PutObject %q failed: %v", key, err)
	}
}

func TestNew(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil {
		t.Fatal("expected error for missing bucket")
	}
	if !strings.Contains(err.Error(), "bucket name is required") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestListSizes(t *testing.T) {
	store := testStore(t, "test-list")
	ctx := context.Background()

	putObject(t, store, "live_streams/s1.mp4", 1024)
	putObject(t, store, "live_streams/s2.mp4", 2048)
	putObject(t, store, "products/p1.jpg", 10)

	results, err := store.List(ctx, "live_streams/")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(results))
	}

	var total int64
	for _, obj := range results {
		if !strings.HasPrefix(obj.Key, "live_streams/") {
			t.Errorf("unexpected key %q", obj.Key)
		}
		if obj.LastModified == 0 {
			t.Errorf("expected LastModified for %q", obj.Key)
		}
		total += obj.Size
	}
	if total != 3072 {
		t.Errorf("total size = %d, want 3072", total)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	store := testStore(t, "test-delete")
	ctx := context.Background()

	putObject(t, store, "live_streams/s1.mp4", 16)

	if err := store.Delete(ctx, "live_streams/s1.mp4"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, "live_streams/s1.mp4"); err != nil {
		t.Errorf("delete of nonexistent key should succeed, got: %v", err)
	}

	results, err := store.List(ctx, "live_streams/")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty listing, got %d objects", len(results))
	}
}

func TestListMissingBucket(t *testing.T) {
	skipIfMinioUnavailable(t)
	store, err := New(context.Background(), Config{
		Bucket:          "no-such-bucket",
		Endpoint:        testServer.Endpoint(),
		AccessKeyID:     miniotest.AccessKey,
		SecretAccessKey: miniotest.SecretKey,
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	_, err = store.List(context.Background(), "live_streams/")
	if !errors.Is(err, objectstore.ErrBucketNotFound) {
		t.Errorf("expected ErrBucketNotFound, got: %v", err)
	}
}

func TestClosedStore(t *testing.T) {
	store, err := New(context.Background(), Config{Bucket: "test-closed", Region: miniotest.Region})
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	store.Close()

	if _, err := store.List(context.Background(), ""); !errors.Is(err, objectstore.ErrStoreClosed) {
		t.Errorf("expected ErrStoreClosed, got: %v", err)
	}
	if err := store.Delete(context.Background(), "any-key"); !errors.Is(err, objectstore.ErrStoreClosed) {
		t.Errorf("expected ErrStoreClosed, got: %v", err)
	}
}
