package store

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func testBucket(write func(ctx context.Context, bucket, name string, data []byte, conds *storage.Conditions) error) *Bucket {
	b := NewBucket(nil, "https://storage.googleapis.com/")
	b.backoff = time.Millisecond
	b.writeObject = write
	return b
}

func TestPublicURL(t *testing.T) {
	b := NewBucket(nil, "https://storage.googleapis.com/")
	assert.Equal(t, "https://storage.googleapis.com/surat_files/abc_scan.jpg", b.PublicURL("surat_files", "abc_scan.jpg"))
	assert.Equal(t, "https://storage.googleapis.com/surat_files/a%20b.pdf", b.PublicURL("surat_files", "a b.pdf"))
}

func TestUploadRetriesTransientFailures(t *testing.T) {
	attempts := 0
	var seen *storage.Conditions
	b := testBucket(func(_ context.Context, _, _ string, _ []byte, conds *storage.Conditions) error {
		attempts++
		seen = conds
		if attempts < 3 {
			return errors.New("connection reset")
		}
		return nil
	})

	url, err := b.Upload(context.Background(), "surat_files", "x.jpg", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, "https://storage.googleapis.com/surat_files/x.jpg", url)
	assert.Equal(t, 3, attempts)
	require.NotNil(t, seen)
	assert.True(t, seen.DoesNotExist)
}

func TestUploadGivesUpAfterMaxRetries(t *testing.T) {
	attempts := 0
	b := testBucket(func(context.Context, string, string, []byte, *storage.Conditions) error {
		attempts++
		return errors.New("unavailable")
	})

	url, err := b.Upload(context.Background(), "surat_files", "x.jpg", []byte("data"))
	assert.Empty(t, url)
	assert.ErrorContains(t, err, "failed after all retries")
	assert.Equal(t, 4, attempts)
}

func TestUploadDoesNotRetryPreconditionFailure(t *testing.T) {
	attempts := 0
	b := testBucket(func(_ context.Context, _, name string, _ []byte, _ *storage.Conditions) error {
		attempts++
		return classifyWriteError(name, &googleapi.Error{Code: http.StatusPreconditionFailed})
	})

	_, err := b.Upload(context.Background(), "surat_files", "x.jpg", []byte("data"))
	assert.ErrorIs(t, err, ErrPreconditionFailed)
	assert.Equal(t, 1, attempts)
}

func TestUploadStopsOnCancelledContext(t *testing.T) {
	b := testBucket(func(context.Context, string, string, []byte, *storage.Conditions) error {
		return errors.New("unavailable")
	})
	b.backoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.Upload(ctx, "surat_files", "x.jpg", []byte("data"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReplaceConditions(t *testing.T) {
	var seen *storage.Conditions
	b := testBucket(func(_ context.Context, _, _ string, _ []byte, conds *storage.Conditions) error {
		seen = conds
		return nil
	})

	require.NoError(t, b.Replace(context.Background(), "surat_files", "x.jpg", []byte("d"), 42))
	require.NotNil(t, seen)
	assert.Equal(t, int64(42), seen.GenerationMatch)

	require.NoError(t, b.Replace(context.Background(), "surat_files", "x.jpg", []byte("d"), 0))
	assert.Nil(t, seen)
}

func TestClassifyWriteError(t *testing.T) {
	assert.ErrorIs(t, classifyWriteError("a", &googleapi.Error{Code: 412}), ErrPreconditionFailed)
	err := classifyWriteError("a", errors.New("boom"))
	assert.NotErrorIs(t, err, ErrPreconditionFailed)
	assert.ErrorContains(t, err, "boom")
}
