package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

var (
	// ErrObjectNotFound is returned when the object does not exist.
	ErrObjectNotFound = errors.New("object not found")
	// ErrPreconditionFailed is returned when a conditional write lost to
	// another writer.
	ErrPreconditionFailed = errors.New("object precondition failed")
)

// Bucket stores attachment objects in Cloud Storage.
type Bucket struct {
	client        *storage.Client
	publicBaseURL string
	maxRetries    int
	backoff       time.Duration
	writeTimeout  time.Duration
	writeObject   func(ctx context.Context, bucket, name string, data []byte, conds *storage.Conditions) error
}

// NewBucket wraps client. publicBaseURL prefixes the URLs returned by
// Upload.
func NewBucket(client *storage.Client, publicBaseURL string) *Bucket {
	b := &Bucket{
		client:        client,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		maxRetries:    4,
		backoff:       time.Second,
		writeTimeout:  50 * time.Second,
	}
	b.writeObject = b.write
	return b
}

// PublicURL is the URL an object is served from.
func (b *Bucket) PublicURL(bucket, name string) string {
	return fmt.Sprintf("%s/%s/%s", b.publicBaseURL, bucket, url.PathEscape(name))
}

// Upload writes data to a new object and returns its public URL. The write
// only succeeds if the object does not exist yet; transient failures are
// retried with exponential backoff.
func (b *Bucket) Upload(ctx context.Context, bucket, name string, data []byte) (string, error) {
	conds := storage.Conditions{DoesNotExist: true}
	if err := b.writeWithRetry(ctx, bucket, name, data, &conds); err != nil {
		return "", err
	}
	return b.PublicURL(bucket, name), nil
}

// Replace overwrites an existing object. A positive generation makes the
// write conditional on the object still being at that generation.
func (b *Bucket) Replace(ctx context.Context, bucket, name string, data []byte, generation int64) error {
	var conds *storage.Conditions
	if generation > 0 {
		conds = &storage.Conditions{GenerationMatch: generation}
	}
	return b.writeWithRetry(ctx, bucket, name, data, conds)
}

func (b *Bucket) writeWithRetry(ctx context.Context, bucket, name string, data []byte, conds *storage.Conditions) error {
	backoff := b.backoff
	var lastErr error

	for i := 0; i < b.maxRetries; i++ {
		err := b.writeObject(ctx, bucket, name, data, conds)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrPreconditionFailed) {
			return err
		}

		lastErr = err
		slog.Warn(
			"Upload failed, will retry.",
			"gcsObject", name,
			"attempt", i+1,
			"maxRetries", b.maxRetries,
			"backoff", backoff.String(),
			"error", err,
		)

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			slog.Error("Context cancelled during backoff. Aborting retries.", "gcsObject", name, "error", ctx.Err())
			return ctx.Err()
		}
	}
	slog.Error("Upload failed after all retries.", "gcsObject", name, "error", lastErr)
	return fmt.Errorf("upload for %s failed after all retries: %w", name, lastErr)
}

func (b *Bucket) write(ctx context.Context, bucket, name string, data []byte, conds *storage.Conditions) error {
	writeCtx, cancel := context.WithTimeout(ctx, b.writeTimeout)
	defer cancel()

	obj := b.client.Bucket(bucket).Object(name)
	if conds != nil {
		obj = obj.If(*conds)
	}
	w := obj.NewWriter(writeCtx)
	w.ContentType = http.DetectContentType(data)

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return classifyWriteError(name, err)
	}
	if err := w.Close(); err != nil {
		return classifyWriteError(name, err)
	}
	return nil
}

func classifyWriteError(name string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
		return fmt.Errorf("%w: %s", ErrPreconditionFailed, name)
	}
	return fmt.Errorf("failed to write gcs object %s: %w", name, err)
}

// Open streams an object. Missing objects yield ErrObjectNotFound.
func (b *Bucket) Open(ctx context.Context, bucket, name string) (io.ReadCloser, error) {
	r, err := b.client.Bucket(bucket).Object(name).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: gs://%s/%s", ErrObjectNotFound, bucket, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", bucket, name, err)
	}
	return r, nil
}

// Delete removes an object, reporting false if it was already gone.
func (b *Bucket) Delete(ctx context.Context, bucket, name string) (bool, error) {
	err := b.client.Bucket(bucket).Object(name).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to delete gs://%s/%s: %w", bucket, name, err)
	}
	return true, nil
}
