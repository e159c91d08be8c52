package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/suratflow/internal/attachment"
	"github.com/Lllllllleong/suratflow/internal/logging"
	"github.com/Lllllllleong/suratflow/internal/store"
)

// ObjectStore is the object access the attachment guard needs.
type ObjectStore interface {
	Open(ctx context.Context, bucket, name string) (io.ReadCloser, error)
	Replace(ctx context.Context, bucket, name string, data []byte, generation int64) error
	Delete(ctx context.Context, bucket, name string) (bool, error)
}

// GCSEvent is the payload of a Cloud Storage object finalize event.
type GCSEvent struct {
	Bucket      string            `json:"bucket"`
	Name        string            `json:"name"`
	ContentType string            `json:"contentType"`
	Size        string            `json:"size"`
	Generation  string            `json:"generation"`
	Metadata    map[string]string `json:"metadata"`
}

// GuardConfig tunes AttachmentGuard.
type GuardConfig struct {
	Bucket      string
	MaxFileSize int64
}

// AttachmentGuard enforces the attachment size limit on objects written to
// the attachment bucket by any client. Oversized images are recompressed in
// place, other oversized objects are deleted. Rewriting an object fires a
// new event that finds it within the limit.
type AttachmentGuard struct {
	objects    ObjectStore
	compressor *attachment.Compressor
	config     GuardConfig
}

// NewAttachmentGuard wires a guard over objects.
func NewAttachmentGuard(objects ObjectStore, compressor *attachment.Compressor, config GuardConfig) *AttachmentGuard {
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = attachment.DefaultMaxFileSize
	}
	return &AttachmentGuard{objects: objects, compressor: compressor, config: config}
}

// NewAttachmentGuardFromEnv builds a guard from the environment and a new
// Cloud Storage client.
func NewAttachmentGuardFromEnv(ctx context.Context) (*AttachmentGuard, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}
	g := NewAttachmentGuard(
		store.NewBucket(storageClient, cfg.PublicBaseURL),
		attachment.NewCompressor(),
		GuardConfig{Bucket: cfg.AttachmentBucket, MaxFileSize: cfg.MaxFileSizeBytes},
	)
	slog.Info("Attachment guard initialized.", "bucket", cfg.AttachmentBucket, "maxFileSize", cfg.MaxFileSizeBytes)
	return g, nil
}

// Process checks one finalized object. Only transient storage failures are
// returned, so the event is retried for those alone.
func (g *AttachmentGuard) Process(ctx context.Context, e GCSEvent) error {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name, "generation", e.Generation)

	if e.Bucket != g.config.Bucket {
		logCtx.Info("Ignoring object outside the attachment bucket.")
		return nil
	}
	if size, err := strconv.ParseInt(e.Size, 10, 64); err == nil && size <= g.config.MaxFileSize {
		logCtx.Debug("Object within size limit.", "size", size)
		return nil
	}

	r, err := g.objects.Open(ctx, e.Bucket, e.Name)
	if errors.Is(err, store.ErrObjectNotFound) {
		logCtx.Info("Object already gone.")
		return nil
	}
	if err != nil {
		logCtx.Error("Failed to download object", logging.ErrKey, err)
		return err
	}
	kind := attachment.KindFromContentType(e.ContentType)
	if kind == attachment.KindUnknown {
		kind = ""
	}
	candidate, err := attachment.NewCandidate(r, e.Name, kind, attachment.ParseSource(e.Metadata["source"]))
	_ = r.Close()
	if err != nil {
		logCtx.Error("Failed to stage object locally", logging.ErrKey, err)
		return err
	}
	defer candidate.Release()

	size := attachment.Measure(candidate)
	logCtx = logCtx.With("size", size, "attachmentKind", string(candidate.Kind))
	if size <= g.config.MaxFileSize {
		logCtx.Info("Object within size limit.")
		return nil
	}

	if candidate.Kind != attachment.KindImage {
		logCtx.Warn("Deleting oversized attachment that cannot be compressed.", logging.PriorityCritical())
		return g.remove(ctx, logCtx, e)
	}

	data, err := candidate.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read staged object: %w", err)
	}
	compressed, err := g.compressor.Compress(data, g.config.MaxFileSize, attachment.ProfileFor(candidate.Source))
	if err != nil {
		logCtx.Warn("Deleting oversized image that cannot be compressed.", logging.ErrKey, err, logging.PriorityCritical())
		return g.remove(ctx, logCtx, e)
	}

	generation, _ := strconv.ParseInt(e.Generation, 10, 64)
	err = g.objects.Replace(ctx, e.Bucket, e.Name, compressed.Data, generation)
	if errors.Is(err, store.ErrPreconditionFailed) {
		logCtx.Info("Object changed while compressing; newer generation will be checked on its own event.")
		return nil
	}
	if err != nil {
		logCtx.Error("Failed to write compressed object", logging.ErrKey, err)
		return err
	}
	logCtx.Info("Oversized image compressed in place.", "newSize", compressed.Size(), "quality", compressed.Quality)
	return nil
}

func (g *AttachmentGuard) remove(ctx context.Context, logCtx *slog.Logger, e GCSEvent) error {
	deleted, err := g.objects.Delete(ctx, e.Bucket, e.Name)
	if err != nil {
		logCtx.Error("Failed to delete oversized object", logging.ErrKey, err)
		return err
	}
	if !deleted {
		logCtx.Info("Oversized object already deleted.")
	}
	return nil
}
