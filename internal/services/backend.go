package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/suratflow/internal/attachment"
	"github.com/Lllllllleong/suratflow/internal/gcp"
	"github.com/Lllllllleong/suratflow/internal/store"
)

// Backend holds the Google Cloud clients the services run on.
type Backend struct {
	Config    *Config
	Firestore *store.FirestoreStore
	Bucket    *store.Bucket
	Notifier  Notifier

	closers []func() error
}

// NewBackendFromEnv loads Config and creates the Firestore, Cloud Storage
// and, when WORKFLOW_ID is set, Workflows clients.
func NewBackendFromEnv(ctx context.Context) (*Backend, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	b := &Backend{Config: cfg}

	fsClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID, cfg.FirestoreDatabase)
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, fsClient.Close)
	b.Firestore = store.NewFirestoreStore(fsClient, cfg.CountersCollection, cfg.PegawaiCollection)

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}
	b.closers = append(b.closers, storageClient.Close)
	b.Bucket = store.NewBucket(storageClient, cfg.PublicBaseURL)

	if cfg.NotificationsEnabled() {
		notifier, err := gcp.NewWorkflowNotifier(ctx, cfg.ProjectID, cfg.WorkflowLocation, cfg.WorkflowID)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, notifier.Close)
		b.Notifier = notifier
	}

	slog.Info("Backend initialized.",
		"projectId", cfg.ProjectID,
		"bucket", cfg.AttachmentBucket,
		"duplicatePolicy", string(cfg.DuplicatePolicy),
		"notifications", cfg.NotificationsEnabled(),
	)
	return b, nil
}

// Validator returns a RecordValidator over the Firestore store.
func (b *Backend) Validator() *RecordValidator {
	return NewRecordValidator(NewDuplicateChecker(b.Firestore), b.Config.DuplicatePolicy)
}

// Pipeline returns a SubmissionPipeline using validator.
func (b *Backend) Pipeline(validator *RecordValidator) *SubmissionPipeline {
	return NewSubmissionPipeline(validator, attachment.NewCompressor(), b.Bucket, b.Firestore, b.Notifier, PipelineConfig{
		Bucket:             b.Config.AttachmentBucket,
		MaxFileSize:        b.Config.MaxFileSizeBytes,
		AttachmentRequired: b.Config.AttachmentRequired,
	})
}

// SuratService returns the record service.
func (b *Backend) SuratService() *SuratService {
	return NewSuratService(b.Firestore, b.Bucket, b.Notifier, b.Config.AttachmentBucket)
}

// AuthService returns the login service.
func (b *Backend) AuthService() *AuthService {
	return NewAuthService(b.Firestore)
}

// Close releases every client.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	b.closers = nil
	return errors.Join(errs...)
}
