package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Lllllllleong/suratflow/internal/attachment"
	"github.com/Lllllllleong/suratflow/internal/dates"
	"github.com/Lllllllleong/suratflow/internal/logging"
	"github.com/Lllllllleong/suratflow/internal/models"
	"github.com/google/uuid"
)

var nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9]+`)

// PipelineConfig tunes SubmissionPipeline.
type PipelineConfig struct {
	Bucket             string
	MaxFileSize        int64
	AttachmentRequired bool
}

// SubmissionPipeline validates a new record, fits its attachment under the
// size limit, uploads it and persists the record. Steps run strictly in
// order and the first failing gate ends the submission.
type SubmissionPipeline struct {
	validator   *RecordValidator
	compressor  *attachment.Compressor
	storage     Storage
	persistence Persistence
	notifier    Notifier
	inspectPDF  func([]byte) (int, error)
	newName     func(name string) string
	config      PipelineConfig
}

// NewSubmissionPipeline wires a pipeline. A nil notifier disables
// notifications.
func NewSubmissionPipeline(validator *RecordValidator, compressor *attachment.Compressor, storage Storage, persistence Persistence, notifier Notifier, config PipelineConfig) *SubmissionPipeline {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = attachment.DefaultMaxFileSize
	}
	return &SubmissionPipeline{
		validator:   validator,
		compressor:  compressor,
		storage:     storage,
		persistence: persistence,
		notifier:    notifier,
		inspectPDF:  attachment.InspectPDF,
		newName:     objectName,
		config:      config,
	}
}

// Submit runs the pipeline for one record. att may be nil. The candidate's
// temp files are always released before Submit returns.
func (p *SubmissionPipeline) Submit(ctx context.Context, kind models.Kind, fields models.Surat, att *attachment.Candidate) models.SubmissionResult {
	defer func() {
		if err := att.Release(); err != nil {
			slog.Warn("Failed to release attachment", "error", err)
		}
	}()

	ctx = logging.AppendCtx(ctx, slog.String("kind", string(kind)))
	ctx = logging.AppendCtx(ctx, slog.String("nomorAgenda", fields.AgendaNumber))

	rec, warning, err := p.submit(ctx, kind, fields.Trimmed(), att)
	if err != nil {
		slog.WarnContext(ctx, "Submission rejected", "code", KindOf(err).String(), logging.ErrKey, err)
		var field string
		var se *SuratError
		if errors.As(err, &se) {
			field = se.Field
		}
		return models.SubmissionResult{
			ErrorMessage: MessageOf(err),
			Code:         KindOf(err).String(),
			Field:        field,
		}
	}

	slog.InfoContext(ctx, "Submission stored", "id", rec.ID, "hasAttachment", rec.AttachmentURL != "")
	if err := p.notifier.Notify(ctx, models.SuratEvent{
		Type:         models.EventSubmitted,
		Kind:         kind,
		ID:           rec.ID,
		AgendaNumber: rec.AgendaNumber,
		Status:       rec.Status,
	}); err != nil {
		slog.ErrorContext(ctx, "Failed to notify workflow", logging.ErrKey, err)
	}
	return models.SubmissionResult{Success: true, Warning: warning, Record: rec}
}

func (p *SubmissionPipeline) submit(ctx context.Context, kind models.Kind, rec models.Surat, att *attachment.Candidate) (*models.Surat, string, error) {
	rec.LetterDate = dates.ToDatabase(rec.LetterDate)
	rec.ReceivedDate = dates.ToDatabase(rec.ReceivedDate)
	rec.ID = 0
	rec.AttachmentURL = ""

	if out := p.validator.CheckRequired(kind, &rec); !out.Valid {
		return nil, "", out.Err()
	}
	if out := p.validator.CheckDuplicates(ctx, kind, &rec); !out.Valid {
		return nil, "", out.Err()
	}

	var warning string
	var uploaded string
	if att != nil {
		data, err := p.prepareAttachment(ctx, att)
		switch {
		case err != nil && KindOf(err) == ErrDecode && !p.config.AttachmentRequired:
			slog.WarnContext(ctx, "Dropping unreadable attachment", "name", att.Name, logging.ErrKey, err)
			warning = MessageOf(err)
		case err != nil:
			return nil, "", err
		default:
			uploaded = p.newName(att.Name)
			url, err := p.storage.Upload(ctx, p.config.Bucket, uploaded, data)
			if releaseErr := att.Release(); releaseErr != nil {
				slog.WarnContext(ctx, "Failed to release attachment", logging.ErrKey, releaseErr)
			}
			if err != nil {
				return nil, "", newUploadFailed(err)
			}
			if url == "" {
				return nil, "", newUploadFailed(errors.New("storage returned no url"))
			}
			rec.AttachmentURL = url
		}
	} else if p.config.AttachmentRequired {
		return nil, "", newFieldMissing("file", "File lampiran")
	}

	saved, err := p.persistence.Insert(ctx, kind.Collection(), &rec)
	if err == nil && (saved == nil || saved.ID == 0) {
		err = errors.New("no id assigned")
	}
	if err != nil {
		if uploaded != "" {
			if _, delErr := p.storage.Delete(ctx, p.config.Bucket, uploaded); delErr != nil {
				slog.ErrorContext(ctx, "Failed to remove orphaned attachment", "object", uploaded, logging.ErrKey, delErr, logging.PriorityCritical())
			}
		}
		return nil, "", newSaveFailed(msgSaveFailed, err)
	}
	return saved, warning, nil
}

// prepareAttachment returns the bytes to upload, compressing images that
// exceed the limit. PDFs and unknown files are never compressed.
func (p *SubmissionPipeline) prepareAttachment(ctx context.Context, att *attachment.Candidate) ([]byte, error) {
	limit := p.config.MaxFileSize
	size := attachment.Measure(att)

	data, err := att.ReadAll()
	if err != nil {
		return nil, newDecode(err)
	}
	if size == 0 {
		size = int64(len(data))
	}
	logCtx := slog.With("name", att.Name, "attachmentKind", string(att.Kind), "size", size, "limit", limit)

	switch att.Kind {
	case attachment.KindImage:
		if size <= limit {
			return data, nil
		}
		logCtx.InfoContext(ctx, "Compressing oversized image.", "source", string(att.Source))
		compressed, err := p.compressor.Compress(data, limit, attachment.ProfileFor(att.Source))
		switch {
		case errors.Is(err, attachment.ErrDecode):
			return nil, newDecode(err)
		case err != nil:
			return nil, newCompressionFailed(err)
		}
		if compressed.Size() > limit {
			return nil, newCompressionFailed(fmt.Errorf("compressed size %d exceeds limit %d", compressed.Size(), limit))
		}
		if compressed.Reencoded {
			if err := att.Replace(compressed.Data, ".jpg"); err != nil {
				return nil, newCompressionFailed(err)
			}
		}
		return compressed.Data, nil

	case attachment.KindPDF:
		if size > limit {
			return nil, newFileTooLarge(size, limit)
		}
		pages, err := p.inspectPDF(data)
		if err != nil {
			return nil, newDecode(err)
		}
		logCtx.InfoContext(ctx, "PDF attachment accepted.", "pageCount", pages)
		return data, nil

	default:
		if size > limit {
			return nil, newFileTooLarge(size, limit)
		}
		return data, nil
	}
}

// objectName builds a unique, storage-safe object name keeping the
// original extension.
func objectName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	base := sanitizeFileName(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	if base == "" {
		return uuid.NewString() + ext
	}
	return uuid.NewString() + "_" + base + ext
}

func sanitizeFileName(name string) string {
	sanitized := strings.Trim(nonAlphanumericRegex.ReplaceAllString(strings.ToLower(name), "_"), "_")
	const maxLength = 64
	if len(sanitized) > maxLength {
		sanitized = strings.Trim(sanitized[:maxLength], "_")
	}
	return sanitized
}
