package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/Lllllllleong/suratflow/internal/dates"
	"github.com/Lllllllleong/suratflow/internal/logging"
	"github.com/Lllllllleong/suratflow/internal/models"
)

// SuratService covers everything done to records after submission:
// browsing, status changes, disposition and deletion. Mutations require an
// admin user.
type SuratService struct {
	persistence Persistence
	storage     Storage
	notifier    Notifier
	bucket      string
	now         func() time.Time
}

// NewSuratService wires a SuratService. A nil notifier disables
// notifications.
func NewSuratService(persistence Persistence, storage Storage, notifier Notifier, bucket string) *SuratService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &SuratService{
		persistence: persistence,
		storage:     storage,
		notifier:    notifier,
		bucket:      bucket,
		now:         time.Now,
	}
}

// List returns the kind's records filtered by q and sorted for browsing.
func (s *SuratService) List(ctx context.Context, kind models.Kind, q ListQuery) ([]models.Surat, error) {
	records, err := s.persistence.List(ctx, kind.Collection())
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind.Collection(), err)
	}
	records = FilterRecords(records, q, s.now())
	SortRecords(kind, records)
	return records, nil
}

// Get returns one record or a NotFound error.
func (s *SuratService) Get(ctx context.Context, kind models.Kind, id int64) (*models.Surat, error) {
	rec, err := s.persistence.GetByID(ctx, kind.Collection(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%d: %w", kind.Collection(), id, err)
	}
	if rec == nil {
		return nil, newNotFound()
	}
	return rec, nil
}

// UpdateStatus moves a record to another status of its kind's vocabulary.
func (s *SuratService) UpdateStatus(ctx context.Context, user *models.UserData, kind models.Kind, id int64, status string) (*models.Surat, error) {
	if !user.IsAdmin() {
		return nil, newForbidden()
	}
	status = strings.TrimSpace(status)
	if !kind.IsValidStatus(status) {
		return nil, newInvalidField(models.FieldStatus, msgInvalidStatus)
	}
	rec, err := s.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	rec.Status = status
	updated, err := s.update(ctx, kind, rec)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, user, models.EventStatusUpdated, kind, updated)
	return updated, nil
}

// Dispose records who signed the record off. signature is PNG data.
func (s *SuratService) Dispose(ctx context.Context, user *models.UserData, kind models.Kind, id int64, signerName string, signature []byte) (*models.Surat, error) {
	if !user.IsAdmin() {
		return nil, newForbidden()
	}
	signerName = strings.TrimSpace(signerName)
	if signerName == "" {
		return nil, newFieldMissing("nama_penerima", "Nama")
	}
	if len(signature) == 0 {
		return nil, newFieldMissing("tanda_tangan", "Tanda tangan")
	}
	if _, err := png.DecodeConfig(bytes.NewReader(signature)); err != nil {
		return nil, &SuratError{Kind: ErrInvalidField, Field: "tanda_tangan", Message: "Tanda tangan harus berupa gambar PNG", Err: err}
	}

	rec, err := s.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	rec.SignerName = signerName
	rec.SignatureImage = base64.StdEncoding.EncodeToString(signature)
	rec.DispositionTimestamp = dates.Timestamp(s.now())

	updated, err := s.update(ctx, kind, rec)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, user, models.EventDisposed, kind, updated)
	return updated, nil
}

// DecodeSignature parses a base64 PNG, tolerating a data URL prefix.
func DecodeSignature(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if i := strings.Index(encoded, ","); strings.HasPrefix(encoded, "data:") && i >= 0 {
		encoded = encoded[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &SuratError{Kind: ErrInvalidField, Field: "tanda_tangan", Message: "Tanda tangan tidak valid", Err: err}
	}
	return data, nil
}

// Delete removes a record, deleting its attachment first. A failed
// attachment delete is logged and does not stop the record delete.
func (s *SuratService) Delete(ctx context.Context, user *models.UserData, kind models.Kind, id int64) error {
	if !user.IsAdmin() {
		return newForbidden()
	}
	rec, err := s.Get(ctx, kind, id)
	if err != nil {
		return err
	}

	logCtx := slog.With("collection", kind.Collection(), "id", id)
	if rec.AttachmentURL != "" {
		name := ObjectNameFromURL(rec.AttachmentURL)
		deleted, err := s.storage.Delete(ctx, s.bucket, name)
		switch {
		case err != nil:
			logCtx.ErrorContext(ctx, "Failed to delete attachment", "object", name, logging.ErrKey, err)
		case !deleted:
			logCtx.WarnContext(ctx, "Attachment already missing", "object", name)
		}
	}

	ok, err := s.persistence.Delete(ctx, kind.Collection(), id)
	if err != nil || !ok {
		return newSaveFailed(msgDeleteFailed, err)
	}
	logCtx.InfoContext(ctx, "Record deleted.")
	s.notify(ctx, user, models.EventDeleted, kind, rec)
	return nil
}

func (s *SuratService) update(ctx context.Context, kind models.Kind, rec *models.Surat) (*models.Surat, error) {
	updated, err := s.persistence.Update(ctx, kind.Collection(), rec.ID, rec)
	if err != nil {
		return nil, newSaveFailed(msgUpdateFailed, err)
	}
	if updated == nil {
		return nil, newNotFound()
	}
	return updated, nil
}

func (s *SuratService) notify(ctx context.Context, user *models.UserData, eventType string, kind models.Kind, rec *models.Surat) {
	ev := models.SuratEvent{
		Type:         eventType,
		Kind:         kind,
		ID:           rec.ID,
		AgendaNumber: rec.AgendaNumber,
		Status:       rec.Status,
		Actor:        user.NIP,
	}
	if err := s.notifier.Notify(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to notify workflow", "eventType", eventType, logging.ErrKey, err)
	}
}

// ObjectNameFromURL extracts the object name from a public attachment URL:
// the unescaped last path segment.
func ObjectNameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return raw[strings.LastIndex(raw, "/")+1:]
	}
	return path.Base(u.Path)
}
