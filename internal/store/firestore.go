// Package store persists records in Firestore and attachments in Cloud
// Storage.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/suratflow/internal/models"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore keeps one document per record, keyed by its integer ID.
// IDs come from a per-collection counter document bumped in the same
// transaction that creates the record.
type FirestoreStore struct {
	client   *firestore.Client
	counters string
	pegawai  string
	now      func() time.Time
}

// NewFirestoreStore wraps client. counters and pegawai name the counter and
// employee collections.
func NewFirestoreStore(client *firestore.Client, counters, pegawai string) *FirestoreStore {
	return &FirestoreStore{client: client, counters: counters, pegawai: pegawai, now: time.Now}
}

type counter struct {
	Last int64 `firestore:"last"`
}

func docID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// Insert allocates the next ID for collection and stores rec under it.
func (s *FirestoreStore) Insert(ctx context.Context, collection string, rec *models.Surat) (*models.Surat, error) {
	saved := *rec
	saved.CreatedAt = s.now().UTC()
	counterRef := s.client.Collection(s.counters).Doc(collection)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var c counter
		snap, err := tx.Get(counterRef)
		switch {
		case isNotFound(err):
		case err != nil:
			return fmt.Errorf("failed to read id counter: %w", err)
		default:
			if err := snap.DataTo(&c); err != nil {
				return fmt.Errorf("failed to decode id counter: %w", err)
			}
		}

		saved.ID = c.Last + 1
		if err := tx.Set(counterRef, counter{Last: saved.ID}); err != nil {
			return err
		}
		return tx.Create(s.client.Collection(collection).Doc(docID(saved.ID)), saved)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	return &saved, nil
}

// Update overwrites the mutable fields of record id. It returns nil when the
// record does not exist.
func (s *FirestoreStore) Update(ctx context.Context, collection string, id int64, rec *models.Surat) (*models.Surat, error) {
	ref := s.client.Collection(collection).Doc(docID(id))
	if _, err := ref.Update(ctx, recordUpdates(rec)); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update %s/%d: %w", collection, id, err)
	}
	return s.GetByID(ctx, collection, id)
}

func recordUpdates(rec *models.Surat) []firestore.Update {
	return []firestore.Update{
		{Path: models.FieldCounterpart, Value: rec.Counterpart},
		{Path: models.FieldLetterNumber, Value: rec.LetterNumber},
		{Path: models.FieldLetterDate, Value: rec.LetterDate},
		{Path: models.FieldAgendaNumber, Value: rec.AgendaNumber},
		{Path: models.FieldReceivedDate, Value: rec.ReceivedDate},
		{Path: models.FieldSubject, Value: rec.Subject},
		{Path: models.FieldStatus, Value: rec.Status},
		{Path: models.FieldAttachmentURL, Value: rec.AttachmentURL},
		{Path: "nama_penerima", Value: rec.SignerName},
		{Path: "tanda_tangan", Value: rec.SignatureImage},
		{Path: "timestamp_disposisi", Value: rec.DispositionTimestamp},
	}
}

// Exists reports whether any document in collection has field == value.
func (s *FirestoreStore) Exists(ctx context.Context, collection, field, value string) (bool, error) {
	docs, err := s.client.Collection(collection).Where(field, "==", value).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return false, fmt.Errorf("failed to query %s for %s: %w", collection, field, err)
	}
	return len(docs) > 0, nil
}

// GetByID returns the record or nil when it does not exist.
func (s *FirestoreStore) GetByID(ctx context.Context, collection string, id int64) (*models.Surat, error) {
	snap, err := s.client.Collection(collection).Doc(docID(id)).Get(ctx)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%d: %w", collection, id, err)
	}
	var rec models.Surat
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode %s/%d: %w", collection, id, err)
	}
	return &rec, nil
}

// Delete removes record id, reporting false if it did not exist.
func (s *FirestoreStore) Delete(ctx context.Context, collection string, id int64) (bool, error) {
	_, err := s.client.Collection(collection).Doc(docID(id)).Delete(ctx, firestore.Exists)
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to delete %s/%d: %w", collection, id, err)
	}
	return true, nil
}

// List returns every record of collection, newest received first.
func (s *FirestoreStore) List(ctx context.Context, collection string) ([]models.Surat, error) {
	iter := s.client.Collection(collection).OrderBy(models.FieldReceivedDate, firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var records []models.Surat
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate %s: %w", collection, err)
		}
		var rec models.Surat
		if err := snap.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode %s/%s: %w", collection, snap.Ref.ID, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// FindPegawaiByNIP returns the employee with nip, or nil when none exists.
func (s *FirestoreStore) FindPegawaiByNIP(ctx context.Context, nip string) (*models.Pegawai, error) {
	docs, err := s.client.Collection(s.pegawai).Where("nip", "==", nip).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.pegawai, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	var p models.Pegawai
	if err := docs[0].DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to decode pegawai %s: %w", docs[0].Ref.ID, err)
	}
	return &p, nil
}
