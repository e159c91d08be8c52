package services

import (
	"context"

	"github.com/Lllllllleong/suratflow/internal/models"
)

// Persistence stores correspondence records. Insert and Update return nil
// when nothing was written; Exists reports whether any record in collection
// has field equal to value.
type Persistence interface {
	Insert(ctx context.Context, collection string, rec *models.Surat) (*models.Surat, error)
	Update(ctx context.Context, collection string, id int64, rec *models.Surat) (*models.Surat, error)
	Exists(ctx context.Context, collection, field, value string) (bool, error)
	GetByID(ctx context.Context, collection string, id int64) (*models.Surat, error)
	Delete(ctx context.Context, collection string, id int64) (bool, error)
	List(ctx context.Context, collection string) ([]models.Surat, error)
}

// Storage keeps attachment blobs. Upload returns the public URL of the new
// object.
type Storage interface {
	Upload(ctx context.Context, bucket, filename string, data []byte) (string, error)
	Delete(ctx context.Context, bucket, filename string) (bool, error)
}

// Notifier is told about record changes. Failures never affect the change.
type Notifier interface {
	Notify(ctx context.Context, ev models.SuratEvent) error
}

// PegawaiFinder looks up employee accounts by NIP. A missing account is
// (nil, nil).
type PegawaiFinder interface {
	FindPegawaiByNIP(ctx context.Context, nip string) (*models.Pegawai, error)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, models.SuratEvent) error { return nil }
