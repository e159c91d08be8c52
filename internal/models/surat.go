package models

import (
	"fmt"
	"strings"
	"time"
)

// Kind distinguishes incoming from outgoing correspondence. Both kinds share
// the same record shape but live in separate collections.
type Kind string

const (
	KindIncoming Kind = "masuk"
	KindOutgoing Kind = "keluar"
)

// Field names shared by Firestore documents and JSON payloads.
const (
	FieldCounterpart   = "pengirim"
	FieldLetterNumber  = "nomor_surat"
	FieldLetterDate    = "tanggal_surat"
	FieldAgendaNumber  = "nomor_agenda"
	FieldReceivedDate  = "tanggal_diterima"
	FieldSubject       = "perihal"
	FieldStatus        = "status_surat"
	FieldAttachmentURL = "file_url"
)

var incomingStatuses = []string{
	"Sub Bagian Umum",
	"Sekretaris",
	"Kepala",
	"Ekonomi",
	"Sarpras",
	"Sosbud",
	"Litbang",
	"Program",
	"Keuangan",
}

var outgoingStatuses = append(append([]string{}, incomingStatuses...), "Penerima")

// Kinds lists every record kind.
func Kinds() []Kind {
	return []Kind{KindIncoming, KindOutgoing}
}

// ParseKind accepts the short kind name or its collection name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "masuk", "surat_masuk", "incoming":
		return KindIncoming, nil
	case "keluar", "surat_keluar", "outgoing":
		return KindOutgoing, nil
	}
	return "", fmt.Errorf("unknown surat kind %q", s)
}

// Collection returns the Firestore collection holding records of this kind.
func (k Kind) Collection() string {
	return "surat_" + string(k)
}

// Statuses returns the status vocabulary for the kind. The first entry is the
// default for new records.
func (k Kind) Statuses() []string {
	if k == KindOutgoing {
		return append([]string{}, outgoingStatuses...)
	}
	return append([]string{}, incomingStatuses...)
}

// DefaultStatus is the status a new record starts in.
func (k Kind) DefaultStatus() string {
	return incomingStatuses[0]
}

// IsValidStatus reports whether status belongs to the kind's vocabulary.
func (k Kind) IsValidStatus(status string) bool {
	for _, s := range k.Statuses() {
		if s == status {
			return true
		}
	}
	return false
}

// CounterpartLabel is the user-facing name of the pengirim field. Outgoing
// letters record their recipient there.
func (k Kind) CounterpartLabel() string {
	if k == KindOutgoing {
		return "Penerima"
	}
	return "Pengirim"
}

// Surat is a single correspondence record as stored in Firestore.
type Surat struct {
	ID                   int64     `firestore:"id" json:"id,omitempty"`
	Counterpart          string    `firestore:"pengirim" json:"pengirim"`
	LetterNumber         string    `firestore:"nomor_surat" json:"nomor_surat"`
	LetterDate           string    `firestore:"tanggal_surat" json:"tanggal_surat"`
	AgendaNumber         string    `firestore:"nomor_agenda" json:"nomor_agenda"`
	ReceivedDate         string    `firestore:"tanggal_diterima" json:"tanggal_diterima"`
	Subject              string    `firestore:"perihal" json:"perihal"`
	Status               string    `firestore:"status_surat" json:"status_surat"`
	AttachmentURL        string    `firestore:"file_url,omitempty" json:"file_url,omitempty"`
	SignerName           string    `firestore:"nama_penerima,omitempty" json:"nama_penerima,omitempty"`
	SignatureImage       string    `firestore:"tanda_tangan,omitempty" json:"tanda_tangan,omitempty"`
	DispositionTimestamp string    `firestore:"timestamp_disposisi,omitempty" json:"timestamp_disposisi,omitempty"`
	CreatedAt            time.Time `firestore:"created_at,omitempty" json:"created_at,omitempty"`
}

// Trimmed returns a copy with surrounding whitespace removed from the
// user-entered fields.
func (s Surat) Trimmed() Surat {
	s.Counterpart = strings.TrimSpace(s.Counterpart)
	s.LetterNumber = strings.TrimSpace(s.LetterNumber)
	s.LetterDate = strings.TrimSpace(s.LetterDate)
	s.AgendaNumber = strings.TrimSpace(s.AgendaNumber)
	s.ReceivedDate = strings.TrimSpace(s.ReceivedDate)
	s.Subject = strings.TrimSpace(s.Subject)
	s.Status = strings.TrimSpace(s.Status)
	return s
}

// HasDisposition reports whether the record has been signed off.
func (s Surat) HasDisposition() bool {
	return s.SignerName != "" && s.SignatureImage != ""
}
