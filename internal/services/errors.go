package services

import (
	"errors"
	"fmt"

	"github.com/Lllllllleong/suratflow/internal/attachment"
)

// ErrorKind classifies failures surfaced to users.
type ErrorKind int

const (
	ErrInternal ErrorKind = iota
	ErrFieldMissing
	ErrInvalidField
	ErrDuplicateNumber
	ErrFileTooLarge
	ErrDecode
	ErrCompressionFailed
	ErrUploadFailed
	ErrSaveFailed
	ErrQueryFailed
	ErrForbidden
	ErrNotFound
)

var kindNames = map[ErrorKind]string{
	ErrInternal:          "INTERNAL",
	ErrFieldMissing:      "FIELD_MISSING",
	ErrInvalidField:      "INVALID_FIELD",
	ErrDuplicateNumber:   "DUPLICATE_NUMBER",
	ErrFileTooLarge:      "FILE_TOO_LARGE",
	ErrDecode:            "DECODE_ERROR",
	ErrCompressionFailed: "COMPRESSION_FAILED",
	ErrUploadFailed:      "UPLOAD_FAILED",
	ErrSaveFailed:        "SAVE_FAILED",
	ErrQueryFailed:       "QUERY_FAILED",
	ErrForbidden:         "FORBIDDEN",
	ErrNotFound:          "NOT_FOUND",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Duplicate says which number collided.
type Duplicate int

const (
	DuplicateNone Duplicate = iota
	DuplicateLetter
	DuplicateAgenda
	DuplicateBoth
)

// SuratError carries a user-facing message and the kind of failure behind it.
type SuratError struct {
	Kind      ErrorKind
	Field     string
	Duplicate Duplicate
	Message   string
	Err       error
}

func (e *SuratError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *SuratError) Unwrap() error {
	return e.Err
}

// KindOf returns the ErrorKind of err, or ErrInternal for foreign errors.
func KindOf(err error) ErrorKind {
	var se *SuratError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ErrInternal
}

// MessageOf returns the user-facing message of err.
func MessageOf(err error) string {
	var se *SuratError
	if errors.As(err, &se) {
		return se.Message
	}
	return "Terjadi kesalahan: " + err.Error()
}

const (
	msgDuplicateBoth   = "Nomor Surat dan Nomor Agenda sudah terdaftar!"
	msgDuplicateLetter = "Nomor Surat sudah terdaftar!"
	msgDuplicateAgenda = "Nomor Agenda sudah terdaftar!"
	msgQueryFailed     = "Tidak dapat memverifikasi nomor surat, silakan coba lagi"
	msgDecode          = "File tidak dapat dibaca, lampiran tidak disertakan"
	msgCompression     = "Gagal mengompres gambar"
	msgUploadFailed    = "Gagal upload file"
	msgSaveFailed      = "Gagal menyimpan data ke database"
	msgUpdateFailed    = "Gagal memperbarui data"
	msgDeleteFailed    = "Gagal menghapus data"
	msgInvalidStatus   = "Status surat tidak valid"
	msgForbidden       = "Hanya admin yang dapat melakukan aksi ini"
	msgNotFound        = "Data surat tidak ditemukan"
)

func newFieldMissing(field, label string) *SuratError {
	return &SuratError{Kind: ErrFieldMissing, Field: field, Message: label + " harus diisi"}
}

func newInvalidField(field, message string) *SuratError {
	return &SuratError{Kind: ErrInvalidField, Field: field, Message: message}
}

func newDuplicate(which Duplicate) *SuratError {
	e := &SuratError{Kind: ErrDuplicateNumber, Duplicate: which}
	switch which {
	case DuplicateBoth:
		e.Message = msgDuplicateBoth
	case DuplicateLetter:
		e.Field, e.Message = "nomor_surat", msgDuplicateLetter
	default:
		e.Field, e.Message = "nomor_agenda", msgDuplicateAgenda
	}
	return e
}

func newQueryFailed(err error) *SuratError {
	return &SuratError{Kind: ErrQueryFailed, Message: msgQueryFailed, Err: err}
}

func newFileTooLarge(size, limit int64) *SuratError {
	return &SuratError{
		Kind:    ErrFileTooLarge,
		Field:   "file",
		Message: fmt.Sprintf("Ukuran file %s melebihi batas %s", attachment.FormatFileSize(size), attachment.FormatFileSize(limit)),
	}
}

func newDecode(err error) *SuratError {
	return &SuratError{Kind: ErrDecode, Field: "file", Message: msgDecode, Err: err}
}

func newCompressionFailed(err error) *SuratError {
	return &SuratError{Kind: ErrCompressionFailed, Field: "file", Message: msgCompression, Err: err}
}

func newUploadFailed(err error) *SuratError {
	return &SuratError{Kind: ErrUploadFailed, Field: "file", Message: msgUploadFailed, Err: err}
}

func newSaveFailed(message string, err error) *SuratError {
	return &SuratError{Kind: ErrSaveFailed, Message: message, Err: err}
}

func newForbidden() *SuratError {
	return &SuratError{Kind: ErrForbidden, Message: msgForbidden}
}

func newNotFound() *SuratError {
	return &SuratError{Kind: ErrNotFound, Message: msgNotFound}
}
