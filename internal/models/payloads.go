package models

// These structs define the JSON payloads exchanged with the HTTP API and the
// notification workflow.

// DuplicateCheckResult reports which numbers already exist. A non-empty Error
// means at least one lookup failed and the result is not verified.
type DuplicateCheckResult struct {
	LetterNumberDuplicate bool   `json:"isNomorSuratDuplicate"`
	AgendaNumberDuplicate bool   `json:"isNomorAgendaDuplicate"`
	Error                 string `json:"error,omitempty"`
}

// Verified reports whether every lookup completed.
func (r DuplicateCheckResult) Verified() bool {
	return r.Error == ""
}

// SubmissionResult is the outcome of a record submission. Code names the
// failure kind so clients can offer the right remediation; Warning carries a
// non-fatal attachment problem on an otherwise successful submission.
type SubmissionResult struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	Code         string `json:"code,omitempty"`
	Field        string `json:"field,omitempty"`
	Warning      string `json:"warning,omitempty"`
	Record       *Surat `json:"record,omitempty"`
}

// DuplicateCheckRequest is the body of the duplicate pre-check endpoint.
type DuplicateCheckRequest struct {
	LetterNumber string `json:"nomor_surat"`
	AgendaNumber string `json:"nomor_agenda"`
}

// StatusUpdateRequest changes the workflow status of a record.
type StatusUpdateRequest struct {
	Status string `json:"status_surat"`
}

// DispositionRequest signs off a record. SignatureImage is a base64 PNG.
type DispositionRequest struct {
	SignerName     string `json:"nama_penerima"`
	SignatureImage string `json:"tanda_tangan"`
}

// LoginRequest is the body of the login endpoint.
type LoginRequest struct {
	NIP      string `json:"nip"`
	Password string `json:"password"`
}

// LoginResponse mirrors the login outcome shown to the user.
type LoginResponse struct {
	Success bool      `json:"success"`
	Pegawai *UserData `json:"pegawai,omitempty"`
	Message string    `json:"message"`
}

// Event types published to the notification workflow.
const (
	EventSubmitted     = "submitted"
	EventStatusUpdated = "status_updated"
	EventDisposed      = "disposed"
	EventDeleted       = "deleted"
)

// SuratEvent is the argument passed to the notification workflow.
type SuratEvent struct {
	Type         string `json:"type"`
	Kind         Kind   `json:"kind"`
	ID           int64  `json:"id"`
	AgendaNumber string `json:"nomorAgenda,omitempty"`
	Status       string `json:"statusSurat,omitempty"`
	Actor        string `json:"actor,omitempty"`
}
