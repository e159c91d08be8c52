package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Lllllllleong/suratflow/internal/attachment"
	"github.com/Lllllllleong/suratflow/internal/logging"
	"github.com/Lllllllleong/suratflow/internal/models"
	"github.com/Lllllllleong/suratflow/internal/services"
	"github.com/Lllllllleong/suratflow/internal/session"
	"github.com/go-chi/chi/v5"
)

// maxUploadBytes bounds a submission request. Attachments above the size
// limit are still accepted here so that images can be compressed.
const maxUploadBytes = 32 << 20

type SuratHandler struct {
	surat     *services.SuratService
	pipeline  *services.SubmissionPipeline
	validator *services.RecordValidator
}

func NewSuratHandler(surat *services.SuratService, pipeline *services.SubmissionPipeline, validator *services.RecordValidator) *SuratHandler {
	return &SuratHandler{surat: surat, pipeline: pipeline, validator: validator}
}

func kindParam(w http.ResponseWriter, r *http.Request) (models.Kind, bool) {
	kind, err := models.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return "", false
	}
	return kind, true
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (h *SuratHandler) Statuses(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"kind":     kind,
		"statuses": kind.Statuses(),
		"default":  kind.DefaultStatus(),
	})
}

func (h *SuratHandler) List(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	records, err := h.surat.List(r.Context(), kind, services.ListQuery{
		Search: q.Get("q"),
		Range:  services.ParseDateRange(q.Get("range")),
		Status: q.Get("status"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"total":   len(records),
	})
}

func (h *SuratHandler) Get(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	rec, err := h.surat.Get(r.Context(), kind, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Check reports duplicate numbers while the form is being filled in.
func (h *SuratHandler) Check(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	var req models.DuplicateCheckRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, h.validator.Check(r.Context(), kind, req.LetterNumber, req.AgendaNumber))
}

// Validate runs the submission gates without storing anything.
func (h *SuratHandler) Validate(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	var rec models.Surat
	if err := readJSON(r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec = rec.Trimmed()
	writeJSON(w, http.StatusOK, h.validator.Validate(r.Context(), kind, &rec))
}

// Submit accepts a multipart form with the record fields, an optional
// "file" attachment and its "source" (gallery or camera).
func (h *SuratHandler) Submit(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.WarnContext(r.Context(), "Failed to remove multipart files", logging.ErrKey, err)
		}
	}()

	fields := models.Surat{
		Counterpart:  r.FormValue(models.FieldCounterpart),
		LetterNumber: r.FormValue(models.FieldLetterNumber),
		LetterDate:   r.FormValue(models.FieldLetterDate),
		AgendaNumber: r.FormValue(models.FieldAgendaNumber),
		ReceivedDate: r.FormValue(models.FieldReceivedDate),
		Subject:      r.FormValue(models.FieldSubject),
		Status:       r.FormValue(models.FieldStatus),
	}

	att, err := formAttachment(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := h.pipeline.Submit(r.Context(), kind, fields, att)
	if !result.Success {
		writeJSON(w, statusForCode(result.Code), result)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// formAttachment stages the uploaded file, or returns nil when none was sent.
func formAttachment(r *http.Request) (*attachment.Candidate, error) {
	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	kind := attachment.KindFromContentType(header.Header.Get("Content-Type"))
	if kind == attachment.KindUnknown {
		kind = ""
	}
	return attachment.NewCandidate(file, header.Filename, kind, attachment.ParseSource(r.FormValue("source")))
}

func (h *SuratHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req models.StatusUpdateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, err := h.surat.UpdateStatus(r.Context(), session.FromContext(r.Context()), kind, id, req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *SuratHandler) Dispose(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req models.DispositionRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	var signature []byte
	if req.SignatureImage != "" {
		var err error
		if signature, err = services.DecodeSignature(req.SignatureImage); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}
	rec, err := h.surat.Dispose(r.Context(), session.FromContext(r.Context()), kind, id, req.SignerName, signature)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *SuratHandler) Delete(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.surat.Delete(r.Context(), session.FromContext(r.Context()), kind, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
