package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lllllllleong/suratflow/internal/logging"
	"github.com/Lllllllleong/suratflow/internal/services"
)

var kindStatus = map[services.ErrorKind]int{
	services.ErrInternal:          http.StatusInternalServerError,
	services.ErrFieldMissing:      http.StatusBadRequest,
	services.ErrInvalidField:      http.StatusBadRequest,
	services.ErrDuplicateNumber:   http.StatusConflict,
	services.ErrFileTooLarge:      http.StatusRequestEntityTooLarge,
	services.ErrDecode:            http.StatusUnprocessableEntity,
	services.ErrCompressionFailed: http.StatusUnprocessableEntity,
	services.ErrUploadFailed:      http.StatusBadGateway,
	services.ErrSaveFailed:        http.StatusInternalServerError,
	services.ErrQueryFailed:       http.StatusServiceUnavailable,
	services.ErrForbidden:         http.StatusForbidden,
	services.ErrNotFound:          http.StatusNotFound,
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
}

func readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", logging.ErrKey, err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps a services error onto its HTTP status.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	kind := services.KindOf(err)
	status := statusFor(kind)
	resp := errorResponse{Error: services.MessageOf(err), Code: kind.String()}
	var se *services.SuratError
	if errors.As(err, &se) {
		resp.Field = se.Field
	}
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "code", resp.Code, logging.ErrKey, err)
	}
	writeJSON(w, status, resp)
}

func statusFor(kind services.ErrorKind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// statusForCode maps the Code of a SubmissionResult.
func statusForCode(code string) int {
	for kind, status := range kindStatus {
		if kind.String() == code {
			return status
		}
	}
	return http.StatusInternalServerError
}
