package handlers

import (
	"net/http"

	"github.com/Lllllllleong/suratflow/internal/models"
	"github.com/Lllllllleong/suratflow/internal/services"
	"github.com/Lllllllleong/suratflow/internal/session"
)

type AuthHandler struct {
	svc   *services.AuthService
	store *session.Store
}

func NewAuthHandler(svc *services.AuthService, store *session.Store) *AuthHandler {
	return &AuthHandler{svc: svc, store: store}
}

type loginResponse struct {
	models.LoginResponse
	Token string `json:"token,omitempty"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resp, err := h.svc.Login(r.Context(), req.NIP, req.Password)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, loginResponse{LoginResponse: resp})
		return
	}
	if !resp.Success {
		writeJSON(w, http.StatusUnauthorized, loginResponse{LoginResponse: resp})
		return
	}
	token, err := h.store.Save(w, resp.Pegawai)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{LoginResponse: resp, Token: token})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.store.Clear(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := session.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
