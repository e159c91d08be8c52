package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/Lllllllleong/suratflow/internal/services"
	"github.com/Lllllllleong/suratflow/internal/session"
)

// NewAPIFromEnv builds the full HTTP API from the environment.
func NewAPIFromEnv(ctx context.Context) (http.Handler, *services.Backend, error) {
	backend, err := services.NewBackendFromEnv(ctx)
	if err != nil {
		return nil, nil, err
	}
	cfg := backend.Config
	store, err := session.NewStore(cfg.SessionSecret, cfg.SessionTTL, !strings.HasPrefix(cfg.PublicBaseURL, "http://"))
	if err != nil {
		backend.Close()
		return nil, nil, err
	}

	validator := backend.Validator()
	router := NewRouter(store,
		NewAuthHandler(backend.AuthService(), store),
		NewSuratHandler(backend.SuratService(), backend.Pipeline(validator), validator),
	)
	return router, backend, nil
}
