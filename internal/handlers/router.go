// Package handlers exposes the services over HTTP.
package handlers

import (
	"net/http"

	"github.com/Lllllllleong/suratflow/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(store *session.Store, authH *AuthHandler, suratH *SuratHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger())
	r.Use(middleware.Recoverer)
	r.Use(store.Middleware)

	r.Get("/livez", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/logout", authH.Logout)

		// Signed-in routes
		r.Group(func(r chi.Router) {
			r.Use(session.RequireUser)

			r.Get("/auth/me", authH.Me)
			r.Get("/statuses/{kind}", suratH.Statuses)

			r.Get("/surat/{kind}", suratH.List)
			r.Post("/surat/{kind}", suratH.Submit)
			r.Post("/surat/{kind}/check", suratH.Check)
			r.Post("/surat/{kind}/validate", suratH.Validate)
			r.Get("/surat/{kind}/{id}", suratH.Get)

			// Admin routes
			r.Group(func(r chi.Router) {
				r.Use(session.RequireAdmin)

				r.Put("/surat/{kind}/{id}/status", suratH.UpdateStatus)
				r.Post("/surat/{kind}/{id}/disposisi", suratH.Dispose)
				r.Delete("/surat/{kind}/{id}", suratH.Delete)
			})
		})
	})

	return r
}
