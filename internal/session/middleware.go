package session

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Lllllllleong/suratflow/internal/logging"
	"github.com/Lllllllleong/suratflow/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// Middleware resolves the session of every request. Requests without a
// valid session pass through anonymously; RequireUser guards routes.
func (s *Store) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.Get(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := WithUser(r.Context(), user)
		ctx = logging.AppendCtx(ctx, slog.String("nip", user.NIP))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser rejects requests without a session.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if FromContext(r.Context()) == nil {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests whose session is not an admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := FromContext(r.Context())
		if user == nil {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		if !user.IsAdmin() {
			http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser stores user in ctx.
func WithUser(ctx context.Context, user *models.UserData) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext returns the signed-in user, or nil.
func FromContext(ctx context.Context) *models.UserData {
	user, _ := ctx.Value(userContextKey).(*models.UserData)
	return user
}
