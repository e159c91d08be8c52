package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Lllllllleong/suratflow/internal/logging"
	"github.com/go-chi/chi/v5/middleware"
)

// RequestLogger logs every request and its response status. Attributes added
// here are carried by all logs of the request. /livez is not logged.
func RequestLogger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now().UTC()
			isHealthCheck := r.URL.Path == "/livez"

			ctx := r.Context()
			ctx = logging.AppendCtx(ctx, slog.String("method", r.Method))
			ctx = logging.AppendCtx(ctx, slog.String("path", r.URL.Path))
			ctx = logging.AppendCtx(ctx, slog.String("remote_addr", r.RemoteAddr))
			if id := middleware.GetReqID(ctx); id != "" {
				ctx = logging.AppendCtx(ctx, slog.String("request_id", id))
			}
			r = r.WithContext(ctx)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if !isHealthCheck {
				slog.InfoContext(ctx, "HTTP response", "status", ww.Status(), "bytes", ww.BytesWritten(), "duration", time.Since(start).String())
			}
		})
	}
}
