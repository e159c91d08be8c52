// Package logging configures the JSON slog handler shared by every function
// and the CLI.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type ctxKey string

const (
	ErrKey = "error"

	slogFields       ctxKey = "slog_fields"
	priorityCritical        = "critical"
)

type contextHandler struct {
	slog.Handler
}

// Handle adds the attributes stored by AppendCtx before delegating.
func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(slogFields).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{h.Handler.WithGroup(name)}
}

// AppendCtx returns a context carrying attr, so that every record logged with
// that context includes it.
func AppendCtx(parent context.Context, attr slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	existing, _ := parent.Value(slogFields).([]slog.Attr)
	attrs := make([]slog.Attr, 0, len(existing)+1)
	attrs = append(attrs, existing...)
	attrs = append(attrs, attr)
	return context.WithValue(parent, slogFields, attrs)
}

// ParseLevel maps LOG_LEVEL values onto slog levels. Unknown values fall back
// to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewHandler builds the JSON handler honouring LOG_LEVEL and LOG_ADD_SOURCE.
func NewHandler(w io.Writer) slog.Handler {
	addSource := os.Getenv("LOG_ADD_SOURCE")
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(os.Getenv("LOG_LEVEL")),
		AddSource: addSource == "true" || addSource == "t" || addSource == "1",
	}
	return contextHandler{slog.NewJSONHandler(w, opts)}
}

// Init installs the JSON handler on stdout as the default logger.
func Init() {
	slog.SetDefault(slog.New(NewHandler(os.Stdout)))
}

// PriorityCritical marks records that need an operator's attention.
func PriorityCritical() slog.Attr {
	return slog.String("priority", priorityCritical)
}
