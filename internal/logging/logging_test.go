package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendCtx(t *testing.T) {
	parent := AppendCtx(context.Background(), slog.String("kind", "masuk"))
	child := AppendCtx(parent, slog.Int64("id", 7))

	parentAttrs := parent.Value(slogFields).([]slog.Attr)
	childAttrs := child.Value(slogFields).([]slog.Attr)
	require.Len(t, parentAttrs, 1)
	require.Len(t, childAttrs, 2)
	assert.Equal(t, "kind", childAttrs[0].Key)
	assert.Equal(t, "id", childAttrs[1].Key)
}

func TestAppendCtxSiblingsDoNotShareAttrs(t *testing.T) {
	parent := AppendCtx(context.Background(), slog.String("a", "1"))
	left := AppendCtx(parent, slog.String("left", "x"))
	right := AppendCtx(parent, slog.String("right", "y"))

	leftAttrs := left.Value(slogFields).([]slog.Attr)
	rightAttrs := right.Value(slogFields).([]slog.Attr)
	assert.Equal(t, "left", leftAttrs[1].Key)
	assert.Equal(t, "right", rightAttrs[1].Key)
}

func TestHandlerIncludesContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf)).With("service", "test")

	ctx := AppendCtx(context.Background(), slog.String("nomorAgenda", "5/2024"))
	logger.InfoContext(ctx, "checked", PriorityCritical())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "checked", entry["msg"])
	assert.Equal(t, "5/2024", entry["nomorAgenda"])
	assert.Equal(t, "test", entry["service"])
	assert.Equal(t, "critical", entry["priority"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
