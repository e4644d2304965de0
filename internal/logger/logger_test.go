package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l := New(&Config{
		Level:       level,
		Format:      "json",
		Output:      &buf,
		ServiceName: "clipforge-test",
	})
	return l, &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestContextFields(t *testing.T) {
	l, buf := newBufferLogger(t, "info")

	ctx := l.WithContext(context.Background())
	ctx = SetRequestID(ctx, "req-1")
	ctx = SetSessionID(ctx, "sess-1")
	ctx = WithFields(ctx, Fields{FieldComponent: "download"})

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "sess-1", GetSessionID(ctx))
	assert.Equal(t, "download", GetFields(ctx)[FieldComponent])

	CtxInfo(ctx, "Submission started: url=%q", "https://tiktok.com/@u/video/1")

	line := decodeLine(t, buf)
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, `Submission started: url="https://tiktok.com/@u/video/1"`, line["message"])
	assert.Equal(t, "clipforge-test", line["service"])
	assert.Equal(t, "req-1", line[FieldRequestID])
	assert.Equal(t, "sess-1", line[FieldSessionID])
	assert.Contains(t, line, "timestamp")
}

func TestEntry(t *testing.T) {
	l, buf := newBufferLogger(t, "debug")
	ctx := SetSessionID(l.WithContext(context.Background()), "sess-1")

	base := With(Fields{FieldPlatform: "TikTok"})
	entry := base.Since(time.Now().Add(-50 * time.Millisecond)).WithStatus("ok")
	entry.Warn(ctx, "Caption generation failed")

	line := decodeLine(t, buf)
	assert.Equal(t, "warning", line["level"])
	assert.Equal(t, "TikTok", line[FieldPlatform])
	assert.Equal(t, "ok", line[FieldStatus])
	assert.Equal(t, "sess-1", line[FieldSessionID])
	assert.GreaterOrEqual(t, line[FieldDurationMs].(float64), float64(50))

	assert.NotContains(t, base.fields, FieldStatus, "derived entries do not modify their parent")
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(t, "warn")
	ctx := l.WithContext(context.Background())

	CtxDebug(ctx, "hidden")
	CtxInfo(ctx, "hidden")
	assert.Zero(t, buf.Len())

	CtxError(ctx, "shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	l, buf := newBufferLogger(t, "info")
	prev := GetDefault()
	SetDefaultLogger(l)
	t.Cleanup(func() { SetDefaultLogger(prev) })

	CtxInfo(context.Background(), "no logger in context")

	assert.Contains(t, buf.String(), "no logger in context")
	assert.Same(t, l, FromContext(context.Background()))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("LOG_MAX_SIZE", "5")
	t.Setenv("LOG_COMPRESS", "not-a-bool")
	t.Setenv("APP_ENV", "")

	cfg := LoadFromEnv()

	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, 5, cfg.MaxSizeMB)
	assert.True(t, cfg.Compress, "invalid values keep the default")
	assert.Equal(t, "local", cfg.Environment)
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "info", Format: "text", Output: &buf, ServiceName: "clipforge"})

	CtxInfo(l.WithContext(context.Background()), "hello")

	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "service=clipforge")
}
