package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithCtxFallsBackToBase(t *testing.T) {
	assert.Same(t, L, WithCtx(context.Background()))
}

func TestWithCtxReturnsInjected(t *testing.T) {
	var buf bytes.Buffer
	reqLog := slog.New(slog.NewTextHandler(&buf, nil)).With("request_id", "abc")
	ctx := InjectLogger(context.Background(), reqLog)

	WithCtx(ctx).Info("hello")
	assert.Contains(t, buf.String(), "request_id=abc")
}

func TestBuildDocumentLiftsKnownKeys(t *testing.T) {
	r := slog.NewRecord(time.Now(), slog.LevelWarn, "approval failed", 0)
	r.AddAttrs(slog.String("request_id", "rid-1"), slog.Int("user_id", 7), slog.String("reason", "x"))

	doc := buildDocument("", []slog.Attr{slog.String("component", "approval")}, r)

	assert.Equal(t, "WARN", doc.Level)
	assert.Equal(t, "rid-1", doc.RequestID)
	assert.EqualValues(t, 7, doc.UserID)
	assert.Equal(t, "x", doc.Attrs["reason"])
	assert.Equal(t, "approval", doc.Attrs["component"])
}

func TestBuildDocumentGroupPrefix(t *testing.T) {
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "m", 0)
	r.AddAttrs(slog.String("bucket", "b"))
	doc := buildDocument("s3.", nil, r)
	assert.Equal(t, "b", doc.Attrs["s3.bucket"])
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	m := NewMultiHandler(slog.NewTextHandler(&a, nil), slog.NewJSONHandler(&b, nil))
	slog.New(m).Info("fan", "k", "v")
	assert.Contains(t, a.String(), "k=v")
	assert.Contains(t, b.String(), `"k":"v"`)
}
