package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_EmitsServiceField(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("productly", "info", &buf)

	l.Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "productly", entry["service"])
	assert.Equal(t, "hello", entry["msg"])
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("productly", "warn", &buf)

	l.Info("dropped")
	assert.Zero(t, buf.Len())

	l.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestCorrelationID_RoundTrip(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "abc-123")
	assert.Equal(t, "abc-123", CorrelationIDFromContext(ctx))
	assert.Empty(t, CorrelationIDFromContext(context.Background()))
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))

	var buf bytes.Buffer
	l := NewWithWriter("productly", "info", &buf)
	ctx := NewContext(context.Background(), l)
	assert.Equal(t, l, FromContext(ctx))
}

func TestWithContext_EnrichesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("productly", "info", &buf)

	ctx := WithCorrelationID(context.Background(), "corr-1")
	ctx = WithUserID(ctx, "user-9")

	WithContext(ctx, l).Info("enriched")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "corr-1", entry["correlation_id"])
	assert.Equal(t, "user-9", entry["user_id"])
}
