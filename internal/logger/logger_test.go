package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emilianohg/sitecrew/internal/logger"
)

//nolint:paralleltest // replaces the slog default
func TestNew_EnrichesFromContext(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	buf := new(bytes.Buffer)
	l, err := logger.New(buf, "debug")
	require.NoError(t, err)

	ctx := logger.WithRequestID(context.Background(), "req-1")
	ctx = logger.WithUserID(ctx, 42)
	l.With("screen", "bookings").DebugContext(ctx, "load")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "load", line["msg"])
	require.Equal(t, "req-1", line["request_id"])
	require.Equal(t, float64(42), line["user_id"])
	require.Equal(t, "bookings", line["screen"])
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	_, err := logger.New(new(bytes.Buffer), "loud")
	require.Error(t, err)
}

func TestRequestIDFromCtx(t *testing.T) {
	t.Parallel()

	require.Empty(t, logger.RequestIDFromCtx(context.Background()))
	require.Equal(t, "abc", logger.RequestIDFromCtx(logger.WithRequestID(context.Background(), "abc")))
}
