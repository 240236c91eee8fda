package logger_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"umkmorder/internal/config"
	"umkmorder/pkg/logger"

	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T, level string) (*logger.Adapter, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	log, err := logger.NewAdapter(&config.Config{
		App:    config.App{Name: "umkm-order-service", Version: "test"},
		Logger: config.Logger{Level: level},
		Env:    "local",
	}, logger.Output(&buf))
	require.NoError(t, err)
	return log, &buf
}

func entries(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		out = append(out, entry)
	}
	require.NoError(t, scanner.Err())
	return out
}

func TestAdapter_LogAttrs(t *testing.T) {
	t.Parallel()

	log, buf := newTestLogger(t, "info")
	ctx := log.WithRequestID(context.Background(), "req-42")

	log.Ctx(ctx).LogAttrs(ctx, logger.WarnLevel, "order submission failed",
		logger.String("order_id", "SMB101626001"),
		logger.Int64("total_amount", 1500000),
		logger.Duration("duration", 250*time.Millisecond),
		logger.Err(errors.New("store unavailable")),
	)
	log.LogAttrs(ctx, logger.DebugLevel, "filtered out")

	got := entries(t, buf)
	require.Len(t, got, 1)
	require.Equal(t, "warn", got[0]["level"])
	require.Equal(t, "req-42", got[0]["request_id"])
	require.Equal(t, "SMB101626001", got[0]["order_id"])
	require.InDelta(t, 1500000, got[0]["total_amount"], 0)
	require.Equal(t, "250ms", got[0]["duration"])
	require.Equal(t, "store unavailable", got[0]["error"])
	require.Equal(t, "umkm-order-service", got[0]["service"])
}

func TestAdapter_LogRequest(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc     string
		input    int
		expected string
	}{
		{desc: "Success", input: 200, expected: "info"},
		{desc: "ClientError", input: 404, expected: "warn"},
		{desc: "ServerError", input: 500, expected: "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			log, buf := newTestLogger(t, "debug")
			log.LogRequest(context.Background(), "GET", "/api/v1/track/:order_id", tc.input, time.Millisecond)

			got := entries(t, buf)
			require.Len(t, got, 1)
			require.Equal(t, tc.expected, got[0]["level"])
			require.Equal(t, "/api/v1/track/:order_id", got[0]["route"])
			require.NotContains(t, got[0], "request_id")
		})
	}
}

func TestAdapter_With(t *testing.T) {
	t.Parallel()

	log, buf := newTestLogger(t, "debug")
	log.With("component", "order service").Debugw("cache warmed", "orders", 3)

	got := entries(t, buf)
	require.Len(t, got, 1)
	require.Equal(t, "order service", got[0]["component"])
	require.InDelta(t, 3, got[0]["orders"], 0)
}

func TestNewAdapter_Invalid(t *testing.T) {
	t.Parallel()

	_, err := logger.NewAdapter(&config.Config{Logger: config.Logger{Level: "loud"}})
	require.Error(t, err)

	_, err = logger.NewAdapter(&config.Config{}, logger.MaxSize(0), logger.Output(nil))
	require.Error(t, err)
	require.Contains(t, err.Error(), "max size")
	require.Contains(t, err.Error(), "output")
}

func TestAdapter_GenerateRequestID(t *testing.T) {
	t.Parallel()

	log := logger.NewNop()
	first, second := log.GenerateRequestID(), log.GenerateRequestID()
	require.NotEmpty(t, first)
	require.NotEqual(t, first, second)
	require.Empty(t, log.GetRequestID(context.Background()))
}
