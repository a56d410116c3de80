package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/loan-engine/logger"
)

func TestNew_WritesJSONWithService(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, "loan-engine", slog.LevelInfo)

	ctx := logger.WithRequestID(context.Background(), "req-1")
	log.Info("estimate created", logger.Attrs(ctx)...)
	log.Debug("filtered out")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "loan-engine", line["service"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "estimate created", line["msg"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logger.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, logger.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, logger.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel(""))
}

func TestAttrs_EmptyWithoutRequestID(t *testing.T) {
	assert.Nil(t, logger.Attrs(context.Background()))
	assert.Equal(t, "", logger.RequestID(context.Background()))
}
