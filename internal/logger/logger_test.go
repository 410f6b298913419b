package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/fwsm/internal/logger"
)

type ctxKey struct{}

func TestNewJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithAttr(logger.Component("test")),
		logger.WithContextValue("run_id", ctxKey{}),
	)

	ctx := context.WithValue(context.Background(), ctxKey{}, "r-1")
	log.InfoContext(ctx, "hello", logger.Machine("lamp"), logger.Error(errors.New("boom")))
	log.Debug("hidden")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "test", rec["component"])
	assert.Equal(t, "lamp", rec["machine"])
	assert.Equal(t, "boom", rec["error"])
	assert.Equal(t, "r-1", rec["run_id"])
}

func TestNewTextWithLevelName(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithFormat(logger.FormatText),
		logger.WithLevelName("debug"),
	)
	log.Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")
	assert.Contains(t, buf.String(), "level=DEBUG")
}

func TestUnknownLevelNameKeepsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevelName("loud"))
	log.Debug("dropped")
	assert.Empty(t, buf.String())
	assert.True(t, log.Enabled(context.Background(), slog.LevelInfo))
}

func TestErrorNil(t *testing.T) {
	t.Parallel()

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
	assert.False(t, logger.Discard().Enabled(context.Background(), slog.LevelError))
}
