package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfxdev/go-transmission/internal/logging"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{
		Level:  "info",
		Format: "json",
		Output: &buf,
		Attrs:  []slog.Attr{slog.String("app", "trctl")},
	})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("visible", "torrents", 3)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "visible", record["msg"])
	assert.Equal(t, "trctl", record["app"])
	assert.Equal(t, float64(3), record["torrents"])
	assert.NotContains(t, record, "source")
}

func TestNewTextDebugAddsSource(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "text", Output: &buf})
	require.NoError(t, err)

	logger.Debug("refresh")
	assert.Contains(t, buf.String(), "msg=refresh")
	assert.Contains(t, buf.String(), "source=")
}

func TestNewRejectsUnknownValues(t *testing.T) {
	_, err := logging.New(logging.Options{Level: "trace"})
	assert.Error(t, err)

	_, err = logging.New(logging.Options{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestNewNop(t *testing.T) {
	logger := logging.NewNop()
	assert.False(t, logger.Enabled(t.Context(), slog.LevelError))
}
