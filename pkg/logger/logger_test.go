package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	logger := newLogger()

	formatter, ok := logger.Formatter.(*logrus.TextFormatter)
	require.True(t, ok)
	assert.Equal(t, time.RFC3339Nano, formatter.TimestampFormat)
	assert.True(t, formatter.FullTimestamp)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestGetLogger(t *testing.T) {
	t.Run("falls back to global", func(t *testing.T) {
		entry := G(context.Background())
		assert.Equal(t, L.Logger, entry.Logger)
	})

	t.Run("uses context logger", func(t *testing.T) {
		custom := logrus.NewEntry(logrus.New()).WithField("skill", "demo")
		ctx := WithLogger(context.Background(), custom)
		assert.Equal(t, "demo", G(ctx).Data["skill"])
	})

	t.Run("with field stacks", func(t *testing.T) {
		ctx := WithField(context.Background(), "a", 1)
		ctx = WithField(ctx, "b", 2)
		data := G(ctx).Data
		assert.Equal(t, 1, data["a"])
		assert.Equal(t, 2, data["b"])
	})
}

func TestSetLogLevel(t *testing.T) {
	original := L.Logger.GetLevel()
	defer L.Logger.SetLevel(original)

	require.NoError(t, SetLogLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel())

	assert.Error(t, SetLogLevel("loud"))
	assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel())
}

func TestConfigureJSON(t *testing.T) {
	originalLevel := L.Logger.GetLevel()
	originalFormatter := L.Logger.Formatter
	originalOut := L.Logger.Out
	defer func() {
		L.Logger.SetLevel(originalLevel)
		L.Logger.Formatter = originalFormatter
		L.Logger.SetOutput(originalOut)
	}()

	var buf bytes.Buffer
	SetLogOutput(&buf)
	require.NoError(t, Configure("warn", "JSON"))

	G(context.Background()).WithField("dir", "/skills").Info("hidden")
	G(context.Background()).WithField("dir", "/skills").Warn("visible")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "visible", line["message"])
	assert.Equal(t, "warning", line["logLevel"])
	assert.Equal(t, "/skills", line["dir"])
	assert.Contains(t, line, "timestamp")

	require.NoError(t, Configure("", ""))
	assert.Equal(t, logrus.WarnLevel, L.Logger.GetLevel())
}
