package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLogLevel("ERROR"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("WARN"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("INFO"))
	assert.Equal(t, LogLevelDebug, ParseLogLevel("DEBUG"))
	assert.Equal(t, LogLevelTrace, ParseLogLevel("TRACE"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("chatty"))
}

func TestLogger_RespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewLoggerFromZap(zap.New(core), LogLevelWarn)

	logger.Error("draw failed: %v", "sd")
	logger.Warn("level %.2f", 0.95)
	logger.Info("hidden")
	logger.Debug("hidden")
	logger.Trace("hidden")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "draw failed: sd", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestLogger_TraceAndWith(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewLoggerFromZap(zap.New(core), LogLevelTrace).With("run_id", "r1")

	logger.Trace("draws=%d", 12)

	entries := logs.AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, "[TRACE] draws=12", entries[0].Message)
	assert.Equal(t, "r1", entries[0].ContextMap()["run_id"])
	assert.Equal(t, LogLevelTrace, logger.GetLevel())
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.Error("nothing")
	assert.NoError(t, logger.Sync())
}
