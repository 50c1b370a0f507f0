package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewLoggerFromCore(core), logs
}

func TestZapLogger_Levels(t *testing.T) {
	log, logs := newObserved(zapcore.DebugLevel)

	log.Debug("d")
	log.Info("i")
	log.Warn("w")
	log.Error("e")

	require.Equal(t, 4, logs.Len())
	entries := logs.All()
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestZapLogger_LevelFiltering(t *testing.T) {
	log, logs := newObserved(zapcore.WarnLevel)

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")

	assert.Equal(t, 1, logs.Len())
}

func TestZapLogger_Fields(t *testing.T) {
	log, logs := newObserved(zapcore.InfoLevel)

	log.Info("row processed",
		String("text_index", "42"),
		Int("tokens", 7),
		Bool("excluded", true),
		Duration("took", 3*time.Millisecond),
		Strings("markers", []string{"weight gain"}),
		Err(errors.New("soft failure")),
	)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "42", fields["text_index"])
	assert.Equal(t, int64(7), fields["tokens"])
	assert.Equal(t, true, fields["excluded"])
	assert.Equal(t, "soft failure", fields["error"])
}

func TestZapLogger_WithAndNamed(t *testing.T) {
	log, logs := newObserved(zapcore.InfoLevel)

	child := log.With(String("run_id", "r1")).Named("markers")
	child.Info("hit")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "markers", entry.LoggerName)
	assert.Equal(t, "r1", entry.ContextMap()["run_id"])

	// Parent logger is unaffected by With.
	log.Info("plain")
	assert.NotContains(t, logs.All()[1].ContextMap(), "run_id")
}

func TestNewLogger_Defaults(t *testing.T) {
	log, err := NewLogger(Config{})
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	// Must not panic and With/Named must chain.
	log.With(String("k", "v")).Named("x").Info("ignored")
}

func TestDefault_SetAndGet(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	log, logs := newObserved(zapcore.InfoLevel)
	SetDefault(log)
	Default().Info("via default")
	assert.Equal(t, 1, logs.Len())

	// nil is ignored.
	SetDefault(nil)
	assert.Equal(t, log, Default())
}
