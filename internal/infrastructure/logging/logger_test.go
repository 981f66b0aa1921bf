package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCategoryLevels(t *testing.T) {
	tests := []struct {
		category Category
		level    zapcore.Level
	}{
		{CategoryTX, zapcore.InfoLevel},
		{CategoryRX, zapcore.InfoLevel},
		{CategoryQueue, zapcore.InfoLevel},
		{CategoryStatus, zapcore.InfoLevel},
		{CategoryAlert, zapcore.WarnLevel},
		{CategoryRecovery, zapcore.WarnLevel},
		{CategoryFailure, zapcore.ErrorLevel},
		{CategoryError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.Equal(t, tt.level, tt.category.Level())
		})
	}
}

func TestEventFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := Wrap(zap.New(core), "{test}")

	logger.Event(CategoryAlert, "consumer failing", zap.Int("attempt", 3))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "consumer failing", entry.Message)

	ctx := entry.ContextMap()
	assert.Equal(t, "{test}", ctx["tag"])
	assert.Equal(t, "ALERTA", ctx["category"])
	assert.Equal(t, int64(3), ctx["attempt"])
}

func TestEventRespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := Wrap(zap.New(core), "")

	logger.Event(CategoryTX, "dropped by level")
	logger.Event(CategoryError, "kept")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
}

func TestWithTagAndNamed(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := Wrap(zap.New(core), "a").WithTag("b").Named("producer")

	assert.Equal(t, "b", logger.Tag())
	logger.Event(CategoryTX, "line")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "producer", logs.All()[0].LoggerName)
	assert.Equal(t, "b", logs.All()[0].ContextMap()["tag"])
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	assert.NotPanics(t, func() {
		logger.Event(CategoryFailure, "nothing")
	})
}
