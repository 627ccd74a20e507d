package logging

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitLogger(t *testing.T) {
	err := InitLogger()
	require.NoError(t, err)
	assert.NotNil(t, Logger)
	assert.NotNil(t, Logger.logger)
}

func TestInitLogger_WithLogLevel(t *testing.T) {
	os.Setenv("LOG_LEVEL", "debug")
	defer os.Unsetenv("LOG_LEVEL")

	err := InitLogger()
	require.NoError(t, err)
	assert.NotNil(t, Logger)
}

func TestInitLogger_WithInvalidLogLevel(t *testing.T) {
	// Invalid level should still succeed with the default
	os.Setenv("LOG_LEVEL", "invalid")
	defer os.Unsetenv("LOG_LEVEL")

	err := InitLogger()
	require.NoError(t, err)
	assert.NotNil(t, Logger)
}

func TestSetLevel(t *testing.T) {
	require.NoError(t, InitLogger())
	before := Logger

	SetLevel(zapcore.DebugLevel)
	assert.Equal(t, zapcore.DebugLevel, Level())
	assert.Same(t, before, Logger, "level change must not swap the logger")

	SetLevel(zapcore.WarnLevel)
	assert.Equal(t, zapcore.WarnLevel, Level())
	assert.Same(t, before, Logger)
}

func TestSetLevel_ConcurrentWithLogging(t *testing.T) {
	require.NoError(t, InitLogger())

	// Toggled levels stay above Info so the loop emits nothing
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			Logger.Debug("debug message")
			Logger.Info("info message")
		}
	}()

	for i := 0; i < 100; i++ {
		SetLevel(zapcore.WarnLevel)
		SetLevel(zapcore.ErrorLevel)
	}
	<-done

	SetLevel(zapcore.InfoLevel)
}

func TestSafeLogger_Methods(t *testing.T) {
	logger := &SafeLogger{logger: zap.NewNop()}

	// Should not panic
	logger.Debug("test debug", zap.Bool("flag", true))
	logger.Info("test message", zap.String("key", "value"))
	logger.Warn("test warning", zap.Int("count", 42))
	logger.Error("test error", zap.String("error", "something went wrong"))
}

func TestSafeLogger_NilLogger(t *testing.T) {
	logger := &SafeLogger{logger: nil}

	// All methods should be safe to call with nil logger
	logger.Info("test")
	logger.Warn("test")
	logger.Debug("test")
	logger.Error("test")
}

func TestSafeLogger_NilSafeLogger(t *testing.T) {
	var logger *SafeLogger = nil

	// Should not panic even with nil SafeLogger
	logger.Info("test")
	logger.Warn("test")
	logger.Debug("test")
	logger.Error("test")
}

func TestSafeLogger_With(t *testing.T) {
	logger := &SafeLogger{logger: zap.NewNop()}

	newLogger := logger.With(zap.String("key", "value"), zap.Int("count", 42))

	require.NotNil(t, newLogger)
	assert.NotNil(t, newLogger.logger)
	newLogger.Info("test message")
}

func TestSafeLogger_With_NilLogger(t *testing.T) {
	logger := &SafeLogger{logger: nil}

	newLogger := logger.With(zap.String("key", "value"))

	assert.Equal(t, logger, newLogger)
}

func TestSafeLogger_With_NilSafeLogger(t *testing.T) {
	var logger *SafeLogger = nil

	newLogger := logger.With(zap.String("key", "value"))

	assert.Nil(t, newLogger)
}

func TestSafeLogger_Unwrap(t *testing.T) {
	zapLogger := zap.NewNop()
	logger := &SafeLogger{logger: zapLogger}

	assert.Equal(t, zapLogger, logger.Unwrap())
}

func TestSafeLogger_Unwrap_Nil(t *testing.T) {
	logger := &SafeLogger{logger: nil}
	assert.NotNil(t, logger.Unwrap())

	var nilLogger *SafeLogger
	assert.NotNil(t, nilLogger.Unwrap())
}

func TestGlobalLogger(t *testing.T) {
	assert.NotNil(t, Logger)

	// Should be safe to use immediately
	Logger.Info("test message")
}
