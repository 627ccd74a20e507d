package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the global logger instance. It starts as a no-op logger so
	// packages can log safely before InitLogger runs.
	Logger = &SafeLogger{logger: zap.NewNop()}

	// level is shared by the built logger so the threshold can change at
	// runtime without swapping the Logger pointer under concurrent use.
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// SafeLogger wraps zap.Logger so every method tolerates a nil receiver or a
// nil underlying logger. Bridge callbacks can fire during teardown, after
// the logger would normally be gone.
type SafeLogger struct {
	logger *zap.Logger
}

// InitLogger initializes the global logger
func InitLogger() error {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Set log level from environment
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel != "" {
		var l zapcore.Level
		if err := l.UnmarshalText([]byte(logLevel)); err == nil {
			level.SetLevel(l)
		}
	}
	config.Level = level

	logger, err := config.Build(
		zap.AddCallerSkip(1),
		zap.Fields(
			zap.String("service", "auth-bridge"),
			zap.String("version", "v1"),
		),
	)
	if err != nil {
		return err
	}

	Logger = &SafeLogger{logger: logger}
	return nil
}

// SetLevel adjusts the global logging threshold. The atomic level is shared
// with the built logger, so this is safe while other goroutines are logging.
func SetLevel(l zapcore.Level) {
	level.SetLevel(l)
}

// Level returns the current global logging threshold.
func Level() zapcore.Level {
	return level.Level()
}

// Debug logs a debug message
func (s *SafeLogger) Debug(msg string, fields ...zap.Field) {
	if s == nil || s.logger == nil {
		return
	}
	s.logger.Debug(msg, fields...)
}

// Info logs an info message
func (s *SafeLogger) Info(msg string, fields ...zap.Field) {
	if s == nil || s.logger == nil {
		return
	}
	s.logger.Info(msg, fields...)
}

// Warn logs a warning message
func (s *SafeLogger) Warn(msg string, fields ...zap.Field) {
	if s == nil || s.logger == nil {
		return
	}
	s.logger.Warn(msg, fields...)
}

// Error logs an error message
func (s *SafeLogger) Error(msg string, fields ...zap.Field) {
	if s == nil || s.logger == nil {
		return
	}
	s.logger.Error(msg, fields...)
}

// Fatal logs a fatal message and exits
func (s *SafeLogger) Fatal(msg string, fields ...zap.Field) {
	if s == nil || s.logger == nil {
		os.Exit(1)
	}
	s.logger.Fatal(msg, fields...)
}

// With returns a logger with the given fields attached
func (s *SafeLogger) With(fields ...zap.Field) *SafeLogger {
	if s == nil {
		return nil
	}
	if s.logger == nil {
		return s
	}
	return &SafeLogger{logger: s.logger.With(fields...)}
}

// Unwrap returns the underlying zap logger, or a no-op logger when unset
func (s *SafeLogger) Unwrap() *zap.Logger {
	if s == nil || s.logger == nil {
		return zap.NewNop()
	}
	return s.logger
}
