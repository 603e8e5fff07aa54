// Package logger provides the structured logging surface used across cadence.
// It is a thin interface over zap so that callers can swap in a noop or a
// capturing test logger without touching zap directly.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger represents the logging interface.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a child logger with the given fields attached to every entry.
	With(fields ...Field) Logger

	// Named returns a child logger with the given name segment appended.
	Named(name string) Logger
}

// NewProductionLogger creates a JSON logger suitable for production use.
func NewProductionLogger() Logger {
	z, err := zap.NewProduction()
	if err != nil {
		// zap.NewProduction only fails on an invalid config; the default is valid.
		panic(err)
	}
	return &zapLogger{z: z}
}

// NewDevelopmentLogger creates a console logger with human-readable output.
func NewDevelopmentLogger() Logger {
	z, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return &zapLogger{z: z}
}

// NewDevelopmentLoggerWithLevel creates a development logger with the specified level.
func NewDevelopmentLoggerWithLevel(level zapcore.Level) Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	z, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return &zapLogger{z: z}
}

// NewNoopLogger creates a logger that discards everything.
func NewNoopLogger() Logger {
	return &zapLogger{z: zap.NewNop()}
}

// NewZapLogger wraps an existing zap logger.
func NewZapLogger(z *zap.Logger) Logger {
	return &zapLogger{z: z}
}

type zapLogger struct {
	z *zap.Logger
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.z.Debug(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.z.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.z.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.z.Error(msg, fields...) }

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{z: l.z.With(fields...)}
}

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{z: l.z.Named(name)}
}
