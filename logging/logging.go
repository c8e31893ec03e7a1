// Package logging holds the process-global logger for the tabular
// engine. The default logger writes errors only; embedders replace
// it with SetLogger to surface debug detail from grouping and joins.
package logging

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger atomic.Value
	initOnce     sync.Once
)

func getDefaultConfig() zap.Config {
	conf := zap.NewProductionConfig()
	conf.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	conf.Encoding = "console"
	return conf
}

// Logger returns the global logger, initializing it on first use
func Logger() *zap.Logger {
	initOnce.Do(func() {
		if globalLogger.Load() == nil {
			conf := getDefaultConfig()
			logger, err := conf.Build()
			if err != nil {
				logger = zap.NewNop()
			}
			globalLogger.Store(logger)
		}
	})
	return globalLogger.Load().(*zap.Logger)
}

// SetLogger replaces the global logger
func SetLogger(logger *zap.Logger) {
	globalLogger.Store(logger)
}

// Debug logs a message at DebugLevel on the global logger
func Debug(msg string, fields ...zap.Field) {
	Logger().Debug(msg, fields...)
}

// Info logs a message at InfoLevel on the global logger
func Info(msg string, fields ...zap.Field) {
	Logger().Info(msg, fields...)
}

// Warn logs a message at WarnLevel on the global logger
func Warn(msg string, fields ...zap.Field) {
	Logger().Warn(msg, fields...)
}

// Error logs a message at ErrorLevel on the global logger
func Error(msg string, fields ...zap.Field) {
	Logger().Error(msg, fields...)
}

// Fatal logs a message at FatalLevel on the global logger, then exits
func Fatal(msg string, fields ...zap.Field) {
	Logger().Fatal(msg, fields...)
}
