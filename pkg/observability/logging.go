package observability

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger   *zap.SugaredLogger
	loggerMu sync.RWMutex
)

func init() {
	// Default logger so packages can log before InitLoggerFromEnv runs.
	l, _ := zap.NewProduction(zap.AddCallerSkip(1))
	logger = l.Sugar()
}

// InitLoggerFromEnv initializes the global zap logger from environment
// variables. TRIAGE_LOG_LEVEL selects the level (debug, info, warn, error);
// TRIAGE_LOG_FORMAT=console switches from JSON to console encoding.
func InitLoggerFromEnv() (*zap.SugaredLogger, error) {
	level := zapcore.InfoLevel
	switch strings.ToLower(os.Getenv("TRIAGE_LOG_LEVEL")) {
	case "debug":
		level = zapcore.DebugLevel
	case "warn", "warning":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	cfg := zap.NewProductionConfig()
	if strings.ToLower(os.Getenv("TRIAGE_LOG_FORMAT")) == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	loggerMu.Lock()
	logger = l.Sugar()
	loggerMu.Unlock()
	return logger, nil
}

func get() *zap.SugaredLogger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// Debugf logs a formatted message at debug level.
func Debugf(format string, args ...interface{}) {
	get().Debugf(format, args...)
}

// Infof logs a formatted message at info level.
func Infof(format string, args ...interface{}) {
	get().Infof(format, args...)
}

// Warnf logs a formatted message at warn level.
func Warnf(format string, args ...interface{}) {
	get().Warnf(format, args...)
}

// Errorf logs a formatted message at error level.
func Errorf(format string, args ...interface{}) {
	get().Errorf(format, args...)
}

// Fatalf logs a formatted message and exits.
func Fatalf(format string, args ...interface{}) {
	get().Fatalf(format, args...)
}
