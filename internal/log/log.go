// Package log is a thin leveled logger shared by all geolayer packages.
package log

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level names accepted by SetLogLevel.
const (
	DEBUG = "DEBUG"
	INFO  = "INFO"
	WARN  = "WARN"
	ERROR = "ERROR"
	FATAL = "FATAL"
)

var (
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger = newLogger()
)

func newLogger() *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// fall back to a logger that drops everything rather than refusing to start
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// SetLogLevel changes the minimum level written. Unknown names leave the level untouched.
func SetLogLevel(lvl string) {
	switch strings.ToUpper(lvl) {
	case DEBUG:
		level.SetLevel(zapcore.DebugLevel)
	case INFO:
		level.SetLevel(zapcore.InfoLevel)
	case WARN:
		level.SetLevel(zapcore.WarnLevel)
	case ERROR:
		level.SetLevel(zapcore.ErrorLevel)
	case FATAL:
		level.SetLevel(zapcore.FatalLevel)
	}
}

// Sync flushes buffered entries.
func Sync() { _ = logger.Sync() }

func Debug(args ...interface{})                 { logger.Debug(args...) }
func Debugf(format string, args ...interface{}) { logger.Debugf(format, args...) }
func Info(args ...interface{})                  { logger.Info(args...) }
func Infof(format string, args ...interface{})  { logger.Infof(format, args...) }
func Warn(args ...interface{})                  { logger.Warn(args...) }
func Warnf(format string, args ...interface{})  { logger.Warnf(format, args...) }
func Error(args ...interface{})                 { logger.Error(args...) }
func Errorf(format string, args ...interface{}) { logger.Errorf(format, args...) }

// Fatal logs and exits the process.
func Fatal(args ...interface{}) {
	logger.Error(args...)
	Sync()
	os.Exit(1)
}

// Fatalf logs and exits the process.
func Fatalf(format string, args ...interface{}) {
	logger.Errorf(format, args...)
	Sync()
	os.Exit(1)
}
