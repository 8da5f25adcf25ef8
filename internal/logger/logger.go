package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

var levelStrings = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

func (l LogLevel) String() string {
	return levelStrings[l]
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel maps DEBUG, INFO, WARN or ERROR (any case) to a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	for level, name := range levelStrings {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return level, nil
		}
	}
	return INFO, fmt.Errorf("unknown log level %q", s)
}

// Logger writes structured JSON lines with timestamp, PID and caller.
type Logger struct {
	zl    *zap.Logger
	level zap.AtomicLevel
}

// NewLogger builds a logger writing INFO and below to stdout, WARN and above
// to stderr.
func NewLogger(minLevel LogLevel) *Logger {
	level := zap.NewAtomicLevelAt(minLevel.zapLevel())

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	low := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return level.Enabled(l) && l < zapcore.WarnLevel
	})
	high := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return level.Enabled(l) && l >= zapcore.WarnLevel
	})

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), low),
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), high),
	)

	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).
		With(zap.Int("pid", os.Getpid()))
	return &Logger{zl: zl, level: level}
}

// Wrap adapts an existing zap logger, mostly for tests using zaptest/observer.
func Wrap(zl *zap.Logger) *Logger {
	return &Logger{zl: zl.WithOptions(zap.AddCallerSkip(1)), level: zap.NewAtomicLevelAt(zapcore.DebugLevel)}
}

func (l *Logger) Debug(message string, fields ...zap.Field) { l.zl.Debug(message, fields...) }
func (l *Logger) Info(message string, fields ...zap.Field)  { l.zl.Info(message, fields...) }
func (l *Logger) Warn(message string, fields ...zap.Field)  { l.zl.Warn(message, fields...) }
func (l *Logger) Error(message string, fields ...zap.Field) { l.zl.Error(message, fields...) }

func (l *Logger) SetMinLevel(level LogLevel) {
	l.level.SetLevel(level.zapLevel())
}

// Zap exposes the underlying logger.
func (l *Logger) Zap() *zap.Logger { return l.zl }

func (l *Logger) Sync() error { return l.zl.Sync() }

// Package-level convenience functions using the default logger

var (
	mu            sync.RWMutex
	defaultLogger = NewLogger(INFO)
)

func current() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the default logger
func SetDefault(l *Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = l
}

func Default() *Logger { return current() }

func Debug(message string, fields ...zap.Field) { current().Debug(message, fields...) }
func Info(message string, fields ...zap.Field)  { current().Info(message, fields...) }
func Warn(message string, fields ...zap.Field)  { current().Warn(message, fields...) }
func Error(message string, fields ...zap.Field) { current().Error(message, fields...) }

// SetMinLevel sets the minimum log level for the default logger
func SetMinLevel(level LogLevel) {
	current().SetMinLevel(level)
}

func Sync() error { return current().Sync() }
