// Package log provides leveled structured logger used across the service.
package log

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging interface passed to every component.
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warning(args ...interface{})
	Error(args ...interface{})
	Debugf(msg string, args ...interface{})
	Infof(msg string, args ...interface{})
	Warningf(msg string, args ...interface{})
	Errorf(msg string, args ...interface{})
	// With returns a child logger which always logs the key value pairs.
	With(keysAndValues ...interface{}) Logger
	Sync() error
}

// Level is the minimum level written by the logger.
type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// DefaultLogger is a development logger writing everything to stderr. Used in tests.
var DefaultLogger Logger = mustLogger(zap.NewDevelopment())

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewDefaultProductionLogger returns json logger with info level.
func NewDefaultProductionLogger() (Logger, error) {
	return NewLogger(LevelInfo)
}

// NewLogger returns json logger writing to stderr from the given level.
func NewLogger(level Level) (Logger, error) {
	zapLevel, err := level.zapLevel()
	if err != nil {
		return nil, err
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &zapLogger{sugar: logger.Sugar()}, nil
}

// NewSilentLogger returns logger discarding everything.
func NewSilentLogger() Logger {
	return &zapLogger{sugar: zap.NewNop().Sugar()}
}

// ParseLevel returns level from the config value.
func ParseLevel(val string) (Level, error) {
	level := Level(strings.ToLower(val))
	if _, err := level.zapLevel(); err != nil {
		return "", err
	}
	return level, nil
}

func (l Level) zapLevel() (zapcore.Level, error) {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel, nil
	case LevelInfo, "":
		return zapcore.InfoLevel, nil
	case LevelWarning, "warn":
		return zapcore.WarnLevel, nil
	case LevelError:
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", string(l))
	}
}

func (l *zapLogger) Debug(args ...interface{})   { l.sugar.Debug(args...) }
func (l *zapLogger) Info(args ...interface{})    { l.sugar.Info(args...) }
func (l *zapLogger) Warning(args ...interface{}) { l.sugar.Warn(args...) }
func (l *zapLogger) Error(args ...interface{})   { l.sugar.Error(args...) }

func (l *zapLogger) Debugf(msg string, args ...interface{})   { l.sugar.Debugf(msg, args...) }
func (l *zapLogger) Infof(msg string, args ...interface{})    { l.sugar.Infof(msg, args...) }
func (l *zapLogger) Warningf(msg string, args ...interface{}) { l.sugar.Warnf(msg, args...) }
func (l *zapLogger) Errorf(msg string, args ...interface{})   { l.sugar.Errorf(msg, args...) }

func (l *zapLogger) With(keysAndValues ...interface{}) Logger {
	return &zapLogger{sugar: l.sugar.With(keysAndValues...)}
}

func (l *zapLogger) Sync() error {
	return l.sugar.Sync()
}

func mustLogger(logger *zap.Logger, err error) Logger {
	if err != nil {
		panic(err)
	}
	return &zapLogger{sugar: logger.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}
