// Package zaplogger backs logger.Logger with go.uber.org/zap.
package zaplogger

import (
	"fmt"

	"github.com/hugolhafner/kreader/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ logger.Base = (*ZapLogger)(nil)

var toZap = map[logger.LogLevel]zapcore.Level{
	logger.DebugLevel: zapcore.DebugLevel,
	logger.InfoLevel:  zapcore.InfoLevel,
	logger.WarnLevel:  zapcore.WarnLevel,
	logger.ErrorLevel: zapcore.ErrorLevel,
}

type ZapLogger struct {
	l *zap.Logger
}

func New(l *zap.Logger) logger.Logger {
	return logger.WrapLogger(&ZapLogger{l: l})
}

// NewProduction builds a zap logger writing to stderr at level, JSON encoded
// unless json is false. The *zap.Logger is returned so callers can Sync it.
func NewProduction(level logger.LogLevel, json bool) (logger.Logger, *zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if !json {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(level))
	// stdout carries the records the CLI reads
	cfg.OutputPaths = []string{"stderr"}

	zl, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build zap logger: %w", err)
	}

	return New(zl), zl, nil
}

func (z *ZapLogger) Level() logger.LogLevel {
	zl := z.l.Level()
	if zl >= zapcore.ErrorLevel {
		return logger.ErrorLevel
	}
	for level, mapped := range toZap {
		if mapped == zl {
			return level
		}
	}
	return logger.InfoLevel
}

func (z *ZapLogger) Log(level logger.LogLevel, msg string, kv ...any) {
	z.l.Log(zapLevel(level), msg, fields(kv)...)
}

// fields pairs up kv, skipping pairs whose key is not a string.
func fields(kv []any) []zap.Field {
	out := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}

		switch v := kv[i+1].(type) {
		case error:
			out = append(out, zap.NamedError(key, v))
		case []byte:
			out = append(out, zap.ByteString(key, v))
		default:
			out = append(out, zap.Any(key, v))
		}
	}
	return out
}

func zapLevel(level logger.LogLevel) zapcore.Level {
	if zl, ok := toZap[level]; ok {
		return zl
	}
	return zapcore.InfoLevel
}
