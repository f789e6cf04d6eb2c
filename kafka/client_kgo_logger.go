package kafka

import (
	"github.com/hugolhafner/kreader/logger"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ kgo.Logger = (*kgoLogger)(nil)

// kgoLevels maps franz-go levels onto kreader levels. kgo.LogLevelNone is absent
// on purpose: those messages are dropped.
var kgoLevels = map[kgo.LogLevel]logger.LogLevel{
	kgo.LogLevelDebug: logger.DebugLevel,
	kgo.LogLevelInfo:  logger.InfoLevel,
	kgo.LogLevelWarn:  logger.WarnLevel,
	kgo.LogLevelError: logger.ErrorLevel,
}

// kgoLogger routes franz-go client logs into the reader's logger.
type kgoLogger struct {
	l logger.Logger
}

func newKgoLogger(l logger.Logger) *kgoLogger {
	return &kgoLogger{l: l.With("source", "franz-go")}
}

// Level tells franz-go the most verbose level worth building messages for.
func (kl *kgoLogger) Level() kgo.LogLevel {
	want := kl.l.Level()
	for _, lvl := range []kgo.LogLevel{kgo.LogLevelDebug, kgo.LogLevelInfo, kgo.LogLevelWarn, kgo.LogLevelError} {
		if kgoLevels[lvl] >= want {
			return lvl
		}
	}
	return kgo.LogLevelError
}

func (kl *kgoLogger) Log(level kgo.LogLevel, msg string, keyvals ...any) {
	lvl, ok := kgoLevels[level]
	if !ok {
		return
	}

	// franz-go reports errors under "err"; the rest of kreader uses "error"
	for i := 0; i+1 < len(keyvals); i += 2 {
		if k, ok := keyvals[i].(string); ok && k == "err" {
			keyvals[i] = "error"
		}
	}
	kl.l.Log(lvl, msg, keyvals...)
}
