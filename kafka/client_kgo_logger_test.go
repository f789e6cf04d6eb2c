//go:build unit

package kafka

import (
	"errors"
	"testing"

	"github.com/hugolhafner/kreader/logger"
	mocklogger "github.com/hugolhafner/kreader/logger/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

func TestKgoLogger_Level(t *testing.T) {
	tests := []struct {
		level logger.LogLevel
		want  kgo.LogLevel
	}{
		{logger.DebugLevel, kgo.LogLevelDebug},
		{logger.InfoLevel, kgo.LogLevelInfo},
		{logger.WarnLevel, kgo.LogLevelWarn},
		{logger.ErrorLevel, kgo.LogLevelError},
	}

	for _, tt := range tests {
		t.Run(
			tt.level.String(), func(t *testing.T) {
				kl := newKgoLogger(mocklogger.NewWithLevel(tt.level))
				assert.Equal(t, tt.want, kl.Level())
			},
		)
	}
}

func TestKgoLogger_Log(t *testing.T) {
	l := mocklogger.New()
	kl := newKgoLogger(l)
	boom := errors.New("connection refused")

	kl.Log(kgo.LogLevelInfo, "metadata refresh", "broker", 1)
	kl.Log(kgo.LogLevelError, "connection failed", "err", boom)
	kl.Log(kgo.LogLevelNone, "dropped")

	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, logger.InfoLevel, entries[0].Level)
	assert.Equal(t, []any{"source", "franz-go", "broker", 1}, entries[0].KV)

	assert.Equal(t, logger.ErrorLevel, entries[1].Level)
	assert.Equal(t, []any{"source", "franz-go", "error", boom}, entries[1].KV)
}
