package step

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/hugolhafner/kreader/serde"
)

// Writer receives one chunk at a time. A chunk is retried as a whole, so
// writers should be idempotent per chunk.
type Writer[T any] interface {
	Write(ctx context.Context, items []T) error
}

type WriterFunc[T any] func(ctx context.Context, items []T) error

func (f WriterFunc[T]) Write(ctx context.Context, items []T) error {
	return f(ctx, items)
}

// LineWriter writes each item on its own line. The output is flushed at the
// end of every chunk.
type LineWriter[T any] struct {
	mu         sync.Mutex
	out        *bufio.Writer
	serialiser serde.Serialiser[T]
	topic      string
}

// NewLineWriter serialises items with s. topic is passed to s as-is.
func NewLineWriter[T any](w io.Writer, s serde.Serialiser[T], topic string) *LineWriter[T] {
	return &LineWriter[T]{
		out:        bufio.NewWriter(w),
		serialiser: s,
		topic:      topic,
	}
}

func (l *LineWriter[T]) Write(_ context.Context, items []T) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, item := range items {
		data, err := l.serialiser.Serialise(l.topic, item)
		if err != nil {
			return fmt.Errorf("serialise item: %w", err)
		}
		if _, err := l.out.Write(data); err != nil {
			return err
		}
		if err := l.out.WriteByte('\n'); err != nil {
			return err
		}
	}
	return l.out.Flush()
}
