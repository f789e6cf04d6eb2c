package reader

import (
	"context"

	"github.com/hugolhafner/kreader/checkpoint"
	"github.com/hugolhafner/kreader/kafka"
	"github.com/hugolhafner/kreader/serde"
)

// TypedReader decodes each value read by a Reader.
type TypedReader[V any] struct {
	reader       *Reader
	deserialiser serde.Deserialiser[V]
}

func NewTyped[V any](r *Reader, d serde.Deserialiser[V]) *TypedReader[V] {
	return &TypedReader[V]{reader: r, deserialiser: d}
}

func (t *TypedReader[V]) Open(ctx context.Context, store checkpoint.Store) error {
	return t.reader.Open(ctx, store)
}

// Read returns the next decoded value. A *DeserialiseError leaves the record
// counted as consumed, so the caller may skip it and keep reading.
func (t *TypedReader[V]) Read(ctx context.Context) (V, error) {
	var zero V

	rec, err := t.reader.ReadRecord(ctx)
	if err != nil {
		return zero, err
	}

	v, err := t.deserialiser.Deserialise(rec.Topic, rec.Value)
	if err != nil {
		return zero, &DeserialiseError{Partition: rec.TopicPartition(), Offset: rec.Offset, Cause: err}
	}
	return v, nil
}

func (t *TypedReader[V]) Update(ctx context.Context, store checkpoint.Store) error {
	return t.reader.Update(ctx, store)
}

func (t *TypedReader[V]) Snapshot() kafka.OffsetTable {
	return t.reader.Snapshot()
}

func (t *TypedReader[V]) Close() error {
	return t.reader.Close()
}

// Unwrap returns the underlying Reader.
func (t *TypedReader[V]) Unwrap() *Reader {
	return t.reader
}
