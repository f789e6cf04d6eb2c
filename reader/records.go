package reader

import (
	"context"

	"github.com/hugolhafner/kreader/kafka"
)

// RecordReader is a Reader whose Read returns whole records.
type RecordReader struct {
	*Reader
}

func Records(r *Reader) RecordReader {
	return RecordReader{Reader: r}
}

func (r RecordReader) Read(ctx context.Context) (kafka.ConsumerRecord, error) {
	return r.Reader.ReadRecord(ctx)
}
