package otel

import (
	"context"

	"github.com/hugolhafner/kreader/kafka"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var _ propagation.TextMapCarrier = RecordCarrier{}

// RecordCarrier exposes the headers of a consumed record to a propagator.
// Set writes to the carrier's own copy of the headers, never to the record.
type RecordCarrier struct {
	headers []kafka.Header
}

func NewRecordCarrier(rec kafka.ConsumerRecord) *RecordCarrier {
	return &RecordCarrier{headers: append([]kafka.Header(nil), rec.Headers...)}
}

// Get returns the last header with key, since producers append on re-send.
func (c RecordCarrier) Get(key string) string {
	for i := len(c.headers) - 1; i >= 0; i-- {
		if c.headers[i].Key == key {
			return string(c.headers[i].Value)
		}
	}
	return ""
}

func (c RecordCarrier) Set(key, value string) {
	for i := range c.headers {
		if c.headers[i].Key == key {
			c.headers[i].Value = []byte(value)
		}
	}
}

func (c RecordCarrier) Keys() []string {
	keys := make([]string, 0, len(c.headers))
	for _, h := range c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

// Links returns one span link per record that carries a valid upstream span
// context. A chunk span covers many records, so it links to them rather than
// picking one parent.
func (t *Telemetry) Links(ctx context.Context, records []kafka.ConsumerRecord) []trace.Link {
	var links []trace.Link
	for _, rec := range records {
		if len(rec.Headers) == 0 {
			continue
		}

		sc := trace.SpanContextFromContext(t.Propagator.Extract(ctx, NewRecordCarrier(rec)))
		if sc.IsValid() {
			links = append(links, trace.Link{SpanContext: sc})
		}
	}
	return links
}
