package mockkafka

import (
	"time"

	"github.com/hugolhafner/kreader/kafka"
)

// RecordBuilder provides a fluent interface for building ConsumerRecords.
type RecordBuilder struct {
	record kafka.ConsumerRecord
}

// Record creates a new RecordBuilder for a record at topic/partition/offset with the given value.
func Record(topic string, partition int32, offset int64, value string) *RecordBuilder {
	return &RecordBuilder{
		record: kafka.ConsumerRecord{
			Topic:     topic,
			Partition: partition,
			Offset:    offset,
			Value:     []byte(value),
			Timestamp: time.Now(),
		},
	}
}

// WithKey sets the record's key.
func (b *RecordBuilder) WithKey(key string) *RecordBuilder {
	b.record.Key = []byte(key)
	return b
}

// WithTimestamp sets the record's timestamp.
func (b *RecordBuilder) WithTimestamp(ts time.Time) *RecordBuilder {
	b.record.Timestamp = ts
	return b
}

// WithHeader adds a header to the record.
func (b *RecordBuilder) WithHeader(key string, value []byte) *RecordBuilder {
	b.record.Headers = append(b.record.Headers, kafka.Header{Key: key, Value: value})
	return b
}

// WithLeaderEpoch sets the leader epoch.
func (b *RecordBuilder) WithLeaderEpoch(epoch int32) *RecordBuilder {
	b.record.LeaderEpoch = epoch
	return b
}

// Build returns the constructed ConsumerRecord.
func (b *RecordBuilder) Build() kafka.ConsumerRecord {
	return b.record
}

// SimpleRecord creates a ConsumerRecord with just coordinates and a string value.
func SimpleRecord(topic string, partition int32, offset int64, value string) kafka.ConsumerRecord {
	return Record(topic, partition, offset, value).Build()
}

// SequentialRecords creates records on one partition with consecutive offsets
// starting at from, one per value.
func SequentialRecords(topic string, partition int32, from int64, values ...string) []kafka.ConsumerRecord {
	records := make([]kafka.ConsumerRecord, 0, len(values))
	for i, v := range values {
		records = append(records, SimpleRecord(topic, partition, from+int64(i), v))
	}
	return records
}
