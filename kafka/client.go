package kafka

import (
	"context"
	"fmt"
	"time"
)

// Consumer is the contract the reader needs from a log client. Implementations are
// not required to be safe for concurrent use.
type Consumer interface {
	PartitionLister

	// Assign replaces the set of partitions the consumer reads from.
	Assign(partitions []TopicPartition) error
	// Seek sets the offset of the next record returned for tp.
	Seek(tp TopicPartition, offset int64) error
	// Poll blocks for at most timeout and returns the fetched records, flattened
	// partition by partition in the order the client returned them.
	Poll(ctx context.Context, timeout time.Duration) ([]ConsumerRecord, error)
	Close() error
}

// PartitionLister lists the partition indices of a topic.
type PartitionLister interface {
	PartitionsFor(ctx context.Context, topic string) ([]int32, error)
}

// OffsetLookup resolves the offset of the first record at or after timestamp (ms)
// for each partition. TimestampEarliest and TimestampLatest are also accepted.
type OffsetLookup interface {
	ListOffsets(ctx context.Context, partitions []TopicPartition, timestamp int64) (map[TopicPartition]int64, error)
}

// ConsumerFactory creates one Consumer per reader run.
type ConsumerFactory interface {
	NewConsumer() (Consumer, error)
}

type ConsumerFactoryFunc func() (Consumer, error)

func (f ConsumerFactoryFunc) NewConsumer() (Consumer, error) {
	return f()
}

// FactoryLookup answers offset lookups with a short lived consumer from the
// factory. The consumer must implement OffsetLookup.
func FactoryLookup(f ConsumerFactory) OffsetLookup {
	return factoryLookup{factory: f}
}

type factoryLookup struct {
	factory ConsumerFactory
}

func (l factoryLookup) ListOffsets(ctx context.Context, partitions []TopicPartition, timestamp int64) (
	offsets map[TopicPartition]int64, err error,
) {
	c, err := l.factory.NewConsumer()
	if err != nil {
		return nil, fmt.Errorf("create lookup consumer: %w", err)
	}
	defer func() {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close lookup consumer: %w", cerr)
		}
	}()

	lookup, ok := c.(OffsetLookup)
	if !ok {
		return nil, fmt.Errorf("consumer %T cannot look up offsets", c)
	}
	return lookup.ListOffsets(ctx, partitions, timestamp)
}
