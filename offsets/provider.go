// Package offsets decides where each assigned partition starts reading.
package offsets

import (
	"context"
	"fmt"
	"time"

	"github.com/hugolhafner/kreader/kafka"
)

// Provider supplies the offset of the next record to read for some partitions.
// Partitions missing from the result start at the client's default position.
type Provider interface {
	Offsets(ctx context.Context, partitions []kafka.TopicPartition) (map[kafka.TopicPartition]int64, error)
}

type ProviderFunc func(ctx context.Context, partitions []kafka.TopicPartition) (map[kafka.TopicPartition]int64, error)

func (f ProviderFunc) Offsets(ctx context.Context, partitions []kafka.TopicPartition) (
	map[kafka.TopicPartition]int64, error,
) {
	return f(ctx, partitions)
}

// Static returns the given offsets, restricted to the requested partitions.
func Static(offsets map[kafka.TopicPartition]int64) Provider {
	return ProviderFunc(
		func(_ context.Context, partitions []kafka.TopicPartition) (map[kafka.TopicPartition]int64, error) {
			out := make(map[kafka.TopicPartition]int64, len(partitions))
			for _, tp := range partitions {
				if offset, ok := offsets[tp]; ok {
					out[tp] = offset
				}
			}
			return out, nil
		},
	)
}

// AtTime starts every partition at the first record whose timestamp is at or
// after t. Partitions with no such record start at the end of the log.
func AtTime(lookup kafka.OffsetLookup, t time.Time) Provider {
	return ProviderFunc(
		func(ctx context.Context, partitions []kafka.TopicPartition) (map[kafka.TopicPartition]int64, error) {
			offsets, err := lookup.ListOffsets(ctx, partitions, t.UnixMilli())
			if err != nil {
				return nil, fmt.Errorf("lookup offsets at %s: %w", t.Format(time.RFC3339), err)
			}

			var past []kafka.TopicPartition
			for _, tp := range partitions {
				if offset, ok := offsets[tp]; !ok || offset < 0 {
					past = append(past, tp)
				}
			}
			if len(past) == 0 {
				return offsets, nil
			}

			ends, err := lookup.ListOffsets(ctx, past, kafka.TimestampLatest)
			if err != nil {
				return nil, fmt.Errorf("lookup end offsets: %w", err)
			}
			for _, tp := range past {
				if offset, ok := ends[tp]; ok {
					offsets[tp] = offset
				} else {
					delete(offsets, tp)
				}
			}
			return offsets, nil
		},
	)
}

// Earliest starts every partition at its log start offset.
func Earliest(lookup kafka.OffsetLookup) Provider {
	return boundary(lookup, kafka.TimestampEarliest, "earliest")
}

// Latest starts every partition at its high watermark, skipping existing records.
func Latest(lookup kafka.OffsetLookup) Provider {
	return boundary(lookup, kafka.TimestampLatest, "latest")
}

func boundary(lookup kafka.OffsetLookup, timestamp int64, name string) Provider {
	return ProviderFunc(
		func(ctx context.Context, partitions []kafka.TopicPartition) (map[kafka.TopicPartition]int64, error) {
			offsets, err := lookup.ListOffsets(ctx, partitions, timestamp)
			if err != nil {
				return nil, fmt.Errorf("lookup %s offsets: %w", name, err)
			}
			return offsets, nil
		},
	)
}
