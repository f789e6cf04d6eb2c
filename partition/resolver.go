// Package partition expands topic names into the partitions a reader assigns.
package partition

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/hugolhafner/kreader/kafka"
)

// ErrUnknownTopic is returned when a topic reports no partitions.
var ErrUnknownTopic = errors.New("topic has no partitions")

// Resolve probes each topic once and returns its partitions ordered by the
// position of the topic in topics, then by ascending partition index.
func Resolve(ctx context.Context, lister kafka.PartitionLister, topics []string) ([]kafka.TopicPartition, error) {
	seen := make(map[string]struct{}, len(topics))
	var out []kafka.TopicPartition

	for _, topic := range topics {
		if _, ok := seen[topic]; ok {
			continue
		}
		seen[topic] = struct{}{}

		partitions, err := lister.PartitionsFor(ctx, topic)
		if err != nil {
			return nil, fmt.Errorf("list partitions for %s: %w", topic, err)
		}
		if len(partitions) == 0 {
			return nil, fmt.Errorf("%s: %w", topic, ErrUnknownTopic)
		}

		partitions = slices.Clone(partitions)
		slices.Sort(partitions)
		for _, p := range slices.Compact(partitions) {
			out = append(out, kafka.TopicPartition{Topic: topic, Partition: p})
		}
	}

	return out, nil
}
