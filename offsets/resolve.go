package offsets

import (
	"github.com/hugolhafner/kreader/kafka"
)

// Source says where a partition's starting position came from.
type Source int

const (
	SourceDefault Source = iota
	SourceCheckpoint
	SourceProvider
)

func (s Source) String() string {
	switch s {
	case SourceDefault:
		return "default"
	case SourceCheckpoint:
		return "checkpoint"
	case SourceProvider:
		return "provider"
	default:
		return "unknown"
	}
}

// Resolution is the starting position chosen for one partition.
type Resolution struct {
	Partition kafka.TopicPartition
	Source    Source
	// Offset is the next offset to read. Zero for SourceDefault.
	Offset int64
}

// Seek returns the offset to seek to, or false when the client's default
// position should be kept.
func (r Resolution) Seek() (int64, bool) {
	if r.Source == SourceDefault {
		return 0, false
	}
	return r.Offset, true
}

// Resolve picks a starting position for each partition, in input order. A saved
// offset is the last record consumed, so reading resumes one past it and wins
// over a provided offset, which is used as-is.
func Resolve(partitions []kafka.TopicPartition, saved kafka.OffsetTable, provided map[kafka.TopicPartition]int64) []Resolution {
	out := make([]Resolution, 0, len(partitions))
	for _, tp := range partitions {
		if offset, ok := saved[tp]; ok {
			out = append(out, Resolution{Partition: tp, Source: SourceCheckpoint, Offset: offset + 1})
			continue
		}
		if offset, ok := provided[tp]; ok {
			out = append(out, Resolution{Partition: tp, Source: SourceProvider, Offset: offset})
			continue
		}
		out = append(out, Resolution{Partition: tp, Source: SourceDefault})
	}
	return out
}

// NeedsProvider reports whether at least one partition has no saved offset.
func NeedsProvider(partitions []kafka.TopicPartition, saved kafka.OffsetTable) bool {
	for _, tp := range partitions {
		if _, ok := saved[tp]; !ok {
			return true
		}
	}
	return false
}
