package kafka

import (
	"maps"
	"slices"
)

// Special timestamps understood by OffsetLookup, matching the ListOffsets wire protocol.
const (
	TimestampLatest   int64 = -1
	TimestampEarliest int64 = -2
)

// OffsetTable maps a partition to the offset of the last record consumed from it.
type OffsetTable map[TopicPartition]int64

// Clone returns a deep copy of the table. A nil table clones to an empty one.
func (t OffsetTable) Clone() OffsetTable {
	c := make(OffsetTable, len(t))
	maps.Copy(c, t)
	return c
}

// Get returns the offset recorded for tp.
func (t OffsetTable) Get(tp TopicPartition) (int64, bool) {
	offset, ok := t[tp]
	return offset, ok
}

// Partitions returns the partitions in the table ordered by topic and partition.
func (t OffsetTable) Partitions() []TopicPartition {
	tps := slices.Collect(maps.Keys(t))
	slices.SortFunc(
		tps, func(a, b TopicPartition) int {
			switch {
			case a.Less(b):
				return -1
			case b.Less(a):
				return 1
			default:
				return 0
			}
		},
	)
	return tps
}
