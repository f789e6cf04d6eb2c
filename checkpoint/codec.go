package checkpoint

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/hugolhafner/kreader/kafka"
)

type entry struct {
	Topic     string `json:"topic"`
	Partition int32  `json:"partition"`
	Offset    int64  `json:"offset"`
}

// Encode renders table as a JSON array ordered by topic then partition.
func Encode(table kafka.OffsetTable) ([]byte, error) {
	entries := make([]entry, 0, len(table))
	for _, tp := range table.Partitions() {
		entries = append(entries, entry{Topic: tp.Topic, Partition: tp.Partition, Offset: table[tp]})
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode offset table: %w", err)
	}
	return data, nil
}

// Decode parses the output of Encode.
func Decode(data []byte) (kafka.OffsetTable, error) {
	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode offset table: %w", err)
	}

	table := make(kafka.OffsetTable, len(entries))
	for _, e := range entries {
		if e.Topic == "" {
			return nil, fmt.Errorf("decode offset table: entry without topic")
		}
		table[kafka.TopicPartition{Topic: e.Topic, Partition: e.Partition}] = e.Offset
	}
	return table, nil
}
