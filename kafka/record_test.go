//go:build unit

package kafka_test

import (
	"testing"

	"github.com/hugolhafner/kreader/kafka"
	"github.com/stretchr/testify/require"
)

func TestConsumerRecord_CopyDoesNotAlias(t *testing.T) {
	orig := kafka.ConsumerRecord{
		Key:     []byte("k"),
		Value:   []byte("v"),
		Headers: []kafka.Header{{Key: "h", Value: []byte("1")}},
		Topic:   "topic",
		Offset:  3,
	}

	c := orig.Copy()
	c.Value[0] = 'x'
	c.Headers[0].Value[0] = '2'

	require.Equal(t, []byte("v"), orig.Value)
	require.Equal(t, []byte("1"), orig.Headers[0].Value)
	require.Equal(t, orig.TopicPartition(), c.TopicPartition())
}

func TestTopicPartition_String(t *testing.T) {
	require.Equal(t, "orders-12", kafka.TopicPartition{Topic: "orders", Partition: 12}.String())
}

func TestOffsetTable_CloneIsDeep(t *testing.T) {
	tp := kafka.TopicPartition{Topic: "topic", Partition: 0}
	live := kafka.OffsetTable{tp: 5}

	snap := live.Clone()
	live[tp] = 9
	live[kafka.TopicPartition{Topic: "topic", Partition: 1}] = 1

	require.Equal(t, kafka.OffsetTable{tp: 5}, snap)

	var nilTable kafka.OffsetTable
	require.NotNil(t, nilTable.Clone())
}

func TestOffsetTable_PartitionsSorted(t *testing.T) {
	table := kafka.OffsetTable{
		{Topic: "b", Partition: 0}: 1,
		{Topic: "a", Partition: 2}: 1,
		{Topic: "a", Partition: 0}: 1,
	}

	require.Equal(
		t, []kafka.TopicPartition{
			{Topic: "a", Partition: 0},
			{Topic: "a", Partition: 2},
			{Topic: "b", Partition: 0},
		}, table.Partitions(),
	)
}

func TestParseResetPolicy(t *testing.T) {
	p, err := kafka.ParseResetPolicy("latest")
	require.NoError(t, err)
	require.Equal(t, kafka.ResetLatest, p)

	p, err = kafka.ParseResetPolicy("")
	require.NoError(t, err)
	require.Equal(t, kafka.ResetEarliest, p)

	_, err = kafka.ParseResetPolicy("middle")
	require.Error(t, err)
}
