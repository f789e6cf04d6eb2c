//go:build unit

package offsets_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hugolhafner/kreader/kafka"
	mockkafka "github.com/hugolhafner/kreader/kafka/mock"
	"github.com/hugolhafner/kreader/offsets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingLookup struct{ err error }

func (f failingLookup) ListOffsets(context.Context, []kafka.TopicPartition, int64) (map[kafka.TopicPartition]int64, error) {
	return nil, f.err
}

func TestStatic_FiltersToRequested(t *testing.T) {
	p := offsets.Static(map[kafka.TopicPartition]int64{p0: 10, p2: 30})

	got, err := p.Offsets(context.Background(), []kafka.TopicPartition{p0, p1})
	require.NoError(t, err)
	assert.Equal(t, map[kafka.TopicPartition]int64{p0: 10}, got)
}

func TestAtTime(t *testing.T) {
	at := time.UnixMilli(1_700_000_000_000)
	client := mockkafka.NewClient()
	client.SetOffsetsForTimestamp(at.UnixMilli(), map[kafka.TopicPartition]int64{p0: 42, p1: -1})
	client.SetOffsetsForTimestamp(kafka.TimestampLatest, map[kafka.TopicPartition]int64{p1: 90, p2: 12})

	got, err := offsets.AtTime(client, at).Offsets(context.Background(), []kafka.TopicPartition{p0, p1, p2})
	require.NoError(t, err)
	assert.Equal(t, map[kafka.TopicPartition]int64{p0: 42, p1: 90, p2: 12}, got)

	calls := client.LookupCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, at.UnixMilli(), calls[0].Timestamp)
	assert.Equal(t, kafka.TimestampLatest, calls[1].Timestamp)
	assert.Equal(t, []kafka.TopicPartition{p1, p2}, calls[1].Partitions)
}

func TestAtTime_NoFallbackWhenAllFound(t *testing.T) {
	at := time.UnixMilli(5000)
	client := mockkafka.NewClient()
	client.SetOffsetsForTimestamp(5000, map[kafka.TopicPartition]int64{p0: 1})

	_, err := offsets.AtTime(client, at).Offsets(context.Background(), []kafka.TopicPartition{p0})
	require.NoError(t, err)
	assert.Len(t, client.LookupCalls(), 1)
}

func TestEarliestAndLatest(t *testing.T) {
	client := mockkafka.NewClient()
	client.SetOffsetsForTimestamp(kafka.TimestampEarliest, map[kafka.TopicPartition]int64{p0: 3})
	client.SetOffsetsForTimestamp(kafka.TimestampLatest, map[kafka.TopicPartition]int64{p0: 80})

	got, err := offsets.Earliest(client).Offsets(context.Background(), []kafka.TopicPartition{p0})
	require.NoError(t, err)
	assert.Equal(t, int64(3), got[p0])

	got, err = offsets.Latest(client).Offsets(context.Background(), []kafka.TopicPartition{p0})
	require.NoError(t, err)
	assert.Equal(t, int64(80), got[p0])
}

func TestProviders_WrapLookupErrors(t *testing.T) {
	boom := errors.New("broker unavailable")
	lookup := failingLookup{err: boom}

	for _, p := range []offsets.Provider{
		offsets.AtTime(lookup, time.Now()),
		offsets.Earliest(lookup),
		offsets.Latest(lookup),
	} {
		_, err := p.Offsets(context.Background(), []kafka.TopicPartition{p0})
		assert.ErrorIs(t, err, boom)
	}
}
