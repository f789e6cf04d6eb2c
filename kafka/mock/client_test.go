//go:build unit

package mockkafka_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hugolhafner/kreader/kafka"
	mockkafka "github.com/hugolhafner/kreader/kafka/mock"
	"github.com/stretchr/testify/require"
)

var tp0 = kafka.TopicPartition{Topic: "topic", Partition: 0}

func TestMockClient_ImplementsInterface(t *testing.T) {
	var _ kafka.Consumer = (*mockkafka.Client)(nil)
	var _ kafka.ConsumerFactory = (*mockkafka.Factory)(nil)
}

func TestMockClient_PollReturnsBatchesInOrder(t *testing.T) {
	client := mockkafka.NewClient()
	client.AddPoll(mockkafka.SequentialRecords("topic", 0, 0, "a", "b")...)
	client.AddPoll()
	client.AddPoll(mockkafka.SimpleRecord("topic", 0, 2, "c"))

	r1, err := client.Poll(context.Background(), time.Second)
	require.NoError(t, err)
	require.Len(t, r1, 2)
	require.Equal(t, []byte("a"), r1[0].Value)
	require.Equal(t, int64(1), r1[1].Offset)

	r2, err := client.Poll(context.Background(), 50*time.Millisecond)
	require.NoError(t, err)
	require.Empty(t, r2)

	r3, err := client.Poll(context.Background(), time.Second)
	require.NoError(t, err)
	require.Len(t, r3, 1)

	r4, err := client.Poll(context.Background(), time.Second)
	require.NoError(t, err)
	require.Empty(t, r4)

	client.AssertPollCount(t, 4)
	require.Equal(t, []time.Duration{time.Second, 50 * time.Millisecond, time.Second, time.Second}, client.PollTimeouts())
}

func TestMockClient_RecordsAssignAndSeek(t *testing.T) {
	client := mockkafka.NewClient()

	require.NoError(t, client.Assign([]kafka.TopicPartition{tp0}))
	require.NoError(t, client.Seek(tp0, 7))

	client.AssertAssigned(t, tp0)
	client.AssertSeeked(t, tp0, 7)
	client.AssertNotSeeked(t, kafka.TopicPartition{Topic: "topic", Partition: 1})
}

func TestMockClient_Errors(t *testing.T) {
	pollErr := errors.New("broker unavailable")
	client := mockkafka.NewClient(mockkafka.WithPollError(pollErr))

	_, err := client.Poll(context.Background(), time.Second)
	require.ErrorIs(t, err, pollErr)

	client.SetPollError(nil)
	_, err = client.Poll(context.Background(), time.Second)
	require.NoError(t, err)

	seekErr := errors.New("offset out of range")
	client.SetSeekError(seekErr)
	require.ErrorIs(t, client.Seek(tp0, 1), seekErr)
}

func TestMockClient_PollDelayRespectsContext(t *testing.T) {
	client := mockkafka.NewClient(mockkafka.WithPollDelay(time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.Poll(ctx, time.Second)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMockClient_CloseIsCounted(t *testing.T) {
	client := mockkafka.NewClient()

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	client.AssertClosed(t)
	require.Equal(t, 2, client.CloseCount())

	_, err := client.Poll(context.Background(), time.Second)
	require.ErrorIs(t, err, mockkafka.ErrClosed)
}

func TestMockClient_PartitionsAndLookups(t *testing.T) {
	client := mockkafka.NewClient(mockkafka.WithPartitions("topic", 0, 1))
	client.SetOffsetsForTimestamp(1000, map[kafka.TopicPartition]int64{tp0: 42})

	partitions, err := client.PartitionsFor(context.Background(), "topic")
	require.NoError(t, err)
	require.Equal(t, []int32{0, 1}, partitions)

	missing, err := client.PartitionsFor(context.Background(), "other")
	require.NoError(t, err)
	require.Empty(t, missing)

	tp1 := kafka.TopicPartition{Topic: "topic", Partition: 1}
	offsets, err := client.ListOffsets(context.Background(), []kafka.TopicPartition{tp0, tp1}, 1000)
	require.NoError(t, err)
	require.Equal(t, map[kafka.TopicPartition]int64{tp0: 42}, offsets)
	require.Equal(t, []string{"topic", "other"}, client.ProbedTopics())
}

func TestFactory_HandsOutClientsInOrder(t *testing.T) {
	first := mockkafka.NewClient()
	second := mockkafka.NewClient()
	factory := mockkafka.NewFactory(first, second)

	c1, err := factory.NewConsumer()
	require.NoError(t, err)
	require.Same(t, first, c1)

	c2, err := factory.NewConsumer()
	require.NoError(t, err)
	require.Same(t, second, c2)

	_, err = factory.NewConsumer()
	require.ErrorIs(t, err, mockkafka.ErrNoClients)
	require.Equal(t, 2, factory.Created())
}

func TestFactory_SingleClientIsReused(t *testing.T) {
	only := mockkafka.NewClient()
	factory := mockkafka.NewFactory(only)

	for range 3 {
		c, err := factory.NewConsumer()
		require.NoError(t, err)
		require.Same(t, only, c)
	}
	require.Equal(t, 3, factory.Created())
}
