//go:build e2e

package e2e

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/hugolhafner/kreader/checkpoint"
	"github.com/hugolhafner/kreader/checkpoint/badgerstore"
	"github.com/hugolhafner/kreader/errorhandler"
	"github.com/hugolhafner/kreader/kafka"
	saramaclient "github.com/hugolhafner/kreader/kafka/sarama"
	"github.com/hugolhafner/kreader/logger"
	"github.com/hugolhafner/kreader/offsets"
	"github.com/hugolhafner/kreader/reader"
	"github.com/hugolhafner/kreader/serde"
	"github.com/hugolhafner/kreader/step"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func factories(broker string) map[string]kafka.ConsumerFactory {
	return map[string]kafka.ConsumerFactory{
		"kgo":    kafka.NewKgoFactory(kafka.WithBootstrapServers([]string{broker})),
		"sarama": saramaclient.NewFactory([]string{broker}, sarama.NewConfig()),
	}
}

func readAll(t *testing.T, r *reader.Reader, store checkpoint.Store) []string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	require.NoError(t, r.Open(ctx, store))
	defer func() { require.NoError(t, r.Close()) }()

	var values []string
	for {
		v, err := r.Read(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		values = append(values, string(v))
	}

	require.NoError(t, r.Update(ctx, store))
	return values
}

func TestReader_ResumesAfterCheckpoint(t *testing.T) {
	kc := newCluster(t)

	for name, factory := range factories(kc.broker) {
		t.Run(
			name, func(t *testing.T) {
				topic := kc.topic(t, "resume-"+name, 1)
				kc.produce(t, topic, 0, time.Time{}, "a", "b", "c")

				tp := kafka.TopicPartition{Topic: topic, Partition: 0}
				newReader := func() *reader.Reader {
					r, err := reader.New(
						reader.WithConsumerFactory(factory),
						reader.WithPartitions(tp),
						reader.WithPollTimeout(pollTimeout),
					)
					require.NoError(t, err)
					return r
				}

				store := checkpoint.NewExecutionContext()
				assert.Equal(t, []string{"a", "b", "c"}, readAll(t, newReader(), store))

				kc.produce(t, topic, 0, time.Time{}, "d", "e")
				assert.Equal(t, []string{"d", "e"}, readAll(t, newReader(), store))

				saved, ok, err := store.Get(context.Background(), reader.Config{}.CheckpointKey())
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, kafka.OffsetTable{tp: 4}, saved)
			},
		)
	}
}

func TestReader_TopicsAcrossPartitions(t *testing.T) {
	kc := newCluster(t)
	topic := kc.topic(t, "topics", 3)

	for p := int32(0); p < 3; p++ {
		kc.produce(t, topic, p, time.Time{}, "x", "y")
	}

	r, err := reader.New(
		reader.WithConsumerFactory(kafka.NewKgoFactory(kafka.WithBootstrapServers([]string{kc.broker}))),
		reader.WithTopics(topic),
		reader.WithPollTimeout(pollTimeout),
		reader.WithMaxEmptyPolls(2),
	)
	require.NoError(t, err)

	values := readAll(t, r, checkpoint.NewExecutionContext())
	assert.Len(t, values, 6)
	assert.Equal(
		t, kafka.OffsetTable{
			{Topic: topic, Partition: 0}: 1,
			{Topic: topic, Partition: 1}: 1,
			{Topic: topic, Partition: 2}: 1,
		}, r.Snapshot(),
	)
}

func TestReader_StartsFromTime(t *testing.T) {
	kc := newCluster(t)
	topic := kc.topic(t, "from-time", 1)

	base := time.Now().Add(-time.Hour).Truncate(time.Millisecond)
	kc.produce(t, topic, 0, base, "old-1", "old-2")
	kc.produce(t, topic, 0, base.Add(30*time.Minute), "new-1", "new-2")

	factory := kafka.NewKgoFactory(kafka.WithBootstrapServers([]string{kc.broker}))
	r, err := reader.New(
		reader.WithConsumerFactory(factory),
		reader.WithPartitions(kafka.TopicPartition{Topic: topic, Partition: 0}),
		reader.WithOffsetsProvider(offsets.AtTime(kafka.FactoryLookup(factory), base.Add(time.Minute))),
		reader.WithPollTimeout(pollTimeout),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"new-1", "new-2"}, readAll(t, r, checkpoint.NewExecutionContext()))
}

func TestStep_BadgerCheckpoints(t *testing.T) {
	kc := newCluster(t)
	topic := kc.topic(t, "step", 1)
	kc.produce(t, topic, 0, time.Time{}, `{"n":1}`, `{"n":2}`, `broken`, `{"n":4}`)

	type item struct {
		N int `json:"n"`
	}

	dir := filepath.Join(t.TempDir(), "state")
	run := func() (step.Result, []item) {
		store, err := badgerstore.Open(dir)
		require.NoError(t, err)
		defer func() { require.NoError(t, store.Close()) }()

		r, err := reader.New(
			reader.WithConsumerFactory(kafka.NewKgoFactory(kafka.WithBootstrapServers([]string{kc.broker}))),
			reader.WithPartitions(kafka.TopicPartition{Topic: topic, Partition: 0}),
			reader.WithPollTimeout(pollTimeout),
			reader.WithName("e2e"),
		)
		require.NoError(t, err)

		var written []item
		w := step.WriterFunc[item](
			func(_ context.Context, items []item) error {
				written = append(written, items...)
				return nil
			},
		)

		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		res, err := step.New[item](
			reader.NewTyped(r, serde.JSON[item]()), w, store,
			step.WithChunkSize(2),
			step.WithErrorHandler(errorhandler.LogAndContinue(logger.NewNoopLogger())),
		).Run(ctx)
		require.NoError(t, err)
		return res, written
	}

	res, written := run()
	assert.Equal(t, []item{{N: 1}, {N: 2}, {N: 4}}, written)
	assert.Equal(t, 1, res.Skipped)

	res, written = run()
	assert.Empty(t, written, "second run starts after the checkpoint")
	assert.Zero(t, res.Read)
}
