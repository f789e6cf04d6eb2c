//go:build unit

package checkpoint_test

import (
	"context"
	"testing"

	"github.com/hugolhafner/kreader/checkpoint"
	"github.com/hugolhafner/kreader/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tp0 = kafka.TopicPartition{Topic: "orders", Partition: 0}

func TestExecutionContext_MissingKey(t *testing.T) {
	ec := checkpoint.NewExecutionContext()

	table, ok, err := ec.Get(context.Background(), "topic.partition.offset")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, table)
}

func TestExecutionContext_DoesNotAlias(t *testing.T) {
	ctx := context.Background()
	ec := checkpoint.NewExecutionContext()

	in := kafka.OffsetTable{tp0: 100}
	require.NoError(t, ec.Put(ctx, "k", in))
	in[tp0] = 999

	out, ok, err := ec.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(100), out[tp0])

	out[tp0] = 7
	again, _, _ := ec.Get(ctx, "k")
	assert.Equal(t, int64(100), again[tp0])

	assert.Equal(t, []string{"k"}, ec.Keys())
}

func TestCodec(t *testing.T) {
	table := kafka.OffsetTable{
		{Topic: "payments", Partition: 0}: 3,
		{Topic: "orders", Partition: 1}:   20,
		tp0:                               10,
	}

	data, err := checkpoint.Encode(table)
	require.NoError(t, err)
	assert.JSONEq(
		t,
		`[{"topic":"orders","partition":0,"offset":10},{"topic":"orders","partition":1,"offset":20},{"topic":"payments","partition":0,"offset":3}]`,
		string(data),
	)

	decoded, err := checkpoint.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, table, decoded)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := checkpoint.Decode([]byte(`{"not":"a list"}`))
	assert.Error(t, err)

	_, err = checkpoint.Decode([]byte(`[{"partition":0,"offset":1}]`))
	assert.Error(t, err)
}
