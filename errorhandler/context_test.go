//go:build unit

package errorhandler_test

import (
	"errors"
	"testing"

	"github.com/hugolhafner/kreader/errorhandler"
	"github.com/hugolhafner/kreader/kafka"
	"github.com/stretchr/testify/require"
)

var tp = kafka.TopicPartition{Topic: "orders", Partition: 3}

func TestNewErrorContext(t *testing.T) {
	ec := errorhandler.NewErrorContext(errorhandler.PhaseWrite, errWrite)

	require.Equal(t, errWrite, ec.Error)
	require.Equal(t, 1, ec.Attempt)
	require.Equal(t, errorhandler.PhaseWrite, ec.Phase)
	require.Zero(t, ec.Chunk)
	require.Empty(t, ec.Partition.Topic)
}

func TestErrorContext_BuildersDoNotMutate(t *testing.T) {
	base := errorhandler.NewErrorContext(errorhandler.PhaseRead, errWrite)

	other := errors.New("other")
	derived := base.
		WithError(other).
		WithChunk(7, 3).
		WithRecord(tp, 99).
		IncrementAttempt()

	require.Equal(t, errWrite, base.Error)
	require.Equal(t, 1, base.Attempt)
	require.Zero(t, base.Chunk)

	require.Equal(t, other, derived.Error)
	require.Equal(t, 2, derived.Attempt)
	require.Equal(t, 7, derived.Chunk)
	require.Equal(t, 3, derived.Items)
	require.Equal(t, tp, derived.Partition)
	require.Equal(t, int64(99), derived.Offset)
}
