package mockkafka

import (
	"testing"
	"time"

	"github.com/hugolhafner/kreader/kafka"
	"github.com/stretchr/testify/require"
)

// AssertAssigned verifies that the last assignment was exactly partitions, in order.
func (c *Client) AssertAssigned(tb testing.TB, partitions ...kafka.TopicPartition) {
	tb.Helper()

	calls := c.AssignCalls()
	require.NotEmpty(tb, calls, "expected Assign to be called")
	require.Equal(tb, partitions, calls[len(calls)-1], "unexpected assignment")
}

// AssertAssignCount verifies how many times Assign was called.
func (c *Client) AssertAssignCount(tb testing.TB, expected int) {
	tb.Helper()

	actual := len(c.AssignCalls())
	require.Equal(tb, expected, actual, "expected %d Assign calls, got %d", expected, actual)
}

// AssertSeeked verifies that tp was seeked to offset at least once.
func (c *Client) AssertSeeked(tb testing.TB, tp kafka.TopicPartition, offset int64) {
	tb.Helper()

	for _, s := range c.SeekCalls() {
		if s.Partition == tp && s.Offset == offset {
			return
		}
	}

	tb.Errorf("expected seek of %s to offset %d, got seeks %v", tp, offset, c.SeekCalls())
}

// AssertNotSeeked verifies that tp was never seeked.
func (c *Client) AssertNotSeeked(tb testing.TB, tp kafka.TopicPartition) {
	tb.Helper()

	for _, s := range c.SeekCalls() {
		if s.Partition == tp {
			tb.Errorf("expected no seek of %s, got offset %d", tp, s.Offset)
			return
		}
	}
}

// AssertNoSeeks verifies that Seek was never called.
func (c *Client) AssertNoSeeks(tb testing.TB) {
	tb.Helper()

	require.Empty(tb, c.SeekCalls(), "expected no seeks")
}

// AssertPollCount verifies how many times Poll was called.
func (c *Client) AssertPollCount(tb testing.TB, expected int) {
	tb.Helper()

	actual := c.PollCount()
	require.Equal(tb, expected, actual, "expected %d polls, got %d", expected, actual)
}

// AssertLastPollTimeout verifies the timeout of the most recent Poll.
func (c *Client) AssertLastPollTimeout(tb testing.TB, expected time.Duration) {
	tb.Helper()

	timeouts := c.PollTimeouts()
	require.NotEmpty(tb, timeouts, "expected Poll to be called")
	require.Equal(tb, expected, timeouts[len(timeouts)-1])
}

// AssertClosed verifies that Close() was called.
func (c *Client) AssertClosed(tb testing.TB) {
	tb.Helper()

	require.True(tb, c.IsClosed(), "expected client to be closed")
}

// AssertNotClosed verifies that Close() was not called.
func (c *Client) AssertNotClosed(tb testing.TB) {
	tb.Helper()

	require.False(tb, c.IsClosed(), "expected client to not be closed, but it is")
}
