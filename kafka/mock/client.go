package mockkafka

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/hugolhafner/kreader/kafka"
)

var (
	_ kafka.Consumer     = (*Client)(nil)
	_ kafka.OffsetLookup = (*Client)(nil)
)

// ErrClosed is returned by calls made after Close.
var ErrClosed = errors.New("mock client closed")

// SeekCall is one recorded Seek invocation.
type SeekCall struct {
	Partition kafka.TopicPartition
	Offset    int64
}

// LookupCall is one recorded ListOffsets invocation.
type LookupCall struct {
	Partitions []kafka.TopicPartition
	Timestamp  int64
}

// Client is a scripted kafka.Consumer. Poll hands out the queued batches in order
// and returns an empty batch once the script is exhausted.
type Client struct {
	mu sync.RWMutex

	batches    [][]kafka.ConsumerRecord
	partitions map[string][]int32
	lookups    map[int64]map[kafka.TopicPartition]int64

	assignCalls  [][]kafka.TopicPartition
	seekCalls    []SeekCall
	pollTimeouts []time.Duration
	probedTopics []string
	lookupCalls  []LookupCall

	pollDelay time.Duration

	assignErr func() error
	seekErr   func(tp kafka.TopicPartition, offset int64) error
	pollErr   func() error
	listErr   func(topic string) error
	closeErr  error

	closeCount int
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		partitions: make(map[string][]int32),
		lookups:    make(map[int64]map[kafka.TopicPartition]int64),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Assign records the assignment.
func (c *Client) Assign(partitions []kafka.TopicPartition) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closeCount > 0 {
		return ErrClosed
	}

	if c.assignErr != nil {
		if err := c.assignErr(); err != nil {
			return err
		}
	}

	c.assignCalls = append(c.assignCalls, slices.Clone(partitions))
	return nil
}

// Seek records the seek.
func (c *Client) Seek(tp kafka.TopicPartition, offset int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closeCount > 0 {
		return ErrClosed
	}

	if c.seekErr != nil {
		if err := c.seekErr(tp, offset); err != nil {
			return err
		}
	}

	c.seekCalls = append(c.seekCalls, SeekCall{Partition: tp, Offset: offset})
	return nil
}

// Poll returns the next scripted batch. The timeout is recorded for assertions.
func (c *Client) Poll(ctx context.Context, timeout time.Duration) ([]kafka.ConsumerRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pollTimeouts = append(c.pollTimeouts, timeout)

	if c.closeCount > 0 {
		return nil, ErrClosed
	}

	if c.pollDelay > 0 {
		c.mu.Unlock()
		select {
		case <-ctx.Done():
			c.mu.Lock()
			return nil, ctx.Err()
		case <-time.After(c.pollDelay):
		}
		c.mu.Lock()
	}

	if c.pollErr != nil {
		if err := c.pollErr(); err != nil {
			return nil, err
		}
	}

	if len(c.batches) == 0 {
		return nil, nil
	}

	batch := c.batches[0]
	c.batches = c.batches[1:]
	return batch, nil
}

// PartitionsFor returns the partitions configured with SetPartitions.
func (c *Client) PartitionsFor(ctx context.Context, topic string) ([]int32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.probedTopics = append(c.probedTopics, topic)

	if c.listErr != nil {
		if err := c.listErr(topic); err != nil {
			return nil, err
		}
	}

	return slices.Clone(c.partitions[topic]), nil
}

// ListOffsets returns the offsets configured with SetOffsetsForTimestamp for the
// requested partitions.
func (c *Client) ListOffsets(ctx context.Context, partitions []kafka.TopicPartition, timestamp int64) (
	map[kafka.TopicPartition]int64, error,
) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lookupCalls = append(c.lookupCalls, LookupCall{Partitions: slices.Clone(partitions), Timestamp: timestamp})

	table := c.lookups[timestamp]
	result := make(map[kafka.TopicPartition]int64, len(partitions))
	for _, tp := range partitions {
		if offset, ok := table[tp]; ok {
			result[tp] = offset
		}
	}
	return result, nil
}

// Close marks the client as closed. Repeated calls are counted.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeCount++
	return c.closeErr
}

// AddPoll queues one batch to be returned by a future Poll. Calling it with no
// records queues an empty poll.
func (c *Client) AddPoll(records ...kafka.ConsumerRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.batches = append(c.batches, records)
}

// AddPolls queues several batches.
func (c *Client) AddPolls(batches ...[]kafka.ConsumerRecord) {
	for _, b := range batches {
		c.AddPoll(b...)
	}
}

// SetPartitions configures the partitions reported for topic.
func (c *Client) SetPartitions(topic string, partitions ...int32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.partitions[topic] = partitions
}

// SetOffsetsForTimestamp configures what ListOffsets answers for timestamp.
func (c *Client) SetOffsetsForTimestamp(timestamp int64, offsets map[kafka.TopicPartition]int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lookups[timestamp] = offsets
}

// SetPollError configures an error to be returned on all Poll calls.
// Pass nil to clear the error.
func (c *Client) SetPollError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err == nil {
		c.pollErr = nil
	} else {
		c.pollErr = func() error { return err }
	}
}

// SetPollErrorFunc configures a function to determine Poll errors.
func (c *Client) SetPollErrorFunc(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pollErr = fn
}

// SetSeekError configures an error to be returned on all Seek calls.
func (c *Client) SetSeekError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err == nil {
		c.seekErr = nil
	} else {
		c.seekErr = func(kafka.TopicPartition, int64) error { return err }
	}
}

// SetAssignError configures an error to be returned on all Assign calls.
func (c *Client) SetAssignError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err == nil {
		c.assignErr = nil
	} else {
		c.assignErr = func() error { return err }
	}
}

// AssignCalls returns every assignment in call order.
func (c *Client) AssignCalls() [][]kafka.TopicPartition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([][]kafka.TopicPartition, len(c.assignCalls))
	for i, a := range c.assignCalls {
		result[i] = slices.Clone(a)
	}
	return result
}

// SeekCalls returns every seek in call order.
func (c *Client) SeekCalls() []SeekCall {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.seekCalls)
}

// PollTimeouts returns the timeout passed to each Poll call.
func (c *Client) PollTimeouts() []time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.pollTimeouts)
}

// PollCount returns how many times Poll was called.
func (c *Client) PollCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.pollTimeouts)
}

// ProbedTopics returns the topics passed to PartitionsFor in call order.
func (c *Client) ProbedTopics() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.probedTopics)
}

// LookupCalls returns every ListOffsets call in order.
func (c *Client) LookupCalls() []LookupCall {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.lookupCalls)
}

// PendingPolls returns how many scripted batches have not been handed out yet.
func (c *Client) PendingPolls() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.batches)
}

// IsClosed returns whether Close has been called.
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.closeCount > 0
}

// CloseCount returns how many times Close has been called.
func (c *Client) CloseCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.closeCount
}
