package mockkafka

import (
	"time"

	"github.com/hugolhafner/kreader/kafka"
)

// Option is a functional option for configuring a mock Client.
type Option func(*Client)

// WithPollDelay adds an artificial delay to Poll calls.
// This can be useful for testing timeout behavior or context cancellation.
func WithPollDelay(d time.Duration) Option {
	return func(c *Client) {
		c.pollDelay = d
	}
}

// WithPartitions configures the partitions reported by PartitionsFor for topic.
func WithPartitions(topic string, partitions ...int32) Option {
	return func(c *Client) {
		c.partitions[topic] = partitions
	}
}

// WithPolls queues scripted poll batches.
func WithPolls(batches ...[]kafka.ConsumerRecord) Option {
	return func(c *Client) {
		c.batches = append(c.batches, batches...)
	}
}

// WithPollError configures an error to be returned by all Poll calls.
func WithPollError(err error) Option {
	return func(c *Client) {
		c.pollErr = func() error { return err }
	}
}

// WithAssignError configures an error to be returned by all Assign calls.
func WithAssignError(err error) Option {
	return func(c *Client) {
		c.assignErr = func() error { return err }
	}
}

// WithListError configures an error to be returned by PartitionsFor.
func WithListError(err error) Option {
	return func(c *Client) {
		c.listErr = func(string) error { return err }
	}
}

// WithCloseError configures the error returned by Close.
func WithCloseError(err error) Option {
	return func(c *Client) {
		c.closeErr = err
	}
}
