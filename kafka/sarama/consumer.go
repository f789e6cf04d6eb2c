// Package saramaclient adapts an IBM/sarama consumer to the kafka.Consumer
// contract. Each assigned partition is read by its own sarama PartitionConsumer
// and the messages are fanned into a single channel that Poll drains.
package saramaclient

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/hashicorp/go-multierror"
	"github.com/hugolhafner/kreader/kafka"
	"github.com/hugolhafner/kreader/logger"
)

var (
	_ kafka.Consumer        = (*Consumer)(nil)
	_ kafka.OffsetLookup    = (*Consumer)(nil)
	_ kafka.ConsumerFactory = (*Factory)(nil)
)

var (
	// ErrSeekAfterStart is returned by Seek once partitions are being consumed.
	ErrSeekAfterStart = errors.New("seek after consumption started")
	// ErrNoClient is returned by ListOffsets when the consumer was built without a sarama.Client.
	ErrNoClient = errors.New("offset lookup needs a sarama client")
)

type Config struct {
	MaxPollRecords int
	InitialOffset  int64
	Logger         logger.Logger
}

func defaultConfig() Config {
	return Config{
		MaxPollRecords: 500,
		InitialOffset:  sarama.OffsetOldest,
		Logger:         logger.NewNoopLogger(),
	}
}

type Option func(*Config)

func WithMaxPollRecords(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxPollRecords = n
		}
	}
}

// WithInitialOffset sets where partitions without a seek start, sarama.OffsetOldest
// or sarama.OffsetNewest.
func WithInitialOffset(offset int64) Option {
	return func(c *Config) {
		c.InitialOffset = offset
	}
}

func WithLogger(l logger.Logger) Option {
	return func(c *Config) {
		c.Logger = l.With("client", "sarama")
	}
}

type Consumer struct {
	consumer sarama.Consumer
	client   sarama.Client
	config   Config

	assigned []kafka.TopicPartition
	starts   map[kafka.TopicPartition]int64

	started    bool
	closed     bool
	pcs        []sarama.PartitionConsumer
	msgs       chan *sarama.ConsumerMessage
	errs       chan *sarama.ConsumerError
	pendingErr error
	done       chan struct{}
	wg         sync.WaitGroup

	logger logger.Logger
}

// New wraps consumer. client is optional and only used by ListOffsets. Close
// closes both.
func New(consumer sarama.Consumer, client sarama.Client, opts ...Option) *Consumer {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Consumer{
		consumer: consumer,
		client:   client,
		config:   cfg,
		starts:   make(map[kafka.TopicPartition]int64),
		logger:   cfg.Logger,
	}
}

func (c *Consumer) Assign(partitions []kafka.TopicPartition) error {
	if c.started {
		return errors.New("assign: partitions already being consumed")
	}

	c.assigned = slices.Clone(partitions)
	clear(c.starts)
	for _, tp := range partitions {
		c.starts[tp] = c.config.InitialOffset
	}
	return nil
}

func (c *Consumer) Seek(tp kafka.TopicPartition, offset int64) error {
	if c.started {
		return fmt.Errorf("seek %s: %w", tp, ErrSeekAfterStart)
	}
	if _, ok := c.starts[tp]; !ok {
		return fmt.Errorf("seek %s: partition not assigned", tp)
	}

	c.starts[tp] = offset
	return nil
}

func (c *Consumer) start() error {
	c.msgs = make(chan *sarama.ConsumerMessage, c.config.MaxPollRecords)
	c.errs = make(chan *sarama.ConsumerError, len(c.assigned))
	c.done = make(chan struct{})

	for _, tp := range c.assigned {
		pc, err := c.consumer.ConsumePartition(tp.Topic, tp.Partition, c.starts[tp])
		if err != nil {
			c.stop()
			return fmt.Errorf("consume %s at %d: %w", tp, c.starts[tp], err)
		}

		c.pcs = append(c.pcs, pc)
		c.wg.Add(1)
		go c.forward(pc)
	}

	c.started = true
	c.logger.Debug("Started partition consumers", "partitions", len(c.pcs))
	return nil
}

func (c *Consumer) forward(pc sarama.PartitionConsumer) {
	defer c.wg.Done()

	msgs, errs := pc.Messages(), pc.Errors()
	for msgs != nil || errs != nil {
		select {
		case <-c.done:
			return
		case m, ok := <-msgs:
			if !ok {
				msgs = nil
				continue
			}
			select {
			case c.msgs <- m:
			case <-c.done:
				return
			}
		case e, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			select {
			case c.errs <- e:
			case <-c.done:
				return
			}
		}
	}
}

// Poll waits up to timeout for the first message, then drains whatever is
// already buffered up to MaxPollRecords without blocking.
func (c *Consumer) Poll(ctx context.Context, timeout time.Duration) ([]kafka.ConsumerRecord, error) {
	if c.closed {
		return nil, errors.New("poll: consumer closed")
	}

	if !c.started {
		if err := c.start(); err != nil {
			return nil, err
		}
	}

	if err := c.pendingErr; err != nil {
		c.pendingErr = nil
		return nil, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	records := make([]kafka.ConsumerRecord, 0)
	select {
	case m := <-c.msgs:
		records = append(records, convertMessage(m))
	case e := <-c.errs:
		return nil, fmt.Errorf("poll %s-%d: %w", e.Topic, e.Partition, e.Err)
	case <-timer.C:
		return records, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	for len(records) < c.config.MaxPollRecords {
		select {
		case m := <-c.msgs:
			records = append(records, convertMessage(m))
			continue
		case e := <-c.errs:
			c.pendingErr = fmt.Errorf("poll %s-%d: %w", e.Topic, e.Partition, e.Err)
		default:
		}
		break
	}

	return records, nil
}

func (c *Consumer) PartitionsFor(ctx context.Context, topic string) ([]int32, error) {
	partitions, err := c.consumer.Partitions(topic)
	if err != nil {
		return nil, fmt.Errorf("list partitions of %s: %w", topic, err)
	}
	return partitions, nil
}

func (c *Consumer) ListOffsets(ctx context.Context, partitions []kafka.TopicPartition, timestamp int64) (
	map[kafka.TopicPartition]int64, error,
) {
	if c.client == nil {
		return nil, ErrNoClient
	}

	offsets := make(map[kafka.TopicPartition]int64, len(partitions))
	for _, tp := range partitions {
		offset, err := c.client.GetOffset(tp.Topic, tp.Partition, timestamp)
		if err != nil {
			return nil, fmt.Errorf("list offsets %s: %w", tp, err)
		}
		offsets[tp] = offset
	}
	return offsets, nil
}

func (c *Consumer) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	var result *multierror.Error
	if err := c.stop(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.consumer.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close consumer: %w", err))
	}
	if c.client != nil && !c.client.Closed() {
		if err := c.client.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close client: %w", err))
		}
	}
	return result.ErrorOrNil()
}

func (c *Consumer) stop() error {
	if c.done != nil {
		close(c.done)
		c.done = nil
	}

	var result *multierror.Error
	for _, pc := range c.pcs {
		if err := pc.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close partition consumer: %w", err))
		}
	}
	c.wg.Wait()
	c.pcs = nil

	return result.ErrorOrNil()
}

func convertMessage(m *sarama.ConsumerMessage) kafka.ConsumerRecord {
	headers := make([]kafka.Header, 0, len(m.Headers))
	for _, h := range m.Headers {
		if h == nil {
			continue
		}
		headers = append(headers, kafka.Header{Key: string(h.Key), Value: h.Value})
	}

	return kafka.ConsumerRecord{
		Key:       m.Key,
		Value:     m.Value,
		Headers:   headers,
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Timestamp: m.Timestamp,
	}
}

// Factory builds a new sarama client and consumer per NewConsumer call.
type Factory struct {
	brokers []string
	config  *sarama.Config
	opts    []Option
}

// NewFactory copies config, so the caller's value is left untouched. Partition
// errors are always returned so they surface from Poll.
func NewFactory(brokers []string, config *sarama.Config, opts ...Option) *Factory {
	cfg := sarama.NewConfig()
	if config != nil {
		copied := *config
		cfg = &copied
	}
	cfg.Consumer.Return.Errors = true

	return &Factory{brokers: brokers, config: cfg, opts: opts}
}

func (f *Factory) NewConsumer() (kafka.Consumer, error) {
	client, err := sarama.NewClient(f.brokers, f.config)
	if err != nil {
		return nil, fmt.Errorf("create sarama client: %w", err)
	}

	consumer, err := sarama.NewConsumerFromClient(client)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("create sarama consumer: %w", err)
	}

	return New(consumer, client, f.opts...), nil
}
