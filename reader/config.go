package reader

import (
	"time"

	"github.com/hugolhafner/kreader/kafka"
	"github.com/hugolhafner/kreader/logger"
	"github.com/hugolhafner/kreader/offsets"
	"github.com/hugolhafner/kreader/otel"
)

const checkpointKey = "topic.partition.offset"

type Config struct {
	Factory    kafka.ConsumerFactory
	Partitions []kafka.TopicPartition
	Topics     []string
	Provider   offsets.Provider

	SaveState     bool
	PollTimeout   time.Duration
	MaxEmptyPolls int

	// Name prefixes the checkpoint key so several readers can share a store.
	Name string

	Logger    logger.Logger
	Telemetry *otel.Telemetry
}

func defaultConfig() Config {
	return Config{
		SaveState:     true,
		PollTimeout:   2 * time.Second,
		MaxEmptyPolls: 1,
		Logger:        logger.NewNoopLogger(),
		Telemetry:     otel.Noop(),
	}
}

// CheckpointKey is the key the offset table is stored under.
func (c Config) CheckpointKey() string {
	if c.Name == "" {
		return checkpointKey
	}
	return c.Name + "." + checkpointKey
}

func (c Config) validate() error {
	switch {
	case len(c.Partitions) == 0 && len(c.Topics) == 0:
		return &ConfigError{Reason: "either partitions or topics must be set"}
	case len(c.Partitions) > 0 && len(c.Topics) > 0:
		return &ConfigError{Reason: "partitions and topics are mutually exclusive"}
	case c.Factory == nil:
		return &ConfigError{Reason: "consumer factory is required"}
	case c.PollTimeout <= 0:
		return &ConfigError{Reason: "poll timeout must be positive"}
	case c.MaxEmptyPolls < 1:
		return &ConfigError{Reason: "max empty polls must be at least 1"}
	}

	for _, tp := range c.Partitions {
		if tp.Topic == "" || tp.Partition < 0 {
			return &ConfigError{Reason: "invalid partition " + tp.String()}
		}
	}
	for _, t := range c.Topics {
		if t == "" {
			return &ConfigError{Reason: "empty topic name"}
		}
	}

	return nil
}

type Option func(*Config)

func WithConsumerFactory(f kafka.ConsumerFactory) Option {
	return func(c *Config) {
		c.Factory = f
	}
}

// WithPartitions reads exactly these partitions, in this order.
func WithPartitions(partitions ...kafka.TopicPartition) Option {
	return func(c *Config) {
		c.Partitions = append(c.Partitions, partitions...)
	}
}

// WithTopics reads every partition of these topics, discovered on Open.
func WithTopics(topics ...string) Option {
	return func(c *Config) {
		c.Topics = append(c.Topics, topics...)
	}
}

func WithOffsetsProvider(p offsets.Provider) Option {
	return func(c *Config) {
		c.Provider = p
	}
}

func WithSaveState(save bool) Option {
	return func(c *Config) {
		c.SaveState = save
	}
}

func WithPollTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.PollTimeout = d
	}
}

// WithMaxEmptyPolls sets how many consecutive empty polls end the input.
func WithMaxEmptyPolls(n int) Option {
	return func(c *Config) {
		c.MaxEmptyPolls = n
	}
}

func WithName(name string) Option {
	return func(c *Config) {
		c.Name = name
	}
}

func WithLogger(l logger.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

func WithTelemetry(t *otel.Telemetry) Option {
	return func(c *Config) {
		if t != nil {
			c.Telemetry = t
		}
	}
}
