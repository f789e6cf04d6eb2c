package main

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/hugolhafner/dskit/backoff"
	"github.com/hugolhafner/kreader/checkpoint"
	"github.com/hugolhafner/kreader/checkpoint/badgerstore"
	"github.com/hugolhafner/kreader/checkpoint/redisstore"
	"github.com/hugolhafner/kreader/committer"
	"github.com/hugolhafner/kreader/errorhandler"
	"github.com/hugolhafner/kreader/kafka"
	saramaclient "github.com/hugolhafner/kreader/kafka/sarama"
	"github.com/hugolhafner/kreader/logger"
	"github.com/hugolhafner/kreader/offsets"
	"github.com/hugolhafner/kreader/reader"
	"github.com/hugolhafner/kreader/serde"
)

func newFactory(cfg Config, l logger.Logger) (kafka.ConsumerFactory, error) {
	policy, err := kafka.ParseResetPolicy(cfg.Start)
	if err != nil {
		return nil, err
	}

	switch cfg.Client {
	case "sarama":
		initial := sarama.OffsetOldest
		if policy == kafka.ResetLatest {
			initial = sarama.OffsetNewest
		}

		sc := sarama.NewConfig()
		sc.ClientID = "kreader"
		return saramaclient.NewFactory(
			cfg.Brokers, sc,
			saramaclient.WithInitialOffset(initial),
			saramaclient.WithLogger(l),
		), nil
	default:
		return kafka.NewKgoFactory(
			kafka.WithBootstrapServers(cfg.Brokers),
			kafka.WithResetPolicy(policy),
			kafka.WithLogger(l),
		), nil
	}
}

// newStore returns the checkpoint store and a func releasing it.
func newStore(ctx context.Context, cfg StoreCfg) (checkpoint.Store, func() error, error) {
	switch cfg.Type {
	case "badger":
		s, err := badgerstore.Open(cfg.Dir, badgerstore.WithPrefix(cfg.Prefix))
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "redis":
		opts := []redisstore.Option{redisstore.WithTTL(cfg.TTL)}
		if cfg.Prefix != "" {
			opts = append(opts, redisstore.WithKeyPrefix(cfg.Prefix))
		}

		s, err := redisstore.Dial(ctx, cfg.Addr, cfg.Password, cfg.DB, opts...)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return checkpoint.NewExecutionContext(), func() error { return nil }, nil
	}
}

func newProvider(cfg Config, factory kafka.ConsumerFactory) (offsets.Provider, error) {
	lookup := kafka.FactoryLookup(factory)

	if cfg.FromTime != "" {
		t, err := time.Parse(time.RFC3339, cfg.FromTime)
		if err != nil {
			return nil, fmt.Errorf("parse --from-time: %w", err)
		}
		return offsets.AtTime(lookup, t), nil
	}

	switch cfg.Start {
	case "earliest":
		return offsets.Earliest(lookup), nil
	case "latest":
		return offsets.Latest(lookup), nil
	default:
		return nil, nil
	}
}

func newReader(cfg Config, factory kafka.ConsumerFactory, l logger.Logger) (*reader.Reader, error) {
	opts := []reader.Option{
		reader.WithConsumerFactory(factory),
		reader.WithName(cfg.Name),
		reader.WithPollTimeout(cfg.PollTimeout),
		reader.WithMaxEmptyPolls(cfg.MaxEmptyPolls),
		reader.WithSaveState(!cfg.NoSave),
		reader.WithLogger(l),
	}

	if len(cfg.Topics) > 0 {
		opts = append(opts, reader.WithTopics(cfg.Topics...))
	} else {
		partitions, err := parsePartitions(cfg.Partitions)
		if err != nil {
			return nil, err
		}
		opts = append(opts, reader.WithPartitions(partitions...))
	}

	provider, err := newProvider(cfg, factory)
	if err != nil {
		return nil, err
	}
	if provider != nil {
		opts = append(opts, reader.WithOffsetsProvider(provider))
	}

	return reader.New(opts...)
}

func newDeserialiser(format string) (serde.Deserialiser[any], error) {
	var u serde.UntypedDeserialiser
	switch format {
	case "bytes":
		u = serde.ToUntyped(serde.Bytes())
	case "string":
		u = serde.ToUntyped(serde.String())
	case "json":
		u = serde.ToUntyped(serde.JSON[any]())
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}

	return serde.DeserialiserFunc[any](u.DeserialiseAny), nil
}

// lineSerialiser prints raw payloads as they are and anything else as JSON.
func lineSerialiser() serde.Serialiser[any] {
	js := serde.JSON[any]()
	return serde.SerialiserFunc[any](
		func(topic string, v any) ([]byte, error) {
			switch v := v.(type) {
			case []byte:
				return v, nil
			case string:
				return []byte(v), nil
			default:
				return js.Serialise(topic, v)
			}
		},
	)
}

func newErrorHandler(cfg Config, l logger.Logger) errorhandler.Handler {
	fail := errorhandler.LogAndFail(l)

	var read errorhandler.Handler
	if cfg.SkipInvalid {
		read = errorhandler.LogAndContinue(l)
	}
	write := errorhandler.WithMaxAttempts(cfg.Retry.Attempts, backoff.NewFixed(cfg.Retry.Backoff), fail)

	return errorhandler.ActionLogger(l, logger.DebugLevel, errorhandler.NewPhaseRouter(fail, read, write))
}

func newCommitter(cfg CheckpointCfg) committer.Committer {
	return committer.NewPeriodicCommitter(
		committer.WithMaxInterval(cfg.Interval),
		committer.WithMaxCount(cfg.Count),
	)
}
