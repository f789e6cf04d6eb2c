package main

import (
	"context"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/hugolhafner/kreader/kafka"
	"github.com/hugolhafner/kreader/logger"
	"github.com/hugolhafner/kreader/plugins/zaplogger"
	"github.com/hugolhafner/kreader/reader"
	"github.com/hugolhafner/kreader/step"
	"github.com/spf13/cobra"
)

func newReadCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Print every record after the last checkpoint and checkpoint the new position",
		Example: `  kreader read --brokers localhost:9092 --topic orders --store badger
  kreader read --partition orders:0 --partition orders:1 --from-time 2024-01-01T00:00:00Z`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath, cmd.Flags())
			if err != nil {
				return err
			}
			applyDefaults(&cfg)
			if err := cfg.validate(); err != nil {
				return err
			}

			l, zl, err := zaplogger.NewProduction(logger.ParseLevel(cfg.Log.Level), cfg.Log.JSON)
			if err != nil {
				return err
			}
			defer func() { _ = zl.Sync() }()

			factory, err := newFactory(cfg, l)
			if err != nil {
				return err
			}

			res, err := runRead(cmd.Context(), cfg, factory, cmd.OutOrStdout(), l)
			if err != nil {
				return err
			}

			l.Info("Read completed", "read", res.Read, "skipped", res.Skipped, "checkpoints", res.Checkpoints)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringSlice("brokers", nil, "Kafka bootstrap servers")
	f.String("client", "kgo", "Kafka client: kgo|sarama")
	f.StringSlice("topic", nil, "Read every partition of the topic (repeatable)")
	f.StringSlice("partition", nil, "Read one partition as topic:partition (repeatable)")
	f.String("name", "", "Reader name, prefixes the checkpoint key")
	f.String("start", "", "Start position without a checkpoint: earliest|latest")
	f.String("from-time", "", "Start at the first record at or after this RFC3339 time when nothing is checkpointed")
	f.String("format", "string", "Value format: bytes|string|json")
	f.Bool("skip-invalid", false, "Skip records that do not decode instead of failing")
	f.Duration("poll-timeout", 0, "How long one poll waits for records")
	f.Int("max-empty-polls", 0, "Consecutive empty polls before the input counts as exhausted")
	f.Int("chunk-size", 0, "Records written per chunk")
	f.Bool("no-save", false, "Do not load or save checkpoints")
	f.String("store", "memory", "Checkpoint store: memory|badger|redis")
	f.String("store-dir", "", "Badger directory")
	f.String("redis-addr", "", "Redis address")
	f.String("redis-password", "", "Redis password")
	f.Int("redis-db", 0, "Redis database")
	f.Int("retry-attempts", 0, "Write attempts per chunk before failing")
	f.Duration("retry-backoff", 0, "Wait between write attempts")
	f.Duration("checkpoint-interval", 0, "Checkpoint at least this often")
	f.Int("checkpoint-count", 0, "Checkpoint after this many records, 0 disables the count trigger")
	f.String("log-level", "", "debug|info|warn|error")
	f.Bool("log-json", false, "Log as JSON")

	return cmd
}

// runRead wires a reader over factory into a step printing values to out.
func runRead(ctx context.Context, cfg Config, factory kafka.ConsumerFactory, out io.Writer, l logger.Logger) (
	res step.Result, err error,
) {
	store, closeStore, err := newStore(ctx, cfg.Store)
	if err != nil {
		return res, fmt.Errorf("open %s store: %w", cfg.Store.Type, err)
	}
	defer func() {
		if cerr := closeStore(); cerr != nil {
			err = multierror.Append(err, fmt.Errorf("close store: %w", cerr)).ErrorOrNil()
		}
	}()

	r, err := newReader(cfg, factory, l)
	if err != nil {
		return res, err
	}

	d, err := newDeserialiser(cfg.Format)
	if err != nil {
		return res, err
	}

	s := step.New[any](
		reader.NewTyped(r, d),
		step.NewLineWriter[any](out, lineSerialiser(), ""),
		store,
		step.WithName(cfg.Name),
		step.WithChunkSize(cfg.ChunkSize),
		step.WithCommitter(newCommitter(cfg.Checkpoint)),
		step.WithErrorHandler(newErrorHandler(cfg, l)),
		step.WithLogger(l),
	)
	return s.Run(ctx)
}
