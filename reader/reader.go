// Package reader hands out records from a fixed set of Kafka partitions one at a
// time and remembers, per partition, the offset of the last record handed out so
// a later run can resume right after it.
package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/hugolhafner/kreader/checkpoint"
	"github.com/hugolhafner/kreader/kafka"
	"github.com/hugolhafner/kreader/logger"
	"github.com/hugolhafner/kreader/offsets"
	kreaderotel "github.com/hugolhafner/kreader/otel"
	"github.com/hugolhafner/kreader/partition"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
	"go.opentelemetry.io/otel/trace"
)

// Reader is not safe for concurrent use, except for Snapshot which may be
// called from any goroutine. Close must not race with Read.
type Reader struct {
	config Config
	state  State

	consumer   kafka.Consumer
	partitions []kafka.TopicPartition
	buffer     []kafka.ConsumerRecord
	emptyPolls int
	exhausted  bool

	mu      sync.Mutex
	offsets kafka.OffsetTable

	logger    logger.Logger
	telemetry *kreaderotel.Telemetry
	metricOpt metric.MeasurementOption
}

// NewReader returns an unconfigured reader. Call Configure before Open.
func NewReader(opts ...Option) *Reader {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	l := cfg.Logger.With("component", "reader")
	if cfg.Name != "" {
		l = l.With("name", cfg.Name)
	}

	return &Reader{
		config:    cfg,
		state:     StateUnconfigured,
		offsets:   make(kafka.OffsetTable),
		logger:    l,
		telemetry: cfg.Telemetry,
		metricOpt: metric.WithAttributes(kreaderotel.AttrReaderName.String(cfg.Name)),
	}
}

// New builds and configures a reader.
func New(opts ...Option) (*Reader, error) {
	r := NewReader(opts...)
	if err := r.Configure(); err != nil {
		return nil, err
	}
	return r, nil
}

// Configure validates the settings. It may be called any number of times and
// only moves an unconfigured reader forward.
func (r *Reader) Configure() error {
	if err := r.config.validate(); err != nil {
		return err
	}

	if r.state == StateUnconfigured {
		r.config.Partitions = dedupe(r.config.Partitions)
		r.state = StateConfigured
	}
	return nil
}

func (r *Reader) State() State {
	return r.state
}

func (r *Reader) CheckpointKey() string {
	return r.config.CheckpointKey()
}

// Partitions returns the partitions assigned by the last Open.
func (r *Reader) Partitions() []kafka.TopicPartition {
	return slices.Clone(r.partitions)
}

func (r *Reader) require(op string, allowed ...State) error {
	if slices.Contains(allowed, r.state) {
		return nil
	}
	return &StateError{Op: op, State: r.state}
}

// Open assigns the partitions and positions each one. A partition with a saved
// offset in store resumes right after it; otherwise the offsets provider, when
// configured, decides; otherwise the client's default position is kept. store
// may be nil when nothing was saved.
func (r *Reader) Open(ctx context.Context, store checkpoint.Store) error {
	if err := r.require("open", StateConfigured, StateClosed); err != nil {
		return err
	}

	ctx, span := r.telemetry.Tracer.Start(ctx, "open")
	defer span.End()

	fail := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	partitions, err := r.resolvePartitions(ctx)
	if err != nil {
		return fail(err)
	}

	consumer, err := r.config.Factory.NewConsumer()
	if err != nil {
		return fail(fmt.Errorf("create consumer: %w", err))
	}

	table, err := r.position(ctx, consumer, partitions, store)
	if err != nil {
		fail(err)
		if cerr := consumer.Close(); cerr != nil {
			r.logger.Warn("Failed to close consumer after open error", "error", cerr)
		}
		return err
	}

	r.consumer = consumer
	r.partitions = partitions
	r.buffer = nil
	r.emptyPolls = 0
	r.exhausted = false

	r.mu.Lock()
	r.offsets = table
	r.mu.Unlock()

	r.state = StateOpen
	r.telemetry.PartitionsAssigned.Add(ctx, int64(len(partitions)), r.metricOpt)
	r.logger.Info("Reader opened", "partitions", len(partitions))
	return nil
}

func (r *Reader) resolvePartitions(ctx context.Context) ([]kafka.TopicPartition, error) {
	if len(r.config.Partitions) > 0 {
		return slices.Clone(r.config.Partitions), nil
	}

	probe, err := r.config.Factory.NewConsumer()
	if err != nil {
		return nil, fmt.Errorf("create probe consumer: %w", err)
	}

	partitions, err := partition.Resolve(ctx, probe, r.config.Topics)
	if cerr := probe.Close(); cerr != nil {
		r.logger.Warn("Failed to close probe consumer", "error", cerr)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve partitions: %w", err)
	}

	r.logger.Debug("Resolved partitions", "topics", r.config.Topics, "partitions", partitions)
	return partitions, nil
}

// position assigns and seeks consumer and returns the seeded offset table.
func (r *Reader) position(
	ctx context.Context,
	consumer kafka.Consumer,
	partitions []kafka.TopicPartition,
	store checkpoint.Store,
) (kafka.OffsetTable, error) {
	if err := consumer.Assign(partitions); err != nil {
		return nil, fmt.Errorf("assign partitions: %w", err)
	}

	var saved kafka.OffsetTable
	if r.config.SaveState && store != nil {
		var err error
		saved, _, err = store.Get(ctx, r.CheckpointKey())
		if err != nil {
			return nil, fmt.Errorf("load checkpoint %s: %w", r.CheckpointKey(), err)
		}
	}

	var provided map[kafka.TopicPartition]int64
	if r.config.Provider != nil && offsets.NeedsProvider(partitions, saved) {
		var err error
		provided, err = r.config.Provider.Offsets(ctx, partitions)
		if err != nil {
			return nil, fmt.Errorf("provide offsets: %w", err)
		}
	}

	table := make(kafka.OffsetTable, len(partitions))
	for _, res := range offsets.Resolve(partitions, saved, provided) {
		if res.Source == offsets.SourceCheckpoint {
			table[res.Partition] = saved[res.Partition]
		}

		offset, ok := res.Seek()
		if !ok {
			continue
		}
		if err := consumer.Seek(res.Partition, offset); err != nil {
			return nil, fmt.Errorf("seek %s to %d: %w", res.Partition, offset, err)
		}

		trace.SpanFromContext(ctx).AddEvent(
			"seek", trace.WithAttributes(
				semconv.MessagingDestinationName(res.Partition.Topic),
				semconv.MessagingDestinationPartitionID(strconv.FormatInt(int64(res.Partition.Partition), 10)),
				semconv.MessagingKafkaOffsetKey.Int64(offset),
				offsetSourceAttr(res),
			),
		)

		r.logger.Debug(
			"Seeked partition",
			"topic", res.Partition.Topic,
			"partition", res.Partition.Partition,
			"offset", offset,
			"source", res.Source.String(),
		)
	}

	return table, nil
}

// Read returns the value of the next record, or io.EOF once MaxEmptyPolls
// consecutive polls came back empty.
func (r *Reader) Read(ctx context.Context) ([]byte, error) {
	rec, err := r.ReadRecord(ctx)
	if err != nil {
		return nil, err
	}
	return rec.Value, nil
}

// ReadRecord is Read returning the whole record.
func (r *Reader) ReadRecord(ctx context.Context) (kafka.ConsumerRecord, error) {
	if err := r.require("read", StateOpen); err != nil {
		return kafka.ConsumerRecord{}, err
	}

	for len(r.buffer) == 0 {
		if r.exhausted {
			return kafka.ConsumerRecord{}, io.EOF
		}
		if err := ctx.Err(); err != nil {
			return kafka.ConsumerRecord{}, err
		}

		records, err := r.poll(ctx)
		if err != nil {
			return kafka.ConsumerRecord{}, fmt.Errorf("poll: %w", err)
		}

		if len(records) > 0 {
			r.buffer = records
			r.emptyPolls = 0
			continue
		}

		if err := ctx.Err(); err != nil {
			return kafka.ConsumerRecord{}, err
		}

		r.emptyPolls++
		r.telemetry.EmptyPolls.Add(ctx, 1, r.metricOpt)
		if r.emptyPolls >= r.config.MaxEmptyPolls {
			r.exhausted = true
			r.logger.Info("No more records", "empty_polls", r.emptyPolls)
		}
	}

	rec := r.buffer[0]
	r.buffer[0] = kafka.ConsumerRecord{}
	r.buffer = r.buffer[1:]

	r.mu.Lock()
	r.offsets[rec.TopicPartition()] = rec.Offset
	r.mu.Unlock()

	r.telemetry.MessagesConsumed.Add(
		ctx, 1, metric.WithAttributes(
			semconv.MessagingDestinationName(rec.Topic),
			semconv.MessagingDestinationPartitionID(strconv.FormatInt(int64(rec.Partition), 10)),
		),
	)

	return rec, nil
}

func (r *Reader) poll(ctx context.Context) ([]kafka.ConsumerRecord, error) {
	tel := r.telemetry
	start := time.Now()

	ctx, span := tel.Tracer.Start(
		ctx, "receive",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingOperationTypeReceive,
		),
	)
	defer span.End()

	records, err := r.consumer.Poll(ctx, r.config.PollTimeout)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		tel.PollDuration.Record(
			ctx, time.Since(start).Seconds(), metric.WithAttributes(
				kreaderotel.AttrPollStatus.String(kreaderotel.StatusError),
			),
		)
		tel.Errors.Add(
			ctx, 1, metric.WithAttributes(
				kreaderotel.AttrErrorPhase.String(kreaderotel.PhaseRead),
			),
		)

		if !errors.Is(err, context.Canceled) {
			r.logger.Error("Poll failed", "error", err)
		}
		return nil, err
	}

	tel.PollDuration.Record(
		ctx, time.Since(start).Seconds(), metric.WithAttributes(
			kreaderotel.AttrPollStatus.String(kreaderotel.StatusSuccess),
		),
	)
	span.SetAttributes(semconv.MessagingBatchMessageCount(len(records)))

	r.logger.Debug("Polled records", "count", len(records))
	return records, nil
}

// Snapshot returns a copy of the offset of the last record handed out per
// partition, including offsets resumed from a checkpoint.
func (r *Reader) Snapshot() kafka.OffsetTable {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.offsets.Clone()
}

// Update writes the current snapshot to store. It does nothing when save state
// is disabled.
func (r *Reader) Update(ctx context.Context, store checkpoint.Store) error {
	if err := r.require("update", StateOpen); err != nil {
		return err
	}
	if !r.config.SaveState {
		return nil
	}
	if store == nil {
		return errors.New("update: nil checkpoint store")
	}

	snapshot := r.Snapshot()
	if err := store.Put(ctx, r.CheckpointKey(), snapshot); err != nil {
		r.telemetry.Errors.Add(
			ctx, 1, metric.WithAttributes(
				kreaderotel.AttrErrorPhase.String(kreaderotel.PhaseCheckpoint),
			),
		)
		return fmt.Errorf("save checkpoint %s: %w", r.CheckpointKey(), err)
	}

	r.telemetry.Checkpoints.Add(ctx, 1, r.metricOpt)
	r.logger.Debug("Saved checkpoint", "key", r.CheckpointKey(), "partitions", len(snapshot))
	return nil
}

// Close releases the consumer. Closing a reader that is not open does nothing.
func (r *Reader) Close() error {
	if r.state != StateOpen {
		return nil
	}

	err := r.consumer.Close()

	r.telemetry.PartitionsAssigned.Add(context.Background(), -int64(len(r.partitions)), r.metricOpt)
	r.consumer = nil
	r.buffer = nil
	r.state = StateClosed
	r.logger.Info("Reader closed")

	if err != nil {
		return fmt.Errorf("close consumer: %w", err)
	}
	return nil
}

// All yields records until the input is exhausted or an error occurs. The
// error, if any, is yielded once and ends the sequence.
func (r *Reader) All(ctx context.Context) iter.Seq2[kafka.ConsumerRecord, error] {
	return func(yield func(kafka.ConsumerRecord, error) bool) {
		for {
			rec, err := r.ReadRecord(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(kafka.ConsumerRecord{}, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

func dedupe(partitions []kafka.TopicPartition) []kafka.TopicPartition {
	seen := make(map[kafka.TopicPartition]struct{}, len(partitions))
	out := make([]kafka.TopicPartition, 0, len(partitions))
	for _, tp := range partitions {
		if _, ok := seen[tp]; ok {
			continue
		}
		seen[tp] = struct{}{}
		out = append(out, tp)
	}
	return out
}

func offsetSourceAttr(res offsets.Resolution) attribute.KeyValue {
	return kreaderotel.AttrOffsetSource.String(res.Source.String())
}
