// Package step drives a reader through fixed size chunks: read up to ChunkSize
// items, hand them to a writer and checkpoint the reader's offsets once the
// chunk is written. Offsets are only saved at chunk boundaries, so a restart
// never skips an item that was read but not written.
package step

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/hugolhafner/kreader/checkpoint"
	"github.com/hugolhafner/kreader/errorhandler"
	"github.com/hugolhafner/kreader/kafka"
	"github.com/hugolhafner/kreader/logger"
	"github.com/hugolhafner/kreader/otel"
	"github.com/hugolhafner/kreader/reader"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	_ ItemReader[[]byte]               = (*reader.Reader)(nil)
	_ ItemReader[kafka.ConsumerRecord] = reader.RecordReader{}
	_ ItemReader[string]               = (*reader.TypedReader[string])(nil)
)

// ItemReader is implemented by reader.Reader, reader.RecordReader and
// reader.TypedReader.
type ItemReader[T any] interface {
	Open(ctx context.Context, store checkpoint.Store) error
	Read(ctx context.Context) (T, error)
	Update(ctx context.Context, store checkpoint.Store) error
	Close() error
}

type Result struct {
	Read        int
	Written     int
	Skipped     int
	Chunks      int
	Checkpoints int
}

type Step[T any] struct {
	reader ItemReader[T]
	writer Writer[T]
	store  checkpoint.Store
	config Config

	logger    logger.Logger
	telemetry *otel.Telemetry
}

// New builds a step. store may be nil when the reader does not save state.
func New[T any](r ItemReader[T], w Writer[T], store checkpoint.Store, opts ...Option) *Step[T] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = errorhandler.LogAndFail(cfg.Logger)
	}
	if cfg.Committer == nil {
		cfg.Committer = defaultConfig().Committer
	}

	return &Step[T]{
		reader:    r,
		writer:    w,
		store:     store,
		config:    cfg,
		logger:    cfg.Logger.With("component", "step", "step", cfg.Name),
		telemetry: cfg.Telemetry,
	}
}

// Run opens the reader, processes chunks until the input is exhausted and
// closes the reader. A failed step keeps the checkpoint of the last committed
// chunk.
func (s *Step[T]) Run(ctx context.Context) (res Result, err error) {
	if err := s.reader.Open(ctx, s.store); err != nil {
		return res, fmt.Errorf("open reader: %w", err)
	}

	defer func() {
		if cerr := s.reader.Close(); cerr != nil {
			err = multierror.Append(err, fmt.Errorf("close reader: %w", cerr)).ErrorOrNil()
		}
	}()

	s.logger.Info("Step started", "chunk_size", s.config.ChunkSize)

	// each run starts a fresh cadence
	s.config.Committer.Committed()

	pending := 0
	for {
		processed, done, err := s.chunk(ctx, &res)
		if err != nil {
			return res, err
		}

		pending += processed
		s.config.Committer.RecordProcessed(processed)
		if processed > 0 && s.config.Committer.Due() {
			if err := s.checkpoint(ctx, &res); err != nil {
				return res, err
			}
			pending = 0
		}

		if done {
			break
		}
	}

	if pending > 0 {
		if err := s.checkpoint(ctx, &res); err != nil {
			return res, err
		}
	}

	s.logger.Info(
		"Step completed",
		"read", res.Read,
		"written", res.Written,
		"skipped", res.Skipped,
		"chunks", res.Chunks,
		"checkpoints", res.Checkpoints,
	)
	return res, nil
}

// chunk reads and writes one chunk. processed counts every item whose offset
// moved forward, including skipped ones.
func (s *Step[T]) chunk(ctx context.Context, res *Result) (processed int, done bool, err error) {
	number := res.Chunks + 1
	start := time.Now()

	items, skipped, done, err := s.readChunk(ctx, number)
	res.Read += len(items)
	res.Skipped += skipped
	if err != nil {
		return 0, false, err
	}
	if len(items) == 0 {
		return skipped, done, nil
	}

	ctx, span := s.telemetry.Tracer.Start(
		ctx, "chunk",
		trace.WithLinks(s.telemetry.Links(ctx, recordsOf(items))...),
		trace.WithAttributes(
			attribute.Int("kreader.chunk.number", number),
			attribute.Int("kreader.chunk.items", len(items)),
		),
	)
	defer span.End()

	status, err := s.write(ctx, number, items)
	s.telemetry.ChunkDuration.Record(
		ctx, time.Since(start).Seconds(),
		metric.WithAttributes(otel.AttrReaderName.String(s.config.Name), otel.AttrChunkStatus.String(status)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, false, err
	}

	res.Chunks++
	switch status {
	case otel.StatusSkipped:
		res.Skipped += len(items)
	default:
		res.Written += len(items)
	}

	return len(items) + skipped, done, nil
}

func (s *Step[T]) readChunk(ctx context.Context, number int) (items []T, skipped int, done bool, err error) {
	items = make([]T, 0, s.config.ChunkSize)
	for len(items) < s.config.ChunkSize {
		item, err := s.reader.Read(ctx)
		if errors.Is(err, io.EOF) {
			return items, skipped, true, nil
		}
		if err != nil {
			de, ok := reader.AsDeserialiseError(err)
			if !ok {
				s.recordError(ctx, otel.PhaseRead)
				return items, skipped, false, fmt.Errorf("read: %w", err)
			}

			ec := errorhandler.NewErrorContext(errorhandler.PhaseRead, err).
				WithChunk(number, 0).
				WithRecord(de.Partition, de.Offset)
			if !s.skipRecord(ctx, ec) {
				return items, skipped, false, fmt.Errorf("read: %w", err)
			}
			skipped++
			continue
		}

		items = append(items, item)
	}
	return items, skipped, false, nil
}

// skipRecord asks the error handler what to do with an undecodable record.
// Decoding the same bytes again cannot succeed, so Retry skips the record too.
func (s *Step[T]) skipRecord(ctx context.Context, ec errorhandler.ErrorContext) bool {
	s.recordError(ctx, otel.PhaseDeserialise)

	action := s.config.ErrorHandler.Handle(ctx, ec)
	s.recordAction(ctx, action, otel.PhaseDeserialise)

	return action.Type() != errorhandler.ActionTypeFail
}

func (s *Step[T]) write(ctx context.Context, number int, items []T) (string, error) {
	ec := errorhandler.NewErrorContext(errorhandler.PhaseWrite, nil).WithChunk(number, len(items))

	for {
		err := s.writer.Write(ctx, items)
		if err == nil {
			return otel.StatusSuccess, nil
		}

		werr := &WriteError{Cause: err, Items: len(items)}
		s.recordError(ctx, otel.PhaseWrite)
		if ctx.Err() != nil {
			return otel.StatusFailed, werr
		}

		ec = ec.WithError(werr)
		action := s.config.ErrorHandler.Handle(ctx, ec)
		s.recordAction(ctx, action, otel.PhaseWrite)

		switch action.Type() {
		case errorhandler.ActionTypeContinue:
			return otel.StatusSkipped, nil
		case errorhandler.ActionTypeRetry:
			ec = ec.IncrementAttempt()
			s.logger.Debug("Retrying chunk", "chunk", number, "attempt", ec.Attempt)
		default:
			return otel.StatusFailed, werr
		}
	}
}

func (s *Step[T]) checkpoint(ctx context.Context, res *Result) error {
	if err := s.reader.Update(ctx, s.store); err != nil {
		s.recordError(ctx, otel.PhaseCheckpoint)
		return fmt.Errorf("checkpoint: %w", err)
	}

	s.config.Committer.Committed()
	res.Checkpoints++
	s.logger.Debug("Checkpoint saved", "chunks", res.Chunks)
	return nil
}

func (s *Step[T]) recordError(ctx context.Context, phase string) {
	s.telemetry.Errors.Add(
		ctx, 1, metric.WithAttributes(otel.AttrReaderName.String(s.config.Name), otel.AttrErrorPhase.String(phase)),
	)
}

func (s *Step[T]) recordAction(ctx context.Context, action errorhandler.Action, phase string) {
	s.telemetry.ErrorHandlerActions.Add(
		ctx, 1, metric.WithAttributes(
			otel.AttrReaderName.String(s.config.Name),
			otel.AttrErrorAction.String(action.Type().String()),
			otel.AttrErrorPhase.String(phase),
		),
	)
}

// recordsOf returns items as records when the step reads whole records.
func recordsOf[T any](items []T) []kafka.ConsumerRecord {
	records, ok := any(items).([]kafka.ConsumerRecord)
	if !ok {
		return nil
	}
	return records
}
