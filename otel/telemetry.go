package otel

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	traceNoop "go.opentelemetry.io/otel/trace/noop"
)

const scopeName = "github.com/hugolhafner/kreader"

// Telemetry holds all OpenTelemetry instruments for kreader
// When no providers are configured, all instruments are noops with zero overhead
type Telemetry struct {
	Tracer     trace.Tracer
	Propagator propagation.TextMapPropagator

	// Reader metrics
	MessagesConsumed   metric.Int64Counter
	EmptyPolls         metric.Int64Counter
	PollDuration       metric.Float64Histogram
	PartitionsAssigned metric.Int64UpDownCounter
	Checkpoints        metric.Int64Counter

	// Step metrics
	ChunkDuration metric.Float64Histogram

	// Error metrics
	Errors              metric.Int64Counter
	ErrorHandlerActions metric.Int64Counter
}

// NewTelemetry creates a Telemetry instance from the given providers.
// all providers are optional and defaulted to noops if nil
func NewTelemetry(tp trace.TracerProvider, mp metric.MeterProvider, prop propagation.TextMapPropagator) (
	*Telemetry, error,
) {
	if tp == nil {
		tp = traceNoop.NewTracerProvider()
	}
	if mp == nil {
		mp = noop.NewMeterProvider()
	}
	if prop == nil {
		prop = propagation.TraceContext{}
	}

	tracer := tp.Tracer(scopeName)
	meter := mp.Meter(scopeName)

	messagesConsumed, err := meter.Int64Counter(
		"messaging.consumer.messages",
		metric.WithDescription("Records handed out by the reader"),
	)
	if err != nil {
		return nil, err
	}

	emptyPolls, err := meter.Int64Counter(
		"kreader.poll.empty",
		metric.WithDescription("Polls that returned no records"),
	)
	if err != nil {
		return nil, err
	}

	pollDuration, err := meter.Float64Histogram(
		"kreader.poll.duration",
		metric.WithDescription("Time per Poll() call"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	partitionsAssigned, err := meter.Int64UpDownCounter(
		"kreader.partitions.assigned",
		metric.WithDescription("Partitions assigned to open readers"),
	)
	if err != nil {
		return nil, err
	}

	checkpoints, err := meter.Int64Counter(
		"kreader.checkpoints",
		metric.WithDescription("Offset tables written to a checkpoint store"),
	)
	if err != nil {
		return nil, err
	}

	chunkDuration, err := meter.Float64Histogram(
		"kreader.chunk.duration",
		metric.WithDescription("Time to read and write one chunk"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	errors, err := meter.Int64Counter(
		"kreader.errors",
		metric.WithDescription("Errors encountered while reading or writing"),
	)
	if err != nil {
		return nil, err
	}

	errorHandlerActions, err := meter.Int64Counter(
		"kreader.error_handler.actions",
		metric.WithDescription("Error handler decisions"),
	)
	if err != nil {
		return nil, err
	}

	return &Telemetry{
		Tracer:              tracer,
		Propagator:          prop,
		MessagesConsumed:    messagesConsumed,
		EmptyPolls:          emptyPolls,
		PollDuration:        pollDuration,
		PartitionsAssigned:  partitionsAssigned,
		Checkpoints:         checkpoints,
		ChunkDuration:       chunkDuration,
		Errors:              errors,
		ErrorHandlerActions: errorHandlerActions,
	}, nil
}

// Noop returns a Telemetry instance with all noop instruments
func Noop() *Telemetry {
	t, _ := NewTelemetry(nil, nil, nil)
	return t
}
