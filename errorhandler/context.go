package errorhandler

import (
	"github.com/hugolhafner/kreader/kafka"
)

// ErrorContext describes a failure inside a chunk step.
type ErrorContext struct {
	// Error is the error being handled.
	Error error

	// Attempt is current attempt number, 1 indexed.
	Attempt int

	// Phase indicates where in the step the error occurred
	Phase ErrorPhase

	// Chunk is the 1 indexed number of the chunk being built or written.
	Chunk int

	// Items is the number of items in the chunk. Zero for read errors.
	Items int

	// Partition and Offset locate the record that failed to read. Only set for
	// PhaseRead errors that carry record coordinates.
	Partition kafka.TopicPartition
	Offset    int64
}

func NewErrorContext(phase ErrorPhase, err error) ErrorContext {
	return ErrorContext{
		Error:   err,
		Attempt: 1,
		Phase:   phase,
	}
}

func (ec ErrorContext) WithError(err error) ErrorContext {
	ec.Error = err
	return ec
}

func (ec ErrorContext) WithChunk(chunk, items int) ErrorContext {
	ec.Chunk = chunk
	ec.Items = items
	return ec
}

func (ec ErrorContext) WithRecord(tp kafka.TopicPartition, offset int64) ErrorContext {
	ec.Partition = tp
	ec.Offset = offset
	return ec
}

func (ec ErrorContext) IncrementAttempt() ErrorContext {
	ec.Attempt++
	return ec
}

func (ec ErrorContext) logFields() []any {
	kv := []any{
		"error", ec.Error,
		"phase", ec.Phase.String(),
		"chunk", ec.Chunk,
		"attempt", ec.Attempt,
	}
	if ec.Phase == PhaseWrite {
		kv = append(kv, "items", ec.Items)
	}
	if ec.Partition.Topic != "" {
		kv = append(kv, "topic", ec.Partition.Topic, "partition", ec.Partition.Partition, "offset", ec.Offset)
	}
	return kv
}
