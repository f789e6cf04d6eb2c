package otel

import (
	"go.opentelemetry.io/otel/attribute"
)

const (
	AttrReaderName   = attribute.Key("kreader.reader.name")
	AttrPollStatus   = attribute.Key("kreader.poll.status")
	AttrChunkStatus  = attribute.Key("kreader.chunk.status")
	AttrErrorAction  = attribute.Key("kreader.error.action")
	AttrErrorPhase   = attribute.Key("kreader.error.phase")
	AttrOffsetSource = attribute.Key("kreader.offset.source")
)

// Status values
const (
	StatusSuccess = "success"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
	StatusError   = "error"
)

// Error phase values
const (
	PhaseRead        = "read"
	PhaseDeserialise = "deserialise"
	PhaseWrite       = "write"
	PhaseCheckpoint  = "checkpoint"
)
