package errorhandler

import (
	"context"
)

// ErrorPhase indicates where in a chunk step an error occurred
type ErrorPhase int

const (
	PhaseUnknown ErrorPhase = iota // zero value - uninitialized phase
	PhaseRead                      // a record could not be decoded into an item
	PhaseWrite                     // the writer rejected a chunk
)

func (p ErrorPhase) String() string {
	switch p {
	case PhaseRead:
		return "read"
	case PhaseWrite:
		return "write"
	default:
		return "unknown"
	}
}

var _ Handler = (*PhaseRouter)(nil)

type PhaseRouter struct {
	handler      Handler
	readHandler  Handler
	writeHandler Handler
}

// NewPhaseRouter routes read and write errors to their own handlers.
// A nil phase handler falls back to handler; a nil handler defaults to SilentFail.
func NewPhaseRouter(handler Handler, readHandler Handler, writeHandler Handler) *PhaseRouter {
	if handler == nil {
		handler = SilentFail()
	}

	return &PhaseRouter{
		handler:      handler,
		readHandler:  readHandler,
		writeHandler: writeHandler,
	}
}

func (r *PhaseRouter) Handle(ctx context.Context, ec ErrorContext) Action {
	switch ec.Phase {
	case PhaseRead:
		if r.readHandler != nil {
			return r.readHandler.Handle(ctx, ec)
		}
	case PhaseWrite:
		if r.writeHandler != nil {
			return r.writeHandler.Handle(ctx, ec)
		}
	case PhaseUnknown:
	default:
	}

	return r.handler.Handle(ctx, ec)
}
