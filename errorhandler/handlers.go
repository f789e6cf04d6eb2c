package errorhandler

import (
	"context"
	"time"

	"github.com/hugolhafner/dskit/backoff"
	"github.com/hugolhafner/kreader/logger"
)

// LogAndContinue logs error and skips the failed item or chunk
func LogAndContinue(logger logger.Logger) Handler {
	return HandlerFunc(
		func(ctx context.Context, ec ErrorContext) Action {
			logger.Error("error in step, skipping", ec.logFields()...)
			return ActionContinue{}
		},
	)
}

// LogAndFail logs error and stops the step
func LogAndFail(logger logger.Logger) Handler {
	return HandlerFunc(
		func(ctx context.Context, ec ErrorContext) Action {
			logger.Error("error in step, failing", ec.logFields()...)
			return ActionFail{}
		},
	)
}

// SilentFail stops the step without logging
func SilentFail() Handler {
	return HandlerFunc(
		func(ctx context.Context, ec ErrorContext) Action {
			return ActionFail{}
		},
	)
}

// WithMaxAttempts wraps a handler with retry logic
// When the max attempts is reached, the fallback handler is called
func WithMaxAttempts(maxAttempts int, b backoff.Backoff, fallback Handler) Handler {
	return HandlerFunc(
		func(ctx context.Context, ec ErrorContext) Action {
			if ec.Attempt >= maxAttempts {
				return fallback.Handle(ctx, ec)
			}

			timer := time.NewTimer(b.Next(uint(ec.Attempt)))
			defer timer.Stop()

			select {
			case <-ctx.Done():
				return ActionFail{}
			case <-timer.C:
			}

			return ActionRetry{}
		},
	)
}

// ActionLogger logs the action decided by the next handler
func ActionLogger(l logger.Logger, level logger.LogLevel, next Handler) Handler {
	return HandlerFunc(
		func(ctx context.Context, ec ErrorContext) Action {
			action := next.Handle(ctx, ec)

			l.Log(
				level,
				"Error handler decision",
				append([]any{"action", action.Type().String()}, ec.logFields()...)...,
			)
			return action
		},
	)
}
