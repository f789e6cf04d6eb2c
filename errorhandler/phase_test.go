//go:build unit

package errorhandler_test

import (
	"context"
	"testing"

	"github.com/hugolhafner/kreader/errorhandler"
	"github.com/stretchr/testify/require"
)

func fixed(a errorhandler.Action) errorhandler.Handler {
	return errorhandler.HandlerFunc(
		func(context.Context, errorhandler.ErrorContext) errorhandler.Action {
			return a
		},
	)
}

func TestErrorPhase_String(t *testing.T) {
	require.Equal(t, "unknown", errorhandler.PhaseUnknown.String())
	require.Equal(t, "read", errorhandler.PhaseRead.String())
	require.Equal(t, "write", errorhandler.PhaseWrite.String())
	require.Equal(t, "unknown", errorhandler.ErrorPhase(99).String())
}

func TestActionType_String(t *testing.T) {
	require.Equal(t, "Continue", errorhandler.ActionTypeContinue.String())
	require.Equal(t, "Retry", errorhandler.ActionTypeRetry.String())
	require.Equal(t, "Fail", errorhandler.ActionTypeFail.String())
	require.Equal(t, "Unknown", errorhandler.ActionType(99).String())
}

func TestPhaseRouter(t *testing.T) {
	tests := []struct {
		name   string
		router *errorhandler.PhaseRouter
		phase  errorhandler.ErrorPhase
		want   errorhandler.Action
	}{
		{
			name:   "read routed to read handler",
			router: errorhandler.NewPhaseRouter(fixed(errorhandler.ActionFail{}), fixed(errorhandler.ActionContinue{}), nil),
			phase:  errorhandler.PhaseRead,
			want:   errorhandler.ActionContinue{},
		},
		{
			name:   "write routed to write handler",
			router: errorhandler.NewPhaseRouter(fixed(errorhandler.ActionFail{}), nil, fixed(errorhandler.ActionRetry{})),
			phase:  errorhandler.PhaseWrite,
			want:   errorhandler.ActionRetry{},
		},
		{
			name:   "missing phase handler falls back",
			router: errorhandler.NewPhaseRouter(fixed(errorhandler.ActionContinue{}), nil, nil),
			phase:  errorhandler.PhaseWrite,
			want:   errorhandler.ActionContinue{},
		},
		{
			name:   "unknown phase uses default",
			router: errorhandler.NewPhaseRouter(fixed(errorhandler.ActionRetry{}), fixed(errorhandler.ActionFail{}), nil),
			phase:  errorhandler.PhaseUnknown,
			want:   errorhandler.ActionRetry{},
		},
		{
			name:   "nil default is silent fail",
			router: errorhandler.NewPhaseRouter(nil, nil, nil),
			phase:  errorhandler.PhaseRead,
			want:   errorhandler.ActionFail{},
		},
	}

	for _, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				ec := errorhandler.NewErrorContext(tt.phase, errWrite)
				require.Equal(t, tt.want, tt.router.Handle(context.Background(), ec))
			},
		)
	}
}
