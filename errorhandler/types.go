package errorhandler

import (
	"context"
)

// ActionType is the decision a Handler makes about a failed read or write.
type ActionType int

const (
	// ActionTypeContinue skips the failed record or chunk.
	ActionTypeContinue ActionType = iota
	// ActionTypeRetry repeats the failed write. On the read side it skips.
	ActionTypeRetry
	// ActionTypeFail stops the step. Pending progress is not checkpointed.
	ActionTypeFail
)

var actionNames = [...]string{
	ActionTypeContinue: "Continue",
	ActionTypeRetry:    "Retry",
	ActionTypeFail:     "Fail",
}

func (a ActionType) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "Unknown"
	}
	return actionNames[a]
}

var (
	_ Action = ActionContinue{}
	_ Action = ActionRetry{}
	_ Action = ActionFail{}
)

type Action interface {
	Type() ActionType
}

type (
	ActionContinue struct{}
	ActionRetry    struct{}
	ActionFail     struct{}
)

func (ActionContinue) Type() ActionType { return ActionTypeContinue }
func (ActionRetry) Type() ActionType    { return ActionTypeRetry }
func (ActionFail) Type() ActionType     { return ActionTypeFail }

type Handler interface {
	Handle(ctx context.Context, ec ErrorContext) Action
}

type HandlerFunc func(ctx context.Context, ec ErrorContext) Action

func (f HandlerFunc) Handle(ctx context.Context, ec ErrorContext) Action {
	return f(ctx, ec)
}
