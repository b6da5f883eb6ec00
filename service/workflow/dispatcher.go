package workflow

import (
	"context"

	"github.com/viant/offboard/model"
)

// Dispatcher delivers the notification effect of a committed transition
type Dispatcher interface {
	Dispatch(ctx context.Context, effect model.Effect, s *model.Submission) error
}

// DispatcherFunc adapts a function to Dispatcher
type DispatcherFunc func(ctx context.Context, effect model.Effect, s *model.Submission) error

func (f DispatcherFunc) Dispatch(ctx context.Context, effect model.Effect, s *model.Submission) error {
	return f(ctx, effect, s)
}

type noopDispatcher struct{}

func (noopDispatcher) Dispatch(context.Context, model.Effect, *model.Submission) error { return nil }
