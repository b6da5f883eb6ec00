package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/viant/offboard/model"
	"github.com/viant/offboard/service/dao"
	"github.com/viant/offboard/service/token"
	"github.com/viant/offboard/tracing"
)

// Result describes a committed transition
type Result struct {
	Submission *model.Submission       `json:"submission"`
	From       model.ResignationStatus `json:"from"`
	To         model.ResignationStatus `json:"to"`
	Effect     model.Effect            `json:"effect,omitempty"`
}

// Engine applies transitions to persisted submissions
type Engine struct {
	repo       dao.Repository
	dispatcher Dispatcher
	logger     *slog.Logger
}

// New creates an engine over a repository
func New(repo dao.Repository, options ...Option) *Engine {
	ret := &Engine{repo: repo, dispatcher: noopDispatcher{}, logger: slog.Default()}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Apply performs the decision carried by a verified approval token
func (e *Engine) Apply(ctx context.Context, tkn *token.ApprovalToken, notes string) (result *Result, err error) {
	if tkn == nil || !tkn.Valid {
		return nil, model.NewError(model.ReasonMalformedToken, "approval token was not verified")
	}
	ctx, span := tracing.StartSpan(ctx, "workflow.apply", tracing.KindInternal)
	span.WithAttributes(map[string]string{
		"submission_id": strconv.Itoa(tkn.SubmissionID),
		"action":        string(tkn.Action),
		"role":          string(tkn.Role),
	})
	defer func() { tracing.EndSpan(span, err) }()

	in := &Input{Notes: notes}
	if err = in.Validate(tkn.Action); err != nil {
		return nil, err
	}
	return e.execute(ctx, tkn.Role, tkn.Action, tkn.SubmissionID, in)
}

// Operate performs an HR or IT step under the operator role
func (e *Engine) Operate(ctx context.Context, id int, action model.Action, in *Input) (result *Result, err error) {
	ctx, span := tracing.StartSpan(ctx, "workflow.operate", tracing.KindInternal)
	span.WithAttributes(map[string]string{
		"submission_id": strconv.Itoa(id),
		"action":        string(action),
	})
	defer func() { tracing.EndSpan(span, err) }()

	if !Supports(model.RoleOperator, action) {
		return nil, model.NewError(model.ReasonValidationFailed, "unsupported operator action: %v", action)
	}
	if in == nil {
		in = &Input{}
	}
	if err = in.Validate(action); err != nil {
		return nil, err
	}
	return e.execute(ctx, model.RoleOperator, action, id, in)
}

func (e *Engine) execute(ctx context.Context, role model.Role, action model.Action, id int, in *Input) (*Result, error) {
	current, err := e.repo.Get(ctx, id)
	if err != nil {
		return nil, repositoryError(id, err)
	}
	transition, ok := Lookup(role, action, current.Status)
	if !ok {
		return nil, model.NewError(model.ReasonPreconditionFailed, "%v cannot %v submission %d in status %v", role, action, id, current.Status)
	}
	if err = transition.Check(current); err != nil {
		return nil, err
	}
	updated, err := e.repo.Update(ctx, id, transition.From, func(s *model.Submission) error {
		if err := transition.Check(s); err != nil {
			return err
		}
		if transition.record != nil {
			transition.record(s, in)
		}
		s.Status = transition.To
		return nil
	})
	if err != nil {
		return nil, repositoryError(id, err)
	}
	e.logger.Info("transition committed",
		"submission_id", id,
		"role", role,
		"action", action,
		"from", transition.From,
		"to", transition.To)

	if transition.Effect != model.EffectNone {
		if dErr := e.dispatcher.Dispatch(ctx, transition.Effect, updated.Clone()); dErr != nil {
			e.logger.Warn("failed to dispatch notification",
				"submission_id", id,
				"effect", transition.Effect,
				"error", dErr)
		}
	}
	return &Result{Submission: updated, From: transition.From, To: transition.To, Effect: transition.Effect}, nil
}

func repositoryError(id int, err error) error {
	var reasoned *model.Error
	switch {
	case errors.As(err, &reasoned):
		return err
	case errors.Is(err, dao.ErrNotFound), errors.Is(err, dao.ErrInvalidID):
		return model.NewError(model.ReasonNotFound, "submission %d not found", id)
	case errors.Is(err, dao.ErrConflict):
		return model.NewError(model.ReasonPreconditionFailed, "submission %d was changed concurrently", id)
	}
	return fmt.Errorf("failed to update submission %d: %w", id, err)
}
