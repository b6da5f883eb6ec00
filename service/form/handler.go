package form

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/viant/offboard/model"
	"github.com/viant/offboard/service/dao"
	"github.com/viant/offboard/service/workflow"
)

// Handler redeems submitted forms against the workflow
type Handler struct {
	forms  *Service
	repo   dao.Repository
	engine *workflow.Engine
}

// Inspect validates a form link and returns data to render the form
func (h *Handler) Inspect(ctx context.Context, formType Type, tkn string) (*View, error) {
	form, err := h.forms.Validate(tkn, formType)
	if err != nil {
		return nil, err
	}
	id, err := SubmissionID(form)
	if err != nil {
		return nil, err
	}
	submission, err := h.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, model.NewError(model.ReasonNotFound, "submission %d not found", id)
		}
		return nil, err
	}
	return &View{
		FormType:      formType,
		SubmissionID:  id,
		EmployeeName:  submission.EmployeeName,
		EmployeeEmail: submission.EmployeeEmail,
		Status:        submission.Status,
		Payload:       form.Payload,
		ExpiresAt:     form.ExpiresAt,
	}, nil
}

// Submit validates the form token and fields, consumes the token and runs the mapped operator action
func (h *Handler) Submit(ctx context.Context, formType Type, tkn string, fields map[string]string) (*workflow.Result, error) {
	action, ok := formType.Action()
	if !ok {
		return nil, model.NewError(model.ReasonWrongFormType, "unsupported form: %v", formType)
	}
	form, err := h.forms.Validate(tkn, formType)
	if err != nil {
		return nil, err
	}
	id, err := SubmissionID(form)
	if err != nil {
		return nil, err
	}
	in, err := input(formType, form.Payload, fields)
	if err != nil {
		return nil, err
	}
	if err = in.Validate(action); err != nil {
		return nil, err
	}
	if err = h.forms.consume(ctx, tkn, form); err != nil {
		return nil, err
	}
	result, err := h.engine.Operate(ctx, id, action, in)
	if err != nil && !errors.Is(err, model.ErrPreconditionFailed) {
		// the action did not happen, keep the link usable
		if releaseErr := h.forms.release(ctx, tkn); releaseErr != nil {
			err = errors.Join(err, releaseErr)
		}
	}
	return result, err
}

func input(formType Type, payload, fields map[string]string) (*workflow.Input, error) {
	field := func(names ...string) string {
		for _, name := range names {
			if value := strings.TrimSpace(fields[name]); value != "" {
				return value
			}
		}
		return ""
	}
	ret := &workflow.Input{Notes: field(FieldNotes)}
	switch formType {
	case TypeScheduleInterview:
		value := field(FieldScheduledAt)
		if value == "" {
			return nil, model.NewError(model.ReasonValidationFailed, "%v is required", FieldScheduledAt)
		}
		at, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return nil, model.NewError(model.ReasonValidationFailed, "invalid %v: %v", FieldScheduledAt, value)
		}
		ret.ScheduledAt = &at
	case TypeSubmitFeedback:
		ret.Notes = field(FieldFeedback, FieldNotes)
		if ret.Notes == "" {
			return nil, model.NewError(model.ReasonValidationFailed, "%v is required", FieldFeedback)
		}
	case TypeSkipInterview:
		ret.Notes = field(FieldReason, FieldNotes)
		if ret.Notes == "" {
			ret.Notes = payload[KeyReason]
		}
	}
	return ret, nil
}

// NewHandler creates a form handler
func NewHandler(forms *Service, repo dao.Repository, engine *workflow.Engine) *Handler {
	return &Handler{forms: forms, repo: repo, engine: engine}
}
