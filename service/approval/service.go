package approval

import (
	"context"
	"errors"
	"strconv"

	"github.com/viant/offboard/model"
	"github.com/viant/offboard/service/dao"
	"github.com/viant/offboard/service/token"
	"github.com/viant/offboard/service/workflow"
	"github.com/viant/offboard/tracing"
)

// Service handles approval links
type Service struct {
	tokens *token.Service
	repo   dao.Repository
	engine *workflow.Engine
}

// Inspect verifies a link and returns the data of the confirmation page
func (s *Service) Inspect(ctx context.Context, request *Request) (*View, error) {
	tkn, err := s.verify(ctx, request.Token)
	if err != nil {
		return nil, err
	}
	if err = matches(tkn, request.Action, request.Role, request.SubmissionID); err != nil {
		return nil, err
	}
	submission, err := s.repo.Get(ctx, tkn.SubmissionID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, model.NewError(model.ReasonNotFound, "submission %d not found", tkn.SubmissionID)
		}
		return nil, err
	}
	_, actionable := workflow.Lookup(tkn.Role, tkn.Action, submission.Status)
	ret := &View{
		SubmissionID:   submission.ID,
		EmployeeName:   submission.EmployeeName,
		EmployeeEmail:  submission.EmployeeEmail,
		LastWorkingDay: submission.LastWorkingDay,
		Status:         submission.Status,
		Role:           tkn.Role,
		Action:         tkn.Action,
		NotesRequired:  tkn.Action == model.ActionReject,
		Actionable:     actionable,
		ExpiresAt:      tkn.ExpiresAt,
	}
	if tkn.Role == model.RoleRegionalHead && leaderDecided(submission) {
		ret.LeaderNotes = submission.LeaderNotes
	}
	return ret, nil
}

// leaderDecided reports whether the leader notes are final and may be shown upstream
func leaderDecided(s *model.Submission) bool {
	return s.LeaderReply != model.ReplyUnset || s.Status != model.StatusSubmitted
}

// Decide verifies the token and applies its decision
func (s *Service) Decide(ctx context.Context, decision *Decision) (*Outcome, error) {
	if decision == nil {
		return nil, model.NewError(model.ReasonValidationFailed, "decision was empty")
	}
	tkn, err := s.verify(ctx, decision.Token)
	if err != nil {
		return nil, err
	}
	if err = matches(tkn, decision.Action, "", decision.SubmissionID); err != nil {
		return nil, err
	}
	result, err := s.engine.Apply(ctx, tkn, decision.Notes)
	if err != nil {
		return nil, err
	}
	return &Outcome{SubmissionID: result.Submission.ID, Status: result.To}, nil
}

func (s *Service) verify(ctx context.Context, raw string) (tkn *token.ApprovalToken, err error) {
	_, span := tracing.StartSpan(ctx, "token.verify", tracing.KindInternal)
	defer func() { tracing.EndSpan(span, err) }()
	tkn, err = s.tokens.Verify(raw)
	if err == nil {
		span.WithAttributes(map[string]string{"submission_id": strconv.Itoa(tkn.SubmissionID)})
	}
	return tkn, err
}

// matches checks URL parts against the signed token; the token always wins
func matches(tkn *token.ApprovalToken, action model.Action, role model.Role, id int) error {
	switch {
	case action != "" && action != tkn.Action:
		return model.NewError(model.ReasonValidationFailed, "link action %v does not match token action %v", action, tkn.Action)
	case role != "" && role != tkn.Role:
		return model.NewError(model.ReasonValidationFailed, "link role %v does not match token role %v", role, tkn.Role)
	case id != 0 && id != tkn.SubmissionID:
		return model.NewError(model.ReasonValidationFailed, "link submission %d does not match token submission %d", id, tkn.SubmissionID)
	}
	return nil
}

// New creates an approval service
func New(tokens *token.Service, repo dao.Repository, engine *workflow.Engine) *Service {
	return &Service{tokens: tokens, repo: repo, engine: engine}
}
