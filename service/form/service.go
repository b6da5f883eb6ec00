package form

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/viant/offboard/model"
	"github.com/viant/offboard/service/token"
)

// Service issues and validates form tokens
type Service struct {
	tokens *token.Service
	ledger token.Ledger
	ttl    time.Duration
}

// Issue mints a form token, ttl <= 0 uses the service default
func (s *Service) Issue(formType Type, payload map[string]string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.ttl
	}
	return s.tokens.IssueForm(string(formType), payload, ttl)
}

// Validate verifies a token and checks it was issued for the expected form
func (s *Service) Validate(tkn string, expected Type) (*token.FormToken, error) {
	ret, err := s.tokens.VerifyForm(tkn)
	if err != nil {
		return nil, err
	}
	if Type(ret.FormType) != expected {
		return nil, model.NewError(model.ReasonWrongFormType, "token was issued for %v, not %v", ret.FormType, expected)
	}
	return ret, nil
}

// Redeem validates a token and, when a ledger is configured, consumes it
func (s *Service) Redeem(ctx context.Context, tkn string, expected Type) (*token.FormToken, error) {
	ret, err := s.Validate(tkn, expected)
	if err != nil {
		return nil, err
	}
	if err = s.consume(ctx, tkn, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Service) consume(ctx context.Context, tkn string, form *token.FormToken) error {
	if s.ledger == nil {
		return nil
	}
	ok, err := s.ledger.Consume(ctx, tkn, form.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to redeem %v token: %w", form.FormType, err)
	}
	if !ok {
		return model.NewError(model.ReasonReplayed, "%v link was already used", form.FormType)
	}
	return nil
}

func (s *Service) release(ctx context.Context, tkn string) error {
	if s.ledger == nil {
		return nil
	}
	return s.ledger.Release(ctx, tkn)
}

// InterviewSchedulingToken issues the HR link to schedule an exit interview
func (s *Service) InterviewSchedulingToken(submissionID int, employeeEmail string) (string, error) {
	return s.Issue(TypeScheduleInterview, submissionPayload(submissionID, employeeEmail), 0)
}

// FeedbackToken issues the HR link to record exit interview feedback
func (s *Service) FeedbackToken(submissionID int, employeeEmail string) (string, error) {
	return s.Issue(TypeSubmitFeedback, submissionPayload(submissionID, employeeEmail), 0)
}

// SkipInterviewToken issues the HR link to skip the exit interview
func (s *Service) SkipInterviewToken(submissionID int, employeeEmail, reason string) (string, error) {
	payload := submissionPayload(submissionID, employeeEmail)
	if reason != "" {
		payload[KeyReason] = reason
	}
	return s.Issue(TypeSkipInterview, payload, 0)
}

// ITClearanceToken issues the IT link to confirm asset clearance
func (s *Service) ITClearanceToken(submissionID int, employeeEmail string) (string, error) {
	return s.Issue(TypeITClearance, submissionPayload(submissionID, employeeEmail), 0)
}

func submissionPayload(submissionID int, employeeEmail string) map[string]string {
	return map[string]string{
		KeySubmissionID:  strconv.Itoa(submissionID),
		KeyEmployeeEmail: employeeEmail,
	}
}

// SubmissionID extracts the submission a form token refers to
func SubmissionID(form *token.FormToken) (int, error) {
	value, ok := form.Payload[KeySubmissionID]
	if !ok {
		return 0, model.NewError(model.ReasonMalformedToken, "form token has no %v", KeySubmissionID)
	}
	id, err := strconv.Atoi(value)
	if err != nil || id <= 0 {
		return 0, model.NewError(model.ReasonMalformedToken, "invalid %v: %v", KeySubmissionID, value)
	}
	return id, nil
}

// New creates a form service
func New(tokens *token.Service, options ...Option) *Service {
	ret := &Service{tokens: tokens, ttl: tokens.FormTTL()}
	for _, option := range options {
		option(ret)
	}
	if ret.ttl > tokens.FormTTL() {
		ret.ttl = tokens.FormTTL()
	}
	return ret
}
