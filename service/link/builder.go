// Package link builds the URLs embedded in notifications. Every call mints
// fresh tokens, so links are never stored.
package link

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/viant/offboard/model"
	"github.com/viant/offboard/service/form"
	"github.com/viant/offboard/service/token"
)

// Decision links for one approver
type Decision struct {
	Approve string `json:"approve"`
	Reject  string `json:"reject"`
}

// Builder mints tokens and wraps them into absolute URLs
type Builder struct {
	baseURL string
	tokens  *token.Service
	forms   *form.Service
}

// ApprovalLink returns {base}/approve/{role}/{id}?token=..&action=..
func (b *Builder) ApprovalLink(id int, role model.Role, action model.Action) (string, error) {
	tkn, err := b.tokens.Issue(id, action, role)
	if err != nil {
		return "", err
	}
	query := url.Values{}
	query.Set("token", tkn)
	query.Set("action", string(action))
	return b.baseURL + "/approve/" + string(role) + "/" + strconv.Itoa(id) + "?" + query.Encode(), nil
}

// ApprovalLinks returns the approve and reject links for an approver
func (b *Builder) ApprovalLinks(id int, role model.Role) (*Decision, error) {
	approve, err := b.ApprovalLink(id, role, model.ActionApprove)
	if err != nil {
		return nil, err
	}
	reject, err := b.ApprovalLink(id, role, model.ActionReject)
	if err != nil {
		return nil, err
	}
	return &Decision{Approve: approve, Reject: reject}, nil
}

// FormLink returns {base}/forms/{formType}?token=..
func (b *Builder) FormLink(formType form.Type, tkn string) string {
	query := url.Values{}
	query.Set("token", tkn)
	return b.baseURL + "/forms/" + string(formType) + "?" + query.Encode()
}

// InterviewLinks returns the HR scheduling, skip and feedback form links
func (b *Builder) InterviewLinks(s *model.Submission) (schedule, skip, feedback string, err error) {
	if schedule, err = b.formLink(form.TypeScheduleInterview, b.forms.InterviewSchedulingToken, s); err != nil {
		return "", "", "", err
	}
	skipToken, err := b.forms.SkipInterviewToken(s.ID, s.EmployeeEmail, "")
	if err != nil {
		return "", "", "", err
	}
	skip = b.FormLink(form.TypeSkipInterview, skipToken)
	if feedback, err = b.formLink(form.TypeSubmitFeedback, b.forms.FeedbackToken, s); err != nil {
		return "", "", "", err
	}
	return schedule, skip, feedback, nil
}

// ITClearanceLink returns the IT asset clearance form link
func (b *Builder) ITClearanceLink(s *model.Submission) (string, error) {
	return b.formLink(form.TypeITClearance, b.forms.ITClearanceToken, s)
}

func (b *Builder) formLink(formType form.Type, issue func(int, string) (string, error), s *model.Submission) (string, error) {
	tkn, err := issue(s.ID, s.EmployeeEmail)
	if err != nil {
		return "", err
	}
	return b.FormLink(formType, tkn), nil
}

// New creates a link builder
func New(baseURL string, tokens *token.Service, forms *form.Service) *Builder {
	return &Builder{baseURL: strings.TrimRight(baseURL, "/"), tokens: tokens, forms: forms}
}
