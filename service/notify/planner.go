package notify

import (
	"fmt"
	"strconv"
	"time"

	"github.com/viant/offboard/model"
	"github.com/viant/offboard/service/link"
)

// Planner maps an effect onto the message that announces it
type Planner struct {
	links *link.Builder
}

// Plan builds the message for an effect. Links are minted per call.
func (p *Planner) Plan(effect model.Effect, s *model.Submission) (*Message, error) {
	msg := &Message{SubmissionID: s.ID, Effect: effect, Data: baseData(s)}
	switch effect {
	case model.EffectNotifyLeader:
		msg.Recipient, msg.Template = s.TeamLeader, TemplateLeaderApprovalRequest
		if err := p.decisionLinks(msg, s, model.RoleLeader); err != nil {
			return nil, err
		}
	case model.EffectNotifyRegionalHead:
		msg.Recipient, msg.Template = s.RegionalHead, TemplateRegionalApprovalRequest
		msg.Data[KeyNotes] = s.LeaderNotes
		if err := p.decisionLinks(msg, s, model.RoleRegionalHead); err != nil {
			return nil, err
		}
	case model.EffectNotifyHR:
		msg.Recipient, msg.Template = RecipientHR, TemplateHRStatusUpdate
		msg.Data[KeyNotes] = latestNotes(s)
	case model.EffectNotifyHRScheduleInterview:
		msg.Recipient, msg.Template = RecipientHR, TemplateHRScheduleInterview
		schedule, skip, feedback, err := p.links.InterviewLinks(s)
		if err != nil {
			return nil, err
		}
		msg.Data[KeyScheduleURL] = schedule
		msg.Data[KeySkipURL] = skip
		msg.Data[KeyFeedbackURL] = feedback
	case model.EffectNotifyIT:
		msg.Recipient, msg.Template = RecipientIT, TemplateITClearanceRequest
		clearance, err := p.links.ITClearanceLink(s)
		if err != nil {
			return nil, err
		}
		msg.Data[KeyClearanceURL] = clearance
	case model.EffectNotifyVendor:
		msg.Recipient, msg.Template = RecipientVendor, TemplateVendorOffboarding
	case model.EffectNotifyEmployee:
		msg.Recipient = s.EmployeeEmail
		if s.Status == model.StatusOffboarded {
			msg.Template = TemplateOffboardingComplete
		} else {
			msg.Template = TemplateInterviewScheduled
			if s.InterviewScheduledAt != nil {
				msg.Data[KeyScheduledAt] = s.InterviewScheduledAt.UTC().Format(time.RFC3339)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported effect: %q", effect)
	}
	if msg.Recipient == "" {
		return nil, fmt.Errorf("%w: no recipient for %v of submission %d", ErrUnknownRecipient, effect, s.ID)
	}
	return msg, nil
}

func (p *Planner) decisionLinks(msg *Message, s *model.Submission, role model.Role) error {
	links, err := p.links.ApprovalLinks(s.ID, role)
	if err != nil {
		return err
	}
	msg.Data[KeyApproveURL] = links.Approve
	msg.Data[KeyRejectURL] = links.Reject
	return nil
}

func baseData(s *model.Submission) map[string]string {
	ret := map[string]string{
		KeySubmissionID:  strconv.Itoa(s.ID),
		KeyEmployeeName:  s.EmployeeName,
		KeyEmployeeEmail: s.EmployeeEmail,
		KeyStatus:        string(s.Status),
	}
	if !s.LastWorkingDay.IsZero() {
		ret[KeyLastWorkingDay] = s.LastWorkingDay.Format("2006-01-02")
	}
	return ret
}

func latestNotes(s *model.Submission) string {
	switch s.Status {
	case model.StatusLeaderRejected:
		return s.LeaderNotes
	case model.StatusRegionalRejected:
		return s.RegionalNotes
	}
	return ""
}

// NewPlanner creates a planner
func NewPlanner(links *link.Builder) *Planner {
	return &Planner{links: links}
}
