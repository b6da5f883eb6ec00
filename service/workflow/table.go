package workflow

import (
	"github.com/viant/offboard/model"
)

// Transition is one permitted edge of the state machine
type Transition struct {
	Role   model.Role
	Action model.Action
	From   model.ResignationStatus
	To     model.ResignationStatus
	Effect model.Effect

	guard  func(s *model.Submission) error
	record func(s *model.Submission, in *Input)
}

// Check evaluates the transition guard against a submission
func (t *Transition) Check(s *model.Submission) error {
	if t.guard == nil {
		return nil
	}
	return t.guard(s)
}

type key struct {
	role   model.Role
	action model.Action
	from   model.ResignationStatus
}

var table = []*Transition{
	{
		Role: model.RoleLeader, Action: model.ActionApprove,
		From: model.StatusSubmitted, To: model.StatusLeaderApproved, Effect: model.EffectNotifyRegionalHead,
		record: func(s *model.Submission, in *Input) {
			s.LeaderReply = model.ReplyApproved
			s.LeaderNotes = in.Notes
		},
	},
	{
		Role: model.RoleLeader, Action: model.ActionReject,
		From: model.StatusSubmitted, To: model.StatusLeaderRejected, Effect: model.EffectNotifyHR,
		record: func(s *model.Submission, in *Input) {
			s.LeaderReply = model.ReplyRejected
			s.LeaderNotes = in.Notes
		},
	},
	{
		Role: model.RoleRegionalHead, Action: model.ActionApprove,
		From: model.StatusLeaderApproved, To: model.StatusRegionalApproved, Effect: model.EffectNotifyHRScheduleInterview,
		record: func(s *model.Submission, in *Input) {
			s.RegionalReply = model.ReplyApproved
			s.RegionalNotes = in.Notes
		},
	},
	{
		Role: model.RoleRegionalHead, Action: model.ActionReject,
		From: model.StatusLeaderApproved, To: model.StatusRegionalRejected, Effect: model.EffectNotifyHR,
		record: func(s *model.Submission, in *Input) {
			s.RegionalReply = model.ReplyRejected
			s.RegionalNotes = in.Notes
		},
	},
	{
		Role: model.RoleOperator, Action: model.ActionScheduleInterview,
		From: model.StatusRegionalApproved, To: model.StatusRegionalApproved, Effect: model.EffectNotifyEmployee,
		guard: interviewOpen,
		record: func(s *model.Submission, in *Input) {
			at := *in.ScheduledAt
			s.InterviewStatus = model.InterviewScheduled
			s.InterviewScheduledAt = &at
		},
	},
	{
		Role: model.RoleOperator, Action: model.ActionCompleteInterview,
		From: model.StatusRegionalApproved, To: model.StatusExitDone, Effect: model.EffectNotifyIT,
		guard: interviewOpen,
		record: func(s *model.Submission, in *Input) {
			s.InterviewStatus = model.InterviewDone
			s.InterviewNotes = in.Notes
		},
	},
	{
		Role: model.RoleOperator, Action: model.ActionSkipInterview,
		From: model.StatusRegionalApproved, To: model.StatusExitDone, Effect: model.EffectNotifyIT,
		guard: interviewOpen,
		record: func(s *model.Submission, in *Input) {
			s.InterviewStatus = model.InterviewSkipped
			s.InterviewNotes = in.Notes
		},
	},
	{
		Role: model.RoleOperator, Action: model.ActionRecordAssets,
		From: model.StatusExitDone, To: model.StatusAssetsRecorded, Effect: model.EffectNotifyHR,
		record: func(s *model.Submission, _ *Input) {
			s.AssetsCleared = true
			s.ITReply = model.ReplyApproved
		},
	},
	{
		Role: model.RoleOperator, Action: model.ActionNotifyVendor,
		From: model.StatusAssetsRecorded, To: model.StatusAssetsRecorded, Effect: model.EffectNotifyVendor,
		record: markVendorNotified,
	},
	{
		Role: model.RoleOperator, Action: model.ActionNotifyVendor,
		From: model.StatusMedicalChecked, To: model.StatusMedicalChecked, Effect: model.EffectNotifyVendor,
		record: markVendorNotified,
	},
	{
		Role: model.RoleOperator, Action: model.ActionCheckMedical,
		From: model.StatusAssetsRecorded, To: model.StatusMedicalChecked, Effect: model.EffectNone,
		guard: func(s *model.Submission) error {
			if !s.AssetsCleared {
				return model.NewError(model.ReasonPreconditionFailed, "assets of submission %d are not cleared", s.ID)
			}
			return nil
		},
		record: func(s *model.Submission, _ *Input) {
			s.MedicalCollected = true
		},
	},
	{
		Role: model.RoleOperator, Action: model.ActionFinalize,
		From: model.StatusMedicalChecked, To: model.StatusOffboarded, Effect: model.EffectNotifyEmployee,
		guard: func(s *model.Submission) error {
			switch {
			case !s.AssetsCleared:
				return model.NewError(model.ReasonPreconditionFailed, "assets of submission %d are not cleared", s.ID)
			case !s.MedicalCollected:
				return model.NewError(model.ReasonPreconditionFailed, "medical of submission %d is not collected", s.ID)
			case !s.VendorNotified:
				return model.NewError(model.ReasonPreconditionFailed, "vendor of submission %d was not notified", s.ID)
			}
			return nil
		},
	},
}

var index = func() map[key]*Transition {
	ret := make(map[key]*Transition, len(table))
	for _, t := range table {
		ret[key{role: t.Role, action: t.Action, from: t.From}] = t
	}
	return ret
}()

func interviewOpen(s *model.Submission) error {
	if s.InterviewStatus.IsClosed() {
		return model.NewError(model.ReasonPreconditionFailed, "exit interview of submission %d is already %v", s.ID, s.InterviewStatus)
	}
	return nil
}

func markVendorNotified(s *model.Submission, _ *Input) {
	s.VendorNotified = true
}

// Lookup returns the transition for (role, action, from)
func Lookup(role model.Role, action model.Action, from model.ResignationStatus) (*Transition, bool) {
	t, ok := index[key{role: role, action: action, from: from}]
	return t, ok
}

// Transitions returns a copy of the table rows
func Transitions() []Transition {
	ret := make([]Transition, len(table))
	for i, t := range table {
		ret[i] = *t
	}
	return ret
}

// Supports returns true when the role may perform the action from some status
func Supports(role model.Role, action model.Action) bool {
	for _, t := range table {
		if t.Role == role && t.Action == action {
			return true
		}
	}
	return false
}
