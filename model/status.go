package model

import "fmt"

// ResignationStatus represents the current stage of an offboarding case
type ResignationStatus string

const (
	StatusSubmitted        ResignationStatus = "submitted"
	StatusLeaderApproved   ResignationStatus = "leader_approved"
	StatusLeaderRejected   ResignationStatus = "leader_rejected"
	StatusRegionalApproved ResignationStatus = "regional_approved"
	StatusRegionalRejected ResignationStatus = "regional_rejected"
	StatusExitDone         ResignationStatus = "exit_done"
	StatusAssetsRecorded   ResignationStatus = "assets_recorded"
	StatusMedicalChecked   ResignationStatus = "medical_checked"
	StatusOffboarded       ResignationStatus = "offboarded"
)

// Statuses lists every resignation status in lifecycle order.
var Statuses = []ResignationStatus{
	StatusSubmitted,
	StatusLeaderApproved,
	StatusLeaderRejected,
	StatusRegionalApproved,
	StatusRegionalRejected,
	StatusExitDone,
	StatusAssetsRecorded,
	StatusMedicalChecked,
	StatusOffboarded,
}

// IsValid returns true for a member of the closed status set
func (s ResignationStatus) IsValid() bool {
	for _, candidate := range Statuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// IsRejected returns true for the rejection side-path states
func (s ResignationStatus) IsRejected() bool {
	return s == StatusLeaderRejected || s == StatusRegionalRejected
}

// IsTerminal returns true when no further transition applies to the case.
func (s ResignationStatus) IsTerminal() bool {
	return s == StatusOffboarded || s.IsRejected()
}

// IsActive returns true while the case is still awaiting approvals.
func (s ResignationStatus) IsActive() bool {
	switch s {
	case StatusSubmitted, StatusLeaderApproved, StatusRegionalApproved:
		return true
	}
	return false
}

// ParseStatus converts a persisted status string
func ParseStatus(value string) (ResignationStatus, error) {
	status := ResignationStatus(value)
	if !status.IsValid() {
		return "", fmt.Errorf("unknown resignation status: %q", value)
	}
	return status, nil
}

// InterviewStatus represents the exit interview sub-status
type InterviewStatus string

const (
	InterviewNotScheduled InterviewStatus = "not_scheduled"
	InterviewScheduled    InterviewStatus = "scheduled"
	InterviewDone         InterviewStatus = "done"
	InterviewSkipped      InterviewStatus = "skipped"
)

// IsClosed returns true once the interview was held or skipped
func (s InterviewStatus) IsClosed() bool {
	return s == InterviewDone || s == InterviewSkipped
}

// Reply is a tri-state approval reply flag
type Reply int8

const (
	ReplyUnset    Reply = 0
	ReplyApproved Reply = 1
	ReplyRejected Reply = -1
)

// ReplyOf maps an approve/reject decision onto a reply flag
func ReplyOf(approved bool) Reply {
	if approved {
		return ReplyApproved
	}
	return ReplyRejected
}

// Bool returns the decision and whether it was set at all
func (r Reply) Bool() (approved bool, set bool) {
	switch r {
	case ReplyApproved:
		return true, true
	case ReplyRejected:
		return false, true
	}
	return false, false
}

func (r Reply) String() string {
	switch r {
	case ReplyApproved:
		return "approved"
	case ReplyRejected:
		return "rejected"
	}
	return "unset"
}
