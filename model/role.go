package model

import "fmt"

// Role identifies which party in the chain acts on a submission
type Role string

const (
	RoleLeader       Role = "leader"
	RoleRegionalHead Role = "regional_head"
	// RoleOperator is the pseudo-role for direct, non token-gated calls
	RoleOperator Role = "operator"
)

// IsApprover returns true for roles that may carry an approval token
func (r Role) IsApprover() bool {
	return r == RoleLeader || r == RoleRegionalHead
}

// ParseApproverRole parses a role that may appear in an approval token
func ParseApproverRole(value string) (Role, error) {
	role := Role(value)
	if !role.IsApprover() {
		return "", fmt.Errorf("unsupported approver role: %q", value)
	}
	return role, nil
}

// Action identifies an operation requested on a submission
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"

	ActionScheduleInterview Action = "schedule_interview"
	ActionCompleteInterview Action = "complete_interview"
	ActionSkipInterview     Action = "skip_interview"
	ActionRecordAssets      Action = "record_assets"
	ActionNotifyVendor      Action = "notify_vendor"
	ActionCheckMedical      Action = "check_medical"
	ActionFinalize          Action = "finalize"
)

// IsDecision returns true for the approve/reject pair carried by approval tokens
func (a Action) IsDecision() bool {
	return a == ActionApprove || a == ActionReject
}

// ParseDecision parses an approve/reject action
func ParseDecision(value string) (Action, error) {
	action := Action(value)
	if !action.IsDecision() {
		return "", fmt.Errorf("unsupported action: %q", value)
	}
	return action, nil
}
