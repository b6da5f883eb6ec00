package form

import (
	"time"

	"github.com/viant/offboard/model"
)

// Type identifies a form
type Type string

const (
	TypeScheduleInterview Type = "schedule_interview"
	TypeSubmitFeedback    Type = "submit_feedback"
	TypeSkipInterview     Type = "skip_interview"
	TypeITClearance       Type = "it_clearance"
)

// Types lists supported forms
var Types = []Type{TypeScheduleInterview, TypeSubmitFeedback, TypeSkipInterview, TypeITClearance}

// Action returns the operator action a form submits
func (t Type) Action() (model.Action, bool) {
	switch t {
	case TypeScheduleInterview:
		return model.ActionScheduleInterview, true
	case TypeSubmitFeedback:
		return model.ActionCompleteInterview, true
	case TypeSkipInterview:
		return model.ActionSkipInterview, true
	case TypeITClearance:
		return model.ActionRecordAssets, true
	}
	return "", false
}

// Payload keys
const (
	KeySubmissionID  = "submission_id"
	KeyEmployeeEmail = "employee_email"
	KeyReason        = "reason"
)

// Submitted field names
const (
	FieldScheduledAt = "scheduled_at"
	FieldNotes       = "notes"
	FieldFeedback    = "feedback"
	FieldReason      = "reason"
)

// View is what a form page needs to render
type View struct {
	FormType      Type                    `json:"formType"`
	SubmissionID  int                     `json:"submissionId"`
	EmployeeName  string                  `json:"employeeName"`
	EmployeeEmail string                  `json:"employeeEmail"`
	Status        model.ResignationStatus `json:"status"`
	Payload       map[string]string       `json:"payload,omitempty"`
	ExpiresAt     time.Time               `json:"expiresAt"`
}
