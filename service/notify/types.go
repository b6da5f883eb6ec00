package notify

import (
	"context"

	"github.com/viant/offboard/model"
)

// Template names
const (
	TemplateLeaderApprovalRequest   = "leader_approval_request"
	TemplateRegionalApprovalRequest = "regional_approval_request"
	TemplateHRStatusUpdate          = "hr_status_update"
	TemplateHRScheduleInterview     = "hr_schedule_interview"
	TemplateITClearanceRequest      = "it_clearance_request"
	TemplateVendorOffboarding       = "vendor_offboarding"
	TemplateInterviewScheduled      = "interview_scheduled"
	TemplateOffboardingComplete     = "offboarding_complete"
)

// Directory names of the shared mailboxes
const (
	RecipientHR     = "hr"
	RecipientIT     = "it"
	RecipientVendor = "vendor"
)

// Data keys
const (
	KeySubmissionID   = "submission_id"
	KeyEmployeeName   = "employee_name"
	KeyEmployeeEmail  = "employee_email"
	KeyStatus         = "status"
	KeyLastWorkingDay = "last_working_day"
	KeyNotes          = "notes"
	KeyApproveURL     = "approve_url"
	KeyRejectURL      = "reject_url"
	KeyScheduleURL    = "schedule_url"
	KeySkipURL        = "skip_url"
	KeyFeedbackURL    = "feedback_url"
	KeyClearanceURL   = "clearance_url"
	KeyScheduledAt    = "scheduled_at"
)

// Message is a planned notification
type Message struct {
	SubmissionID int               `json:"submissionId"`
	Effect       model.Effect      `json:"effect"`
	Recipient    string            `json:"recipient"`
	Template     string            `json:"template"`
	Data         map[string]string `json:"data"`
}

// Notifier delivers one message to a resolved address
type Notifier interface {
	Send(ctx context.Context, recipient string, template string, data map[string]string) error
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, recipient string, template string, data map[string]string) error

func (f NotifierFunc) Send(ctx context.Context, recipient string, template string, data map[string]string) error {
	return f(ctx, recipient, template, data)
}
