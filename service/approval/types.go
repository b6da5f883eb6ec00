package approval

import (
	"time"

	"github.com/viant/offboard/model"
)

// Request identifies an approval link as it arrives: the token plus the
// action, role and submission id taken from the URL. Empty URL parts are not checked.
type Request struct {
	Token        string       `json:"token"`
	Action       model.Action `json:"action,omitempty"`
	Role         model.Role   `json:"role,omitempty"`
	SubmissionID int          `json:"submissionId,omitempty"`
}

// Decision is a submitted approve or reject
type Decision struct {
	Token        string       `json:"token"`
	Action       model.Action `json:"action,omitempty"`
	Notes        string       `json:"notes,omitempty"`
	SubmissionID int          `json:"submissionId,omitempty"`
}

// View is what the confirmation page renders
type View struct {
	SubmissionID   int                     `json:"submissionId"`
	EmployeeName   string                  `json:"employeeName"`
	EmployeeEmail  string                  `json:"employeeEmail"`
	LastWorkingDay time.Time               `json:"lastWorkingDay"`
	Status         model.ResignationStatus `json:"status"`
	Role           model.Role              `json:"role"`
	Action         model.Action            `json:"action"`
	LeaderNotes    string                  `json:"leaderNotes,omitempty"`
	NotesRequired  bool                    `json:"notesRequired"`
	Actionable     bool                    `json:"actionable"`
	ExpiresAt      time.Time               `json:"expiresAt"`
}

// Outcome is returned after a committed decision
type Outcome struct {
	SubmissionID int                     `json:"submissionId"`
	Status       model.ResignationStatus `json:"status"`
}
