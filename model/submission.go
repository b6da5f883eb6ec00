package model

import "time"

// Submission represents one employee's offboarding case
type Submission struct {
	ID            int    `json:"id"`
	EmployeeName  string `json:"employeeName"`
	EmployeeEmail string `json:"employeeEmail"`
	TeamLeader    string `json:"teamLeader,omitempty"`   // directory name of the team leader
	RegionalHead  string `json:"regionalHead,omitempty"` // directory name of the regional head

	JoiningDate    time.Time `json:"joiningDate"`
	LastWorkingDay time.Time `json:"lastWorkingDay"`
	SubmittedAt    time.Time `json:"submittedAt"`

	Status               ResignationStatus `json:"status"`
	InterviewStatus      InterviewStatus   `json:"interviewStatus"`
	InterviewScheduledAt *time.Time        `json:"interviewScheduledAt,omitempty"`
	InterviewNotes       string            `json:"interviewNotes,omitempty"`

	LeaderReply   Reply  `json:"leaderReply"`
	LeaderNotes   string `json:"leaderNotes,omitempty"`
	RegionalReply Reply  `json:"regionalReply"`
	RegionalNotes string `json:"regionalNotes,omitempty"`
	ITReply       Reply  `json:"itReply"`

	AssetsCleared    bool `json:"assetsCleared"`
	MedicalCollected bool `json:"medicalCollected"`
	VendorNotified   bool `json:"vendorNotified"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy so stores never share mutable state with callers
func (s *Submission) Clone() *Submission {
	if s == nil {
		return nil
	}
	ret := *s
	if s.InterviewScheduledAt != nil {
		at := *s.InterviewScheduledAt
		ret.InterviewScheduledAt = &at
	}
	return &ret
}

// NewSubmission returns an intake record in the initial state
func NewSubmission(name, email string, lastWorkingDay time.Time) *Submission {
	return &Submission{
		EmployeeName:    name,
		EmployeeEmail:   email,
		LastWorkingDay:  lastWorkingDay,
		Status:          StatusSubmitted,
		InterviewStatus: InterviewNotScheduled,
	}
}
