package workflow

import (
	"strings"
	"time"

	"github.com/viant/offboard/model"
)

// Input carries the operator supplied data of a transition
type Input struct {
	Notes       string     `json:"notes,omitempty"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
}

// Validate checks that the input carries what the action records
func (i *Input) Validate(action model.Action) error {
	switch action {
	case model.ActionReject:
		if strings.TrimSpace(i.Notes) == "" {
			return model.NewError(model.ReasonValidationFailed, "notes are required to reject")
		}
	case model.ActionScheduleInterview:
		if i.ScheduledAt == nil || i.ScheduledAt.IsZero() {
			return model.NewError(model.ReasonValidationFailed, "interview date is required")
		}
	}
	return nil
}
