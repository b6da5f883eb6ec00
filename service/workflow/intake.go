package workflow

import (
	"fmt"
	"time"

	"github.com/viant/offboard/model"
)

// CanSubmit decides whether an employee may open a new case given their latest one.
// A new case is allowed when there is none, the latest was rejected, or it
// reached the post approval stages and its last working day has passed.
func CanSubmit(previous *model.Submission, now time.Time) (bool, string) {
	if previous == nil {
		return true, "no previous submission"
	}
	switch {
	case previous.Status.IsRejected():
		return true, fmt.Sprintf("previous submission was rejected (%v)", previous.Status)
	case previous.Status.IsActive():
		return false, fmt.Sprintf("an active submission already exists (%v)", previous.Status)
	case previous.LastWorkingDay.Before(now):
		return true, "previous submission completed"
	}
	return false, fmt.Sprintf("previous submission is not completed, last working day: %v", previous.LastWorkingDay.Format("2006-01-02"))
}
