package dao

import (
	"time"

	"github.com/viant/offboard/model"
)

// Mutate runs the compare-and-swap step shared by repositories: it checks the
// expected status, applies mutate on a copy and stamps UpdatedAt.
func Mutate(current *model.Submission, expected model.ResignationStatus, mutate Mutator, now time.Time) (*model.Submission, error) {
	if current.Status != expected {
		return nil, ErrConflict
	}
	next := current.Clone()
	if mutate != nil {
		if err := mutate(next); err != nil {
			return nil, err
		}
	}
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = now
	return next, nil
}

// Prepare validates and stamps a submission before Create
func Prepare(s *model.Submission, now time.Time) (*model.Submission, error) {
	if s == nil {
		return nil, ErrNilEntity
	}
	ret := s.Clone()
	if ret.Status == "" {
		ret.Status = model.StatusSubmitted
	}
	if ret.InterviewStatus == "" {
		ret.InterviewStatus = model.InterviewNotScheduled
	}
	if ret.SubmittedAt.IsZero() {
		ret.SubmittedAt = now
	}
	ret.CreatedAt = now
	ret.UpdatedAt = now
	return ret, nil
}

// Latest returns the most recently submitted entry, ties broken by ID
func Latest(submissions []*model.Submission) *model.Submission {
	var ret *model.Submission
	for _, candidate := range submissions {
		if ret == nil || candidate.SubmittedAt.After(ret.SubmittedAt) ||
			(candidate.SubmittedAt.Equal(ret.SubmittedAt) && candidate.ID > ret.ID) {
			ret = candidate
		}
	}
	return ret
}
