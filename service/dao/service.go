package dao

import (
	"context"

	"github.com/viant/offboard/model"
)

// Mutator changes a submission copy inside an Update; returning an error aborts the update
type Mutator func(s *model.Submission) error

// Repository persists offboarding submissions
type Repository interface {
	// Create assigns an ID and stores a new submission
	Create(ctx context.Context, s *model.Submission) (int, error)

	// Get returns a copy of the submission or ErrNotFound
	Get(ctx context.Context, id int) (*model.Submission, error)

	// Update applies mutate only while the stored status still equals expected,
	// otherwise ErrConflict is returned and nothing is written.
	Update(ctx context.Context, id int, expected model.ResignationStatus, mutate Mutator) (*model.Submission, error)

	// LatestByEmail returns the most recent submission of an employee or ErrNotFound
	LatestByEmail(ctx context.Context, email string) (*model.Submission, error)

	List(ctx context.Context, parameters ...*Parameter) ([]*model.Submission, error)
}
