package memory

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/viant/offboard/internal/clock"
	"github.com/viant/offboard/model"
	"github.com/viant/offboard/service/dao"
	"github.com/viant/offboard/service/dao/criteria"
	"github.com/viant/offboard/service/dao/store"
)

// Repository implements an in-memory, thread-safe dao.Repository. All API
// methods work with copies to eliminate data races between goroutines.
type Repository struct {
	store *store.MemoryStore[int, model.Submission]
	seq   atomic.Int64
}

var _ dao.Repository = (*Repository)(nil)

func (r *Repository) Create(ctx context.Context, s *model.Submission) (int, error) {
	record, err := dao.Prepare(s, clock.Now())
	if err != nil {
		return 0, err
	}
	record.ID = int(r.seq.Add(1))
	if err = r.store.Save(ctx, record); err != nil {
		return 0, err
	}
	s.ID = record.ID
	return record.ID, nil
}

func (r *Repository) Get(ctx context.Context, id int) (*model.Submission, error) {
	if id <= 0 {
		return nil, dao.ErrInvalidID
	}
	return r.store.Load(ctx, id)
}

func (r *Repository) Update(ctx context.Context, id int, expected model.ResignationStatus, mutate dao.Mutator) (*model.Submission, error) {
	if id <= 0 {
		return nil, dao.ErrInvalidID
	}
	return r.store.Mutate(ctx, id, func(current *model.Submission) (*model.Submission, error) {
		return dao.Mutate(current, expected, mutate, clock.Now())
	})
}

func (r *Repository) LatestByEmail(ctx context.Context, email string) (*model.Submission, error) {
	list, err := r.List(ctx, dao.NewParameter(dao.ParamEmail, email))
	if err != nil {
		return nil, err
	}
	if latest := dao.Latest(list); latest != nil {
		return latest, nil
	}
	return nil, dao.ErrNotFound
}

func (r *Repository) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Submission, error) {
	all, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	var result []*model.Submission
	for _, s := range all {
		if criteria.Match(s, parameters) {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// New creates an empty repository
func New() *Repository {
	return &Repository{
		store: store.NewMemoryStore[int, model.Submission](func(s *model.Submission) int { return s.ID }, (*model.Submission).Clone),
	}
}
