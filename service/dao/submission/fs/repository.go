package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"github.com/viant/offboard/internal/clock"
	"github.com/viant/offboard/model"
	"github.com/viant/offboard/service/dao"
	"github.com/viant/offboard/service/dao/criteria"
)

// Repository implements a filesystem-based submission storage, one JSON
// document per submission. Any afs URL works (file://, mem://, s3://, gs://).
type Repository struct {
	basePath string
	fs       afs.Service
	mu       sync.RWMutex
	lastID   int
}

// Ensure Repository implements dao.Repository
var _ dao.Repository = (*Repository)(nil)

// Create persists a new submission under the next free id
func (r *Repository) Create(ctx context.Context, s *model.Submission) (int, error) {
	record, err := dao.Prepare(s, clock.Now())
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	record.ID = r.lastID + 1
	if err = r.save(ctx, record); err != nil {
		return 0, err
	}
	r.lastID = record.ID
	s.ID = record.ID
	return record.ID, nil
}

// Get retrieves a submission from the filesystem
func (r *Repository) Get(ctx context.Context, id int) (*model.Submission, error) {
	if id <= 0 {
		return nil, dao.ErrInvalidID
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.load(ctx, id)
}

// Update rewrites a submission when its stored status matches expected
func (r *Repository) Update(ctx context.Context, id int, expected model.ResignationStatus, mutate dao.Mutator) (*model.Submission, error) {
	if id <= 0 {
		return nil, dao.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := dao.Mutate(current, expected, mutate, clock.Now())
	if err != nil {
		return nil, err
	}
	if err = r.save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// LatestByEmail returns the employee's most recent submission
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

// List returns all submissions matching parameters
func (r *Repository) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	objects, err := r.fs.List(ctx, r.basePath, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list submission files: %w", err)
	}

	var submissions []*model.Submission
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := r.fs.Download(ctx, object)
		if err != nil {
			slog.Warn("failed to read submission file", "url", object.URL(), "error", err)
			continue
		}
		var submission model.Submission
		if err := json.Unmarshal(data, &submission); err != nil {
			slog.Warn("failed to unmarshal submission", "url", object.URL(), "error", err)
			continue
		}
		if !criteria.Match(&submission, parameters) {
			continue
		}
		submissions = append(submissions, &submission)
	}
	sort.Slice(submissions, func(i, j int) bool { return submissions[i].ID < submissions[j].ID })
	return submissions, nil
}

func (r *Repository) load(ctx context.Context, id int) (*model.Submission, error) {
	filePath := r.submissionPath(id)
	exists, err := r.fs.Exists(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check if submission exists: %w", err)
	}
	if !exists {
		return nil, dao.ErrNotFound
	}
	data, err := r.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read submission file: %w", err)
	}
	var submission model.Submission
	if err := json.Unmarshal(data, &submission); err != nil {
		return nil, fmt.Errorf("failed to unmarshal submission data: %w", err)
	}
	return &submission, nil
}

func (r *Repository) save(ctx context.Context, submission *model.Submission) error {
	data, err := json.Marshal(submission)
	if err != nil {
		return fmt.Errorf("failed to marshal submission: %w", err)
	}
	filePath := r.submissionPath(submission.ID)
	if err = r.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save submission to file %s: %w", filePath, err)
	}
	return nil
}

// submissionPath returns the file path for a submission
func (r *Repository) submissionPath(id int) string {
	return url.Join(r.basePath, strconv.Itoa(id)+".json")
}

// New creates a filesystem repository rooted at basePath
func New(ctx context.Context, basePath string) (*Repository, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	fs := afs.New()
	basePath = url.Normalize(basePath, file.Scheme)
	exists, _ := fs.Exists(ctx, basePath)
	if !exists {
		if err := fs.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}
	ret := &Repository{basePath: basePath, fs: fs}
	objects, err := fs.List(ctx, basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list submission files: %w", err)
	}
	for _, object := range objects {
		name := object.Name()
		if object.IsDir() || path.Ext(name) != ".json" {
			continue
		}
		if id, err := strconv.Atoi(strings.TrimSuffix(name, ".json")); err == nil && id > ret.lastID {
			ret.lastID = id
		}
	}
	return ret, nil
}
