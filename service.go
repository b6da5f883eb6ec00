package offboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/viant/offboard/internal/clock"
	"github.com/viant/offboard/model"
	"github.com/viant/offboard/service/approval"
	"github.com/viant/offboard/service/dao"
	"github.com/viant/offboard/service/dao/submission/fs"
	smemory "github.com/viant/offboard/service/dao/submission/memory"
	"github.com/viant/offboard/service/dao/submission/sqldb"
	"github.com/viant/offboard/service/endpoint"
	"github.com/viant/offboard/service/form"
	"github.com/viant/offboard/service/link"
	"github.com/viant/offboard/service/notify"
	"github.com/viant/offboard/service/token"
	"github.com/viant/offboard/service/token/redis"
	"github.com/viant/offboard/service/workflow"
	"github.com/viant/offboard/tracing"
)

// Service wires tokens, workflow, forms, notifications and HTTP from a Config
type Service struct {
	config    *Config
	repo      dao.Repository
	ledger    token.Ledger
	notifier  notify.Notifier
	directory notify.Directory
	logger    *slog.Logger
	now       func() time.Time

	tokens    *token.Service
	forms     *form.Service
	links     *link.Builder
	notify    *notify.Service
	engine    *workflow.Engine
	approvals *approval.Service
	handler   *form.Handler
	endpoint  *endpoint.Handler
	limiter   *endpoint.RateLimiter
	closers   []io.Closer
	intake    sync.Mutex
}

// Submit opens a new offboarding case and requests the leader decision.
// It fails with PreconditionFailed when the employee already has an open case.
// Intakes are serialized per Service; instances sharing one database do not
// coordinate with each other.
func (s *Service) Submit(ctx context.Context, submission *model.Submission) (*model.Submission, error) {
	if submission == nil {
		return nil, model.NewError(model.ReasonValidationFailed, "submission was nil")
	}
	if strings.TrimSpace(submission.EmployeeName) == "" || strings.TrimSpace(submission.EmployeeEmail) == "" {
		return nil, model.NewError(model.ReasonValidationFailed, "employee name and email are required")
	}
	if submission.LastWorkingDay.IsZero() {
		return nil, model.NewError(model.ReasonValidationFailed, "last working day is required")
	}
	if submission.TeamLeader == "" || submission.RegionalHead == "" {
		return nil, model.NewError(model.ReasonValidationFailed, "team leader and regional head are required")
	}
	s.intake.Lock()
	defer s.intake.Unlock()
	previous, err := s.repo.LatestByEmail(ctx, submission.EmployeeEmail)
	if err != nil && !errors.Is(err, dao.ErrNotFound) {
		return nil, fmt.Errorf("failed to load previous submission: %w", err)
	}
	now := s.now()
	if ok, reason := workflow.CanSubmit(previous, now); !ok {
		return nil, model.NewError(model.ReasonPreconditionFailed, "%v", reason)
	}
	candidate := submission.Clone()
	candidate.ID = 0
	candidate.Status = model.StatusSubmitted
	candidate.InterviewStatus = model.InterviewNotScheduled
	candidate.SubmittedAt = now
	id, err := s.repo.Create(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}
	stored, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load submission %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "submission created", "submission_id", id, "employee", stored.EmployeeEmail)
	if err = s.notify.Dispatch(ctx, model.EffectNotifyLeader, stored); err != nil {
		s.logger.WarnContext(ctx, "failed to dispatch notification", "submission_id", id, "effect", model.EffectNotifyLeader, "error", err)
	}
	return stored, nil
}

// Operate performs an operator step on a submission
func (s *Service) Operate(ctx context.Context, id int, action model.Action, in *workflow.Input) (*workflow.Result, error) {
	return s.engine.Operate(ctx, id, action, in)
}

// Get returns a submission by id
func (s *Service) Get(ctx context.Context, id int) (*model.Submission, error) {
	ret, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) || errors.Is(err, dao.ErrInvalidID) {
			return nil, model.NewError(model.ReasonNotFound, "submission %d", id)
		}
		return nil, err
	}
	return ret, nil
}

// Approvals returns the approval link surface
func (s *Service) Approvals() *approval.Service { return s.approvals }

// Forms returns the form submission surface
func (s *Service) Forms() *form.Handler { return s.handler }

// FormTokens returns the form token issuer
func (s *Service) FormTokens() *form.Service { return s.forms }

// Tokens returns the token service
func (s *Service) Tokens() *token.Service { return s.tokens }

// Links returns the link builder
func (s *Service) Links() *link.Builder { return s.links }

// Engine returns the workflow engine
func (s *Service) Engine() *workflow.Engine { return s.engine }

// Notifications returns the notification dispatcher
func (s *Service) Notifications() *notify.Service { return s.notify }

// Handler returns the HTTP routes for approval and form links
func (s *Service) Handler() http.Handler { return s.endpoint.Router() }

// Start launches notification delivery
func (s *Service) Start(ctx context.Context) {
	s.notify.Start(ctx)
}

// Shutdown stops delivery and releases resources
func (s *Service) Shutdown(ctx context.Context) error {
	if s.notify != nil {
		s.notify.Stop()
	}
	if s.limiter != nil {
		s.limiter.Close()
	}
	var errs []error
	for _, closer := range s.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.config.Tracing.Enabled {
		if err := tracing.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) init(ctx context.Context) (err error) {
	cfg := s.config
	if cfg.Tracing.Enabled {
		if err = tracing.Init(cfg.Tracing.ServiceName, cfg.Tracing.ServiceVersion, cfg.Tracing.OutputFile); err != nil {
			return err
		}
	}
	secret, err := cfg.Token.LoadSecret(ctx)
	if err != nil {
		return err
	}
	if s.tokens, err = token.New(secret,
		token.WithApprovalTTL(cfg.Token.ApprovalTTL),
		token.WithFormTTL(cfg.Token.FormTTL),
		token.WithNow(s.now)); err != nil {
		return err
	}
	if s.repo == nil {
		if s.repo, err = s.newRepository(ctx); err != nil {
			return err
		}
	}
	if s.ledger == nil {
		s.ledger = s.newLedger()
	}
	var formOptions []form.Option
	if s.ledger != nil {
		formOptions = append(formOptions, form.WithLedger(s.ledger))
	}
	s.forms = form.New(s.tokens, formOptions...)
	s.links = link.New(cfg.BaseURL, s.tokens, s.forms)
	if s.directory == nil {
		if s.directory, err = s.newDirectory(ctx); err != nil {
			return err
		}
	}
	s.notify = notify.New(notify.NewPlanner(s.links), s.directory, s.notifier,
		notify.WithLogger(s.logger),
		notify.WithWorkers(cfg.Notify.Workers),
		notify.WithQueueConfig(cfg.queueConfig()))
	s.engine = workflow.New(s.repo, workflow.WithDispatcher(s.notify), workflow.WithLogger(s.logger))
	s.approvals = approval.New(s.tokens, s.repo, s.engine)
	s.handler = form.NewHandler(s.forms, s.repo, s.engine)
	if cfg.HTTP.RPS > 0 {
		s.limiter = endpoint.NewRateLimiter(cfg.HTTP.RPS, cfg.HTTP.Burst)
	}
	s.endpoint = endpoint.New(s.approvals, s.handler, s.limiter, s.logger)
	return nil
}

func (s *Service) newRepository(ctx context.Context) (dao.Repository, error) {
	store := s.config.Store
	switch store.Driver {
	case StoreFS:
		return fs.New(ctx, store.BasePath)
	case StoreSQLite, StorePostgres:
		repo, err := sqldb.Open(ctx, store.Driver, store.DSN)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, repo)
		return repo, nil
	}
	return smemory.New(), nil
}

func (s *Service) newLedger() token.Ledger {
	config := s.config.Ledger
	switch config.Driver {
	case LedgerRedis:
		ret := redis.NewWithAddress(config.Addr, config.Password, config.DB)
		s.closers = append(s.closers, ret)
		return ret
	case LedgerMemory:
		return token.NewMemoryLedger()
	}
	return nil
}

func (s *Service) newDirectory(ctx context.Context) (notify.Directory, error) {
	directory := notify.StaticDirectory{}
	if URL := s.config.Notify.DirectoryURL; URL != "" {
		loaded, err := notify.LoadDirectory(ctx, URL)
		if err != nil {
			return nil, err
		}
		directory = loaded
	}
	for name, address := range s.config.Notify.Directory {
		directory[name] = address
	}
	return directory, nil
}

// New creates a Service; a nil config uses DefaultConfig
func New(ctx context.Context, config *Config, options ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	ret := &Service{config: config, logger: slog.Default(), now: clock.Now}
	for _, option := range options {
		option(ret)
	}
	if err := ret.init(ctx); err != nil {
		_ = ret.Shutdown(ctx)
		return nil, err
	}
	return ret, nil
}
