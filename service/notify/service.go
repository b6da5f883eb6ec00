package notify

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/viant/offboard/model"
	"github.com/viant/offboard/service/messaging"
	"github.com/viant/offboard/service/messaging/memory"
	"github.com/viant/offboard/service/workflow"
	"github.com/viant/offboard/tracing"
)

// DefaultWorkers is the default delivery pool size
const DefaultWorkers = 2

// Service implements workflow.Dispatcher with asynchronous delivery
type Service struct {
	planner     *Planner
	directory   Directory
	notifier    Notifier
	logger      *slog.Logger
	workers     int
	queueConfig memory.Config
	queue       *memory.Queue[Message]

	mux     sync.Mutex
	cancel  context.CancelFunc
	running sync.WaitGroup
}

// Dispatch plans the effect message and enqueues it for delivery. It never
// waits for delivery and is not bound to the caller's cancellation.
func (s *Service) Dispatch(ctx context.Context, effect model.Effect, submission *model.Submission) error {
	if effect == model.EffectNone {
		return nil
	}
	msg, err := s.planner.Plan(effect, submission)
	if err != nil {
		return err
	}
	return s.queue.Publish(context.WithoutCancel(ctx), msg)
}

// Start launches the delivery workers
func (s *Service) Start(ctx context.Context) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	for i := 0; i < s.workers; i++ {
		s.running.Add(1)
		go func() {
			defer s.running.Done()
			s.work(ctx)
		}()
	}
}

// Stop stops the workers and waits for in-flight deliveries
func (s *Service) Stop() {
	s.mux.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mux.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	s.running.Wait()
}

// Pending returns the number of queued messages
func (s *Service) Pending() int { return s.queue.Size() }

// Failed returns messages that exhausted their retries
func (s *Service) Failed() []memory.DeadLetter[Message] { return s.queue.DeadLetters() }

func (s *Service) work(ctx context.Context) {
	for {
		message, err := s.queue.Consume(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, messaging.ErrClosed) {
				return
			}
			s.logger.Error("failed to consume notification", "error", err)
			return
		}
		s.deliver(ctx, message)
	}
}

func (s *Service) deliver(ctx context.Context, message messaging.Message[Message]) {
	msg := message.T()
	ctx, span := tracing.StartSpan(ctx, "notify.deliver", tracing.KindConsumer)
	span.WithAttributes(map[string]string{
		"submission_id": strconv.Itoa(msg.SubmissionID),
		"template":      msg.Template,
	})
	address, err := s.directory.Resolve(ctx, msg.Recipient)
	if err == nil {
		err = s.notifier.Send(ctx, address, msg.Template, msg.Data)
	}
	tracing.EndSpan(span, err)
	if err == nil {
		_ = message.Ack()
		return
	}
	s.logger.Warn("failed to deliver notification",
		"submission_id", msg.SubmissionID,
		"effect", msg.Effect,
		"recipient", msg.Recipient,
		"attempt", message.Attempt(),
		"error", err)
	if errors.Is(err, ErrUnknownRecipient) {
		// retrying cannot resolve a missing directory entry
		_ = message.Ack()
		return
	}
	_ = message.Nack(err)
}

// New creates a notification service; call Start to begin delivery
func New(planner *Planner, directory Directory, notifier Notifier, options ...Option) *Service {
	ret := &Service{
		planner:     planner,
		directory:   directory,
		notifier:    notifier,
		logger:      slog.Default(),
		workers:     DefaultWorkers,
		queueConfig: memory.DefaultConfig(),
	}
	for _, option := range options {
		option(ret)
	}
	if ret.directory == nil {
		ret.directory = StaticDirectory{}
	}
	if ret.notifier == nil {
		ret.notifier = &LogNotifier{Logger: ret.logger}
	}
	ret.queue = memory.NewQueue[Message](ret.queueConfig)
	return ret
}

var _ workflow.Dispatcher = (*Service)(nil)
