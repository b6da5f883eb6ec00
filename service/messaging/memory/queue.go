package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/viant/offboard/internal/idgen"
	"github.com/viant/offboard/service/messaging"
)

// Config for memory queue implementation
type Config struct {
	MaxRetries  int           `json:"maxRetries" yaml:"maxRetries"`
	RetryDelay  time.Duration `json:"retryDelay" yaml:"retryDelay"`
	DeadLetter  bool          `json:"deadLetter" yaml:"deadLetter"`
	QueueBuffer int           `json:"queueBuffer" yaml:"queueBuffer"`
}

// DefaultConfig returns a standard configuration for memory queue
func DefaultConfig() Config {
	return Config{
		MaxRetries:  3,
		RetryDelay:  100 * time.Millisecond,
		DeadLetter:  true,
		QueueBuffer: 100,
	}
}

// DeadLetter is a message that exhausted its retries
type DeadLetter[T any] struct {
	ID      string
	Payload T
	Err     error
}

// Message implements messaging.Message for the in-memory queue
type Message[T any] struct {
	id         string
	payload    T
	queue      *Queue[T]
	retryCount int
	mu         sync.Mutex
	processed  bool
}

// ID returns the message id
func (m *Message[T]) ID() string { return m.id }

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.payload
}

// Attempt returns the delivery attempt
func (m *Message[T]) Attempt() int { return m.retryCount + 1 }

// Ack acknowledges the message as processed successfully
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	return nil
}

// Nack indicates a failure; the message is redelivered after RetryDelay until
// MaxRetries is exceeded, then it is moved to the dead letter list.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	m.retryCount++

	q := m.queue
	if m.retryCount <= q.config.MaxRetries {
		retry := &Message[T]{id: m.id, payload: m.payload, queue: q, retryCount: m.retryCount}
		go func() {
			timer := time.NewTimer(q.config.RetryDelay)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-q.done:
				q.deadLetter(retry, err)
				return
			}
			q.enqueue(retry)
		}()
		return nil
	}
	if q.config.DeadLetter {
		q.deadLetter(m, err)
	}
	return nil
}

// Queue implements an in-memory messaging.Queue. Publish never blocks: once
// the buffer is full messages spill into an overflow list drained by Consume.
type Queue[T any] struct {
	messages  chan *Message[T]
	overflow  []*Message[T]
	overMu    sync.Mutex
	signal    chan struct{}
	dlq       []DeadLetter[T]
	config    Config
	dlqMu     sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

// NewQueue creates a new in-memory queue
func NewQueue[T any](config Config) *Queue[T] {
	if config.QueueBuffer <= 0 {
		config.QueueBuffer = DefaultConfig().QueueBuffer
	}
	return &Queue[T]{
		messages: make(chan *Message[T], config.QueueBuffer),
		signal:   make(chan struct{}, 1),
		config:   config,
		done:     make(chan struct{}),
	}
}

// Publish adds a new item to the queue without waiting for consumers
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if t == nil {
		return fmt.Errorf("message payload was nil")
	}
	select {
	case <-q.done:
		return messaging.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	q.enqueue(&Message[T]{id: idgen.New(), payload: *t, queue: q})
	return nil
}

func (q *Queue[T]) enqueue(msg *Message[T]) {
	q.overMu.Lock()
	if len(q.overflow) == 0 {
		select {
		case q.messages <- msg:
			q.overMu.Unlock()
			return
		default:
		}
	}
	q.overflow = append(q.overflow, msg)
	q.overMu.Unlock()
	q.notify()
}

func (q *Queue[T]) notify() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// popOverflow moves spilled messages back into the buffer and returns the oldest one
func (q *Queue[T]) popOverflow() *Message[T] {
	q.overMu.Lock()
	defer q.overMu.Unlock()
	if len(q.overflow) == 0 {
		return nil
	}
	ret := q.overflow[0]
	q.overflow[0] = nil
	q.overflow = q.overflow[1:]
	if len(q.overflow) > 0 {
		q.notify()
	}
	return ret
}

// Consume retrieves a single item from the queue
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	for {
		select {
		case msg := <-q.messages:
			return msg, nil
		default:
		}
		if msg := q.popOverflow(); msg != nil {
			return msg, nil
		}
		select {
		case msg := <-q.messages:
			return msg, nil
		case <-q.signal:
		case <-q.done:
			return nil, messaging.ErrClosed
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Close stops accepting messages; scheduled retries are dead-lettered
func (q *Queue[T]) Close() error {
	q.closeOnce.Do(func() { close(q.done) })
	return nil
}

// Size returns the current number of messages in the queue
func (q *Queue[T]) Size() int {
	q.overMu.Lock()
	defer q.overMu.Unlock()
	return len(q.messages) + len(q.overflow)
}

// DLQSize returns the number of messages in the dead letter queue
func (q *Queue[T]) DLQSize() int {
	q.dlqMu.Lock()
	defer q.dlqMu.Unlock()
	return len(q.dlq)
}

// DeadLetters returns a snapshot of dead-lettered messages
func (q *Queue[T]) DeadLetters() []DeadLetter[T] {
	q.dlqMu.Lock()
	defer q.dlqMu.Unlock()
	return append([]DeadLetter[T](nil), q.dlq...)
}

func (q *Queue[T]) deadLetter(m *Message[T], err error) {
	q.dlqMu.Lock()
	defer q.dlqMu.Unlock()
	q.dlq = append(q.dlq, DeadLetter[T]{ID: m.id, Payload: m.payload, Err: err})
}

// ensure Queue implements messaging.Queue interface
var _ messaging.Queue[any] = (*Queue[any])(nil)
