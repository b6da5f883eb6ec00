package notify

import (
	"log/slog"

	"github.com/viant/offboard/service/messaging/memory"
)

// Option customises a Service
type Option func(s *Service)

// WithLogger sets the logger used for delivery failures
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWorkers sets the number of delivery workers
func WithWorkers(workers int) Option {
	return func(s *Service) {
		if workers > 0 {
			s.workers = workers
		}
	}
}

// WithQueueConfig sets the delivery queue configuration
func WithQueueConfig(config memory.Config) Option {
	return func(s *Service) { s.queueConfig = config }
}
