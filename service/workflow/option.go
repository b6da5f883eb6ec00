package workflow

import "log/slog"

// Option customises an Engine
type Option func(e *Engine)

// WithDispatcher sets the notification dispatcher
func WithDispatcher(dispatcher Dispatcher) Option {
	return func(e *Engine) {
		if dispatcher != nil {
			e.dispatcher = dispatcher
		}
	}
}

// WithLogger sets the engine logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}
