package form

import (
	"time"

	"github.com/viant/offboard/service/token"
)

// Option customises a Service
type Option func(s *Service)

// WithLedger makes form tokens single use
func WithLedger(ledger token.Ledger) Option {
	return func(s *Service) { s.ledger = ledger }
}

// WithTTL sets the lifetime of issued form tokens, capped at the token service form lifetime
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}
