package offboard

import (
	"log/slog"
	"time"

	"github.com/viant/offboard/service/dao"
	"github.com/viant/offboard/service/notify"
	"github.com/viant/offboard/service/token"
)

// Option overrides a collaborator built from Config
type Option func(s *Service)

// WithRepository sets the submission repository
func WithRepository(repo dao.Repository) Option {
	return func(s *Service) { s.repo = repo }
}

// WithNotifier sets the outbound notification channel
func WithNotifier(notifier notify.Notifier) Option {
	return func(s *Service) { s.notifier = notifier }
}

// WithDirectory sets the recipient directory
func WithDirectory(directory notify.Directory) Option {
	return func(s *Service) { s.directory = directory }
}

// WithLedger sets the consumed form token ledger
func WithLedger(ledger token.Ledger) Option {
	return func(s *Service) { s.ledger = ledger }
}

// WithLogger sets the logger shared by all components
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNow overrides the clock used for tokens and intake rules
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
