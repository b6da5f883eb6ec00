package token

import "time"

// Option customises a Service
type Option func(s *Service)

// WithApprovalTTL sets the default approval token lifetime
func WithApprovalTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.approvalTTL = ttl
		}
	}
}

// WithFormTTL sets the default form token lifetime
func WithFormTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.formTTL = ttl
		}
	}
}

// WithNow overrides the clock used for issuance and expiry checks
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// IssueOption customises a single issued token
type IssueOption func(o *issueOptions)

type issueOptions struct {
	ttl     time.Duration
	payload map[string]string
}

// WithTTL overrides the token lifetime
func WithTTL(ttl time.Duration) IssueOption {
	return func(o *issueOptions) { o.ttl = ttl }
}

// WithPayload attaches extension fields covered by the signature
func WithPayload(payload map[string]string) IssueOption {
	return func(o *issueOptions) { o.payload = payload }
}
