package token

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/viant/offboard/internal/clock"
	"github.com/viant/offboard/model"
	"golang.org/x/crypto/hkdf"
)

const (
	// DefaultApprovalTTL is the lifetime of approve/reject links
	DefaultApprovalTTL = 24 * time.Hour
	// DefaultFormTTL is the lifetime of generalized form links
	DefaultFormTTL = 72 * time.Hour
)

// ErrEmptySecret is returned when the service is constructed without a signing secret
var ErrEmptySecret = errors.New("token: signing secret is empty")

// Service issues and verifies action tokens
type Service struct {
	keys        map[Kind][]byte
	approvalTTL time.Duration
	formTTL     time.Duration
	now         func() time.Time
}

// New creates a token service bound to the supplied signing secret
func New(secret []byte, options ...Option) (*Service, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	ret := &Service{
		keys:        make(map[Kind][]byte, 2),
		approvalTTL: DefaultApprovalTTL,
		formTTL:     DefaultFormTTL,
		now:         clock.Now,
	}
	for _, kind := range []Kind{KindApproval, KindForm} {
		key, err := deriveKey(secret, kind)
		if err != nil {
			return nil, err
		}
		ret.keys[kind] = key
	}
	for _, option := range options {
		option(ret)
	}
	return ret, nil
}

func deriveKey(secret []byte, kind Kind) ([]byte, error) {
	key := make([]byte, sha256.Size)
	reader := hkdf.New(sha256.New, secret, nil, []byte("offboard/"+string(kind)))
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive %v key: %w", kind, err)
	}
	return key, nil
}

// ApprovalTTL returns the default approval token lifetime
func (s *Service) ApprovalTTL() time.Duration { return s.approvalTTL }

// FormTTL returns the default form token lifetime
func (s *Service) FormTTL() time.Duration { return s.formTTL }

// Seal signs an envelope. IssuedAt defaults to now, ExpiresAt must be set.
func (s *Service) Seal(env *Envelope) (string, error) {
	if env == nil {
		return "", model.NewError(model.ReasonValidationFailed, "envelope was nil")
	}
	key, ok := s.keys[env.Kind]
	if !ok {
		return "", model.NewError(model.ReasonValidationFailed, "unsupported token kind: %v", env.Kind)
	}
	if env.IssuedAt.IsZero() {
		env.IssuedAt = s.now()
	}
	if !env.ExpiresAt.After(env.IssuedAt) {
		return "", model.NewError(model.ReasonValidationFailed, "token expiry must follow issuance")
	}
	return encode(key, env), nil
}

// Open authenticates a token of the expected kind and checks its expiry
func (s *Service) Open(token string, kind Kind) (*Envelope, error) {
	key, ok := s.keys[kind]
	if !ok {
		return nil, model.NewError(model.ReasonMalformedToken, "unsupported token kind: %v", kind)
	}
	message, err := authenticate(key, token)
	if err != nil {
		return nil, err
	}
	env, err := parse(message, kind)
	if err != nil {
		return nil, err
	}
	if s.now().After(env.ExpiresAt) {
		return nil, model.NewError(model.ReasonExpired, "token expired at %v", env.ExpiresAt.UTC().Format(time.RFC3339))
	}
	return env, nil
}

// Issue mints an approval token binding one submission, action and approver role
func (s *Service) Issue(subjectID int, action model.Action, role model.Role, options ...IssueOption) (string, error) {
	if subjectID <= 0 {
		return "", model.NewError(model.ReasonValidationFailed, "invalid submission id: %v", subjectID)
	}
	if !action.IsDecision() {
		return "", model.NewError(model.ReasonValidationFailed, "unsupported action: %v", action)
	}
	if !role.IsApprover() {
		return "", model.NewError(model.ReasonValidationFailed, "unsupported approver role: %v", role)
	}
	opts := &issueOptions{ttl: s.approvalTTL}
	for _, option := range options {
		option(opts)
	}
	env := s.envelope(KindApproval, opts)
	env.Fields[FieldSubmissionID] = strconv.Itoa(subjectID)
	env.Fields[FieldAction] = string(action)
	env.Fields[FieldRole] = string(role)
	return s.Seal(env)
}

// Verify decodes and validates an approval token
func (s *Service) Verify(token string) (*ApprovalToken, error) {
	env, err := s.Open(token, KindApproval)
	if err != nil {
		return nil, err
	}
	value, ok := env.Fields[FieldSubmissionID]
	if !ok {
		return nil, model.NewError(model.ReasonMalformedToken, "missing required field: %v", FieldSubmissionID)
	}
	subjectID, err := strconv.Atoi(value)
	if err != nil || subjectID <= 0 {
		return nil, model.NewError(model.ReasonMalformedToken, "invalid %v: %v", FieldSubmissionID, value)
	}
	action, err := model.ParseDecision(env.Fields[FieldAction])
	if err != nil {
		return nil, model.NewError(model.ReasonMalformedToken, "%v", err)
	}
	role, err := model.ParseApproverRole(env.Fields[FieldRole])
	if err != nil {
		return nil, model.NewError(model.ReasonMalformedToken, "%v", err)
	}
	return &ApprovalToken{
		SubmissionID: subjectID,
		Action:       action,
		Role:         role,
		IssuedAt:     env.IssuedAt,
		ExpiresAt:    env.ExpiresAt,
		Payload:      env.Payload(),
		Valid:        true,
	}, nil
}

// IssueForm mints a form token carrying an arbitrary payload
func (s *Service) IssueForm(formType string, payload map[string]string, ttl time.Duration) (string, error) {
	if formType == "" {
		return "", model.NewError(model.ReasonValidationFailed, "form type was empty")
	}
	if ttl > s.formTTL {
		return "", model.NewError(model.ReasonValidationFailed, fmt.Sprintf("form ttl %v exceeds %v", ttl, s.formTTL))
	}
	opts := &issueOptions{ttl: s.formTTL, payload: payload}
	if ttl > 0 {
		opts.ttl = ttl
	}
	env := s.envelope(KindForm, opts)
	env.Fields[FieldFormType] = formType
	return s.Seal(env)
}

// VerifyForm decodes and validates a form token of any form type
func (s *Service) VerifyForm(token string) (*FormToken, error) {
	env, err := s.Open(token, KindForm)
	if err != nil {
		return nil, err
	}
	formType := env.Fields[FieldFormType]
	if formType == "" {
		return nil, model.NewError(model.ReasonMalformedToken, "missing required field: %v", FieldFormType)
	}
	return &FormToken{
		FormType:  formType,
		IssuedAt:  env.IssuedAt,
		ExpiresAt: env.ExpiresAt,
		Payload:   env.Payload(),
		Valid:     true,
	}, nil
}

func (s *Service) envelope(kind Kind, opts *issueOptions) *Envelope {
	now := s.now()
	ret := &Envelope{
		Kind:      kind,
		IssuedAt:  now,
		ExpiresAt: now.Add(opts.ttl),
		Fields:    make(map[string]string, len(opts.payload)+3),
	}
	for k, v := range opts.payload {
		ret.Fields[dataPrefix+k] = v
	}
	return ret
}
