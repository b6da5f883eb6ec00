package model

import "fmt"

// Reason is a stable, machine readable failure code
type Reason string

const (
	ReasonMalformedToken     Reason = "malformed_token"
	ReasonExpired            Reason = "expired"
	ReasonInvalidSignature   Reason = "invalid_signature"
	ReasonWrongFormType      Reason = "wrong_form_type"
	ReasonPreconditionFailed Reason = "precondition_failed"
	ReasonValidationFailed   Reason = "validation_failed"
	ReasonReplayed           Reason = "replayed"
	ReasonNotFound           Reason = "not_found"
)

// Error is a permanent, request-level failure. None of them are retryable:
// the caller has to obtain a fresh link or correct the input.
type Error struct {
	Reason  Reason `json:"reason"`
	Message string `json:"message,omitempty"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// Is matches any *Error with the same reason, so sentinels work with errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Reason == e.Reason
}

// NewError creates a request-level error
func NewError(reason Reason, format string, args ...interface{}) *Error {
	return &Error{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrMalformedToken     = &Error{Reason: ReasonMalformedToken}
	ErrExpired            = &Error{Reason: ReasonExpired}
	ErrInvalidSignature   = &Error{Reason: ReasonInvalidSignature}
	ErrWrongFormType      = &Error{Reason: ReasonWrongFormType}
	ErrPreconditionFailed = &Error{Reason: ReasonPreconditionFailed}
	ErrValidationFailed   = &Error{Reason: ReasonValidationFailed}
	ErrReplayed           = &Error{Reason: ReasonReplayed}
	ErrNotFound           = &Error{Reason: ReasonNotFound}
)
