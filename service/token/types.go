package token

import (
	"strings"
	"time"

	"github.com/viant/offboard/model"
)

// Kind tags the envelope variant
type Kind string

const (
	KindApproval Kind = "approval"
	KindForm     Kind = "form"
)

// Canonical field names
const (
	FieldKind         = "kind"
	FieldSubmissionID = "submission_id"
	FieldAction       = "action"
	FieldRole         = "approver_role"
	FieldFormType     = "form_type"
	FieldIssuedAt     = "issued_at"
	FieldExpiry       = "expiry"

	dataPrefix = "data."
)

// Envelope is the signed unit shared by both token variants. Fields holds the
// variant specific fields; payload keys are stored with the "data." prefix.
type Envelope struct {
	Kind      Kind
	IssuedAt  time.Time
	ExpiresAt time.Time
	Fields    map[string]string
}

// Payload returns the extension payload with the key prefix stripped
func (e *Envelope) Payload() map[string]string {
	var ret map[string]string
	for k, v := range e.Fields {
		name, ok := strings.CutPrefix(k, dataPrefix)
		if !ok || name == "" {
			continue
		}
		if ret == nil {
			ret = make(map[string]string)
		}
		ret[name] = v
	}
	return ret
}

// ApprovalToken is the decoded payload of a verified approval token
type ApprovalToken struct {
	SubmissionID int               `json:"submission_id"`
	Action       model.Action      `json:"action"`
	Role         model.Role        `json:"approver_role"`
	IssuedAt     time.Time         `json:"issued_at"`
	ExpiresAt    time.Time         `json:"expiry"`
	Payload      map[string]string `json:"payload,omitempty"`
	Valid        bool              `json:"is_valid"`
}

// FormToken is the decoded payload of a verified form token
type FormToken struct {
	FormType  string            `json:"form_type"`
	IssuedAt  time.Time         `json:"issued_at"`
	ExpiresAt time.Time         `json:"expiry"`
	Payload   map[string]string `json:"payload,omitempty"`
	Valid     bool              `json:"is_valid"`
}
