// Package notification holds the prepared-notification record, its status
// lifecycle and the builder that assembles drafts from matched template
// configuration.
package notification

import (
	"time"

	"github.com/google/uuid"

	"github.com/jsenecal/netbox-notices/internal/model"
)

// Status is the lifecycle state of a prepared notification
type Status string

const (
	StatusDraft     Status = "draft"
	StatusReady     Status = "ready"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
)

// AuditKind classifies an audit entry for display purposes
type AuditKind string

const (
	AuditInfo    AuditKind = "info"
	AuditSuccess AuditKind = "success"
	AuditWarning AuditKind = "warning"
)

// Recipient is a delivery address captured when a notification is approved.
// The snapshot is immutable afterwards: later contact edits do not change
// where an approved notification goes.
type Recipient struct {
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	ContactID int64  `json:"contact_id,omitempty"`
}

// Record is a prepared notification: fully rendered content plus lifecycle
// state. Content fields are filled at build time; Recipients, ApprovedBy
// and the delivery timestamps are owned by the state machine.
type Record struct {
	ID           string           `json:"id"`
	TemplateID   int64            `json:"template_id"`
	TemplateSlug string           `json:"template_slug"`
	Event        *model.ObjectRef `json:"event,omitempty"`
	TenantID     int64            `json:"tenant_id,omitempty"`

	Status   Status          `json:"status"`
	Contacts []model.Contact `json:"contacts,omitempty"`

	Subject     string            `json:"subject"`
	BodyText    string            `json:"body_text"`
	BodyHTML    string            `json:"body_html,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	CSS         string            `json:"css,omitempty"`
	ICalContent string            `json:"ical_content,omitempty"`

	Recipients []Recipient `json:"recipients,omitempty"`
	ApprovedBy string      `json:"approved_by,omitempty"`

	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	ViewedAt    *time.Time `json:"viewed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRecord returns an empty draft record with a fresh ID
func NewRecord(now time.Time) *Record {
	return &Record{
		ID:        uuid.New().String(),
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsTerminalDelivered reports whether the record reached the delivered
// state, from which no transition leaves
func (r *Record) IsTerminalDelivered() bool {
	return r.Status == StatusDelivered
}

// AuditEntry is one line of a record's append-only history
type AuditEntry struct {
	Timestamp time.Time `json:"timestamp"`
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	Actor     string    `json:"actor,omitempty"`
	Note      string    `json:"note,omitempty"`
	Kind      AuditKind `json:"kind"`
}

// auditKindFor maps a target status to the display kind of its audit entry
func auditKindFor(to Status) AuditKind {
	switch to {
	case StatusDelivered:
		return AuditSuccess
	case StatusFailed:
		return AuditWarning
	default:
		return AuditInfo
	}
}
