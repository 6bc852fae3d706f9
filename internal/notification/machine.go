package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jsenecal/netbox-notices/internal/metrics"
)

// validTransitions is the full lifecycle graph. Delivered is terminal;
// failed notifications can be re-approved.
var validTransitions = map[Status][]Status{
	StatusDraft:     {StatusReady},
	StatusReady:     {StatusSent},
	StatusSent:      {StatusDelivered, StatusFailed},
	StatusDelivered: {},
	StatusFailed:    {StatusReady},
}

// InvalidTransitionError reports a transition not present in the lifecycle
// graph
type InvalidTransitionError struct {
	From  Status
	To    Status
	Valid []Status
}

func (e *InvalidTransitionError) Error() string {
	if len(e.Valid) == 0 {
		return fmt.Sprintf("invalid transition %s -> %s: %s is terminal", e.From, e.To, e.From)
	}
	names := make([]string, len(e.Valid))
	for i, s := range e.Valid {
		names[i] = string(s)
	}
	return fmt.Sprintf("invalid transition %s -> %s: valid targets are %s", e.From, e.To, strings.Join(names, ", "))
}

// TimestampOrderingError reports a transition timestamp that would violate
// causality: delivery before sending, sending before approval, or any
// timestamp in the future
type TimestampOrderingError struct {
	Field string
	Value time.Time
	Bound time.Time
}

func (e *TimestampOrderingError) Error() string {
	return fmt.Sprintf("%s timestamp %s violates ordering against %s",
		e.Field, e.Value.Format(time.RFC3339), e.Bound.Format(time.RFC3339))
}

// EmptyRecipientsError reports an approval attempt with no deliverable
// contacts
type EmptyRecipientsError struct {
	RecordID string
}

func (e *EmptyRecipientsError) Error() string {
	return fmt.Sprintf("notification %s has no recipients with an email address", e.RecordID)
}

// Store persists notification records. Update must apply fn inside a single
// transaction so concurrent transitions on one record serialize.
type Store interface {
	Get(ctx context.Context, id string) (*Record, error)
	Update(ctx context.Context, id string, fn func(*Record) (*AuditEntry, error)) (*Record, error)
	Audit(ctx context.Context, id string) ([]AuditEntry, error)
}

// Options carries per-transition inputs
type Options struct {
	// Actor is recorded in the audit trail; on approval it also becomes
	// ApprovedBy.
	Actor string
	// Note is free-form audit text; supplying one appends an audit entry
	// for the transition.
	Note string
	// At overrides the transition timestamp, e.g. when recording a
	// delivery receipt after the fact. Future timestamps are rejected.
	At *time.Time
}

// Machine drives notification records through their lifecycle
type Machine struct {
	store  Store
	now    func() time.Time
	logger *slog.Logger
}

// NewMachine returns a Machine over the given store
func NewMachine(store Store) *Machine {
	return NewMachineWithClock(store, time.Now)
}

// NewMachineWithClock returns a Machine with an injected time source
func NewMachineWithClock(store Store, now func() time.Time) *Machine {
	return &Machine{
		store:  store,
		now:    now,
		logger: slog.Default().With("component", "notification"),
	}
}

// CanTransitionTo reports whether target is reachable from current in one
// step
func CanTransitionTo(current, target Status) bool {
	for _, s := range validTransitions[current] {
		if s == target {
			return true
		}
	}
	return false
}

// ValidTransitions returns the targets reachable from current, sorted
func ValidTransitions(current Status) []Status {
	targets := append([]Status(nil), validTransitions[current]...)
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
	return targets
}

// TransitionTo moves the record to target, enforcing the lifecycle graph,
// recipient snapshotting and timestamp causality. The whole transition runs
// in one storage transaction. A supplied note appends one audit entry in
// that same transaction; note-less transitions leave the trail untouched.
func (m *Machine) TransitionTo(ctx context.Context, id string, target Status, opts Options) (*Record, error) {
	ts := m.now().UTC()
	if opts.At != nil {
		at := opts.At.UTC()
		if at.After(ts) {
			metrics.TransitionRejected("future_timestamp")
			return nil, &TimestampOrderingError{Field: "transition", Value: at, Bound: ts}
		}
		ts = at
	}

	rec, err := m.store.Update(ctx, id, func(rec *Record) (*AuditEntry, error) {
		from := rec.Status
		if !CanTransitionTo(from, target) {
			metrics.TransitionRejected("invalid_transition")
			return nil, &InvalidTransitionError{From: from, To: target, Valid: ValidTransitions(from)}
		}

		switch target {
		case StatusReady:
			if err := m.approve(rec, opts.Actor, ts); err != nil {
				return nil, err
			}
		case StatusSent:
			if rec.ApprovedAt != nil && ts.Before(*rec.ApprovedAt) {
				metrics.TransitionRejected("sent_before_approved")
				return nil, &TimestampOrderingError{Field: "sent", Value: ts, Bound: *rec.ApprovedAt}
			}
			if rec.SentAt == nil {
				rec.SentAt = &ts
			}
		case StatusDelivered:
			if rec.SentAt != nil && ts.Before(*rec.SentAt) {
				metrics.TransitionRejected("delivered_before_sent")
				return nil, &TimestampOrderingError{Field: "delivered", Value: ts, Bound: *rec.SentAt}
			}
			if rec.DeliveredAt == nil {
				rec.DeliveredAt = &ts
			}
		}

		rec.Status = target
		rec.UpdatedAt = ts

		metrics.Transition(string(from), string(target))

		// The note is the trigger: only noted transitions are journaled
		if opts.Note == "" {
			return nil, nil
		}
		return &AuditEntry{
			Timestamp: ts,
			From:      from,
			To:        target,
			Actor:     opts.Actor,
			Note:      opts.Note,
			Kind:      auditKindFor(target),
		}, nil
	})
	if err != nil {
		m.logger.Warn("transition rejected",
			"notification_id", id,
			"target", string(target),
			"error", err)
		return nil, err
	}

	m.logger.Info("transition committed",
		"notification_id", id,
		"status", string(rec.Status),
		"actor", opts.Actor)
	return rec, nil
}

// approve snapshots the deliverable recipients and stamps the approval.
// Contacts without an email address are dropped from the snapshot; an empty
// snapshot aborts the transition.
func (m *Machine) approve(rec *Record, actor string, ts time.Time) error {
	var recipients []Recipient
	for _, c := range rec.Contacts {
		if strings.TrimSpace(c.Email) == "" {
			continue
		}
		recipients = append(recipients, Recipient{
			Email:     c.Email,
			Name:      c.Name,
			ContactID: c.ID,
		})
	}
	if len(recipients) == 0 {
		metrics.TransitionRejected("empty_recipients")
		return &EmptyRecipientsError{RecordID: rec.ID}
	}

	rec.Recipients = recipients
	rec.ApprovedBy = actor
	rec.ApprovedAt = &ts
	return nil
}
