package model

import "time"

// Anchor kinds known to scope matching. Additional kinds (site, region,
// tenant group, ...) are resolved through caller-supplied anchors.
const (
	KindTenant   = "tenant"
	KindProvider = "provider"
)

// ObjectRef is an explicit tagged reference to an external object.
// ID 0 means "any object of this kind" (wildcard) where wildcards apply.
type ObjectRef struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id"`
}

// Wildcard reports whether the reference matches all objects of its kind.
func (r ObjectRef) Wildcard() bool {
	return r.ID == 0
}

// Event is a maintenance or outage affecting tracked assets. It is supplied
// by an external system and read-only here; Kind tags the variant.
type Event struct {
	Kind     EventType  `json:"kind"`
	ID       int64      `json:"id"`
	Name     string     `json:"name"`
	Summary  string     `json:"summary"`
	Status   string     `json:"status"`
	Provider *Provider  `json:"provider,omitempty"`
	Start    time.Time  `json:"start"`
	End      *time.Time `json:"end,omitempty"` // nil while an outage is unresolved

	// Ticket reference in the operator's tracking system, maintenance only
	InternalTicket string `json:"internal_ticket,omitempty"`
}

// Ref returns the event's tagged reference.
func (e *Event) Ref() ObjectRef {
	return ObjectRef{Kind: string(e.Kind), ID: e.ID}
}

// IsMaintenance reports whether the event is a maintenance.
func (e *Event) IsMaintenance() bool {
	return e != nil && e.Kind == EventTypeMaintenance
}

// StatusColor returns the display color for the event's status.
func (e *Event) StatusColor() string {
	if e == nil {
		return ""
	}
	if e.Kind == EventTypeMaintenance {
		return MaintenanceStatusColor[e.Status]
	}
	return OutageStatusColor[e.Status]
}

// Impact records how severely one event affects one asset.
type Impact struct {
	ID       int64     `json:"id"`
	EventID  int64     `json:"event_id"`
	Target   ObjectRef `json:"target"`
	Severity Severity  `json:"severity"`

	// Display name of the target asset (circuit ID, device name, ...)
	TargetName string `json:"target_name,omitempty"`
}
