package model

// NotificationTemplate defines how notifications for matching events are
// rendered and who receives them. Templates are selected and merged by
// weighted scope matching, similar to configuration contexts.
type NotificationTemplate struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`

	// Which event class the template applies to
	EventType EventType `json:"event_type"`

	// How notifications are grouped when generated from events
	Granularity Granularity `json:"granularity"`

	// Content templates
	SubjectTemplate string            `json:"subject_template"`
	BodyTemplate    string            `json:"body_template"`
	BodyFormat      BodyFormat        `json:"body_format"`
	CSSTemplate     string            `json:"css_template,omitempty"`
	HeadersTemplate map[string]string `json:"headers_template,omitempty"`

	// Calendar attachment, maintenance events only
	IncludeICal  bool   `json:"include_ical"`
	ICalTemplate string `json:"ical_template,omitempty"`

	// Recipient discovery filters; empty slices mean unfiltered
	ContactRoles      []string `json:"contact_roles,omitempty"`
	ContactPriorities []string `json:"contact_priorities,omitempty"`

	// Block inheritance. A base template is only ever extended, never
	// selected for generation itself.
	IsBaseTemplate bool   `json:"is_base_template"`
	Extends        string `json:"extends,omitempty"` // slug of the parent template

	// Base weight for matching; scope weights add to it
	Weight int `json:"weight"`

	Scopes []*TemplateScope `json:"scopes,omitempty"`
}

// DefaultWeight is the base weight applied when none is configured.
const DefaultWeight = 1000

// EffectiveWeight returns the template's weight, defaulted.
func (t *NotificationTemplate) EffectiveWeight() int {
	if t.Weight == 0 {
		return DefaultWeight
	}
	return t.Weight
}

// TemplateScope conditions whether and how strongly a template applies.
// Scopes are unique over (template, anchor kind, anchor id, event type,
// event status); enforcement belongs to the persistence collaborator.
type TemplateScope struct {
	ID int64 `json:"id"`

	// Anchor this scope matches against; Anchor.ID 0 matches every object
	// of Anchor.Kind.
	Anchor ObjectRef `json:"anchor"`

	// Optional event filters; empty means unfiltered
	EventType   EventType `json:"event_type,omitempty"`
	EventStatus string    `json:"event_status,omitempty"`

	// Weight added to the template's base weight on match
	Weight int `json:"weight"`
}

// EffectiveWeight returns the scope's weight, defaulted.
func (s *TemplateScope) EffectiveWeight() int {
	if s.Weight == 0 {
		return DefaultWeight
	}
	return s.Weight
}
