// Package ical generates BCOP Maintnote-compliant calendar content for
// maintenance notifications. Outages never produce calendar output.
package ical

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jsenecal/netbox-notices/internal/model"
	"github.com/jsenecal/netbox-notices/internal/render"
)

// ErrNotApplicable is returned when calendar generation is requested for a
// template/event pair it does not apply to. It is distinct from template
// syntax failures.
var ErrNotApplicable = errors.New("calendar generation not applicable")

// DefaultTemplate is a BCOP-compliant reference template. The X-MAINTNOTE
// properties follow the Maintnote standard: provider, account, maintenance
// id, affected object ids, impact level and status.
const DefaultTemplate = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//NetBox//netbox-notices//EN
METHOD:PUBLISH
BEGIN:VEVENT
DTSTAMP:{{ .now | ical_datetime }}
DTSTART:{{ .maintenance.Start | ical_datetime }}
DTEND:{{ .maintenance.End | ical_datetime }}
UID:{{ .maintenance.ID }}{{ if .tenant }}-{{ .tenant.ID }}{{ end }}@netbox
SUMMARY:{{ if .maintenance.Summary }}{{ .maintenance.Summary }}{{ else }}{{ .maintenance.Name }}{{ end }}
DESCRIPTION:Provider: {{ .maintenance.Provider.Name }}\nStatus: {{ .maintenance.Status }}{{ if .maintenance.InternalTicket }}\nTicket: {{ .maintenance.InternalTicket }}{{ end }}
SEQUENCE:{{ .message_sequence }}
STATUS:{{ .maintenance.Status }}
X-MAINTNOTE-PROVIDER:{{ .maintenance.Provider.Slug }}
{{ if .tenant }}X-MAINTNOTE-ACCOUNT:{{ .tenant.Name }}
{{ end }}X-MAINTNOTE-MAINTENANCE-ID;X-MAINTNOTE-PRECEDENCE=PRIMARY:{{ .maintenance.Name }}
{{ range .tenant_impacts }}X-MAINTNOTE-OBJECT-ID:{{ if .TargetName }}{{ .TargetName }}{{ else }}{{ .Target.Kind }}/{{ .Target.ID }}{{ end }}
{{ end }}X-MAINTNOTE-IMPACT:{{ .highest_impact }}
X-MAINTNOTE-STATUS:{{ .maintenance.Status }}
END:VEVENT
END:VCALENDAR`

// Generator renders the calendar attachment for one template/event pair.
type Generator struct {
	template *model.NotificationTemplate
	event    *model.Event
	tenant   *model.Tenant
	impacts  []*model.Impact
	renderer *render.Renderer

	baseURL string
	now     func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithBaseURL sets the base URL exposed to the calendar template.
func WithBaseURL(url string) Option {
	return func(g *Generator) { g.baseURL = url }
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithRenderer sets the renderer, carrying any named templates used for
// inheritance.
func WithRenderer(r *render.Renderer) Option {
	return func(g *Generator) { g.renderer = r }
}

// NewGenerator returns a Generator for the given template, event, tenant
// and (tenant-filtered, where applicable) impacts.
func NewGenerator(template *model.NotificationTemplate, event *model.Event, tenant *model.Tenant, impacts []*model.Impact, opts ...Option) *Generator {
	g := &Generator{
		template: template,
		event:    event,
		tenant:   tenant,
		impacts:  impacts,
		renderer: render.NewRenderer(nil),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ShouldGenerate reports whether calendar output applies: the event must be
// a maintenance, the template must have the calendar flag set, and its
// calendar template must be non-blank.
func (g *Generator) ShouldGenerate() bool {
	if g.event == nil || !g.event.IsMaintenance() {
		return false
	}
	if g.template == nil || !g.template.IncludeICal {
		return false
	}
	return strings.TrimSpace(g.template.ICalTemplate) != ""
}

// Generate renders the calendar content with the given sequence number.
// Requesting generation when ShouldGenerate is false returns
// ErrNotApplicable; template failures surface as render errors.
func (g *Generator) Generate(sequence int) (string, error) {
	if !g.ShouldGenerate() {
		return "", fmt.Errorf("%w: template %q, event %v", ErrNotApplicable, g.templateName(), g.eventKind())
	}

	context := render.BuildContext(render.ContextInput{
		BaseURL: g.baseURL,
		Now:     g.now(),
		Event:   g.event,
		Tenant:  g.tenant,
		Impacts: g.impacts,
		Extra: map[string]any{
			"message_sequence": sequence,
			"highest_impact":   string(model.HighestSeverity(g.impacts)),
		},
	})
	return g.renderer.Render(g.template.ICalTemplate, context)
}

// ValidateTemplate checks the calendar template's syntax. A blank template
// is valid; it simply disables generation.
func (g *Generator) ValidateTemplate() error {
	if g.template == nil || strings.TrimSpace(g.template.ICalTemplate) == "" {
		return nil
	}
	return g.renderer.Validate(g.template.ICalTemplate)
}

func (g *Generator) templateName() string {
	if g.template == nil {
		return ""
	}
	return g.template.Slug
}

func (g *Generator) eventKind() model.EventType {
	if g.event == nil {
		return model.EventTypeNone
	}
	return g.event.Kind
}

// Generate is a convenience wrapper that returns "" without error when
// generation is not applicable.
func Generate(template *model.NotificationTemplate, event *model.Event, tenant *model.Tenant, impacts []*model.Impact, sequence int, opts ...Option) (string, error) {
	g := NewGenerator(template, event, tenant, impacts, opts...)
	if !g.ShouldGenerate() {
		return "", nil
	}
	return g.Generate(sequence)
}
