package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/jsenecal/netbox-notices/internal/ical"
	"github.com/jsenecal/netbox-notices/internal/matching"
	"github.com/jsenecal/netbox-notices/internal/model"
	"github.com/jsenecal/netbox-notices/internal/render"
)

// Builder assembles draft notification records from merged template
// configuration. All template rendering happens here, at build time; the
// record stores only finished content.
type Builder struct {
	renderer *render.Renderer
	baseURL  string
	now      func() time.Time
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithBaseURL sets the base URL exposed to templates.
func WithBaseURL(url string) BuilderOption {
	return func(b *Builder) { b.baseURL = url }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

// NewBuilder returns a Builder rendering through r. The renderer carries
// the named templates used for block inheritance.
func NewBuilder(r *render.Renderer, opts ...BuilderOption) *Builder {
	b := &Builder{renderer: r, now: time.Now}
	if b.renderer == nil {
		b.renderer = render.NewRenderer(nil)
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildInput collects everything one draft needs. Template identifies the
// best-scoring template; Config is the merged configuration across all
// matches. Impacts should already be scoped to the draft's granularity
// (the tenant's impacts for per-tenant drafts, one impact for per-impact).
type BuildInput struct {
	Template *model.NotificationTemplate
	Config   *matching.MergedConfig
	Event    *model.Event
	Tenant   *model.Tenant
	Impacts  []*model.Impact
	Contacts []model.Contact

	// Sequence is the calendar SEQUENCE number, incremented per
	// re-notification of the same event.
	Sequence int

	// TenantOf filters tenant_impacts in the render context; nil leaves
	// them unfiltered.
	TenantOf func(model.ObjectRef) *model.Tenant

	// Extra entries extend the render context.
	Extra map[string]any
}

// Build renders all content and returns a draft record. Rendering failures
// abort the build; a draft is never persisted with partial content.
func (b *Builder) Build(in BuildInput) (*Record, error) {
	if in.Config == nil {
		return nil, fmt.Errorf("build notification: no template configuration")
	}

	now := b.now().UTC()
	extra := map[string]any{
		"message_sequence": in.Sequence,
	}
	for k, v := range in.Extra {
		extra[k] = v
	}
	context := render.BuildContext(render.ContextInput{
		BaseURL:  b.baseURL,
		Now:      now,
		Event:    in.Event,
		Tenant:   in.Tenant,
		Impacts:  in.Impacts,
		TenantOf: in.TenantOf,
		Extra:    extra,
	})

	subject, err := b.renderer.Render(in.Config.SubjectTemplate, context)
	if err != nil {
		return nil, fmt.Errorf("render subject: %w", err)
	}
	body, err := b.renderer.Render(in.Config.BodyTemplate, context)
	if err != nil {
		return nil, fmt.Errorf("render body: %w", err)
	}
	css, err := b.renderCSS(in.Config.CSSTemplate, context)
	if err != nil {
		return nil, err
	}
	headers, err := b.renderHeaders(in.Config.HeadersTemplate, context)
	if err != nil {
		return nil, err
	}

	rec := NewRecord(now)
	rec.Subject = oneline(subject)
	rec.Headers = headers
	rec.CSS = css
	rec.Contacts = in.Contacts
	rec.Event = eventRef(in.Event)
	if in.Tenant != nil {
		rec.TenantID = in.Tenant.ID
	}
	if in.Template != nil {
		rec.TemplateID = in.Template.ID
		rec.TemplateSlug = in.Template.Slug
	}

	rec.BodyText = body
	switch in.Config.BodyFormat {
	case model.BodyFormatMarkdown:
		html, err := render.Markdown(body)
		if err != nil {
			return nil, fmt.Errorf("render body: %w", err)
		}
		rec.BodyHTML = html
	case model.BodyFormatHTML:
		rec.BodyHTML = body
	}

	icalContent, err := b.generateICal(in)
	if err != nil {
		return nil, fmt.Errorf("render calendar: %w", err)
	}
	rec.ICalContent = icalContent

	return rec, nil
}

func (b *Builder) renderCSS(src string, context map[string]any) (string, error) {
	if src == "" {
		return "", nil
	}
	css, err := b.renderer.Render(src, context)
	if err != nil {
		return "", fmt.Errorf("render css: %w", err)
	}
	return css, nil
}

func (b *Builder) renderHeaders(templates map[string]string, context map[string]any) (map[string]string, error) {
	if len(templates) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(templates))
	for key, src := range templates {
		value, err := b.renderer.Render(src, context)
		if err != nil {
			return nil, fmt.Errorf("render header %q: %w", key, err)
		}
		headers[key] = oneline(value)
	}
	return headers, nil
}

func (b *Builder) generateICal(in BuildInput) (string, error) {
	// Carry the merged calendar settings on a synthetic template so the
	// generator sees the post-merge values, not one template's own.
	tpl := &model.NotificationTemplate{
		IncludeICal:  in.Config.IncludeICal,
		ICalTemplate: in.Config.ICalTemplate,
	}
	if in.Template != nil {
		tpl.Slug = in.Template.Slug
	}
	return ical.Generate(tpl, in.Event, in.Tenant, in.Impacts, in.Sequence,
		ical.WithBaseURL(b.baseURL),
		ical.WithClock(b.now),
		ical.WithRenderer(b.renderer),
	)
}

func eventRef(event *model.Event) *model.ObjectRef {
	if event == nil {
		return nil
	}
	ref := event.Ref()
	return &ref
}

// oneline collapses rendered text to a single trimmed line, as required for
// subjects and header values.
func oneline(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
